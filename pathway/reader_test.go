package pathway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberIDs(t *testing.T) {
	doc := linearPathway(t)
	members, err := MemberIDs(doc, "rp_pathway")
	require.NoError(t, err)
	assert.Equal(t, []string{"RP1", "RP2"}, members)

	_, err = MemberIDs(doc, "no_such_group")
	assert.ErrorIs(t, err, ErrNoPathway)
}

func TestStoichiometry(t *testing.T) {
	doc := linearPathway(t)
	steps, err := Stoichiometry(doc, "rp_pathway")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.EqualValues(t, map[string]float64{"B__64__MNXC3": 1}, steps["RP2"].Reactants)
	assert.EqualValues(t, map[string]float64{"C__64__MNXC3": 2}, steps["RP2"].Products)
}

func TestUniqueSpecies(t *testing.T) {
	doc := linearPathway(t)
	species, err := UniqueSpecies(doc, "rp_pathway")
	require.NoError(t, err)
	assert.Equal(t, []string{"A__64__MNXC3", "B__64__MNXC3", "C__64__MNXC3"}, species)
}

func TestRules(t *testing.T) {
	doc := linearPathway(t)
	rules, err := Rules(doc, "rp_pathway", nil)
	require.NoError(t, err)
	assert.EqualValues(t, map[string]string{
		"RR-1": "[H]OA>>[H]OB",
		"RR-2": "[H]OB>>[H]OC",
	}, rules)
}

func TestRuleScore(t *testing.T) {
	doc := linearPathway(t)
	mean, err := RuleScore(doc, "rp_pathway", nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, mean, 1e-9)
}

func TestRuleScoreWithoutScores(t *testing.T) {
	doc := linearPathway(t)
	for _, r := range doc.Model.Reactions {
		r.Annotation = nil
	}
	mean, err := RuleScore(doc, "rp_pathway", nil)
	require.NoError(t, err)
	assert.Equal(t, -1.0, mean)
}

func TestSummary(t *testing.T) {
	doc := linearPathway(t)
	summary, err := Summary(doc, "rp_pathway", nil)
	require.NoError(t, err)
	require.Len(t, summary.Reactions, 2)
	require.Len(t, summary.Species, 3)
	assert.Equal(t, "RR-1", summary.Reactions["RP1"].Scientific.RuleID)
	assert.NotNil(t, summary.Species["A__64__MNXC3"].CrossRefs)
}

func TestStepTable(t *testing.T) {
	doc := linearPathway(t)
	table, err := StepTable(doc, "rp_pathway", nil)
	require.NoError(t, err)
	require.Len(t, table, 2)

	step := table["RP2"]
	assert.Equal(t, "RP2", step.ReactionID)
	assert.Equal(t, "RR-2", step.RuleID)
	require.NotNil(t, step.RuleScore)
	assert.Equal(t, 0.8, *step.RuleScore)
	assert.EqualValues(t, map[string]float64{"B__64__MNXC3": 1}, step.Left)
	assert.EqualValues(t, map[string]float64{"C__64__MNXC3": 2}, step.Right)
}
