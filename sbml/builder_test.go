package sbml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenericModel(t *testing.T) {
	doc := NewGenericModel("my model", "my_model", map[string][]string{"mnx": {"MNXC3"}}, "MNXC3")
	assert.Equal(t, 3, doc.Level)
	assert.True(t, doc.FBC)
	assert.True(t, doc.Groups)
	assert.True(t, doc.Model.FBCStrict)
	require.NotNil(t, doc.Model.UnitDefinitionByID("mmol_per_gDW_per_hr"))
	require.NotNil(t, doc.Model.UnitDefinitionByID("kj_per_mol"))
	comp := doc.Model.Compartment("MNXC3")
	require.NotNil(t, comp)
	assert.Equal(t, 290, comp.SBOTerm)
	assert.True(t, comp.Constant)
}

func TestEnsureFluxParameterDeduplicates(t *testing.T) {
	doc := NewGenericModel("m", "m", nil, "MNXC3")
	first := EnsureFluxParameter(doc.Model, 999999, "mmol_per_gDW_per_hr", true)
	second := EnsureFluxParameter(doc.Model, 999999, "mmol_per_gDW_per_hr", true)
	assert.Same(t, first, second)
	assert.Equal(t, "B_999999", first.ID)
	assert.Equal(t, 625, first.SBOTerm)
	assert.Len(t, doc.Model.Parameters, 1)
}

func TestAddSpeciesMissingGroupIsRecoverable(t *testing.T) {
	doc := NewGenericModel("m", "m", nil, "MNXC3")
	s := AddSpecies(doc.Model, "MNXM1", "MNXC3", "", nil, "", "", "", "no_such_group", "", nil)
	assert.Equal(t, "MNXM1__64__MNXC3", s.ID)
	assert.Equal(t, "MNXM1", s.Name)
	assert.Len(t, doc.Model.Species, 1)
}

func TestAddReactionSidesAreSorted(t *testing.T) {
	doc := NewGenericModel("m", "m", nil, "MNXC3")
	AddPathwayGroup(doc.Model, "rp_pathway")
	r := AddReaction(doc.Model, "RP1", 999999, 0, Step{
		Left:  map[string]float64{"MNXM2": 1, "MNXM1": 2},
		Right: map[string]float64{"TARGET_0000000001": 1},
	}, "MNXC3", "", nil, "rp_pathway", nil)

	require.Len(t, r.Reactants, 2)
	assert.Equal(t, "MNXM1__64__MNXC3", r.Reactants[0].Species)
	assert.Equal(t, 2.0, r.Reactants[0].Stoichiometry)
	assert.Equal(t, "MNXM2__64__MNXC3", r.Reactants[1].Species)
	assert.True(t, r.Reversible)
	assert.Equal(t, 176, r.SBOTerm)

	group := doc.Model.GroupByID("rp_pathway")
	require.Len(t, group.Members, 1)
	assert.Equal(t, "RP1", group.Members[0].IDRef)
}

func TestSetObjectiveLengthMismatch(t *testing.T) {
	doc := NewGenericModel("m", "m", nil, "MNXC3")
	_, err := SetObjective(doc.Model, "obj", []string{"RP1", "RP2"}, []float64{1}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Empty(t, doc.Model.Objectives, "a failed objective must not mutate the model")
	assert.Empty(t, doc.Model.ActiveObjective)
}

func TestEnsureObjectiveDeduplicatesByReactionSet(t *testing.T) {
	doc := NewGenericModel("m", "m", nil, "MNXC3")
	id, err := EnsureObjective(doc.Model, []string{"RP1"}, []float64{1}, true, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "obj_RP1", id)

	// same reaction set under another name resolves to the existing objective
	again, err := EnsureObjective(doc.Model, []string{"RP1"}, []float64{1}, true, "other", nil)
	require.NoError(t, err)
	assert.Equal(t, "obj_RP1", again)
	assert.Len(t, doc.Model.Objectives, 1)
}

func TestSetReactionBounds(t *testing.T) {
	doc := NewGenericModel("m", "m", nil, "MNXC3")
	AddReaction(doc.Model, "RP1", 999999, 0, Step{
		Left:  map[string]float64{"MNXM1": 1},
		Right: map[string]float64{"MNXM2": 1},
	}, "MNXC3", "", nil, "", nil)

	prevUpper, prevLower, err := SetReactionBounds(doc.Model, "RP1", 10, -10, "mmol_per_gDW_per_hr", true)
	require.NoError(t, err)
	assert.Equal(t, 999999.0, prevUpper)
	assert.Equal(t, 0.0, prevLower)

	r := doc.Model.ReactionByID("RP1")
	assert.Equal(t, "B_10", r.UpperFluxBound)
	assert.Equal(t, "B__10", r.LowerFluxBound)

	_, _, err = SetReactionBounds(doc.Model, "missing", 1, 0, "", true)
	assert.Error(t, err)
}
