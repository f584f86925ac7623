package pathway

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brsynth/sbmlmerge/sbml"
)

func rs(v float64) *float64 { return &v }

// linearPathway is A -> B -> C with every species central.
func linearPathway(t *testing.T) *sbml.Document {
	doc := sbml.NewGenericModel("linear", "linear", nil, "MNXC3")
	m := doc.Model
	sbml.AddPathwayGroup(m, "rp_pathway")
	sbml.AddPathwayGroup(m, "central_species")
	sbml.AddPathwayGroup(m, "rp_sink_species")
	sbml.AddSpecies(m, "A", "MNXC3", "", nil, "", "", "", "central_species", "rp_sink_species", nil)
	sbml.AddSpecies(m, "B", "MNXC3", "", nil, "", "", "", "central_species", "", nil)
	sbml.AddSpecies(m, "C", "MNXC3", "", nil, "", "", "", "central_species", "", nil)
	sbml.AddReaction(m, "RP1", 999999, 0, sbml.Step{
		RuleID: "RR-1", RuleScore: rs(0.6),
		Left:  map[string]float64{"A": 1},
		Right: map[string]float64{"B": 1},
	}, "MNXC3", "[H]OA>>[H]OB", nil, "rp_pathway", nil)
	sbml.AddReaction(m, "RP2", 999999, 0, sbml.Step{
		RuleID: "RR-2", RuleScore: rs(0.8),
		Left:  map[string]float64{"B": 1},
		Right: map[string]float64{"C": 2},
	}, "MNXC3", "[H]OB>>[H]OC", nil, "rp_pathway", nil)
	return doc
}

func TestBuildGraph(t *testing.T) {
	doc := linearPathway(t)
	g, err := Build(doc, false, "rp_pathway", "central_species", "rp_sink_species", nil)
	require.NoError(t, err)

	assert.Len(t, g.Nodes(), 5)
	assert.Equal(t, []string{"RP1", "RP2"}, g.PathwayReactions())

	a := g.Node("A__64__MNXC3")
	require.NotNil(t, a)
	assert.True(t, a.Species)
	assert.True(t, a.Central)
	assert.True(t, a.Sink)
	assert.True(t, a.InPathway)

	rp1 := g.Node("RP1")
	require.NotNil(t, rp1)
	assert.False(t, rp1.Species)
	assert.True(t, rp1.InPathway)
}

func TestBuildGraphMissingPathway(t *testing.T) {
	doc := sbml.NewGenericModel("m", "m", nil, "MNXC3")
	_, err := Build(doc, false, "rp_pathway", "central_species", "rp_sink_species", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPathway)
}

func TestBuildGraphMissingFlagGroupsDegrade(t *testing.T) {
	doc := linearPathway(t)
	g, err := Build(doc, false, "rp_pathway", "no_central", "no_sink", nil)
	require.NoError(t, err)
	assert.False(t, g.Node("A__64__MNXC3").Central)
	assert.False(t, g.Node("A__64__MNXC3").Sink)
}

func TestOnlyConsumedAndProduced(t *testing.T) {
	doc := linearPathway(t)
	g, err := Build(doc, false, "rp_pathway", "central_species", "rp_sink_species", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"A__64__MNXC3"}, g.OnlyConsumed(CentralOnly))
	assert.Equal(t, []string{"C__64__MNXC3"}, g.OnlyProduced(CentralOnly))
	assert.Equal(t, []string{"A__64__MNXC3"}, g.OnlyConsumed(All))
	assert.Equal(t, []string{"C__64__MNXC3"}, g.OnlyProduced(PathwayOnly))
}

func TestOrderedReactionsLinear(t *testing.T) {
	doc := linearPathway(t)
	g, err := Build(doc, false, "rp_pathway", "central_species", "rp_sink_species", nil)
	require.NoError(t, err)

	ordered, err := g.OrderedReactions()
	require.NoError(t, err)
	assert.Equal(t, []string{"RP1", "RP2"}, ordered)
}

func TestOrderedReactionsBranchingIsInconclusive(t *testing.T) {
	doc := linearPathway(t)
	// a second producer of C makes the walk ambiguous
	sbml.AddReaction(doc.Model, "RP3", 999999, 0, sbml.Step{
		Left:  map[string]float64{"A": 1},
		Right: map[string]float64{"C": 1},
	}, "MNXC3", "", nil, "rp_pathway", nil)

	g, err := Build(doc, false, "rp_pathway", "central_species", "rp_sink_species", nil)
	require.NoError(t, err)

	ordered, err := g.OrderedReactions()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotLinear)
	assert.Less(t, len(ordered), 3, "a branching pathway never yields a full ordering")
}

func TestOrderedReactionsEmptyPathway(t *testing.T) {
	doc := sbml.NewGenericModel("m", "m", nil, "MNXC3")
	sbml.AddPathwayGroup(doc.Model, "rp_pathway")
	g, err := Build(doc, false, "rp_pathway", "central_species", "rp_sink_species", nil)
	require.NoError(t, err)

	ordered, err := g.OrderedReactions()
	require.NoError(t, err)
	assert.Empty(t, ordered)
}

func TestExportJSON(t *testing.T) {
	doc := linearPathway(t)
	g, err := Build(doc, false, "rp_pathway", "central_species", "rp_sink_species", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.ExportJSON(&buf))

	var decoded struct {
		Directed bool `json:"directed"`
		Nodes    []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"nodes"`
		Links []struct {
			Source        string  `json:"source"`
			Target        string  `json:"target"`
			Stoichiometry float64 `json:"stoichiometry"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, decoded.Directed)
	assert.Len(t, decoded.Nodes, 5)
	assert.Len(t, decoded.Links, 4)

	var stoich float64
	for _, link := range decoded.Links {
		if link.Source == "RP2" && link.Target == "C__64__MNXC3" {
			stoich = link.Stoichiometry
		}
	}
	assert.Equal(t, 2.0, stoich, "product edges carry the product stoichiometry")
}
