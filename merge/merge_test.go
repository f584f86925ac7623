package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brsynth/sbmlmerge/annot"
	"github.com/brsynth/sbmlmerge/sbml"
)

func score(v float64) *float64 { return &v }

// sourcePathway builds a two-step pathway document in compartment MNXC3.
func sourcePathway(t *testing.T) *sbml.Document {
	doc := sbml.NewGenericModel("pathway", "rp_model", map[string][]string{"mnx": {"MNXC3"}}, "MNXC3")
	m := doc.Model
	sbml.AddPathwayGroup(m, "rp_pathway")
	sbml.AddPathwayGroup(m, "central_species")
	sbml.AddPathwayGroup(m, "rp_sink_species")

	sbml.AddSpecies(m, "MNXM100", "MNXC3", "substrate", map[string][]string{"mnx": {"MNXM100"}},
		"", "AAAAAAAAAAAAAA-UHFFFAOYSA-N", "CCO", "central_species", "rp_sink_species", nil)
	sbml.AddSpecies(m, "CMPD_0000000001", "MNXC3", "intermediate", nil,
		"", "BBBBBBBBBBBBBB-UHFFFAOYSA-N", "CC=O", "central_species", "", nil)
	sbml.AddSpecies(m, "TARGET_0000000001", "MNXC3", "target", nil,
		"", "CCCCCCCCCCCCCC-UHFFFAOYSA-N", "CC(=O)O", "central_species", "", nil)

	sbml.AddReaction(m, "RP2", 999999, 0, sbml.Step{
		RuleID:    "RR-02",
		Left:      map[string]float64{"MNXM100": 1},
		Right:     map[string]float64{"CMPD_0000000001": 1},
		RuleScore: score(0.7),
	}, "MNXC3", "", nil, "rp_pathway", nil)
	sbml.AddReaction(m, "RP1", 999999, 0, sbml.Step{
		RuleID:    "RR-01",
		Left:      map[string]float64{"CMPD_0000000001": 1},
		Right:     map[string]float64{"TARGET_0000000001": 1},
		RuleScore: score(0.8),
	}, "MNXC3", "", nil, "rp_pathway", nil)
	return doc
}

// hostModel builds a disjoint host model whose cytosol matches the pathway
// compartment by cross-reference.
func hostModel(t *testing.T) *sbml.Document {
	doc := sbml.NewGenericModel("host", "host_model", map[string][]string{"mnx": {"MNXC3"}}, "cytosol")
	m := doc.Model
	sbml.AddSpecies(m, "MNXM500", "cytosol", "host metabolite", map[string][]string{"mnx": {"MNXM500"}},
		"", "DDDDDDDDDDDDDD-UHFFFAOYSA-N", "", "", "", nil)
	sbml.AddSpecies(m, "MNXM501", "cytosol", "host metabolite 2", map[string][]string{"mnx": {"MNXM501"}},
		"", "", "", "", "", nil)
	sbml.AddReaction(m, "HOST_R1", 999999, 0, sbml.Step{
		Left:  map[string]float64{"MNXM500": 1},
		Right: map[string]float64{"MNXM501": 1},
	}, "cytosol", "", nil, "", nil)
	return doc
}

func TestMergeDisjointModelsGrows(t *testing.T) {
	source := sourcePathway(t)
	target := hostModel(t)
	wantSpecies := len(target.Model.Species) + len(source.Model.Species)
	wantReactions := len(target.Model.Reactions) + len(source.Model.Reactions)

	result, err := Merge(source, target, WithSkipOrphanRepair())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, target.Model.Species, wantSpecies)
	assert.Len(t, target.Model.Reactions, wantReactions)
	assert.Equal(t, "host_model__rp_model", target.Model.ID)
	assert.Equal(t, "host merged with rp_model", target.Model.Name)
	assert.NotZero(t, result.SourceFingerprint)
	assert.NotZero(t, result.TargetFingerprint)

	// pathway species landed in the cross-reference-matched compartment
	copied := target.Model.SpeciesByID("MNXM100__64__MNXC3")
	require.NotNil(t, copied)
	assert.Equal(t, "cytosol", copied.Compartment)

	// the pathway group arrived with both steps
	group := target.Model.GroupByID("rp_pathway")
	require.NotNil(t, group)
	assert.Len(t, group.Members, 2)

	// copied reactions reference species that exist in the target
	rp1 := target.Model.ReactionByID("RP1")
	require.NotNil(t, rp1)
	for _, ref := range append(rp1.Reactants, rp1.Products...) {
		assert.NotNil(t, target.Model.SpeciesByID(ref.Species), ref.Species)
	}
	assert.Equal(t, "RP1", result.Reactions["RP1"])
}

func TestMergeTwiceDeduplicates(t *testing.T) {
	target := hostModel(t)
	_, err := Merge(sourcePathway(t), target, WithSkipOrphanRepair())
	require.NoError(t, err)

	species := len(target.Model.Species)
	reactions := len(target.Model.Reactions)
	members := len(target.Model.GroupByID("rp_pathway").Members)

	result, err := Merge(sourcePathway(t), target, WithSkipOrphanRepair())
	require.NoError(t, err)

	assert.Len(t, target.Model.Species, species, "second merge must not duplicate species")
	assert.Len(t, target.Model.Reactions, reactions, "second merge must not duplicate reactions")
	assert.Len(t, target.Model.GroupByID("rp_pathway").Members, members)
	for id, targets := range result.Species {
		assert.NotEmpty(t, targets, "species %s should match on the second merge", id)
	}
}

func TestMergeOverwritesMatchedSpeciesAnnotation(t *testing.T) {
	source := sourcePathway(t)
	target := hostModel(t)

	// give the host a species that matches MNXM100 by cross-reference
	a := annot.New(sbml.MetaID("host_glc"))
	annot.UpsertCrossRefs(a, annot.KindSpecies, map[string][]string{"mnx": {"MNXM100"}}, nil)
	target.Model.Species = append(target.Model.Species, &sbml.Species{
		ID:          "host_glc",
		Compartment: "cytosol",
		Annotation:  a,
	})

	result, err := Merge(source, target, WithSkipOrphanRepair())
	require.NoError(t, err)
	assert.Contains(t, result.Species["MNXM100__64__MNXC3"], "host_glc")

	// source annotation wins on the matched target species
	matched := target.Model.SpeciesByID("host_glc")
	require.NotNil(t, matched)
	assert.Equal(t, "AAAAAAAAAAAAAA-UHFFFAOYSA-N",
		annot.ReadScientific(matched.Annotation, nil).InChIKey)
	assert.Nil(t, target.Model.SpeciesByID("MNXM100__64__MNXC3"),
		"a matched species is not copied")
}

func TestMergeSpeciesIDCollision(t *testing.T) {
	source := sourcePathway(t)
	target := hostModel(t)

	// same id, different chemistry: the copy must be renamed, not merged
	a := annot.New(sbml.MetaID("clash"))
	annot.UpsertCrossRefs(a, annot.KindSpecies, map[string][]string{"mnx": {"MNXM999"}}, nil)
	target.Model.Species = append(target.Model.Species, &sbml.Species{
		ID:          "MNXM100__64__MNXC3",
		Compartment: "cytosol",
		Annotation:  a,
	})

	result, err := Merge(source, target, WithSkipOrphanRepair())
	require.NoError(t, err)

	renamed := target.Model.SpeciesByID("host_model__MNXM100__64__MNXC3")
	require.NotNil(t, renamed, "colliding species id gains the target model prefix")
	assert.EqualValues(t, map[string]float64{"host_model__MNXM100__64__MNXC3": 1.0},
		result.Species["MNXM100__64__MNXC3"])

	// copied reactions follow the renamed species
	rp2 := target.Model.ReactionByID("RP2")
	require.NotNil(t, rp2)
	require.Len(t, rp2.Reactants, 1)
	assert.Equal(t, "host_model__MNXM100__64__MNXC3", rp2.Reactants[0].Species)
}

func TestMergeStructuralError(t *testing.T) {
	source := sourcePathway(t)
	// break the source: a species in a compartment nobody knows
	source.Model.Species[0].Compartment = "missing_compartment"
	source.Model.Compartments = nil

	_, err := Merge(source, hostModel(t), WithSkipOrphanRepair())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestMergeCompartmentFallbackByID(t *testing.T) {
	source := sourcePathway(t)
	// annotation-free compartment is skipped; the identical target id catches it
	source.Model.Compartments[0].Annotation = nil
	target := sbml.NewGenericModel("host", "host_model", map[string][]string{"mnx": {"MNXC3"}}, "MNXC3")

	_, err := Merge(source, target, WithSkipOrphanRepair())
	require.NoError(t, err)
	copied := target.Model.SpeciesByID("MNXM100__64__MNXC3")
	require.NotNil(t, copied)
	assert.Equal(t, "MNXC3", copied.Compartment)
}

func TestMergeCompartmentSameIDDifferentAnnotation(t *testing.T) {
	source := sourcePathway(t)
	// cross-references disagree, the identical id still maps without a copy
	target := sbml.NewGenericModel("host", "host_model", map[string][]string{"mnx": {"MNXC2"}}, "MNXC3")

	count := len(target.Model.Compartments)
	_, err := Merge(source, target, WithSkipOrphanRepair())
	require.NoError(t, err)

	assert.Len(t, target.Model.Compartments, count)
	assert.Nil(t, target.Model.Compartment("MNXC3_sourceModel"))
	copied := target.Model.SpeciesByID("MNXM100__64__MNXC3")
	require.NotNil(t, copied)
	assert.Equal(t, "MNXC3", copied.Compartment)
}

func TestMergeCopiesFBCObjects(t *testing.T) {
	source := sourcePathway(t)
	_, err := sbml.SetObjective(source.Model, "obj_RP1", []string{"RP1"}, []float64{1}, true)
	require.NoError(t, err)
	sbml.AddGeneProduct(source.Model, "1")

	target := hostModel(t)
	_, err = Merge(source, target, WithSkipOrphanRepair())
	require.NoError(t, err)

	assert.NotNil(t, target.Model.ObjectiveByID("obj_RP1"))
	assert.NotNil(t, target.Model.GeneProductByID("RP1_gene"))
	assert.Equal(t, "obj_RP1", target.Model.ActiveObjective)
}
