package annot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossRefsRead(t *testing.T) {
	tests := []struct {
		description string
		uris        []string
		expect      map[string][]string
	}{
		{
			description: "database truncates at the first dot",
			uris: []string{
				"http://identifiers.org/metanetx.chemical/MNXM89557",
				"http://identifiers.org/bigg.metabolite/glc__D",
			},
			expect: map[string][]string{
				"metanetx": {"MNXM89557"},
				"bigg":     {"glc__D"},
			},
		},
		{
			description: "kegg compound and drug collapse into one table",
			uris: []string{
				"http://identifiers.org/kegg.compound/C00031",
				"http://identifiers.org/kegg.drug/D00018",
			},
			expect: map[string][]string{
				"kegg": {"C00031", "D00018"},
			},
		},
		{
			description: "prefixed ids keep the part after the colon",
			uris: []string{
				"http://identifiers.org/chebi/CHEBI:17234",
			},
			expect: map[string][]string{
				"chebi": {"17234"},
			},
		},
	}
	for _, test := range tests {
		a := New("meta")
		bag := a.bag(true)
		for _, uri := range test.uris {
			li := bag.CreateElement("rdf:li")
			li.CreateAttr("rdf:resource", uri)
		}
		assert.EqualValues(t, test.expect, CrossRefs(a), test.description)
	}
}

func TestUpsertCrossRefs(t *testing.T) {
	a := New("meta")
	UpsertCrossRefs(a, KindSpecies, map[string][]string{
		"mnx":   {"MNXM89557"},
		"chebi": {"17234"},
	}, nil)
	got := CrossRefs(a)
	assert.EqualValues(t, []string{"MNXM89557"}, got["metanetx"])
	assert.EqualValues(t, []string{"17234"}, got["chebi"])
	assert.True(t, strings.Contains(a.String(), "chebi/CHEBI:17234"))

	// a second upsert with overlapping entries adds only the new ones
	UpsertCrossRefs(a, KindSpecies, map[string][]string{
		"mnx":  {"MNXM89557", "MNXM1"},
		"kegg": {"C00031", "D00018"},
	}, nil)
	got = CrossRefs(a)
	assert.Len(t, got["metanetx"], 2)
	assert.EqualValues(t, []string{"C00031", "D00018"}, got["kegg"])
	assert.True(t, strings.Contains(a.String(), "kegg.compound/C00031"))
	assert.True(t, strings.Contains(a.String(), "kegg.drug/D00018"))
}

func TestUpsertCrossRefsUnknownDatabase(t *testing.T) {
	a := New("meta")
	UpsertCrossRefs(a, KindSpecies, map[string][]string{"nonsense": {"X1"}}, nil)
	assert.Empty(t, CrossRefs(a))
}

func TestScientificRoundTrip(t *testing.T) {
	a := New("meta")
	UpsertScientific(a, "smiles", Raw("[H]OC(=O)C([H])=O"))
	UpsertScientific(a, "inchikey", Raw("WGCNASOHLSPBMP-UHFFFAOYSA-N"))
	UpsertScientific(a, "dfG_prime_o", Value(-356.28, "kj_per_mol"))
	UpsertScientific(a, "rule_score", Value(0.5982, ""))
	UpsertScientific(a, "path_id", IntValue(1))
	UpsertScientific(a, "selenzyme", Table(map[string]float64{"P0A9P0": 76.5}, true))

	sci := ReadScientific(a, nil)
	assert.Equal(t, "[H]OC(=O)C([H])=O", sci.SMILES)
	assert.Equal(t, "WGCNASOHLSPBMP-UHFFFAOYSA-N", sci.InChIKey)
	require.NotNil(t, sci.DfGPrime0)
	require.NotNil(t, sci.DfGPrime0.Value)
	assert.Equal(t, -356.28, *sci.DfGPrime0.Value)
	assert.Equal(t, "kj_per_mol", sci.DfGPrime0.Units)
	require.NotNil(t, sci.RuleScore)
	assert.Equal(t, 0.5982, *sci.RuleScore)
	require.NotNil(t, sci.PathID)
	assert.Equal(t, 1, *sci.PathID)
	assert.Equal(t, 76.5, sci.Selenzyme["P0A9P0"])
}

func TestScientificReplacesSameKey(t *testing.T) {
	a := New("meta")
	UpsertScientific(a, "global_score", Value(0.1, ""))
	UpsertScientific(a, "global_score", Value(0.9, ""))
	sci := ReadScientific(a, nil)
	require.NotNil(t, sci.GlobalScore)
	assert.Equal(t, 0.9, *sci.GlobalScore)
	assert.Equal(t, 1, strings.Count(a.String(), "global_score"))
}

func TestScientificPassthrough(t *testing.T) {
	a := New("meta")
	UpsertScientific(a, "custom_tag", Raw("hello"))
	sci := ReadScientific(a, nil)
	assert.Equal(t, "hello", sci.Extra["custom_tag"])
}

func TestParseRejectsNonAnnotation(t *testing.T) {
	_, err := Parse("<species/>")
	assert.Error(t, err)

	a, err := Parse(`<annotation><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"/></annotation>`)
	require.NoError(t, err)
	assert.Empty(t, CrossRefs(a))
}

func TestSameCrossRef(t *testing.T) {
	tests := []struct {
		description string
		a, b        map[string][]string
		expect      bool
	}{
		{
			description: "shared id under a shared database",
			a:           map[string][]string{"metanetx": {"MNXM1"}},
			b:           map[string][]string{"metanetx": {"MNXM1", "MNXM2"}},
			expect:      true,
		},
		{
			description: "same database, disjoint ids",
			a:           map[string][]string{"metanetx": {"MNXM1"}},
			b:           map[string][]string{"metanetx": {"MNXM2"}},
			expect:      false,
		},
		{
			description: "same id under different databases",
			a:           map[string][]string{"metanetx": {"MNXM1"}},
			b:           map[string][]string{"bigg": {"MNXM1"}},
			expect:      false,
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.expect, SameCrossRef(test.a, test.b), test.description)
	}
}

func TestSameScientificIgnoresProvenance(t *testing.T) {
	one, two := 1, 2
	a := Scientific{InChIKey: "AAA-BBB-C", PathID: &one}
	b := Scientific{InChIKey: "AAA-BBB-C", PathID: &two}
	assert.True(t, SameScientific(a, b))

	c := Scientific{PathID: &one}
	d := Scientific{PathID: &one}
	assert.False(t, SameScientific(c, d))
}

func TestCloneIsIndependent(t *testing.T) {
	a := New("meta")
	UpsertScientific(a, "smiles", Raw("CCO"))
	b := a.Clone()
	UpsertScientific(b, "smiles", Raw("CCC"))
	assert.Equal(t, "CCO", ReadScientific(a, nil).SMILES)
	assert.Equal(t, "CCC", ReadScientific(b, nil).SMILES)
}
