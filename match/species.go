package match

import (
	"strings"

	"go.uber.org/zap"

	"github.com/brsynth/sbmlmerge/annot"
	"github.com/brsynth/sbmlmerge/sbml"
)

// speciesProfile caches the annotation material a species is scored on.
type speciesProfile struct {
	compartment string
	xref        map[string][]string
	inchikey    string
}

func profileSpecies(s *sbml.Species, logger *zap.Logger) speciesProfile {
	p := speciesProfile{compartment: s.Compartment}
	if s.Annotation == nil {
		p.xref = map[string][]string{}
		return p
	}
	p.xref = annot.CrossRefs(s.Annotation)
	sci := annot.ReadScientific(s.Annotation, logger)
	p.inchikey = sci.InChIKey
	if p.inchikey == "" {
		if keys := p.xref["inchikey"]; len(keys) > 0 {
			if len(keys) > 1 {
				logger.Warn("several cross-reference inchikeys, using the first",
					zap.String("species", s.ID),
					zap.Strings("inchikeys", keys))
			}
			p.inchikey = keys[0]
		}
	}
	return p
}

// scoreSpecies compares two species profiles: 0.4 for cross-reference
// overlap, then up to 0.6 for InChIKey layer agreement. Later layers only
// count once every earlier layer matched.
func scoreSpecies(src, tgt speciesProfile) float64 {
	score := 0.0
	if annot.SameCrossRef(src.xref, tgt.xref) {
		score += 0.4
	}
	if src.inchikey == "" || tgt.inchikey == "" {
		return score
	}
	a := strings.Split(src.inchikey, "-")
	b := strings.Split(tgt.inchikey, "-")
	for layer := 0; layer < 3 && layer < len(a) && layer < len(b); layer++ {
		if a[layer] != b[layer] {
			break
		}
		score += 0.2
	}
	return score
}

// MatchSpecies scores every source species against every target species
// sharing a compartment under compMap (source compartment id to target
// compartment id; unmapped compartments correspond by identical id) and
// resolves the matrix to an assignment. The result maps each source species
// id to its assigned target ids with scores; an unmatched source species
// keeps an empty inner map and is logged.
func MatchSpecies(compMap map[string]string, source, target *sbml.Model, logger *zap.Logger) map[string]map[string]float64 {
	if logger == nil {
		logger = zap.NewNop()
	}

	sourceIDs := make([]string, 0, len(source.Species))
	sourceProfiles := make(map[string]speciesProfile, len(source.Species))
	for _, s := range source.Species {
		sourceIDs = append(sourceIDs, s.ID)
		sourceProfiles[s.ID] = profileSpecies(s, logger)
	}
	targetIDs := make([]string, 0, len(target.Species))
	targetProfiles := make(map[string]speciesProfile, len(target.Species))
	for _, s := range target.Species {
		targetIDs = append(targetIDs, s.ID)
		targetProfiles[s.ID] = profileSpecies(s, logger)
	}

	// Rows are target species, columns source species: the resolver assigns
	// each source its best targets.
	m := Build(targetIDs, sourceIDs, func(row, col string) (float64, bool) {
		src, tgt := sourceProfiles[col], targetProfiles[row]
		want := compMap[src.compartment]
		if want == "" {
			want = src.compartment
		}
		if want != tgt.compartment {
			return 0, false
		}
		v := scoreSpecies(src, tgt)
		return v, v > 0
	})

	scores := m.Clone()
	assigned := Resolve(m, logger)

	out := make(map[string]map[string]float64, len(sourceIDs))
	for _, id := range sourceIDs {
		out[id] = map[string]float64{}
		for _, tgt := range assigned[id] {
			out[id][tgt] = scores.At(tgt, id)
		}
		if len(out[id]) == 0 {
			logger.Warn("species not matched in target model", zap.String("species", id))
		}
	}
	return out
}
