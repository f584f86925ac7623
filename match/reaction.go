package match

import (
	"go.uber.org/zap"

	"github.com/brsynth/sbmlmerge/sbml"
)

// ReactionMatch is the resolved assignment for one source reaction.
type ReactionMatch struct {
	Targets []string
	Score   float64
	Found   bool
}

// firstCandidate picks the deterministic first entry of a candidate set:
// highest score, ties broken by lexicographically smallest id.
func firstCandidate(candidates map[string]float64) (string, float64, bool) {
	best := ""
	bestScore := -1.0
	for id, score := range candidates {
		if score > bestScore || (score == bestScore && id < best) {
			best, bestScore = id, score
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestScore, true
}

// translate maps a source species id through the species assignment. Missing
// or empty entries map the id to itself with score 1.
func translate(speciesMatch map[string]map[string]float64, id string) (string, float64) {
	if cand, ok := speciesMatch[id]; ok {
		if tgt, score, ok := firstCandidate(cand); ok {
			return tgt, score
		}
	}
	return id, 1.0
}

// CompareReaction reports whether the target reaction contains the source
// reaction: every translated source reactant must appear among the target
// reactants and every translated source product among the target products.
// The target may carry extra species (cofactors); the source may not. The
// returned score is the mean translation score over all source species.
func CompareReaction(speciesMatch map[string]map[string]float64, source, target *sbml.Reaction) (float64, bool) {
	var scores []float64
	same := true
	for _, side := range []struct {
		src, tgt []sbml.SpeciesRef
	}{
		{source.Reactants, target.Reactants},
		{source.Products, target.Products},
	} {
		if len(side.tgt) < len(side.src) {
			same = false
		}
		tgtIDs := make(map[string]bool, len(side.tgt))
		for _, ref := range side.tgt {
			tgtIDs[ref.Species] = true
		}
		for _, ref := range side.src {
			id, score := translate(speciesMatch, ref.Species)
			scores = append(scores, score)
			if !tgtIDs[id] {
				same = false
			}
		}
	}
	return mean(scores), same
}

// ContainedReaction scores the source reaction against the target with
// one-to-one consumption: a target species satisfies at most one source
// species per side. Unmatched source species score 0 and clear the
// all-matched flag.
func ContainedReaction(speciesMatch map[string]map[string]float64, source, target *sbml.Reaction) (float64, bool) {
	var scores []float64
	found := true
	for _, side := range []struct {
		src, tgt []sbml.SpeciesRef
	}{
		{source.Reactants, target.Reactants},
		{source.Products, target.Products},
	} {
		consumed := make([]bool, len(side.tgt))
		for _, ref := range side.src {
			score, ok := consumeBest(speciesMatch, ref.Species, side.tgt, consumed)
			scores = append(scores, score)
			if !ok {
				found = false
			}
		}
	}
	return mean(scores), found
}

// consumeBest finds the best unconsumed target ref a source species can
// translate to, marks it consumed and returns its score.
func consumeBest(speciesMatch map[string]map[string]float64, src string, targets []sbml.SpeciesRef, consumed []bool) (float64, bool) {
	candidates := speciesMatch[src]
	if len(candidates) == 0 {
		candidates = map[string]float64{src: 1.0}
	}
	bestIdx := -1
	bestScore := 0.0
	bestID := ""
	for i, ref := range targets {
		if consumed[i] {
			continue
		}
		score, ok := candidates[ref.Species]
		if !ok {
			continue
		}
		if bestIdx == -1 || score > bestScore || (score == bestScore && ref.Species < bestID) {
			bestIdx, bestScore, bestID = i, score, ref.Species
		}
	}
	if bestIdx == -1 {
		return 0, false
	}
	consumed[bestIdx] = true
	return bestScore, true
}

// MatchReactions scores every source reaction against every target reaction
// by one-to-one species consumption, resolves the matrix and returns source
// reaction id to its assignment.
func MatchReactions(speciesMatch map[string]map[string]float64, source, target *sbml.Model, logger *zap.Logger) map[string]ReactionMatch {
	if logger == nil {
		logger = zap.NewNop()
	}

	sourceIDs := make([]string, 0, len(source.Reactions))
	for _, r := range source.Reactions {
		sourceIDs = append(sourceIDs, r.ID)
	}
	targetIDs := make([]string, 0, len(target.Reactions))
	for _, r := range target.Reactions {
		targetIDs = append(targetIDs, r.ID)
	}

	found := make(map[[2]string]bool, len(sourceIDs)*len(targetIDs))
	m := Build(targetIDs, sourceIDs, func(row, col string) (float64, bool) {
		src := source.ReactionByID(col)
		tgt := target.ReactionByID(row)
		score, ok := ContainedReaction(speciesMatch, src, tgt)
		found[[2]string{col, row}] = ok
		return score, ok
	})

	scores := m.Clone()
	assigned := Resolve(m, logger)

	out := make(map[string]ReactionMatch, len(sourceIDs))
	for _, id := range sourceIDs {
		targets := assigned[id]
		rm := ReactionMatch{Targets: targets}
		if len(targets) > 0 {
			rm.Score = scores.At(targets[0], id)
			rm.Found = found[[2]string{id, targets[0]}]
		} else {
			logger.Warn("reaction not matched in target model", zap.String("reaction", id))
		}
		out[id] = rm
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
