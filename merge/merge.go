package merge

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/brsynth/sbmlmerge/annot"
	"github.com/brsynth/sbmlmerge/match"
	"github.com/brsynth/sbmlmerge/sbml"
)

// ErrStructural marks a dangling compartment, species or parameter reference.
// The merge aborts without rollback; the target must be discarded.
var ErrStructural = errors.New("structural inconsistency")

// Result reports what the merge decided, for diagnostics.
type Result struct {
	// Species maps each source species id to its target assignment with
	// scores; synthetic entries created for copied species score 1.
	Species map[string]map[string]float64
	// Reactions maps each source reaction id to the target reaction it
	// matched or was created as.
	Reactions map[string]string

	SourceFingerprint uint64
	TargetFingerprint uint64
}

// Merge folds source into target in place. Stages run in a fixed order:
// package flags, unit definitions, compartments, parameters and fbc objects,
// species, reactions, groups, model rename, orphan repair. Recoverable
// conditions are logged and worked around; a structural inconsistency aborts
// with ErrStructural and leaves target partially mutated.
func Merge(source, target *sbml.Document, opts ...Option) (*Result, error) {
	opt := newOptions(opts...)
	logger := opt.Logger

	sourceFP, err := sbml.Fingerprint(source)
	if err != nil {
		return nil, err
	}

	target.FBC = true
	target.Groups = true
	source.FBC = true
	source.Groups = true

	mergeUnitDefinitions(source.Model, target.Model)
	logger.Debug("unit definitions merged")

	compMap := mergeCompartments(source.Model, target.Model, logger)
	logger.Debug("compartments reconciled", zap.Any("map", compMap))

	mergeParameters(source.Model, target.Model)
	mergeGeneProducts(source.Model, target.Model)
	mergeObjectives(source.Model, target.Model, logger)

	speciesMatch, err := mergeSpecies(source.Model, target.Model, compMap, opt)
	if err != nil {
		return nil, err
	}
	logger.Debug("species reconciled", zap.Int("assignments", len(speciesMatch)))

	reactionMap, err := mergeReactions(source.Model, target.Model, speciesMatch, opt)
	if err != nil {
		return nil, err
	}
	logger.Debug("reactions reconciled", zap.Int("assignments", len(reactionMap)))

	mergeGroups(source.Model, target.Model, speciesMatch, reactionMap, opt)

	sourceID, targetID := source.Model.ID, target.Model.ID
	target.Model.ID = targetID + "__" + sourceID
	target.Model.Name += " merged with " + sourceID
	target.Model.MetaID = sbml.MetaID(target.Model.ID)

	if !opt.SkipOrphanRepair {
		if err := RepairOrphans(target, opts...); err != nil {
			return nil, err
		}
	}

	targetFP, err := sbml.Fingerprint(target)
	if err != nil {
		return nil, err
	}
	return &Result{
		Species:           speciesMatch,
		Reactions:         reactionMap,
		SourceFingerprint: sourceFP,
		TargetFingerprint: targetFP,
	}, nil
}

// mergeUnitDefinitions copies source unit definitions absent from target.
// Identity is by id only; the first writer wins.
func mergeUnitDefinitions(source, target *sbml.Model) {
	for _, def := range source.UnitDefinitions {
		if target.UnitDefinitionByID(def.ID) != nil {
			continue
		}
		clone := *def
		clone.Units = append([]sbml.Unit(nil), def.Units...)
		target.UnitDefinitions = append(target.UnitDefinitions, &clone)
	}
}

// mergeCompartments maps every annotated source compartment to a target
// compartment: cross-reference overlap first, identical id second, otherwise
// a copy is created.
func mergeCompartments(source, target *sbml.Model, logger *zap.Logger) map[string]string {
	compMap := map[string]string{}
	for _, src := range source.Compartments {
		if src.Annotation == nil {
			logger.Warn("compartment carries no annotation, skipping",
				zap.String("compartment", src.ID))
			continue
		}
		srcXref := annot.CrossRefs(src.Annotation)
		matched := false
		for _, tgt := range target.Compartments {
			if tgt.Annotation != nil && annot.SameCrossRef(srcXref, annot.CrossRefs(tgt.Annotation)) {
				compMap[src.ID] = tgt.ID
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if target.Compartment(src.ID) != nil {
			compMap[src.ID] = src.ID
			continue
		}
		// the identical-id fallback above guarantees the copied id is fresh
		clone := *src
		clone.Annotation = src.Annotation.Clone()
		target.Compartments = append(target.Compartments, &clone)
		compMap[src.ID] = clone.ID
	}
	return compMap
}

func mergeParameters(source, target *sbml.Model) {
	for _, p := range source.Parameters {
		if target.ParameterByID(p.ID) != nil {
			continue
		}
		clone := *p
		target.Parameters = append(target.Parameters, &clone)
	}
}

func mergeGeneProducts(source, target *sbml.Model) {
	for _, gp := range source.GeneProducts {
		if target.GeneProductByID(gp.ID) != nil {
			continue
		}
		clone := *gp
		target.GeneProducts = append(target.GeneProducts, &clone)
	}
}

// mergeObjectives copies source objectives absent from target, deduplicating
// by id and by referenced reaction set.
func mergeObjectives(source, target *sbml.Model, logger *zap.Logger) {
	for _, obj := range source.Objectives {
		if target.ObjectiveByID(obj.ID) != nil {
			logger.Warn("objective id already present, skipping", zap.String("objective", obj.ID))
			continue
		}
		if sameObjectiveExists(target, obj) {
			logger.Warn("objective with the same reaction set already present, skipping",
				zap.String("objective", obj.ID))
			continue
		}
		clone := *obj
		if obj.Annotation != nil {
			clone.Annotation = obj.Annotation.Clone()
		}
		clone.FluxObjectives = nil
		for _, fo := range obj.FluxObjectives {
			foClone := *fo
			if fo.Annotation != nil {
				foClone.Annotation = fo.Annotation.Clone()
			}
			clone.FluxObjectives = append(clone.FluxObjectives, &foClone)
		}
		target.Objectives = append(target.Objectives, &clone)
	}
	if target.ActiveObjective == "" {
		target.ActiveObjective = source.ActiveObjective
	}
}

func sameObjectiveExists(m *sbml.Model, obj *sbml.Objective) bool {
	want := map[string]bool{}
	for _, fo := range obj.FluxObjectives {
		want[fo.Reaction] = true
	}
	for _, existing := range m.Objectives {
		got := map[string]bool{}
		for _, fo := range existing.FluxObjectives {
			got[fo.Reaction] = true
		}
		if len(got) == len(want) {
			same := true
			for id := range want {
				if !got[id] {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

// mergeSpecies matches source species into target and copies the unmatched
// ones. Matched target species take the source annotation.
func mergeSpecies(source, target *sbml.Model, compMap map[string]string, opt Options) (map[string]map[string]float64, error) {
	logger := opt.Logger
	targetModelID := target.ID
	assignment := match.MatchSpecies(compMap, source, target, logger)

	for _, src := range source.Species {
		candidates := assignment[src.ID]
		if len(candidates) > 0 {
			tgtID := pick(src.ID, candidates, opt)
			if tgtID == src.ID {
				logger.Warn("species matched its own id", zap.String("species", src.ID))
			}
			if tgt := target.SpeciesByID(tgtID); tgt != nil && src.Annotation != nil {
				tgt.Annotation = src.Annotation.Clone()
			}
			continue
		}

		compartment, err := mapCompartment(src.Compartment, compMap, target)
		if err != nil {
			return nil, fmt.Errorf("species %q: %w", src.ID, err)
		}
		clone := *src
		clone.Compartment = compartment
		if src.Annotation != nil {
			clone.Annotation = src.Annotation.Clone()
		}
		if target.SpeciesByID(clone.ID) != nil {
			clone.ID = targetModelID + "__" + src.ID
			clone.MetaID = sbml.MetaID(clone.ID)
			assignment[src.ID] = map[string]float64{clone.ID: 1.0}
		}
		target.Species = append(target.Species, &clone)
	}
	return assignment, nil
}

func mapCompartment(id string, compMap map[string]string, target *sbml.Model) (string, error) {
	if mapped, ok := compMap[id]; ok {
		return mapped, nil
	}
	if target.Compartment(id) != nil {
		return id, nil
	}
	return "", fmt.Errorf("compartment %q: %w", id, ErrStructural)
}

// mergeReactions matches source reactions against the pre-merge target
// reactions, copying the unmatched ones with species refs rewritten through
// the assignment. Matched target reactions keep their own annotation.
func mergeReactions(source, target *sbml.Model, speciesMatch map[string]map[string]float64, opt Options) (map[string]string, error) {
	logger := opt.Logger
	existing := append([]*sbml.Reaction(nil), target.Reactions...)

	reactionMap := map[string]string{}
	for _, src := range source.Reactions {
		matched := false
		for _, tgt := range existing {
			if _, same := match.CompareReaction(speciesMatch, src, tgt); same {
				reactionMap[src.ID] = tgt.ID
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		clone := *src
		if src.Annotation != nil {
			clone.Annotation = src.Annotation.Clone()
		}
		clone.Reactants = nil
		clone.Products = nil
		for _, ref := range src.Reactants {
			rewritten, err := rewriteRef(ref, speciesMatch, target, opt)
			if err != nil {
				return nil, fmt.Errorf("reaction %q: %w", src.ID, err)
			}
			clone.Reactants = append(clone.Reactants, rewritten)
		}
		for _, ref := range src.Products {
			rewritten, err := rewriteRef(ref, speciesMatch, target, opt)
			if err != nil {
				return nil, fmt.Errorf("reaction %q: %w", src.ID, err)
			}
			clone.Products = append(clone.Products, rewritten)
		}
		target.Reactions = append(target.Reactions, &clone)
		reactionMap[src.ID] = clone.ID
		logger.Debug("reaction copied into target", zap.String("reaction", clone.ID))
	}
	return reactionMap, nil
}

func rewriteRef(ref sbml.SpeciesRef, speciesMatch map[string]map[string]float64, target *sbml.Model, opt Options) (sbml.SpeciesRef, error) {
	id := ref.Species
	if candidates := speciesMatch[id]; len(candidates) > 0 {
		id = pick(id, candidates, opt)
	}
	if target.SpeciesByID(id) == nil {
		return sbml.SpeciesRef{}, fmt.Errorf("species %q: %w", id, ErrStructural)
	}
	out := ref
	out.Species = id
	return out, nil
}

// mergeGroups rewrites source group members through the reaction map then the
// species assignment, copying whole groups missing from target and appending
// missing members otherwise.
func mergeGroups(source, target *sbml.Model, speciesMatch map[string]map[string]float64, reactionMap map[string]string, opt Options) {
	for _, src := range source.GroupList {
		members := make([]sbml.Member, 0, len(src.Members))
		for _, m := range src.Members {
			id := m.IDRef
			if mapped, ok := reactionMap[id]; ok {
				id = mapped
			} else if candidates := speciesMatch[id]; len(candidates) > 0 {
				id = pick(id, candidates, opt)
			}
			members = append(members, sbml.Member{IDRef: id})
		}

		tgt := target.GroupByID(src.ID)
		if tgt == nil {
			clone := *src
			if src.Annotation != nil {
				clone.Annotation = src.Annotation.Clone()
			}
			clone.Members = members
			target.GroupList = append(target.GroupList, &clone)
			continue
		}
		present := map[string]bool{}
		for _, m := range tgt.Members {
			present[m.IDRef] = true
		}
		for _, m := range members {
			if !present[m.IDRef] {
				tgt.Members = append(tgt.Members, m)
				present[m.IDRef] = true
			}
		}
	}
}

// pick applies the tie-break to a candidate map, best score first, score ties
// in id order.
func pick(id string, candidates map[string]float64, opt Options) string {
	list := make([]string, 0, len(candidates))
	for c := range candidates {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if candidates[list[i]] != candidates[list[j]] {
			return candidates[list[i]] > candidates[list[j]]
		}
		return list[i] < list[j]
	})
	if len(list) == 1 {
		return list[0]
	}
	return opt.TieBreak(id, list, opt.Logger)
}
