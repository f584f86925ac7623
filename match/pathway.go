package match

import (
	"sort"

	"go.uber.org/zap"

	"github.com/brsynth/sbmlmerge/annot"
	"github.com/brsynth/sbmlmerge/sbml"
)

// StepMatch records how one reference pathway step matched the candidate.
type StepMatch struct {
	Found         bool
	CandidateStep string
	Reactants     map[string]bool
	Products      map[string]bool
}

// PathwayMatch is the per-step table ComparePathways builds.
type PathwayMatch struct {
	Steps            map[string]*StepMatch
	CandidateModelID string
	ReferenceModelID string
}

// ComparePathways checks whether the candidate document realizes the
// reference pathway. Pathways must be the same length. Each reference step
// first tries a reaction-level match by cross-reference overlap; failing
// that, every reference reactant is matched against the candidate step's
// reactants and every reference product against its products, by
// cross-reference overlap then scientific metadata equality. The comparison
// is asymmetric: the candidate may carry species the reference lacks. Returns
// true with the full table only when every step was found.
func ComparePathways(candidate, reference *sbml.Document, pathwayID string, logger *zap.Logger) (bool, *PathwayMatch) {
	if logger == nil {
		logger = zap.NewNop()
	}
	refSteps := pathwayMembers(reference, pathwayID)
	candSteps := pathwayMembers(candidate, pathwayID)
	if len(refSteps) != len(candSteps) {
		logger.Warn("pathways are not the same length",
			zap.Int("reference", len(refSteps)),
			zap.Int("candidate", len(candSteps)))
		return false, nil
	}

	match := &PathwayMatch{
		Steps:            map[string]*StepMatch{},
		CandidateModelID: candidate.Model.ID,
		ReferenceModelID: reference.Model.ID,
	}
	for _, id := range refSteps {
		sm := &StepMatch{Reactants: map[string]bool{}, Products: map[string]bool{}}
		r := reference.Model.ReactionByID(id)
		if r != nil {
			for _, ref := range r.Reactants {
				sm.Reactants[ref.Species] = false
			}
			for _, ref := range r.Products {
				sm.Products[ref.Species] = false
			}
		}
		match.Steps[id] = sm
	}

	// Reaction-level pass.
	for _, refID := range refSteps {
		refXref := reactionXref(reference.Model, refID)
		for _, candID := range candSteps {
			if annot.SameCrossRef(refXref, reactionXref(candidate.Model, candID)) {
				match.Steps[refID].Found = true
				match.Steps[refID].CandidateStep = candID
				break
			}
		}
	}

	// Species-level pass, also run for already-found steps to fill the
	// per-species table.
	for _, refID := range refSteps {
		sm := match.Steps[refID]
		for _, candID := range candSteps {
			matchSide(reference.Model, candidate.Model, refID, candID, true, sm.Reactants, logger)
			matchSide(reference.Model, candidate.Model, refID, candID, false, sm.Products, logger)
			if len(sm.Reactants) > 0 && len(sm.Products) > 0 &&
				allTrue(sm.Reactants) && allTrue(sm.Products) {
				sm.Found = true
				sm.CandidateStep = candID
				break
			}
		}
	}

	for _, sm := range match.Steps {
		if !sm.Found {
			return false, nil
		}
	}
	return true, match
}

// matchSide marks every reference species on one reaction side that any
// candidate species on the same side matches.
func matchSide(reference, candidate *sbml.Model, refReaction, candReaction string, reactants bool, found map[string]bool, logger *zap.Logger) {
	refSide := reactionSide(reference, refReaction, reactants)
	candSide := reactionSide(candidate, candReaction, reactants)
	for _, refSpecies := range refSide {
		if found[refSpecies] {
			continue
		}
		for _, candSpecies := range candSide {
			if sameSpeciesAnnotation(reference.SpeciesByID(refSpecies), candidate.SpeciesByID(candSpecies), logger) {
				found[refSpecies] = true
				break
			}
		}
	}
}

func sameSpeciesAnnotation(a, b *sbml.Species, logger *zap.Logger) bool {
	if a == nil || b == nil || a.Annotation == nil || b.Annotation == nil {
		return false
	}
	if annot.SameCrossRef(annot.CrossRefs(a.Annotation), annot.CrossRefs(b.Annotation)) {
		return true
	}
	return annot.SameScientific(
		annot.ReadScientific(a.Annotation, logger),
		annot.ReadScientific(b.Annotation, logger))
}

func reactionSide(m *sbml.Model, reactionID string, reactants bool) []string {
	r := m.ReactionByID(reactionID)
	if r == nil {
		return nil
	}
	refs := r.Products
	if reactants {
		refs = r.Reactants
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Species)
	}
	return out
}

func reactionXref(m *sbml.Model, id string) map[string][]string {
	r := m.ReactionByID(id)
	if r == nil || r.Annotation == nil {
		return map[string][]string{}
	}
	return annot.CrossRefs(r.Annotation)
}

func pathwayMembers(doc *sbml.Document, pathwayID string) []string {
	g := doc.Model.GroupByID(pathwayID)
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.IDRef)
	}
	return out
}

func allTrue(m map[string]bool) bool {
	for _, v := range m {
		if !v {
			return false
		}
	}
	return true
}

// SamePathway reports pathway equality: identical sorted member id sets and
// identical normalized pathway maps, where every reactant and product keys by
// the first available of InChIKey, InChI or SMILES from its scientific
// metadata, falling back to the species id.
func SamePathway(a, b *sbml.Document, pathwayID string, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	aIDs := append([]string(nil), pathwayMembers(a, pathwayID)...)
	bIDs := append([]string(nil), pathwayMembers(b, pathwayID)...)
	sort.Strings(aIDs)
	sort.Strings(bIDs)
	if len(aIDs) != len(bIDs) {
		return false
	}
	for i := range aIDs {
		if aIDs[i] != bIDs[i] {
			return false
		}
	}
	return samePathwayShape(normalizePathway(a, pathwayID, logger), normalizePathway(b, pathwayID, logger))
}

type normalizedStep struct {
	reactants map[string]float64
	products  map[string]float64
}

// normalizePathway keys every reaction side by structure identifiers so two
// pathways compare equal regardless of species ids.
func normalizePathway(doc *sbml.Document, pathwayID string, logger *zap.Logger) map[string]normalizedStep {
	out := map[string]normalizedStep{}
	for _, id := range pathwayMembers(doc, pathwayID) {
		r := doc.Model.ReactionByID(id)
		if r == nil {
			continue
		}
		step := normalizedStep{reactants: map[string]float64{}, products: map[string]float64{}}
		for _, ref := range r.Reactants {
			step.reactants[speciesKey(doc.Model, ref.Species, logger)] = ref.Stoichiometry
		}
		for _, ref := range r.Products {
			step.products[speciesKey(doc.Model, ref.Species, logger)] = ref.Stoichiometry
		}
		out[id] = step
	}
	return out
}

func speciesKey(m *sbml.Model, id string, logger *zap.Logger) string {
	s := m.SpeciesByID(id)
	if s == nil || s.Annotation == nil {
		return id
	}
	sci := annot.ReadScientific(s.Annotation, logger)
	for _, key := range []string{sci.InChIKey, sci.InChI, sci.SMILES} {
		if key != "" {
			return key
		}
	}
	return id
}

func samePathwayShape(a, b map[string]normalizedStep) bool {
	if len(a) != len(b) {
		return false
	}
	for id, as := range a {
		bs, ok := b[id]
		if !ok || !sameStoich(as.reactants, bs.reactants) || !sameStoich(as.products, bs.products) {
			return false
		}
	}
	return true
}

func sameStoich(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
