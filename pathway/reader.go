package pathway

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brsynth/sbmlmerge/annot"
	"github.com/brsynth/sbmlmerge/sbml"
)

// MemberIDs returns the idRefs of a pathway group in member order.
func MemberIDs(doc *sbml.Document, pathwayID string) ([]string, error) {
	g := doc.Model.GroupByID(pathwayID)
	if g == nil {
		return nil, fmt.Errorf("group %q: %w", pathwayID, ErrNoPathway)
	}
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.IDRef)
	}
	return out, nil
}

// StepStoichiometry holds one reaction's species with coefficients.
type StepStoichiometry struct {
	Reactants map[string]float64
	Products  map[string]float64
}

// Stoichiometry returns reaction id to its reactant and product coefficients
// for every pathway member.
func Stoichiometry(doc *sbml.Document, pathwayID string) (map[string]StepStoichiometry, error) {
	members, err := MemberIDs(doc, pathwayID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]StepStoichiometry, len(members))
	for _, id := range members {
		step := StepStoichiometry{Reactants: map[string]float64{}, Products: map[string]float64{}}
		if r := doc.Model.ReactionByID(id); r != nil {
			for _, ref := range r.Reactants {
				step.Reactants[ref.Species] = ref.Stoichiometry
			}
			for _, ref := range r.Products {
				step.Products[ref.Species] = ref.Stoichiometry
			}
		}
		out[id] = step
	}
	return out, nil
}

// UniqueSpecies returns the deduplicated species ids of a pathway, reactants
// before products per reaction, in first-seen order.
func UniqueSpecies(doc *sbml.Document, pathwayID string) ([]string, error) {
	members, err := MemberIDs(doc, pathwayID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range members {
		r := doc.Model.ReactionByID(id)
		if r == nil {
			continue
		}
		for _, ref := range r.Reactants {
			add(ref.Species)
		}
		for _, ref := range r.Products {
			add(ref.Species)
		}
	}
	return out, nil
}

// Rules returns rule id to reaction SMILES for every pathway member carrying
// both. The SMILES arrow survives XML escaping, so '&gt;' is restored.
func Rules(doc *sbml.Document, pathwayID string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	members, err := MemberIDs(doc, pathwayID)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, id := range members {
		r := doc.Model.ReactionByID(id)
		if r == nil || r.Annotation == nil {
			continue
		}
		sci := annot.ReadScientific(r.Annotation, logger)
		if sci.RuleID != "" && sci.SMILES != "" {
			out[sci.RuleID] = strings.ReplaceAll(sci.SMILES, "&gt;", ">")
		}
	}
	return out, nil
}

// RuleScore returns the mean rule score over the pathway members, or -1 with
// a logged error when no member carries one.
func RuleScore(doc *sbml.Document, pathwayID string, logger *zap.Logger) (float64, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	members, err := MemberIDs(doc, pathwayID)
	if err != nil {
		return -1, err
	}
	sum, n := 0.0, 0
	for _, id := range members {
		r := doc.Model.ReactionByID(id)
		if r == nil || r.Annotation == nil {
			continue
		}
		sci := annot.ReadScientific(r.Annotation, logger)
		if sci.RuleScore != nil {
			sum += *sci.RuleScore
			n++
		}
	}
	if n == 0 {
		logger.Error("no pathway member carries a rule score", zap.String("pathway", pathwayID))
		return -1, nil
	}
	return sum / float64(n), nil
}

// EntityDetail pairs the scientific metadata of one entity with its
// cross-reference table.
type EntityDetail struct {
	Scientific annot.Scientific    `json:"brsynth"`
	CrossRefs  map[string][]string `json:"miriam"`
}

// PathwaySummary is the JSON-ready digest of a pathway: group metadata plus
// the full annotation tables of every member reaction and species.
type PathwaySummary struct {
	Pathway   annot.Scientific        `json:"pathway"`
	Reactions map[string]EntityDetail `json:"reactions"`
	Species   map[string]EntityDetail `json:"species"`
}

// Summary collects the pathway group's scientific metadata and the
// per-reaction and per-species annotation tables.
func Summary(doc *sbml.Document, pathwayID string, logger *zap.Logger) (*PathwaySummary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	members, err := MemberIDs(doc, pathwayID)
	if err != nil {
		return nil, err
	}
	out := &PathwaySummary{
		Reactions: map[string]EntityDetail{},
		Species:   map[string]EntityDetail{},
	}
	if g := doc.Model.GroupByID(pathwayID); g.Annotation != nil {
		out.Pathway = annot.ReadScientific(g.Annotation, logger)
	}
	for _, id := range members {
		r := doc.Model.ReactionByID(id)
		if r == nil {
			continue
		}
		out.Reactions[id] = entityDetail(r.Annotation, logger)
	}
	species, err := UniqueSpecies(doc, pathwayID)
	if err != nil {
		return nil, err
	}
	for _, id := range species {
		s := doc.Model.SpeciesByID(id)
		if s == nil {
			continue
		}
		out.Species[id] = entityDetail(s.Annotation, logger)
	}
	return out, nil
}

func entityDetail(a *annot.Annotation, logger *zap.Logger) EntityDetail {
	d := EntityDetail{CrossRefs: map[string][]string{}}
	if a != nil {
		d.Scientific = annot.ReadScientific(a, logger)
		d.CrossRefs = annot.CrossRefs(a)
	}
	return d
}

// StepRecord is one pathway step in retrosynthesis table form.
type StepRecord struct {
	ReactionID   string             `json:"reaction_id"`
	ReactionRule string             `json:"reaction_rule"`
	RuleID       string             `json:"rule_id"`
	RuleScore    *float64           `json:"rule_score"`
	RuleOriReac  string             `json:"rule_ori_reac"`
	Left         map[string]float64 `json:"left"`
	Right        map[string]float64 `json:"right"`
	PathID       *int               `json:"path_id"`
	Step         *int               `json:"step"`
	SubStep      *int               `json:"sub_step"`
}

// StepTable returns one record per pathway member, keyed by reaction id, with
// the rule provenance and both reaction sides.
func StepTable(doc *sbml.Document, pathwayID string, logger *zap.Logger) (map[string]StepRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	members, err := MemberIDs(doc, pathwayID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]StepRecord, len(members))
	for _, id := range members {
		r := doc.Model.ReactionByID(id)
		if r == nil {
			continue
		}
		rec := StepRecord{
			ReactionID: id,
			Left:       map[string]float64{},
			Right:      map[string]float64{},
		}
		if r.Annotation != nil {
			sci := annot.ReadScientific(r.Annotation, logger)
			rec.ReactionRule = sci.SMILES
			rec.RuleID = sci.RuleID
			rec.RuleScore = sci.RuleScore
			rec.RuleOriReac = sci.RuleOriReac
			rec.PathID = sci.PathID
			rec.Step = sci.StepID
			rec.SubStep = sci.SubStepID
		}
		for _, ref := range r.Reactants {
			rec.Left[ref.Species] = ref.Stoichiometry
		}
		for _, ref := range r.Products {
			rec.Right[ref.Species] = ref.Stoichiometry
		}
		out[id] = rec
	}
	return out, nil
}
