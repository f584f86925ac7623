package sbml

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/brsynth/sbmlmerge/annot"
	"go.uber.org/zap"
)

// ErrLengthMismatch is returned when a multi-reaction objective is requested
// with mismatched reaction and coefficient lists. It is reported before any
// mutation of the model.
var ErrLengthMismatch = errors.New("reaction and coefficient lists differ in length")

// Step describes one retrosynthesis step used to create a reaction: species
// base ids with stoichiometry on each side plus rule provenance.
type Step struct {
	RuleID      string
	Left        map[string]float64
	Right       map[string]float64
	PathID      *int
	StepID      *int
	SubStepID   *int
	RuleScore   *float64
	RuleOriReac string
}

// NewGenericModel creates an L3V1 document with fbc v2 (strict) and groups v1
// enabled, the flux and thermodynamic unit definitions used across the
// toolchain, and a single annotated compartment.
func NewGenericModel(name, id string, compXref map[string][]string, compartmentID string) *Document {
	m := &Model{
		ID:             id,
		MetaID:         MetaID(id),
		Name:           name,
		TimeUnits:      "second",
		ExtentUnits:    "mole",
		SubstanceUnits: "mole",
		FBCStrict:      true,
	}
	doc := &Document{Level: 3, Version: 1, FBC: true, Groups: true, Model: m}
	AddUnitDefinition(m, "mmol_per_gDW_per_hr", []Unit{
		{Kind: "mole", Exponent: 1, Scale: -3, Multiplier: 1},
		{Kind: "gram", Exponent: 1, Scale: 0, Multiplier: 1},
		{Kind: "second", Exponent: 1, Scale: 0, Multiplier: 3600},
	})
	AddUnitDefinition(m, "kj_per_mol", []Unit{
		{Kind: "joule", Exponent: 1, Scale: 3, Multiplier: 1},
		{Kind: "mole", Exponent: -1, Scale: 1, Multiplier: 1},
	})
	compName := compartmentID + "_name"
	if names := compXref["name"]; len(names) > 0 {
		compName = names[0]
	}
	AddCompartment(m, compartmentID, compName, 1, compXref)
	return doc
}

// AddCompartment creates an annotated compartment (SBO 290, constant).
func AddCompartment(m *Model, id, name string, size float64, xref map[string][]string) *Compartment {
	metaID := MetaID(id)
	a := annot.New(metaID)
	annot.UpsertCrossRefs(a, annot.KindCompartment, xref, nil)
	c := &Compartment{
		ID:         id,
		MetaID:     metaID,
		Name:       name,
		Size:       size,
		Constant:   true,
		SBOTerm:    290,
		Annotation: a,
	}
	m.Compartments = append(m.Compartments, c)
	return c
}

// AddUnitDefinition creates a unit definition.
func AddUnitDefinition(m *Model, id string, units []Unit) *UnitDefinition {
	def := &UnitDefinition{ID: id, MetaID: MetaID(id), Units: units}
	m.UnitDefinitions = append(m.UnitDefinitions, def)
	return def
}

// EnsureFluxParameter returns the flux-bound parameter for value, creating it
// on first use. Parameters deduplicate by the generated id.
func EnsureFluxParameter(m *Model, value float64, units string, constant bool) *Parameter {
	id := FluxParamID(value)
	if p := m.ParameterByID(id); p != nil {
		return p
	}
	p := &Parameter{
		ID:       id,
		MetaID:   MetaID(id),
		Value:    value,
		Units:    units,
		Constant: constant,
		SBOTerm:  625,
	}
	m.Parameters = append(m.Parameters, p)
	return p
}

// AddSpecies creates a compartment-qualified species with default kinetics
// placeholders, its cross-references and structure annotations, and the given
// group memberships. Missing groups are logged, not created.
func AddSpecies(m *Model, id, compartmentID, name string, xref map[string][]string,
	inchi, inchikey, smiles, speciesGroupID, sinkGroupID string, logger *zap.Logger) *Species {
	if logger == nil {
		logger = zap.NewNop()
	}
	if name == "" {
		name = id
	}
	metaID := MetaID(id)
	a := annot.New(metaID)
	annot.UpsertCrossRefs(a, annot.KindSpecies, xref, logger)
	if smiles != "" {
		annot.UpsertScientific(a, "smiles", annot.Raw(smiles))
	}
	if inchi != "" {
		annot.UpsertScientific(a, "inchi", annot.Raw(inchi))
	}
	if inchikey != "" {
		annot.UpsertScientific(a, "inchikey", annot.Raw(inchikey))
	}
	s := &Species{
		ID:                   SpeciesID(id, compartmentID),
		MetaID:               metaID,
		Name:                 name,
		Compartment:          compartmentID,
		InitialConcentration: 1.0,
		SBOTerm:              247,
		Annotation:           a,
	}
	m.Species = append(m.Species, s)
	addGroupMember(m, speciesGroupID, s.ID, logger)
	addGroupMember(m, sinkGroupID, s.ID, logger)
	return s
}

// AddReaction creates a reaction from a step, wiring flux bound parameters,
// annotations and pathway group membership. Species ids on both sides are
// compartment-qualified from the step's base ids.
func AddReaction(m *Model, id string, upper, lower float64, step Step, compartmentID,
	smiles string, xref map[string][]string, pathwayGroupID string, logger *zap.Logger) *Reaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	metaID := MetaID(id)
	a := annot.New(metaID)
	annot.UpsertCrossRefs(a, annot.KindReaction, xref, logger)
	if smiles != "" {
		annot.UpsertScientific(a, "smiles", annot.Raw(smiles))
	}
	if step.RuleID != "" {
		annot.UpsertScientific(a, "rule_id", annot.Raw(step.RuleID))
	}
	if step.RuleOriReac != "" {
		annot.UpsertScientific(a, "rule_ori_reac", annot.Raw(step.RuleOriReac))
	}
	if step.RuleScore != nil {
		annot.UpsertScientific(a, "rule_score", annot.Value(*step.RuleScore, ""))
	}
	if step.PathID != nil {
		annot.UpsertScientific(a, "path_id", annot.IntValue(*step.PathID))
	}
	if step.StepID != nil {
		annot.UpsertScientific(a, "step_id", annot.IntValue(*step.StepID))
	}
	if step.SubStepID != nil {
		annot.UpsertScientific(a, "sub_step_id", annot.IntValue(*step.SubStepID))
	}
	r := &Reaction{
		ID:             id,
		MetaID:         metaID,
		Reversible:     true,
		SBOTerm:        176,
		UpperFluxBound: EnsureFluxParameter(m, upper, "mmol_per_gDW_per_hr", true).ID,
		LowerFluxBound: EnsureFluxParameter(m, lower, "mmol_per_gDW_per_hr", true).ID,
		Annotation:     a,
	}
	for _, base := range sortedKeys(step.Left) {
		r.Reactants = append(r.Reactants, SpeciesRef{
			Species:       SpeciesID(base, compartmentID),
			Stoichiometry: step.Left[base],
			Constant:      true,
		})
	}
	for _, base := range sortedKeys(step.Right) {
		r.Products = append(r.Products, SpeciesRef{
			Species:       SpeciesID(base, compartmentID),
			Stoichiometry: step.Right[base],
			Constant:      true,
		})
	}
	m.Reactions = append(m.Reactions, r)
	if pathwayGroupID != "" {
		addGroupMember(m, pathwayGroupID, id, logger)
	}
	return r
}

// AddPathwayGroup creates an empty pathway group with the default scientific
// annotation skeleton.
func AddPathwayGroup(m *Model, id string) *Group {
	metaID := MetaID(id)
	g := &Group{
		ID:         id,
		MetaID:     metaID,
		Kind:       "collection",
		Annotation: annot.New(metaID),
	}
	m.GroupList = append(m.GroupList, g)
	return g
}

// AddGeneProduct creates the placeholder gene product for a pathway step.
func AddGeneProduct(m *Model, stepID string) *GeneProduct {
	id := "RP" + stepID + "_gene"
	g := &GeneProduct{
		ID:                id,
		MetaID:            MetaID(id),
		Label:             "gene_" + stepID,
		AssociatedSpecies: "RP" + stepID,
	}
	m.GeneProducts = append(m.GeneProducts, g)
	return g
}

// SetObjective creates an objective over the given reactions and makes it the
// active one. The reaction and coefficient lists must have equal length; a
// mismatch is reported before any mutation.
func SetObjective(m *Model, id string, reactions []string, coefficients []float64, maximize bool) (*Objective, error) {
	if len(reactions) != len(coefficients) {
		return nil, fmt.Errorf("objective %s: %w (%d reactions, %d coefficients)",
			id, ErrLengthMismatch, len(reactions), len(coefficients))
	}
	metaID := MetaID(id)
	obj := &Objective{
		ID:         id,
		Type:       "maximize",
		Annotation: annot.New(metaID),
	}
	if !maximize {
		obj.Type = "minimize"
	}
	for i, reaction := range reactions {
		obj.FluxObjectives = append(obj.FluxObjectives, &FluxObjective{
			Reaction:    reaction,
			Coefficient: coefficients[i],
			MetaID:      metaID,
		})
	}
	m.Objectives = append(m.Objectives, obj)
	m.ActiveObjective = id
	return obj, nil
}

// EnsureObjective returns the id of an existing objective whose id matches or
// whose flux-objective reaction set equals the request, creating one when
// none does. An empty id defaults to obj_<reactions joined by _>.
func EnsureObjective(m *Model, reactions []string, coefficients []float64, maximize bool,
	id string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if id == "" {
		id = "obj_" + strings.Join(reactions, "_")
	}
	want := map[string]bool{}
	for _, reaction := range reactions {
		want[reaction] = true
	}
	for _, obj := range m.Objectives {
		if obj.ID == id {
			logger.Warn("objective id already exists", zap.String("objective", id))
			return id, nil
		}
		if sameReactionSet(obj, want) {
			logger.Warn("another objective covers the same reactions",
				zap.String("objective", obj.ID), zap.Strings("reactions", reactions))
			return obj.ID, nil
		}
	}
	if _, err := SetObjective(m, id, reactions, coefficients, maximize); err != nil {
		return "", err
	}
	return id, nil
}

// SetReactionBounds rewires a reaction's flux bounds to (possibly new)
// parameters and returns the previous upper and lower values.
func SetReactionBounds(m *Model, reactionID string, upper, lower float64, units string,
	constant bool) (prevUpper, prevLower float64, err error) {
	r := m.ReactionByID(reactionID)
	if r == nil {
		return 0, 0, fmt.Errorf("set bounds: unknown reaction %s", reactionID)
	}
	if p := m.ParameterByID(r.UpperFluxBound); p != nil {
		prevUpper = p.Value
	}
	if p := m.ParameterByID(r.LowerFluxBound); p != nil {
		prevLower = p.Value
	}
	r.UpperFluxBound = EnsureFluxParameter(m, upper, units, constant).ID
	r.LowerFluxBound = EnsureFluxParameter(m, lower, units, constant).ID
	return prevUpper, prevLower, nil
}

func sameReactionSet(obj *Objective, want map[string]bool) bool {
	if len(obj.FluxObjectives) != len(want) {
		return false
	}
	for _, f := range obj.FluxObjectives {
		if !want[f.Reaction] {
			return false
		}
	}
	return true
}

func addGroupMember(m *Model, groupID, idRef string, logger *zap.Logger) {
	if groupID == "" {
		return
	}
	g := m.GroupByID(groupID)
	if g == nil {
		logger.Warn("group does not exist in the model", zap.String("group", groupID))
		return
	}
	g.Members = append(g.Members, Member{IDRef: idRef})
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
