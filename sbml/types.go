// Package sbml is the in-memory model document layer: typed SBML L3V1
// entities with fbc and groups extensions, an XML codec, creation helpers and
// afs-backed I/O. Matching and merging live in the match and merge packages;
// this package only carries the data.
package sbml

import (
	"github.com/brsynth/sbmlmerge/annot"
)

// Document wraps a model plus the document-level SBML bookkeeping.
type Document struct {
	Level   int
	Version int
	// FBC and Groups record which extension packages must be emitted.
	FBC    bool
	Groups bool
	Model  *Model
}

// Model is an SBML model with its ordered entity collections.
type Model struct {
	ID     string
	MetaID string
	Name   string

	SubstanceUnits string
	TimeUnits      string
	ExtentUnits    string
	FBCStrict      bool

	UnitDefinitions []*UnitDefinition
	Compartments    []*Compartment
	Parameters      []*Parameter
	Species         []*Species
	Reactions       []*Reaction
	GeneProducts    []*GeneProduct
	Objectives      []*Objective
	ActiveObjective string
	GroupList       []*Group
}

// Compartment is a model compartment.
type Compartment struct {
	ID         string
	MetaID     string
	Name       string
	Size       float64
	Constant   bool
	SBOTerm    int
	Annotation *annot.Annotation
}

// Species is a chemical species bound to one compartment.
type Species struct {
	ID                    string
	MetaID                string
	Name                  string
	Compartment           string
	InitialConcentration  float64
	HasOnlySubstanceUnits bool
	BoundaryCondition     bool
	Constant              bool
	SBOTerm               int
	Annotation            *annot.Annotation
}

// SpeciesRef ties a species id and its stoichiometric coefficient to a
// reaction side.
type SpeciesRef struct {
	Species       string
	Stoichiometry float64
	Constant      bool
}

// Reaction is a model reaction with fbc flux bounds referencing parameters.
type Reaction struct {
	ID         string
	MetaID     string
	Name       string
	Reversible bool
	Fast       bool
	SBOTerm    int
	Reactants  []SpeciesRef
	Products   []SpeciesRef
	// Parameter ids carrying the flux bounds.
	UpperFluxBound string
	LowerFluxBound string
	// GeneAssociation round-trips the fbc geneProductAssociation subtree
	// verbatim; the merge never interprets it.
	GeneAssociation string
	Annotation      *annot.Annotation
}

// Parameter is a model parameter, typically a flux bound.
type Parameter struct {
	ID       string
	MetaID   string
	Value    float64
	Units    string
	Constant bool
	SBOTerm  int
}

// Unit is one component of a unit definition.
type Unit struct {
	Kind       string
	Exponent   int
	Scale      int
	Multiplier float64
}

// UnitDefinition is a named composition of units.
type UnitDefinition struct {
	ID     string
	MetaID string
	Units  []Unit
}

// GeneProduct is an fbc gene product.
type GeneProduct struct {
	ID                string
	MetaID            string
	Label             string
	Name              string
	AssociatedSpecies string
}

// FluxObjective weights one reaction inside an objective.
type FluxObjective struct {
	Reaction    string
	Coefficient float64
	Name        string
	MetaID      string
	Annotation  *annot.Annotation
}

// Objective is an fbc optimization objective over one or more reactions.
type Objective struct {
	ID             string
	Name           string
	Type           string // maximize or minimize
	FluxObjectives []*FluxObjective
	Annotation     *annot.Annotation
}

// Member references a species or reaction id from a group.
type Member struct {
	IDRef string
}

// Group is a groups-package collection, used for pathway membership.
type Group struct {
	ID         string
	MetaID     string
	Kind       string
	Members    []Member
	Annotation *annot.Annotation
}

// Compartment returns the compartment with the given id, nil when absent.
func (m *Model) Compartment(id string) *Compartment {
	for _, c := range m.Compartments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// SpeciesByID returns the species with the given id, nil when absent.
func (m *Model) SpeciesByID(id string) *Species {
	for _, s := range m.Species {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ReactionByID returns the reaction with the given id, nil when absent.
func (m *Model) ReactionByID(id string) *Reaction {
	for _, r := range m.Reactions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ParameterByID returns the parameter with the given id, nil when absent.
func (m *Model) ParameterByID(id string) *Parameter {
	for _, p := range m.Parameters {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// UnitDefinitionByID returns the unit definition with the given id, nil when
// absent.
func (m *Model) UnitDefinitionByID(id string) *UnitDefinition {
	for _, u := range m.UnitDefinitions {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// GeneProductByID returns the gene product with the given id, nil when absent.
func (m *Model) GeneProductByID(id string) *GeneProduct {
	for _, g := range m.GeneProducts {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// ObjectiveByID returns the objective with the given id, nil when absent.
func (m *Model) ObjectiveByID(id string) *Objective {
	for _, o := range m.Objectives {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// GroupByID returns the group with the given id, nil when absent.
func (m *Model) GroupByID(id string) *Group {
	for _, g := range m.GroupList {
		if g.ID == id {
			return g
		}
	}
	return nil
}
