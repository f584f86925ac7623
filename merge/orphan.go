package merge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/brsynth/sbmlmerge/annot"
	"github.com/brsynth/sbmlmerge/pathway"
	"github.com/brsynth/sbmlmerge/sbml"
)

// RepairOrphans restores the single-parent invariant of a pathway: every
// pathway species only ever produced gains a synthetic consumption reaction,
// every pathway species only ever consumed gains a synthetic production
// reaction. The graph spans the whole model, so a species the host metabolism
// already consumes or produces is not an orphan. The synthetic reactions stay
// out of the pathway group so pathway extraction ignores them.
func RepairOrphans(doc *sbml.Document, opts ...Option) error {
	opt := newOptions(opts...)
	logger := opt.Logger

	graph, err := pathway.Build(doc, true, opt.PathwayGroupID, opt.CentralGroupID, opt.SinkGroupID, logger)
	if err != nil {
		return fmt.Errorf("orphan repair: %w", err)
	}

	for _, speciesID := range graph.OnlyProduced(pathway.PathwayOnly) {
		id := speciesID + "__consumption"
		if doc.Model.ReactionByID(id) != nil {
			continue
		}
		r := syntheticReaction(doc.Model, id, opt)
		r.Reactants = []sbml.SpeciesRef{orphanRef(speciesID, opt)}
		doc.Model.Reactions = append(doc.Model.Reactions, r)
		logger.Debug("synthesized consumption reaction", zap.String("species", speciesID))
	}
	for _, speciesID := range graph.OnlyConsumed(pathway.PathwayOnly) {
		id := speciesID + "__production"
		if doc.Model.ReactionByID(id) != nil {
			continue
		}
		r := syntheticReaction(doc.Model, id, opt)
		r.Products = []sbml.SpeciesRef{orphanRef(speciesID, opt)}
		doc.Model.Reactions = append(doc.Model.Reactions, r)
		logger.Debug("synthesized production reaction", zap.String("species", speciesID))
	}
	return nil
}

func syntheticReaction(m *sbml.Model, id string, opt Options) *sbml.Reaction {
	metaID := sbml.MetaID(id)
	return &sbml.Reaction{
		ID:             id,
		MetaID:         metaID,
		Reversible:     true,
		SBOTerm:        176,
		UpperFluxBound: sbml.EnsureFluxParameter(m, opt.UpperFluxBound, "mmol_per_gDW_per_hr", true).ID,
		LowerFluxBound: sbml.EnsureFluxParameter(m, opt.LowerFluxBound, "mmol_per_gDW_per_hr", true).ID,
		Annotation:     annot.New(metaID),
	}
}

// orphanRef rebuilds the compartment-qualified ref in the option compartment
// when the species id carries one, and references the id untouched otherwise.
func orphanRef(speciesID string, opt Options) sbml.SpeciesRef {
	id := speciesID
	if base, _, ok := sbml.SpeciesBase(speciesID); ok {
		id = sbml.SpeciesID(base, opt.CompartmentID)
	}
	return sbml.SpeciesRef{Species: id, Stoichiometry: 1, Constant: true}
}
