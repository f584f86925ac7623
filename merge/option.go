// Package merge folds one annotated pathway model into a target model,
// reconciling species, reactions, compartments and groups through annotation
// similarity.
package merge

import "go.uber.org/zap"

// TieBreakFunc picks one candidate from a resolver candidate list. Candidates
// arrive best-first.
type TieBreakFunc func(id string, candidates []string, logger *zap.Logger) string

// FirstCandidate is the default tie-break: take the first candidate and warn.
func FirstCandidate(id string, candidates []string, logger *zap.Logger) string {
	logger.Warn("several candidates, taking the first",
		zap.String("id", id),
		zap.Strings("candidates", candidates))
	return candidates[0]
}

// Options configures a merge.
type Options struct {
	PathwayGroupID   string
	CentralGroupID   string
	SinkGroupID      string
	UpperFluxBound   float64
	LowerFluxBound   float64
	CompartmentID    string
	TieBreak         TieBreakFunc
	Logger           *zap.Logger
	SkipOrphanRepair bool
}

// Option mutates Options.
type Option func(*Options)

func newOptions(opts ...Option) Options {
	o := Options{
		PathwayGroupID: "rp_pathway",
		CentralGroupID: "central_species",
		SinkGroupID:    "rp_sink_species",
		UpperFluxBound: 999999.0,
		LowerFluxBound: 0.0,
		CompartmentID:  "MNXC3",
		TieBreak:       FirstCandidate,
		Logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPathwayGroupID sets the pathway group id.
func WithPathwayGroupID(id string) Option {
	return func(o *Options) {
		o.PathwayGroupID = id
	}
}

// WithCentralGroupID sets the central species group id.
func WithCentralGroupID(id string) Option {
	return func(o *Options) {
		o.CentralGroupID = id
	}
}

// WithSinkGroupID sets the sink species group id.
func WithSinkGroupID(id string) Option {
	return func(o *Options) {
		o.SinkGroupID = id
	}
}

// WithFluxBounds sets the default bounds for synthesized reactions.
func WithFluxBounds(upper, lower float64) Option {
	return func(o *Options) {
		o.UpperFluxBound = upper
		o.LowerFluxBound = lower
	}
}

// WithCompartmentID sets the default compartment for synthesized species refs.
func WithCompartmentID(id string) Option {
	return func(o *Options) {
		o.CompartmentID = id
	}
}

// WithTieBreak overrides the ambiguity policy.
func WithTieBreak(fn TieBreakFunc) Option {
	return func(o *Options) {
		o.TieBreak = fn
	}
}

// WithLogger sets the logger, zap.NewNop by default.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithSkipOrphanRepair disables the final orphan repair stage.
func WithSkipOrphanRepair() Option {
	return func(o *Options) {
		o.SkipOrphanRepair = true
	}
}
