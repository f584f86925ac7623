// Package pathway builds a bipartite species/reaction graph from a pathway
// group and answers structural questions about it: terminal species, reaction
// order, serialization.
package pathway

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/brsynth/sbmlmerge/sbml"
)

// ErrNoPathway marks a document without the requested pathway group.
var ErrNoPathway = errors.New("pathway group not found")

// Filter selects which species nodes an operation considers.
type Filter int

const (
	CentralOnly Filter = iota
	PathwayOnly
	All
)

// Node is one species or reaction in the graph.
type Node struct {
	ID        string
	Species   bool
	Central   bool
	Sink      bool
	InPathway bool
}

// Edge is a directed reactant-to-reaction or reaction-to-product link.
type Edge struct {
	Source        string
	Target        string
	Stoichiometry float64
}

// Graph holds the bipartite pathway graph. Nodes and edges keep insertion
// order so every traversal is deterministic.
type Graph struct {
	nodes []*Node
	index map[string]*Node
	edges []*Edge
	out   map[string][]*Edge
	in    map[string][]*Edge

	pathwayReactions []string
	logger           *zap.Logger
}

// Build constructs the graph for one pathway group. Species and reactions
// outside the pathway join only when wholeModel is true. A missing pathway
// group is an error; missing central or sink groups degrade to empty flag
// sets with a warning.
func Build(doc *sbml.Document, wholeModel bool, pathwayGroupID, centralGroupID, sinkGroupID string, logger *zap.Logger) (*Graph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	group := doc.Model.GroupByID(pathwayGroupID)
	if group == nil {
		return nil, fmt.Errorf("group %q: %w", pathwayGroupID, ErrNoPathway)
	}

	central := flagSet(doc.Model, centralGroupID, logger)
	sink := flagSet(doc.Model, sinkGroupID, logger)

	g := &Graph{
		index:  map[string]*Node{},
		out:    map[string][]*Edge{},
		in:     map[string][]*Edge{},
		logger: logger,
	}

	inPathway := map[string]bool{}
	pathwaySpecies := map[string]bool{}
	for _, member := range group.Members {
		r := doc.Model.ReactionByID(member.IDRef)
		if r == nil {
			logger.Warn("pathway member is not a reaction, skipping",
				zap.String("member", member.IDRef))
			continue
		}
		g.pathwayReactions = append(g.pathwayReactions, r.ID)
		inPathway[r.ID] = true
		for _, ref := range r.Reactants {
			pathwaySpecies[ref.Species] = true
		}
		for _, ref := range r.Products {
			pathwaySpecies[ref.Species] = true
		}
	}

	for _, s := range doc.Model.Species {
		if !wholeModel && !pathwaySpecies[s.ID] {
			continue
		}
		g.addNode(&Node{
			ID:        s.ID,
			Species:   true,
			Central:   central[s.ID],
			Sink:      sink[s.ID],
			InPathway: pathwaySpecies[s.ID],
		})
	}
	for _, r := range doc.Model.Reactions {
		if !wholeModel && !inPathway[r.ID] {
			continue
		}
		g.addNode(&Node{ID: r.ID, InPathway: inPathway[r.ID]})
		for _, ref := range r.Reactants {
			g.addEdge(ref.Species, r.ID, ref.Stoichiometry)
		}
		for _, ref := range r.Products {
			g.addEdge(r.ID, ref.Species, ref.Stoichiometry)
		}
	}
	return g, nil
}

func flagSet(m *sbml.Model, groupID string, logger *zap.Logger) map[string]bool {
	out := map[string]bool{}
	g := m.GroupByID(groupID)
	if g == nil {
		logger.Warn("group not found, flag set is empty", zap.String("group", groupID))
		return out
	}
	for _, member := range g.Members {
		out[member.IDRef] = true
	}
	return out
}

func (g *Graph) addNode(n *Node) {
	if _, ok := g.index[n.ID]; ok {
		return
	}
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
}

func (g *Graph) addEdge(source, target string, stoichiometry float64) {
	if g.index[source] == nil || g.index[target] == nil {
		return
	}
	e := &Edge{Source: source, Target: target, Stoichiometry: stoichiometry}
	g.edges = append(g.edges, e)
	g.out[source] = append(g.out[source], e)
	g.in[target] = append(g.in[target], e)
}

// Node returns the named node, nil when absent.
func (g *Graph) Node(id string) *Node {
	return g.index[id]
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// PathwayReactions returns the pathway reaction ids in group member order.
func (g *Graph) PathwayReactions() []string {
	return g.pathwayReactions
}

func (g *Graph) keep(n *Node, filter Filter) bool {
	if !n.Species {
		return false
	}
	switch filter {
	case CentralOnly:
		return n.Central
	case PathwayOnly:
		return n.InPathway
	default:
		return true
	}
}

// OnlyConsumed returns species that only ever appear as reactants, in node
// insertion order.
func (g *Graph) OnlyConsumed(filter Filter) []string {
	var out []string
	for _, n := range g.nodes {
		if g.keep(n, filter) && len(g.out[n.ID]) > 0 && len(g.in[n.ID]) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// OnlyProduced returns species that only ever appear as products, in node
// insertion order.
func (g *Graph) OnlyProduced(filter Filter) []string {
	var out []string
	for _, n := range g.nodes {
		if g.keep(n, filter) && len(g.in[n.ID]) > 0 && len(g.out[n.ID]) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}
