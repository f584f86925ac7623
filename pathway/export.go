package pathway

import (
	"encoding/json"
	"io"
)

type jsonNode struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Central   bool   `json:"central,omitempty"`
	Sink      bool   `json:"sink,omitempty"`
	InPathway bool   `json:"inPathway,omitempty"`
}

type jsonLink struct {
	Source        string  `json:"source"`
	Target        string  `json:"target"`
	Stoichiometry float64 `json:"stoichiometry"`
}

type jsonGraph struct {
	Directed bool       `json:"directed"`
	Nodes    []jsonNode `json:"nodes"`
	Links    []jsonLink `json:"links"`
}

// ExportJSON writes the graph in node-link form.
func (g *Graph) ExportJSON(w io.Writer) error {
	out := jsonGraph{Directed: true, Nodes: []jsonNode{}, Links: []jsonLink{}}
	for _, n := range g.nodes {
		kind := "reaction"
		if n.Species {
			kind = "species"
		}
		out.Nodes = append(out.Nodes, jsonNode{
			ID:        n.ID,
			Type:      kind,
			Central:   n.Central,
			Sink:      n.Sink,
			InPathway: n.InPathway,
		})
	}
	for _, e := range g.edges {
		out.Links = append(out.Links, jsonLink{Source: e.Source, Target: e.Target, Stoichiometry: e.Stoichiometry})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
