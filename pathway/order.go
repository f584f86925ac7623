package pathway

import "errors"

// ErrNotLinear marks a pathway whose reactions do not form a single chain.
var ErrNotLinear = errors.New("pathway is not linear")

// OrderedReactions returns the pathway reactions in forward order, deduced by
// walking backward from a terminal product. Each candidate start is an
// only-produced species; the walk consumes one reaction at a time, stepping
// to the reaction's central reactant, and succeeds when it visits every
// pathway reaction exactly once. A branch point (a species fed by more than
// one unconsumed reaction, or more than one reactant able to extend the walk)
// ends that attempt. When no start yields a full chain the longest partial
// ordering is returned with ErrNotLinear.
func (g *Graph) OrderedReactions() ([]string, error) {
	total := len(g.pathwayReactions)
	if total == 0 {
		return nil, nil
	}

	starts := g.OnlyProduced(CentralOnly)
	if len(starts) == 0 {
		starts = g.OnlyProduced(PathwayOnly)
	}

	var best []string
	for _, start := range starts {
		chain := g.walkBack(start)
		if len(chain) == total {
			reverse(chain)
			return chain, nil
		}
		if len(chain) > len(best) {
			best = chain
		}
	}
	reverse(best)
	return best, ErrNotLinear
}

// walkBack collects reactions backward from a terminal species, stopping at
// the first ambiguity.
func (g *Graph) walkBack(start string) []string {
	consumed := map[string]bool{}
	var chain []string
	current := start
	for {
		reaction, ok := g.soleProducer(current, consumed)
		if !ok {
			return chain
		}
		chain = append(chain, reaction)
		consumed[reaction] = true

		next, ambiguous := g.nextSpecies(reaction, consumed)
		if ambiguous || next == "" {
			return chain
		}
		current = next
	}
}

// soleProducer returns the single unconsumed pathway reaction producing the
// species; false on zero or several.
func (g *Graph) soleProducer(species string, consumed map[string]bool) (string, bool) {
	found := ""
	for _, e := range g.in[species] {
		n := g.index[e.Source]
		if n == nil || n.Species || !n.InPathway || consumed[e.Source] {
			continue
		}
		if found != "" {
			return "", false
		}
		found = e.Source
	}
	return found, found != ""
}

// nextSpecies picks the reaction's reactant the walk continues from: the one
// central species still fed by an unconsumed reaction. Several such reactants
// is a branch.
func (g *Graph) nextSpecies(reaction string, consumed map[string]bool) (string, bool) {
	found := ""
	for _, e := range g.in[reaction] {
		n := g.index[e.Source]
		if n == nil || !n.Species || !n.Central {
			continue
		}
		if _, ok := g.soleProducer(e.Source, consumed); !ok {
			continue
		}
		if found != "" {
			return "", true
		}
		found = e.Source
	}
	return found, false
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
