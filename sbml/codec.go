package sbml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/brsynth/sbmlmerge/annot"
)

const (
	coreNS   = "http://www.sbml.org/sbml/level3/version1/core"
	fbcNS    = "http://www.sbml.org/sbml/level3/version1/fbc/version2"
	groupsNS = "http://www.sbml.org/sbml/level3/version1/groups/version1"
)

// Decode reads an SBML L3 document. Absent fbc or groups sections are
// tolerated; the returned document records which packages were declared so a
// later Encode emits the same namespaces. Malformed XML or a missing <model>
// element is an error.
func Decode(r io.Reader) (*Document, error) {
	tree := etree.NewDocument()
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("decode sbml: %w", err)
	}
	root := tree.Root()
	if root == nil || root.Tag != "sbml" {
		return nil, fmt.Errorf("decode sbml: missing <sbml> root element")
	}
	doc := &Document{
		Level:   intAttr(root, "level", 3),
		Version: intAttr(root, "version", 1),
	}
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Value == fbcNS {
			doc.FBC = true
		}
		if a.Space == "xmlns" && a.Value == groupsNS {
			doc.Groups = true
		}
	}
	el := root.SelectElement("model")
	if el == nil {
		return nil, fmt.Errorf("decode sbml: missing <model> element")
	}
	doc.Model = decodeModel(el)
	return doc, nil
}

func decodeModel(el *etree.Element) *Model {
	m := &Model{
		ID:             el.SelectAttrValue("id", ""),
		MetaID:         el.SelectAttrValue("metaid", ""),
		Name:           el.SelectAttrValue("name", ""),
		SubstanceUnits: el.SelectAttrValue("substanceUnits", ""),
		TimeUnits:      el.SelectAttrValue("timeUnits", ""),
		ExtentUnits:    el.SelectAttrValue("extentUnits", ""),
		FBCStrict:      boolAttr(el, "strict"),
	}
	if list := el.SelectElement("listOfUnitDefinitions"); list != nil {
		for _, u := range list.SelectElements("unitDefinition") {
			def := &UnitDefinition{
				ID:     u.SelectAttrValue("id", ""),
				MetaID: u.SelectAttrValue("metaid", ""),
			}
			if units := u.SelectElement("listOfUnits"); units != nil {
				for _, unit := range units.SelectElements("unit") {
					def.Units = append(def.Units, Unit{
						Kind:       unit.SelectAttrValue("kind", ""),
						Exponent:   intAttr(unit, "exponent", 1),
						Scale:      intAttr(unit, "scale", 0),
						Multiplier: floatAttr(unit, "multiplier", 1),
					})
				}
			}
			m.UnitDefinitions = append(m.UnitDefinitions, def)
		}
	}
	if list := el.SelectElement("listOfCompartments"); list != nil {
		for _, c := range list.SelectElements("compartment") {
			m.Compartments = append(m.Compartments, &Compartment{
				ID:         c.SelectAttrValue("id", ""),
				MetaID:     c.SelectAttrValue("metaid", ""),
				Name:       c.SelectAttrValue("name", ""),
				Size:       floatAttr(c, "size", 0),
				Constant:   boolAttr(c, "constant"),
				SBOTerm:    sboAttr(c),
				Annotation: annot.FromElement(c.SelectElement("annotation")),
			})
		}
	}
	if list := el.SelectElement("listOfParameters"); list != nil {
		for _, p := range list.SelectElements("parameter") {
			m.Parameters = append(m.Parameters, &Parameter{
				ID:       p.SelectAttrValue("id", ""),
				MetaID:   p.SelectAttrValue("metaid", ""),
				Value:    floatAttr(p, "value", 0),
				Units:    p.SelectAttrValue("units", ""),
				Constant: boolAttr(p, "constant"),
				SBOTerm:  sboAttr(p),
			})
		}
	}
	if list := el.SelectElement("listOfSpecies"); list != nil {
		for _, s := range list.SelectElements("species") {
			m.Species = append(m.Species, &Species{
				ID:                    s.SelectAttrValue("id", ""),
				MetaID:                s.SelectAttrValue("metaid", ""),
				Name:                  s.SelectAttrValue("name", ""),
				Compartment:           s.SelectAttrValue("compartment", ""),
				InitialConcentration:  floatAttr(s, "initialConcentration", 0),
				HasOnlySubstanceUnits: boolAttr(s, "hasOnlySubstanceUnits"),
				BoundaryCondition:     boolAttr(s, "boundaryCondition"),
				Constant:              boolAttr(s, "constant"),
				SBOTerm:               sboAttr(s),
				Annotation:            annot.FromElement(s.SelectElement("annotation")),
			})
		}
	}
	if list := el.SelectElement("listOfReactions"); list != nil {
		for _, r := range list.SelectElements("reaction") {
			m.Reactions = append(m.Reactions, decodeReaction(r))
		}
	}
	if list := el.SelectElement("listOfGeneProducts"); list != nil {
		for _, g := range list.SelectElements("geneProduct") {
			m.GeneProducts = append(m.GeneProducts, &GeneProduct{
				ID:                g.SelectAttrValue("id", ""),
				MetaID:            g.SelectAttrValue("metaid", ""),
				Label:             g.SelectAttrValue("label", ""),
				Name:              g.SelectAttrValue("name", ""),
				AssociatedSpecies: g.SelectAttrValue("associatedSpecies", ""),
			})
		}
	}
	if list := el.SelectElement("listOfObjectives"); list != nil {
		m.ActiveObjective = list.SelectAttrValue("activeObjective", "")
		for _, o := range list.SelectElements("objective") {
			obj := &Objective{
				ID:         o.SelectAttrValue("id", ""),
				Name:       o.SelectAttrValue("name", ""),
				Type:       o.SelectAttrValue("type", ""),
				Annotation: annot.FromElement(o.SelectElement("annotation")),
			}
			if fluxes := o.SelectElement("listOfFluxObjectives"); fluxes != nil {
				for _, f := range fluxes.SelectElements("fluxObjective") {
					obj.FluxObjectives = append(obj.FluxObjectives, &FluxObjective{
						Reaction:    f.SelectAttrValue("reaction", ""),
						Coefficient: floatAttr(f, "coefficient", 0),
						Name:        f.SelectAttrValue("name", ""),
						MetaID:      f.SelectAttrValue("metaid", ""),
						Annotation:  annot.FromElement(f.SelectElement("annotation")),
					})
				}
			}
			m.Objectives = append(m.Objectives, obj)
		}
	}
	if list := el.SelectElement("listOfGroups"); list != nil {
		for _, g := range list.SelectElements("group") {
			group := &Group{
				ID:         g.SelectAttrValue("id", ""),
				MetaID:     g.SelectAttrValue("metaid", ""),
				Kind:       g.SelectAttrValue("kind", ""),
				Annotation: annot.FromElement(g.SelectElement("annotation")),
			}
			if members := g.SelectElement("listOfMembers"); members != nil {
				for _, member := range members.SelectElements("member") {
					group.Members = append(group.Members, Member{IDRef: member.SelectAttrValue("idRef", "")})
				}
			}
			m.GroupList = append(m.GroupList, group)
		}
	}
	return m
}

func decodeReaction(r *etree.Element) *Reaction {
	reac := &Reaction{
		ID:             r.SelectAttrValue("id", ""),
		MetaID:         r.SelectAttrValue("metaid", ""),
		Name:           r.SelectAttrValue("name", ""),
		Reversible:     boolAttr(r, "reversible"),
		Fast:           boolAttr(r, "fast"),
		SBOTerm:        sboAttr(r),
		UpperFluxBound: r.SelectAttrValue("upperFluxBound", ""),
		LowerFluxBound: r.SelectAttrValue("lowerFluxBound", ""),
		Annotation:     annot.FromElement(r.SelectElement("annotation")),
	}
	if gpa := r.SelectElement("geneProductAssociation"); gpa != nil {
		tree := etree.NewDocument()
		tree.SetRoot(gpa.Copy())
		if text, err := tree.WriteToString(); err == nil {
			reac.GeneAssociation = text
		}
	}
	reac.Reactants = decodeRefs(r.SelectElement("listOfReactants"))
	reac.Products = decodeRefs(r.SelectElement("listOfProducts"))
	return reac
}

func decodeRefs(list *etree.Element) []SpeciesRef {
	if list == nil {
		return nil
	}
	var refs []SpeciesRef
	for _, ref := range list.SelectElements("speciesReference") {
		refs = append(refs, SpeciesRef{
			Species:       ref.SelectAttrValue("species", ""),
			Stoichiometry: floatAttr(ref, "stoichiometry", 1),
			Constant:      boolAttr(ref, "constant"),
		})
	}
	return refs
}

// Encode writes the document as SBML L3V1 with the fbc v2 and groups v1
// namespaces when the document uses them, required="false" on both.
func (d *Document) Encode(w io.Writer) error {
	tree := etree.NewDocument()
	tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := tree.CreateElement("sbml")
	root.CreateAttr("xmlns", coreNS)
	root.CreateAttr("level", strconv.Itoa(d.Level))
	root.CreateAttr("version", strconv.Itoa(d.Version))
	if d.FBC {
		root.CreateAttr("xmlns:fbc", fbcNS)
		root.CreateAttr("fbc:required", "false")
	}
	if d.Groups {
		root.CreateAttr("xmlns:groups", groupsNS)
		root.CreateAttr("groups:required", "false")
	}
	if d.Model != nil {
		encodeModel(root, d)
	}
	tree.Indent(2)
	_, err := tree.WriteTo(w)
	if err != nil {
		return fmt.Errorf("encode sbml: %w", err)
	}
	return nil
}

func encodeModel(root *etree.Element, d *Document) {
	m := d.Model
	el := root.CreateElement("model")
	setAttr(el, "metaid", m.MetaID)
	setAttr(el, "id", m.ID)
	setAttr(el, "name", m.Name)
	setAttr(el, "substanceUnits", m.SubstanceUnits)
	setAttr(el, "timeUnits", m.TimeUnits)
	setAttr(el, "extentUnits", m.ExtentUnits)
	if d.FBC {
		el.CreateAttr("fbc:strict", strconv.FormatBool(m.FBCStrict))
	}
	if len(m.UnitDefinitions) > 0 {
		list := el.CreateElement("listOfUnitDefinitions")
		for _, def := range m.UnitDefinitions {
			u := list.CreateElement("unitDefinition")
			setAttr(u, "metaid", def.MetaID)
			setAttr(u, "id", def.ID)
			units := u.CreateElement("listOfUnits")
			for _, unit := range def.Units {
				e := units.CreateElement("unit")
				e.CreateAttr("kind", unit.Kind)
				e.CreateAttr("exponent", strconv.Itoa(unit.Exponent))
				e.CreateAttr("scale", strconv.Itoa(unit.Scale))
				e.CreateAttr("multiplier", formatFloat(unit.Multiplier))
			}
		}
	}
	if len(m.Compartments) > 0 {
		list := el.CreateElement("listOfCompartments")
		for _, c := range m.Compartments {
			e := list.CreateElement("compartment")
			setAttr(e, "metaid", c.MetaID)
			e.CreateAttr("id", c.ID)
			setAttr(e, "name", c.Name)
			setSBO(e, c.SBOTerm)
			e.CreateAttr("size", formatFloat(c.Size))
			e.CreateAttr("constant", strconv.FormatBool(c.Constant))
			attachAnnotation(e, c.Annotation)
		}
	}
	if len(m.Species) > 0 {
		list := el.CreateElement("listOfSpecies")
		for _, s := range m.Species {
			e := list.CreateElement("species")
			setAttr(e, "metaid", s.MetaID)
			e.CreateAttr("id", s.ID)
			setAttr(e, "name", s.Name)
			e.CreateAttr("compartment", s.Compartment)
			setSBO(e, s.SBOTerm)
			e.CreateAttr("initialConcentration", formatFloat(s.InitialConcentration))
			e.CreateAttr("hasOnlySubstanceUnits", strconv.FormatBool(s.HasOnlySubstanceUnits))
			e.CreateAttr("boundaryCondition", strconv.FormatBool(s.BoundaryCondition))
			e.CreateAttr("constant", strconv.FormatBool(s.Constant))
			attachAnnotation(e, s.Annotation)
		}
	}
	if len(m.Parameters) > 0 {
		list := el.CreateElement("listOfParameters")
		for _, p := range m.Parameters {
			e := list.CreateElement("parameter")
			setAttr(e, "metaid", p.MetaID)
			e.CreateAttr("id", p.ID)
			setSBO(e, p.SBOTerm)
			e.CreateAttr("value", formatFloat(p.Value))
			setAttr(e, "units", p.Units)
			e.CreateAttr("constant", strconv.FormatBool(p.Constant))
		}
	}
	if len(m.Reactions) > 0 {
		list := el.CreateElement("listOfReactions")
		for _, r := range m.Reactions {
			encodeReaction(list, r, d.FBC)
		}
	}
	if d.FBC {
		if len(m.Objectives) > 0 {
			list := el.CreateElement("fbc:listOfObjectives")
			setAttr(list, "fbc:activeObjective", m.ActiveObjective)
			for _, o := range m.Objectives {
				e := list.CreateElement("fbc:objective")
				e.CreateAttr("fbc:id", o.ID)
				setAttr(e, "fbc:name", o.Name)
				e.CreateAttr("fbc:type", o.Type)
				attachAnnotation(e, o.Annotation)
				fluxes := e.CreateElement("fbc:listOfFluxObjectives")
				for _, f := range o.FluxObjectives {
					fe := fluxes.CreateElement("fbc:fluxObjective")
					setAttr(fe, "metaid", f.MetaID)
					setAttr(fe, "fbc:name", f.Name)
					fe.CreateAttr("fbc:reaction", f.Reaction)
					fe.CreateAttr("fbc:coefficient", formatFloat(f.Coefficient))
					attachAnnotation(fe, f.Annotation)
				}
			}
		}
		if len(m.GeneProducts) > 0 {
			list := el.CreateElement("fbc:listOfGeneProducts")
			for _, g := range m.GeneProducts {
				e := list.CreateElement("fbc:geneProduct")
				setAttr(e, "metaid", g.MetaID)
				e.CreateAttr("fbc:id", g.ID)
				setAttr(e, "fbc:label", g.Label)
				setAttr(e, "fbc:name", g.Name)
				setAttr(e, "fbc:associatedSpecies", g.AssociatedSpecies)
			}
		}
	}
	if d.Groups && len(m.GroupList) > 0 {
		list := el.CreateElement("groups:listOfGroups")
		for _, g := range m.GroupList {
			e := list.CreateElement("groups:group")
			setAttr(e, "metaid", g.MetaID)
			e.CreateAttr("groups:id", g.ID)
			e.CreateAttr("groups:kind", g.Kind)
			attachAnnotation(e, g.Annotation)
			if len(g.Members) > 0 {
				members := e.CreateElement("groups:listOfMembers")
				for _, member := range g.Members {
					members.CreateElement("groups:member").CreateAttr("groups:idRef", member.IDRef)
				}
			}
		}
	}
}

func encodeReaction(list *etree.Element, r *Reaction, fbc bool) {
	e := list.CreateElement("reaction")
	setAttr(e, "metaid", r.MetaID)
	e.CreateAttr("id", r.ID)
	setAttr(e, "name", r.Name)
	setSBO(e, r.SBOTerm)
	e.CreateAttr("reversible", strconv.FormatBool(r.Reversible))
	e.CreateAttr("fast", strconv.FormatBool(r.Fast))
	if fbc {
		setAttr(e, "fbc:upperFluxBound", r.UpperFluxBound)
		setAttr(e, "fbc:lowerFluxBound", r.LowerFluxBound)
	}
	attachAnnotation(e, r.Annotation)
	if r.GeneAssociation != "" {
		tree := etree.NewDocument()
		if err := tree.ReadFromString(r.GeneAssociation); err == nil && tree.Root() != nil {
			e.AddChild(tree.Root().Copy())
		}
	}
	if len(r.Reactants) > 0 {
		encodeRefs(e.CreateElement("listOfReactants"), r.Reactants)
	}
	if len(r.Products) > 0 {
		encodeRefs(e.CreateElement("listOfProducts"), r.Products)
	}
}

func encodeRefs(list *etree.Element, refs []SpeciesRef) {
	for _, ref := range refs {
		e := list.CreateElement("speciesReference")
		e.CreateAttr("species", ref.Species)
		e.CreateAttr("stoichiometry", formatFloat(ref.Stoichiometry))
		e.CreateAttr("constant", strconv.FormatBool(ref.Constant))
	}
}

func attachAnnotation(el *etree.Element, a *annot.Annotation) {
	if a == nil {
		return
	}
	if child := a.Element(); child != nil {
		el.AddChild(child)
	}
}

func setAttr(el *etree.Element, key, value string) {
	if value != "" {
		el.CreateAttr(key, value)
	}
}

func setSBO(el *etree.Element, term int) {
	if term > 0 {
		el.CreateAttr("sboTerm", fmt.Sprintf("SBO:%07d", term))
	}
}

func sboAttr(el *etree.Element) int {
	raw := el.SelectAttrValue("sboTerm", "")
	raw = strings.TrimPrefix(raw, "SBO:")
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func intAttr(el *etree.Element, key string, dflt int) int {
	v, err := strconv.Atoi(el.SelectAttrValue(key, ""))
	if err != nil {
		return dflt
	}
	return v
}

func floatAttr(el *etree.Element, key string, dflt float64) float64 {
	v, err := strconv.ParseFloat(el.SelectAttrValue(key, ""), 64)
	if err != nil {
		return dflt
	}
	return v
}

func boolAttr(el *etree.Element, key string) bool {
	return el.SelectAttrValue(key, "") == "true"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
