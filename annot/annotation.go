// Package annot reads and writes the RDF annotation islands attached to SBML
// entities: MIRIAM cross-reference bags and the BRSynth scientific metadata
// block used by the retrosynthesis toolchain.
package annot

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	rdfNS     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	bqbiolNS  = "http://biomodels.net/biology-qualifiers/"
	brsynthNS = "http://brsynth.eu"

	// identifiersBase prefixes every cross-reference URI.
	identifiersBase = "http://identifiers.org/"
)

// Annotation wraps the <annotation> element of an SBML entity. The element is
// owned by the Annotation; callers clone before sharing across models.
type Annotation struct {
	root *etree.Element
}

// New returns an annotation carrying both the MIRIAM and the scientific
// skeleton, referencing metaID.
func New(metaID string) *Annotation {
	root := etree.NewElement("annotation")
	rdf := root.CreateElement("rdf:RDF")
	rdf.CreateAttr("xmlns:rdf", rdfNS)
	rdf.CreateAttr("xmlns:bqbiol", bqbiolNS)
	desc := rdf.CreateElement("rdf:Description")
	desc.CreateAttr("rdf:about", "#"+metaID)
	is := desc.CreateElement("bqbiol:is")
	is.CreateElement("rdf:Bag")
	brs := rdf.CreateElement("rdf:BRSynth")
	brs.CreateAttr("rdf:about", "#"+metaID)
	inner := brs.CreateElement("brsynth:brsynth")
	inner.CreateAttr("xmlns:brsynth", brsynthNS)
	return &Annotation{root: root}
}

// Parse reads an annotation from its XML text.
func Parse(text string) (*Annotation, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, fmt.Errorf("parse annotation: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "annotation" {
		return nil, fmt.Errorf("parse annotation: missing <annotation> element")
	}
	return &Annotation{root: root.Copy()}, nil
}

// FromElement wraps an existing <annotation> element. The annotation takes
// ownership of a copy, leaving the original tree untouched.
func FromElement(el *etree.Element) *Annotation {
	if el == nil {
		return nil
	}
	return &Annotation{root: el.Copy()}
}

// Clone deep-copies the annotation.
func (a *Annotation) Clone() *Annotation {
	if a == nil {
		return nil
	}
	return &Annotation{root: a.root.Copy()}
}

// Element returns a copy of the underlying <annotation> element for embedding
// into a serialized document.
func (a *Annotation) Element() *etree.Element {
	if a == nil {
		return nil
	}
	return a.root.Copy()
}

// String renders the annotation as indented XML.
func (a *Annotation) String() string {
	if a == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.SetRoot(a.root.Copy())
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// bag returns the RDF/Description/is/Bag element holding the cross-reference
// list, creating the chain when create is set.
func (a *Annotation) bag(create bool) *etree.Element {
	if a == nil || a.root == nil {
		return nil
	}
	rdf := a.root.SelectElement("RDF")
	if rdf == nil {
		if !create {
			return nil
		}
		rdf = a.root.CreateElement("rdf:RDF")
		rdf.CreateAttr("xmlns:rdf", rdfNS)
		rdf.CreateAttr("xmlns:bqbiol", bqbiolNS)
	}
	desc := rdf.SelectElement("Description")
	if desc == nil {
		if !create {
			return nil
		}
		desc = rdf.CreateElement("rdf:Description")
		desc.CreateAttr("rdf:about", "#")
	}
	is := desc.SelectElement("is")
	if is == nil {
		if !create {
			return nil
		}
		is = desc.CreateElement("bqbiol:is")
	}
	bag := is.SelectElement("Bag")
	if bag == nil {
		if !create {
			return nil
		}
		bag = is.CreateElement("rdf:Bag")
	}
	return bag
}

// scientific returns the RDF/BRSynth/brsynth element holding the scientific
// metadata entries, creating the chain when create is set.
func (a *Annotation) scientific(create bool) *etree.Element {
	if a == nil || a.root == nil {
		return nil
	}
	rdf := a.root.SelectElement("RDF")
	if rdf == nil {
		if !create {
			return nil
		}
		rdf = a.root.CreateElement("rdf:RDF")
		rdf.CreateAttr("xmlns:rdf", rdfNS)
		rdf.CreateAttr("xmlns:bqbiol", bqbiolNS)
	}
	brs := rdf.SelectElement("BRSynth")
	if brs == nil {
		if !create {
			return nil
		}
		brs = rdf.CreateElement("rdf:BRSynth")
		brs.CreateAttr("rdf:about", "#")
	}
	inner := brs.SelectElement("brsynth")
	if inner == nil {
		if !create {
			return nil
		}
		inner = brs.CreateElement("brsynth:brsynth")
		inner.CreateAttr("xmlns:brsynth", brsynthNS)
	}
	return inner
}

// resource returns the rdf:resource attribute of a bag item.
func resource(li *etree.Element) string {
	if v := li.SelectAttrValue("rdf:resource", ""); v != "" {
		return v
	}
	return li.SelectAttrValue("resource", "")
}
