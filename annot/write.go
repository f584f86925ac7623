package annot

import (
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Entry is one scientific metadata value to upsert: raw text alone, a value
// attribute with optional units, or a named sub-table.
type Entry struct {
	Raw    string
	Value  string
	Units  string
	Table  map[string]float64
	Sorted bool // write Table entries by descending value instead of by name
}

// Raw returns an entry holding bare text content.
func Raw(text string) Entry {
	return Entry{Raw: text}
}

// Value returns an entry holding a numeric value attribute.
func Value(v float64, units string) Entry {
	return Entry{Value: strconv.FormatFloat(v, 'g', -1, 64), Units: units}
}

// IntValue returns an entry holding an integer value attribute.
func IntValue(v int) Entry {
	return Entry{Value: strconv.Itoa(v)}
}

// Table returns an entry holding a named sub-table.
func Table(values map[string]float64, sorted bool) Entry {
	return Entry{Table: values, Sorted: sorted}
}

// UpsertScientific writes one scientific metadata entry, creating the
// annotation skeleton when absent and replacing any existing entry with the
// same key.
func UpsertScientific(a *Annotation, key string, entry Entry) {
	inner := a.scientific(true)
	for _, child := range inner.ChildElements() {
		if child.Tag == key {
			inner.RemoveChild(child)
			break
		}
	}
	el := inner.CreateElement("brsynth:" + key)
	switch {
	case entry.Table != nil:
		names := make([]string, 0, len(entry.Table))
		for name := range entry.Table {
			names = append(names, name)
		}
		if entry.Sorted {
			sort.Slice(names, func(i, j int) bool {
				if entry.Table[names[i]] != entry.Table[names[j]] {
					return entry.Table[names[i]] > entry.Table[names[j]]
				}
				return names[i] < names[j]
			})
		} else {
			sort.Strings(names)
		}
		for _, name := range names {
			sub := el.CreateElement("brsynth:" + name)
			sub.CreateAttr("value", strconv.FormatFloat(entry.Table[name], 'g', -1, 64))
			if entry.Units != "" {
				sub.CreateAttr("units", entry.Units)
			}
		}
	case entry.Raw != "":
		el.SetText(entry.Raw)
	default:
		el.CreateAttr("value", entry.Value)
		if entry.Units != "" {
			el.CreateAttr("units", entry.Units)
		}
	}
}

// UpsertCrossRefs inserts the cross-references from xref that are not already
// present in the annotation bag, using the identifiers.org prefix table for
// the entity kind. xref keys are database short names; unknown names are
// logged and skipped. Species kegg ids route to kegg.compound or kegg.drug by
// their first letter.
func UpsertCrossRefs(a *Annotation, kind Kind, xref map[string][]string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	table, ok := prefixes[kind]
	if !ok {
		logger.Warn("unknown cross-reference kind", zap.String("kind", string(kind)))
		return
	}
	bag := a.bag(true)
	toadd := diffCrossRefs(existingShortRefs(bag, kind), xref)

	dbs := make([]string, 0, len(toadd))
	for db := range toadd {
		dbs = append(dbs, db)
	}
	sort.Strings(dbs)
	for _, db := range dbs {
		for _, id := range toadd[db] {
			short := db
			if kind == KindSpecies && db == "kegg" && id != "" {
				switch id[0] {
				case 'C':
					short = "kegg_c"
				case 'D':
					short = "kegg_d"
				}
			}
			prefix, ok := table[short]
			if !ok {
				logger.Warn("unknown cross-reference database",
					zap.String("database", db), zap.String("kind", string(kind)))
				continue
			}
			li := etree.NewElement("rdf:li")
			li.CreateAttr("rdf:resource", identifiersBase+prefix+id)
			bag.InsertChildAt(0, li)
		}
	}
}

// existingShortRefs reads the bag back into short-name keyed form so new
// entries can be diffed against what is already written.
func existingShortRefs(bag *etree.Element, kind Kind) map[string][]string {
	out := map[string][]string{}
	for _, li := range bag.ChildElements() {
		uri := resource(li)
		segs := strings.Split(uri, "/")
		if len(segs) < 2 {
			continue
		}
		db := segs[len(segs)-2]
		short, ok := databases[kind][db]
		if !ok {
			continue
		}
		id := segs[len(segs)-1]
		if parts := strings.Split(id, ":"); len(parts) == 2 {
			id = parts[1]
		}
		out[short] = append(out[short], id)
	}
	return out
}

// diffCrossRefs returns the entries of toadd not already present in current.
func diffCrossRefs(current, toadd map[string][]string) map[string][]string {
	out := map[string][]string{}
	for db, ids := range toadd {
		have := map[string]bool{}
		for _, id := range current[db] {
			have[id] = true
		}
		for _, id := range ids {
			if !have[id] {
				out[db] = append(out[db], id)
			}
		}
	}
	return out
}
