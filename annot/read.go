package annot

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Measure is a numeric metadata entry with an optional unit. Value is nil when
// the annotated text failed numeric parsing.
type Measure struct {
	Units string   `json:"units,omitempty"`
	Value *float64 `json:"value"`
}

// Scientific is the typed view over the BRSynth metadata block. Fields are nil
// or empty when the corresponding entry is absent; unrecognized entries are
// passed through in Extra.
type Scientific struct {
	DfGPrime0 *Measure `json:"dfG_prime_o,omitempty"`
	DfGPrimeM *Measure `json:"dfG_prime_m,omitempty"`
	DfGUncert *Measure `json:"dfG_uncert,omitempty"`
	FluxValue *Measure `json:"flux_value,omitempty"`
	// Fluxes keys the fba_-prefixed family by objective name (prefix stripped).
	Fluxes map[string]Measure `json:"fluxes,omitempty"`

	PathID    *int `json:"path_id,omitempty"`
	StepID    *int `json:"step_id,omitempty"`
	SubStepID *int `json:"sub_step_id,omitempty"`

	RuleScore   *float64           `json:"rule_score,omitempty"`
	GlobalScore *float64           `json:"global_score,omitempty"`
	Norms       map[string]float64 `json:"norms,omitempty"`

	SMILES      string `json:"smiles,omitempty"`
	InChI       string `json:"inchi,omitempty"`
	InChIKey    string `json:"inchikey,omitempty"`
	RuleID      string `json:"rule_id,omitempty"`
	RuleOriReac string `json:"rule_ori_reac,omitempty"`

	Selenzyme map[string]float64 `json:"selenzyme,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// CrossRefs extracts the MIRIAM cross-reference table: database short name to
// the list of external ids. The database is the second-to-last URI segment
// truncated at its first dot, so kegg.compound and kegg.drug collapse into a
// single kegg table. An absent or malformed annotation yields an empty map.
func CrossRefs(a *Annotation) map[string][]string {
	out := map[string][]string{}
	bag := a.bag(false)
	if bag == nil {
		return out
	}
	for _, li := range bag.ChildElements() {
		uri := resource(li)
		if uri == "" {
			continue
		}
		segs := strings.Split(uri, "/")
		if len(segs) < 2 {
			continue
		}
		db := strings.SplitN(segs[len(segs)-2], ".", 2)[0]
		id := segs[len(segs)-1]
		if parts := strings.Split(id, ":"); len(parts) == 2 {
			id = parts[1]
		}
		out[db] = append(out[db], id)
	}
	return out
}

// ReadScientific parses the scientific metadata block. An absent or malformed
// annotation yields the zero value; entries whose value fails numeric parsing
// are kept with a nil value and logged, never raised.
func ReadScientific(a *Annotation, logger *zap.Logger) Scientific {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out Scientific
	inner := a.scientific(false)
	if inner == nil {
		return out
	}
	for _, child := range inner.ChildElements() {
		name := child.Tag
		switch {
		case name == "dfG_prime_o":
			out.DfGPrime0 = readMeasure(child, logger)
		case name == "dfG_prime_m":
			out.DfGPrimeM = readMeasure(child, logger)
		case name == "dfG_uncert":
			out.DfGUncert = readMeasure(child, logger)
		case name == "flux_value":
			out.FluxValue = readMeasure(child, logger)
		case strings.HasPrefix(name, "fba_"):
			if out.Fluxes == nil {
				out.Fluxes = map[string]Measure{}
			}
			out.Fluxes[strings.TrimPrefix(name, "fba_")] = *readMeasure(child, logger)
		case name == "path_id":
			out.PathID = readInt(child)
		case name == "step_id":
			out.StepID = readInt(child)
		case name == "sub_step_id":
			out.SubStepID = readInt(child)
		case name == "rule_score":
			out.RuleScore = readFloat(child)
		case name == "global_score":
			out.GlobalScore = readFloat(child)
		case strings.HasPrefix(name, "norm_"):
			if v := readFloat(child); v != nil {
				if out.Norms == nil {
					out.Norms = map[string]float64{}
				}
				out.Norms[strings.TrimPrefix(name, "norm_")] = *v
			}
		case name == "smiles":
			out.SMILES = strings.ReplaceAll(child.Text(), "&gt;", ">")
		case name == "inchi":
			out.InChI = child.Text()
		case name == "inchikey":
			out.InChIKey = child.Text()
		case name == "rule_id":
			out.RuleID = child.Text()
		case name == "rule_ori_reac":
			out.RuleOriReac = child.Text()
		case name == "selenzyme":
			for _, entry := range child.ChildElements() {
				v, err := strconv.ParseFloat(entry.SelectAttrValue("value", ""), 64)
				if err != nil {
					logger.Warn("selenzyme score is not numeric",
						zap.String("enzyme", entry.Tag),
						zap.String("value", entry.SelectAttrValue("value", "")))
					continue
				}
				if out.Selenzyme == nil {
					out.Selenzyme = map[string]float64{}
				}
				out.Selenzyme[entry.Tag] = v
			}
		default:
			if out.Extra == nil {
				out.Extra = map[string]string{}
			}
			out.Extra[name] = child.Text()
		}
	}
	return out
}

func readMeasure(el *etree.Element, logger *zap.Logger) *Measure {
	m := &Measure{Units: el.SelectAttrValue("units", "")}
	raw := el.SelectAttrValue("value", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("cannot interpret annotation value",
			zap.String("entry", el.Tag), zap.String("value", raw))
		return m
	}
	m.Value = &v
	return m
}

func readInt(el *etree.Element) *int {
	v, err := strconv.Atoi(el.SelectAttrValue("value", ""))
	if err != nil {
		return nil
	}
	return &v
}

func readFloat(el *etree.Element) *float64 {
	v, err := strconv.ParseFloat(el.SelectAttrValue("value", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}
