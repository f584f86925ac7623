package sbml

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// compartmentSep joins a species base id to its compartment id; __64__ is the
// escaped '@' of the cobra naming convention.
const compartmentSep = "__64__"

// SanitizeID maps a free-form name onto the SBML id alphabet: every character
// outside [0-9a-zA-Z] becomes '_', a leading digit gains a '_' prefix, and one
// trailing '_' is stripped.
func SanitizeID(name string) string {
	if name == "" {
		return name
	}
	var b strings.Builder
	if name[0] >= '0' && name[0] <= '9' {
		b.WriteByte('_')
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	id := b.String()
	return strings.TrimSuffix(id, "_")
}

// MetaID derives a stable metaid from a name: the sha256 hex digest passed
// through SanitizeID.
func MetaID(name string) string {
	sum := sha256.Sum256([]byte(name))
	return SanitizeID(hex.EncodeToString(sum[:]))
}

// SpeciesID builds the compartment-qualified species id.
func SpeciesID(base, compartmentID string) string {
	return base + compartmentSep + compartmentID
}

// SpeciesBase strips the compartment qualifier from a species id, returning
// the base and the compartment; ok is false when the id is unqualified.
func SpeciesBase(id string) (base, compartment string, ok bool) {
	i := strings.Index(id, compartmentSep)
	if i < 0 {
		return id, "", false
	}
	return id[:i], id[i+len(compartmentSep):], true
}

// FluxParamID generates the deduplicating parameter id for a flux bound
// value: B_<value> for non-negative values, B__<value> otherwise, with the
// absolute value rounded to 4 decimals and '.' replaced by '_'.
func FluxParamID(value float64) string {
	rounded := math.Round(math.Abs(value)*1e4) / 1e4
	text := strings.ReplaceAll(strconv.FormatFloat(rounded, 'g', -1, 64), ".", "_")
	if value >= 0 {
		return "B_" + text
	}
	return "B__" + text
}
