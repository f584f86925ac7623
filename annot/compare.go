package annot

// SameCrossRef reports whether two cross-reference tables share at least one
// external id under a common database key.
func SameCrossRef(a, b map[string][]string) bool {
	for db, ids := range a {
		other, ok := b[db]
		if !ok {
			continue
		}
		have := map[string]bool{}
		for _, id := range other {
			have[id] = true
		}
		for _, id := range ids {
			if have[id] {
				return true
			}
		}
	}
	return false
}

// SameScientific reports whether two scientific metadata records agree on at
// least one comparable field. Pathway bookkeeping (path/step/sub-step indices,
// rule provenance and rule score) is excluded: it identifies a pathway
// position, not the chemistry.
func SameScientific(a, b Scientific) bool {
	if a.InChIKey != "" && a.InChIKey == b.InChIKey {
		return true
	}
	if a.InChI != "" && a.InChI == b.InChI {
		return true
	}
	if a.SMILES != "" && a.SMILES == b.SMILES {
		return true
	}
	if sameMeasure(a.DfGPrime0, b.DfGPrime0) ||
		sameMeasure(a.DfGPrimeM, b.DfGPrimeM) ||
		sameMeasure(a.DfGUncert, b.DfGUncert) ||
		sameMeasure(a.FluxValue, b.FluxValue) {
		return true
	}
	if a.GlobalScore != nil && b.GlobalScore != nil && *a.GlobalScore == *b.GlobalScore {
		return true
	}
	return false
}

func sameMeasure(a, b *Measure) bool {
	return a != nil && b != nil && a.Value != nil && b.Value != nil && *a.Value == *b.Value
}
