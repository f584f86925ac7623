package match

import (
	"strings"

	"go.uber.org/zap"
)

// CompareEC scores two cross-reference tables by their EC numbers. Each code
// splits on '.', '-' components drop, missing components pad to four; equal
// components award 0.25 each, stopping at the first difference. The best
// score over all code pairs wins. A side without EC entries scores 0.
func CompareEC(sourceXref, targetXref map[string][]string, logger *zap.Logger) float64 {
	if logger == nil {
		logger = zap.NewNop()
	}
	src := sourceXref["ec-code"]
	tgt := targetXref["ec-code"]
	if len(src) == 0 || len(tgt) == 0 {
		logger.Warn("missing EC numbers, scoring 0",
			zap.Strings("source", src),
			zap.Strings("target", tgt))
		return 0
	}
	best := 0.0
	for _, a := range src {
		for _, b := range tgt {
			if v := compareECPair(a, b); v > best {
				best = v
			}
		}
	}
	return best
}

func compareECPair(a, b string) float64 {
	pa, pb := ecParts(a), ecParts(b)
	score := 0.0
	for i := 0; i < 4; i++ {
		if pa[i] == "" || pb[i] == "" || pa[i] != pb[i] {
			break
		}
		score += 0.25
	}
	return score
}

// ecParts splits an EC code into four components, dropping '-' wildcards and
// padding the tail with empties.
func ecParts(code string) [4]string {
	var out [4]string
	i := 0
	for _, part := range strings.Split(code, ".") {
		if part == "-" || i == 4 {
			continue
		}
		out[i] = part
		i++
	}
	return out
}
