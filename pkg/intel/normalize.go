package intel

import (
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// normalizer folds halfwidth/fullwidth variants and applies NFKC so that
// digits and latin letters smuggled in as unicode look-alikes (fullwidth
// "９８７６…", ligatures) still hit the ASCII extraction rules.
var normalizer = transform.Chain(width.Fold, norm.NFKC)

// NormalizeText returns the unicode-normalized form of s. On transform
// failure the input is returned unchanged; extraction stays total.
func NormalizeText(s string) string {
	out, _, err := transform.String(normalizer, s)
	if err != nil {
		return s
	}
	return out
}
