// Package sizes orders mixed numeric and letter size labels for display.
//
// Labels come from two families: numeric ranges ("38", "41") and letter
// sizes built from a core letter plus leading "X" repeats ("XS", "S", "M",
// "L", "XL", "XXL"). Numeric labels always precede letter labels; letter
// labels sort ascending by garment size (XS < S < M < L < XL < XXL).
package sizes

import (
	"fmt"
	"sort"
	"strings"
)

type labelKind int

const (
	kindNumeric labelKind = iota
	kindLetter
)

// parsed is the tagged form of a size label: either a numeric size or a
// letter size split into its final letter and the prefix before it.
type parsed struct {
	kind   labelKind
	number int
	final  string
	prefix string
}

func parse(label string) parsed {
	if label == "" {
		return parsed{kind: kindLetter}
	}

	if label[0] >= '0' && label[0] <= '9' {
		n := 0
		for i := 0; i < len(label) && label[i] >= '0' && label[i] <= '9'; i++ {
			n = n*10 + int(label[i]-'0')
		}
		return parsed{kind: kindNumeric, number: n}
	}

	return parsed{
		kind:   kindLetter,
		final:  label[len(label)-1:],
		prefix: label[:len(label)-1],
	}
}

// Compare is a total order over size labels. It returns a negative value
// when a sorts before b, zero when equal, positive otherwise.
func Compare(a, b string) int {
	pa, pb := parse(a), parse(b)

	if pa.kind == kindNumeric && pb.kind == kindNumeric {
		return pa.number - pb.number
	}

	// numeric ranges go before letter sizes
	if pa.kind == kindNumeric {
		return -1
	}
	if pb.kind == kindNumeric {
		return 1
	}

	// Different size divisions (S/M/L): the X prefix is irrelevant, and the
	// final letters happen to sort by reverse alphabet (S < M < L).
	if pa.final != pb.final {
		return strings.Compare(pb.final, pa.final)
	}

	// Same division. More leading X's means smaller in the S family
	// (XS < S) but larger everywhere else (L < XL < XXL).
	if pa.final == "S" {
		return strings.Compare(pb.prefix, pa.prefix)
	}
	return strings.Compare(pa.prefix, pb.prefix)
}

// Sort orders labels in place using Compare.
func Sort(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return Compare(labels[i], labels[j]) < 0
	})
}

// Sorted returns an ordered copy of labels.
func Sorted(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	Sort(out)
	return out
}

// Range returns the 5-wide bucket label containing the numeric size n,
// e.g. 42 -> "41 - 45". Used to group numeric sizes into filterable ranges.
func Range(n int) string {
	ceiling := (n + 4) / 5 * 5
	return fmt.Sprintf("%d - %d", ceiling-4, ceiling)
}
