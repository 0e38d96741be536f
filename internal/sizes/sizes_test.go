package sizes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortMixedFamilies(t *testing.T) {
	labels := []string{"L", "XL", "S", "XS", "38", "41"}
	Sort(labels)
	assert.Equal(t, []string{"38", "41", "XS", "S", "L", "XL"}, labels)
}

func TestSortFullLetterLadder(t *testing.T) {
	labels := []string{"XXL", "M", "XS", "XL", "S", "L", "XXS"}
	Sort(labels)
	assert.Equal(t, []string{"XXS", "XS", "S", "M", "L", "XL", "XXL"}, labels)
}

func TestSortNumericAscending(t *testing.T) {
	labels := []string{"44", "38", "41", "39"}
	Sort(labels)
	assert.Equal(t, []string{"38", "39", "41", "44"}, labels)
}

func TestNumericPrecedesLetters(t *testing.T) {
	assert.Negative(t, Compare("41", "XS"))
	assert.Negative(t, Compare("38", "M"))
	assert.Positive(t, Compare("L", "44"))
}

func TestCompareDivisions(t *testing.T) {
	// S before M before L regardless of X prefixes
	assert.Negative(t, Compare("S", "M"))
	assert.Negative(t, Compare("M", "L"))
	assert.Negative(t, Compare("XS", "M"))
	assert.Negative(t, Compare("M", "XXL"))
}

func TestCompareSameDivision(t *testing.T) {
	// the S family is reversed: more X's is smaller
	assert.Negative(t, Compare("XS", "S"))
	assert.Negative(t, Compare("XXS", "XS"))

	// the L family grows with X's
	assert.Negative(t, Compare("L", "XL"))
	assert.Negative(t, Compare("XL", "XXL"))
}

func TestCompareEqual(t *testing.T) {
	assert.Zero(t, Compare("M", "M"))
	assert.Zero(t, Compare("41", "41"))
	assert.Zero(t, Compare("XL", "XL"))
}

func TestSortStable(t *testing.T) {
	labels := []string{"M", "M", "S"}
	Sort(labels)
	assert.Equal(t, []string{"S", "M", "M"}, labels)
}

func TestSortedCopies(t *testing.T) {
	labels := []string{"L", "S"}
	out := Sorted(labels)
	assert.Equal(t, []string{"S", "L"}, out)
	assert.Equal(t, []string{"L", "S"}, labels)
}

func TestRange(t *testing.T) {
	tests := []struct {
		size int
		want string
	}{
		{42, "41 - 45"},
		{45, "41 - 45"},
		{46, "46 - 50"},
		{41, "41 - 45"},
		{40, "36 - 40"},
		{1, "1 - 5"},
		{5, "1 - 5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Range(tt.size), "Range(%d)", tt.size)
	}
}
