package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Identity(t *testing.T) {
	for _, name := range []string{"Pfizer", "Acme Biotech, Inc.", "x", "Sandoz Group"} {
		assert.Equal(t, 1.0, Score(name, name, NormalizeCompany), "input %q", name)
	}
}

func TestScore_ExactAfterNormalization(t *testing.T) {
	assert.Equal(t, 1.0, Score("Pfizer Inc.", "PFIZER", NormalizeCompany))
	assert.Equal(t, 1.0, Score("Acme Biotech, Inc.", "ACME BIOTECH INC", NormalizeCompany))
}

func TestScore_ContainmentVariant(t *testing.T) {
	// "Sandoz Group" normalizes to "sandoz", so this hits the exact branch;
	// a genuinely longer variant hits containment and must clear the
	// resolution threshold.
	assert.GreaterOrEqual(t, Score("Sandoz", "Sandoz Group", NormalizeCompany), 0.85)

	// "fujifilm" is contained in "fujifilm diosynth": 0.9 * 8/17 + 0.1.
	score := Score("Fujifilm", "Fujifilm Diosynth", NormalizeCompany)
	assert.InDelta(t, 0.9*(8.0/17.0)+0.1, score, 1e-9)
}

func TestScore_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Score("", "Pfizer", NormalizeCompany))
	assert.Equal(t, 0.0, Score("Pfizer", "", NormalizeCompany))
}

func TestScore_DissimilarNamesLow(t *testing.T) {
	assert.Less(t, Score("Pfizer", "Moderna", NormalizeCompany), 0.85)
}

func TestScore_PersonNames(t *testing.T) {
	assert.Equal(t, 1.0, Score("Dr. John Smith", "Smith, John", NormalizePerson))
	assert.Equal(t, 1.0, Score("María García", "Maria Garcia", NormalizePerson))
}

func TestLCSRatio_Bounds(t *testing.T) {
	assert.Equal(t, 1.0, lcsRatio("abc", "abc"))
	assert.Equal(t, 0.0, lcsRatio("abc", "xyz"))
	r := lcsRatio("kitten", "sitting")
	assert.Greater(t, r, 0.0)
	assert.Less(t, r, 1.0)
}
