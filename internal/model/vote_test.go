package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	for _, in := range []string{"s", "S", " a ", "b", "C", "d", "ignored", "Ignored"} {
		tier, err := ParseTier(in)
		require.NoError(t, err, in)
		assert.True(t, tier.Valid())
	}
	tier, _ := ParseTier("ignored")
	assert.Equal(t, TierIgnored, tier)

	for _, in := range []string{"", "E", "SS", "none"} {
		_, err := ParseTier(in)
		assert.Error(t, err, in)
	}
}

func TestTierWeights(t *testing.T) {
	sum := 0
	counted := 0
	for _, tier := range []Tier{TierS, TierA, TierB, TierC, TierD} {
		sum += tier.Weight()
		if tier.Counted() {
			counted++
		}
	}
	assert.Equal(t, 3, sum)
	assert.Equal(t, 5, counted)
	assert.Equal(t, 0, TierIgnored.Weight())
	assert.False(t, TierIgnored.Counted())
}

func TestScope(t *testing.T) {
	assert.Equal(t, GlobalScope, ScopeOf(nil))
	id := "r1"
	assert.Equal(t, "r1", ScopeOf(&id))
	assert.Nil(t, RoomIDOf(GlobalScope))
	assert.Equal(t, "r1", *RoomIDOf("r1"))
	assert.Equal(t, "foo", NormalizeItemName("  FoO "))
}
