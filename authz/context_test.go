package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical_SortsGroupsAndVariables(t *testing.T) {
	a := AllowedGroups{
		{Name: "reader", Variables: []string{"b", "a"}},
		{Name: "editor"},
	}
	b := AllowedGroups{
		{Name: "editor"},
		{Name: "reader", Variables: []string{"a", "b"}},
	}

	assert.True(t, Equal(a, b))
	assert.Equal(t, CacheKey(a), CacheKey(b))
}

func TestCanonical_DeterministicUnderPermutation(t *testing.T) {
	groups := AllowedGroups{
		{Name: "z"}, {Name: "a"}, {Name: "m"},
	}
	shuffled := AllowedGroups{groups[2], groups[0], groups[1]}

	assert.Equal(t, CacheKey(groups), CacheKey(shuffled))
}

func TestSubset(t *testing.T) {
	a := AllowedGroups{{Name: "reader"}}
	b := AllowedGroups{{Name: "reader"}, {Name: "editor"}}

	assert.True(t, Subset(a, b))
	assert.False(t, Subset(b, a))
}

func TestCovers(t *testing.T) {
	eagerReader := AllowedGroups{{Name: "reader"}}
	eagerEditor := AllowedGroups{{Name: "editor"}}
	target := AllowedGroups{{Name: "reader"}, {Name: "editor"}}

	assert.True(t, Covers([]AllowedGroups{eagerReader, eagerEditor}, target))
	assert.False(t, Covers([]AllowedGroups{eagerReader}, target))
}

func TestEqual_EmptyGroups(t *testing.T) {
	assert.True(t, Equal(nil, AllowedGroups{}))
}
