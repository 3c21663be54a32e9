// Package authz provides the authorization context used both as a
// search-index identity key and as the header sent with every SPARQL
// request: a normalised representation of a caller's allowed groups.
package authz

import (
	"encoding/json"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Group is one allowed-groups entry: a named access right plus the
// variables that parametrise it.
type Group struct {
	Name      string   `json:"group"`
	Variables []string `json:"variables,omitempty"`
}

// AllowedGroups is an authorization context: an unordered set of Groups.
// Use Canonical before comparing, hashing or persisting one.
type AllowedGroups []Group

// canonicalCache memoises canonicalisation for repeated group sets, keyed
// on the pre-canonical JSON encoding (order-sensitive, so it is only a
// cache - not itself a canonical form).
var canonicalCache, _ = lru.New[string, AllowedGroups](4096)

// Canonical returns the canonical form of g: each group's JSON
// representation is computed with sorted keys, then the groups are
// sorted by that serialised form. Structural equality is defined over
// this form.
func Canonical(g AllowedGroups) AllowedGroups {
	if len(g) == 0 {
		return AllowedGroups{}
	}

	if key, err := json.Marshal(g); err == nil {
		if cached, ok := canonicalCache.Get(string(key)); ok {
			return cached
		}
	}

	out := make(AllowedGroups, len(g))
	copy(out, g)
	for i := range out {
		sort.Strings(out[i].Variables)
	}
	sort.Slice(out, func(i, j int) bool {
		return canonicalGroupKey(out[i]) < canonicalGroupKey(out[j])
	})

	if key, err := json.Marshal(g); err == nil {
		canonicalCache.Add(string(key), out)
	}
	return out
}

func canonicalGroupKey(g Group) string {
	b, _ := json.Marshal(g)
	return string(b)
}

// CacheKey is the canonical form's JSON encoding, suitable as a map key
// or as the SPARQL authorization header value.
func CacheKey(g AllowedGroups) string {
	b, _ := json.Marshal(Canonical(g))
	return string(b)
}

// Equal reports structural equality over the canonical form of a and b.
func Equal(a, b AllowedGroups) bool {
	return CacheKey(a) == CacheKey(b)
}

// contains reports whether g structurally contains group.
func contains(g AllowedGroups, group Group) bool {
	for _, candidate := range g {
		if candidate.Name == group.Name && sameVariables(candidate.Variables, group.Variables) {
			return true
		}
	}
	return false
}

func sameVariables(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string{}, a...)
	sb := append([]string{}, b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// Subset reports whether every element of a is structurally present in
// b (a ⊆ b).
func Subset(a, b AllowedGroups) bool {
	for _, group := range a {
		if !contains(b, group) {
			return false
		}
	}
	return true
}

// Covers reports whether the union of the groups' allowed-groups sets
// covers every element of target.
func Covers(groups []AllowedGroups, target AllowedGroups) bool {
	for _, want := range target {
		found := false
		for _, g := range groups {
			if contains(g, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
