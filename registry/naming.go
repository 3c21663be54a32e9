package registry

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/nbittich/mu-search/authz"
)

// IndexName computes a Search Index's stable, content-derived name:
// MD5(type_name + "-" + join("-", for each g in canonical_allowed_groups:
// json_with_sorted_keys(g))). Recomputing it for the same identity tuple
// always yields the same value (invariant I2).
func IndexName(typeName string, allowedGroups authz.AllowedGroups) string {
	canonical := authz.Canonical(allowedGroups)

	parts := make([]string, 0, len(canonical))
	for _, g := range canonical {
		encoded, _ := json.Marshal(g)
		parts = append(parts, string(encoded))
	}

	joined := typeName + "-" + strings.Join(parts, "-")
	sum := md5.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}
