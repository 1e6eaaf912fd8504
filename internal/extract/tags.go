package extract

import "strings"

// DefaultMaxTags caps the merged tag list.
const DefaultMaxTags = 6

// MergeTags combines user-supplied tags with model-suggested tags. User tags
// are kept verbatim in input order. A suggested tag is appended only when its
// lowercase form does not already appear (case-insensitively) in the list.
// The result is truncated to limit entries; limit <= 0 means DefaultMaxTags.
func MergeTags(userTags, suggested []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxTags
	}
	merged := make([]string, 0, len(userTags)+len(suggested))
	seen := make(map[string]struct{}, len(userTags))
	for _, t := range userTags {
		merged = append(merged, t)
		seen[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range suggested {
		if _, dup := seen[strings.ToLower(t)]; dup {
			continue
		}
		merged = append(merged, t)
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
