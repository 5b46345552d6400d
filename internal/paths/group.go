package paths

// RootGroup keys templates that have no path segment at all ("/").
const RootGroup = "index"

// Group is one bucket of URL templates sharing a first path segment.
type Group struct {
	Key       string
	Templates []string
}

// GroupKey returns the first non-empty segment of raw. A placeholder segment
// is returned with its braces ("{tenant}"); it is never resolved.
func GroupKey(raw string) string {
	t := Parse(raw)
	if len(t.Parts) == 0 {
		return RootGroup
	}
	return t.Parts[0].Raw
}

// IsPlaceholderKey reports whether a group key came from a placeholder segment.
func IsPlaceholderKey(key string) bool {
	t := Parse(key)
	return len(t.Parts) == 1 && t.Parts[0].IsPlaceholder()
}

// GroupByPrefix buckets templates by GroupKey. Groups come out in order of
// first appearance and each group keeps the input order of its templates.
func GroupByPrefix(templates []string) []Group {
	var groups []Group
	index := map[string]int{}
	for _, raw := range templates {
		key := GroupKey(raw)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Templates = append(groups[i].Templates, raw)
	}
	return groups
}
