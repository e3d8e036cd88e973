package checkpoint

// Remaining returns the members of all that are not in completed, in the
// order they first appear in all. Repeated members are reported once.
func Remaining[K comparable](all, completed []K) []K {
	done := make(map[K]struct{}, len(completed))
	for _, k := range completed {
		done[k] = struct{}{}
	}

	out := make([]K, 0, len(all))
	for _, k := range all {
		if _, ok := done[k]; ok {
			continue
		}
		done[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
