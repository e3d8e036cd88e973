package exporter

import (
	"strconv"

	"sumocli/pkg/contracts/domain"
)

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatString writes a null as the empty string
func formatString(n domain.Nullable[string]) string {
	return n.OrElse("")
}

// formatFlag writes a flag as 1/0, null as the empty string
func formatFlag(n domain.Nullable[bool]) string {
	v, ok := n.Get()
	switch {
	case !ok:
		return ""
	case v:
		return "1"
	default:
		return "0"
	}
}

// formatDuplicate writes the duplicate marker column
func formatDuplicate(dup bool) string {
	if dup {
		return domain.DuplicateMarker
	}
	return ""
}
