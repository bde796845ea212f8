package extraction

import "strings"

// markerLine returns the index of the line where the secondary body marker
// begins, or -1. The page is tested as one blob so markers split across
// lines are still found.
func markerLine(lines []string) int {
	blob := strings.Join(lines, "\n")
	loc := secondaryMarker.FindStringIndex(blob)
	if loc == nil {
		return -1
	}
	return strings.Count(blob[:loc[0]], "\n")
}
