package ui

import "strings"

// logViewOverhead is the number of rows consumed by the header, spacing and
// search prompt in the log view.
const logViewOverhead = 3

// logContextSize is how many lines are shown around each search hit.
const logContextSize = 3

// logContextLine is one display row in the context-window log view.
type logContextLine struct {
	lineNo  int // 1-based original line number; 0 = blank separator
	text    string
	isMatch bool
}

// fuzzyMatch returns true if every character of query appears in order in line (case-insensitive).
func fuzzyMatch(line, query string) bool {
	line = strings.ToLower(line)
	query = strings.ToLower(query)
	queryRunes := []rune(query)
	qi := 0
	for _, ch := range line {
		if qi < len(queryRunes) && ch == queryRunes[qi] {
			qi++
		}
	}
	return qi == len(queryRunes)
}

// buildLogContext produces a grep -C ctx style context-window view.
// Returns the flat row list and, for each match group, the row offset where it starts.
func buildLogContext(lines []string, query string, ctx int) (rows []logContextLine, groupOffsets []int) {
	// collect matching line indices
	var matches []int
	for i, l := range lines {
		if fuzzyMatch(l, query) {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return
	}

	// merge overlapping windows and emit rows
	prevEnd := -1
	for _, mIdx := range matches {
		start := max(0, mIdx-ctx)
		end := min(len(lines)-1, mIdx+ctx)

		if prevEnd < 0 || start > prevEnd+1 {
			// new non-adjacent group
			if prevEnd >= 0 {
				rows = append(rows, logContextLine{}) // blank separator
			}
			groupOffsets = append(groupOffsets, len(rows))
			for i := start; i <= end; i++ {
				rows = append(rows, logContextLine{lineNo: i + 1, text: lines[i], isMatch: i == mIdx})
			}
		} else {
			// overlapping with previous group: extend (this match is another hit inside same window)
			// mark the match line itself if it wasn't already included
			for i := prevEnd + 1; i <= end; i++ {
				rows = append(rows, logContextLine{lineNo: i + 1, text: lines[i], isMatch: i == mIdx})
			}
			// also mark already-emitted rows that happen to be this match
			for j := range rows {
				if rows[j].lineNo == mIdx+1 {
					rows[j].isMatch = true
					break
				}
			}
		}
		prevEnd = end
	}
	return
}
