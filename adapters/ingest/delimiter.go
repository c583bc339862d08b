package ingest

import "bufio"

// candidateDelimiters in tie-break order.
var candidateDelimiters = []rune{',', ';', '\t'}

// DetectDelimiter picks the most frequent of comma, semicolon and tab in the first line,
// ignoring characters inside double quotes. Comma wins ties and empty lines.
func DetectDelimiter(firstLine string) rune {
	counts := make(map[rune]int, len(candidateDelimiters))
	quoted := false
	for _, r := range firstLine {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

// firstLine returns text up to the first line break.
func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' || r == '\r' {
			return text[:i]
		}
	}
	return text
}

// SniffDelimiter detects the delimiter from the first buffered line of r without
// consuming any input.
func SniffDelimiter(r *bufio.Reader) rune {
	// a short read still returns what is buffered
	head, _ := r.Peek(r.Size())
	return DetectDelimiter(firstLine(string(head)))
}
