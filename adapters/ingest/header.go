package ingest

import "labchart/domain/dataset"

// DefaultHeaderSampleRows is how many leading rows the header detector inspects.
const DefaultHeaderSampleRows = 5

// HeaderMode says whether the first row is a header, or asks for detection.
type HeaderMode int

const (
	HeaderAuto HeaderMode = iota
	HeaderPresent
	HeaderAbsent
)

// HeaderDetector decides whether the first row of a file is a header row.
type HeaderDetector struct {
	coercer *TypeCoercer
}

// NewHeaderDetector creates a detector that types cells with the given coercer
func NewHeaderDetector(coercer *TypeCoercer) *HeaderDetector {
	return &HeaderDetector{coercer: coercer}
}

// HasHeader inspects the first rows of tokenized fields. For every column it infers the
// kind of rows 2..K; a column whose data rows read consistently as a non-text kind while
// the first row's cell does not is evidence of a header. With fewer than two data rows, or
// no column typed well enough to give evidence, the answer is true.
func (h *HeaderDetector) HasHeader(rows [][]string) bool {
	if len(rows) < 3 {
		return true
	}

	first := rows[0]
	evidence := 0
	for col := range first {
		cells := make([]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			if col < len(row) {
				cells = append(cells, row[col])
			}
		}

		nonMissing := 0
		for _, c := range cells {
			if !h.coercer.IsMissing(c) {
				nonMissing++
			}
		}
		if nonMissing == 0 {
			continue
		}

		kind := h.coercer.InferKind(cells)
		if kind == dataset.KindText {
			continue
		}
		evidence++
		if h.coercer.IsMissing(first[col]) {
			continue
		}
		if !h.coercer.Parses(first[col], kind) {
			return true
		}
	}
	return evidence == 0
}
