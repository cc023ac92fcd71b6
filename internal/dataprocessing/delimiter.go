package dataprocessing

import (
	"encoding/csv"
	"io"
	"strings"
)

// sniffLines is how many leading lines the delimiter sniffer inspects.
const sniffLines = 10

// sniffCandidates is the preference order used when several delimiters
// split the sample equally well.
var sniffCandidates = []rune{',', '\t', ';', '|'}

// countCandidates is the tie-break order of the first-line counting fallback.
var countCandidates = []rune{'\t', ';', ',', '|'}

// DetectDelimiter returns the field separator most likely used by sample.
// An empty sample yields a comma.
func DetectDelimiter(sample string) rune {
	if sample == "" {
		return ','
	}

	if d, ok := sniffDelimiter(sample); ok {
		return d
	}
	return countDelimiter(sample)
}

// sniffDelimiter looks for the candidate that splits every sample line into
// the same number of fields (more than one). The widest split wins.
func sniffDelimiter(sample string) (rune, bool) {
	lines := strings.Split(sample, "\n")
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}
	head := strings.Join(lines, "\n")

	best := rune(0)
	bestFields := 0
	for _, candidate := range sniffCandidates {
		fields, ok := consistentFieldCount(head, candidate)
		if !ok {
			continue
		}
		if fields > bestFields {
			best = candidate
			bestFields = fields
		}
	}
	return best, bestFields > 1
}

func consistentFieldCount(sample string, delimiter rune) (int, bool) {
	reader := csv.NewReader(strings.NewReader(sample))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	count := -1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false
		}
		if count == -1 {
			count = len(row)
		} else if len(row) != count {
			return 0, false
		}
	}
	return count, count > 1
}

// countDelimiter picks the candidate occurring most often in the first line.
func countDelimiter(sample string) rune {
	firstLine := sample
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		firstLine = sample[:i]
	}

	best := countCandidates[0]
	bestCount := -1
	for _, candidate := range countCandidates {
		if n := strings.Count(firstLine, string(candidate)); n > bestCount {
			best = candidate
			bestCount = n
		}
	}
	return best
}
