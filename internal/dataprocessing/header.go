package dataprocessing

import "strings"

// headerKeywords mark a row as a header as soon as any cell contains one.
// Portuguese and English variants, with and without accents. Singular
// English forms cover their plurals.
var headerKeywords = []string{
	"data", "municipio", "município", "casos", "obitos", "óbitos", "mortes", "vacinados",
	"date", "city", "location", "case", "death", "vaccinated", "municipality",
	"acumulado", "accumulated", "total", "novo", "new", "daily",
}

var numericPunctuation = strings.NewReplacer(".", "", ",", "", "-", "", "/", "")

// IsHeaderRow decides whether the first row of a table names its columns.
func IsHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}

	textCells := 0
	for _, cell := range row {
		lower := strings.ToLower(strings.TrimSpace(cell))
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		if !isDigits(numericPunctuation.Replace(strings.TrimSpace(cell))) {
			textCells++
		}
	}

	return textCells*2 > len(row)
}

// isDigits reports whether s is non-empty and made of ASCII digits only.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
