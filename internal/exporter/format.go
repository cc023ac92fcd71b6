package exporter

import (
	"strconv"
	"time"

	"epicli/pkg/contracts/domain"
)

// formatInt formats a count for delimited output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatDate formats a record date as YYYY-MM-DD
func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
