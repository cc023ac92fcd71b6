package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"epicli/pkg/contracts/domain"
)

// roleKeywords are matched as substrings of the lower-cased column name.
// Roles are tried in domain.ClassificationOrder.
var roleKeywords = map[domain.Role][]string{
	domain.RoleDate:     {"data", "date", "fecha", "dia", "day", "datum"},
	domain.RoleLocation: {"municipio", "cidade", "city", "municipality", "localidade", "local", "lugar"},
	domain.RoleNewCases: {"novos_casos", "new_cases", "casos_novos", "daily_cases", "casos_diarios"},
	domain.RoleNewDeaths: {"novos_obitos", "novos_mortes", "new_deaths", "obitos_novos", "mortes_novas",
		"daily_deaths"},
	domain.RoleNewVaccinated:    {"novos_vacinados", "new_vaccinated", "vacinados_novos", "daily_vaccinated"},
	domain.RoleAccumulatedCases: {"casos_acumulados", "accumulated_cases", "total_casos", "cumulative_cases"},
	domain.RoleAccumulatedDeaths: {"obitos_acumulados", "mortes_acumuladas", "accumulated_deaths", "total_obitos",
		"total_mortes"},
	domain.RoleAccumulatedVaccinated: {"vacinados_acumulados", "accumulated_vaccinated", "total_vacinados",
		"cumulative_vaccinated"},
}

const (
	// contentSampleSize bounds how many values content classification reads.
	contentSampleSize = 10
	// contentShare is the share of values that must agree, in tenths.
	contentShare = 7

	accumulatedAverage = 100
	accumulatedMax     = 1000
)

var (
	yearFirstDate = regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}`)
	yearLastDate  = regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}[-/.]\d{4}`)
	plainNumber   = regexp.MustCompile(`^\d+[.,]?\d*$`)
)

// ClassifyColumns assigns a role to every column that can be classified.
// sample holds the first data rows of the table. Each entry records whether
// its role came from the name, so name matches can take precedence.
func ClassifyColumns(columns []string, sample [][]string) domain.RoleMapping {
	mapping := make(domain.RoleMapping, 0, len(columns))
	for i, name := range columns {
		if role, ok := ClassifyByName(name); ok {
			mapping = append(mapping, domain.ColumnRole{Column: name, Role: role, ByName: true})
			continue
		}
		if len(sample) == 0 {
			continue
		}
		if role, ok := ClassifyByContent(sample, i); ok {
			mapping = append(mapping, domain.ColumnRole{Column: name, Role: role})
		}
	}
	return mapping
}

// ClassifyColumn infers the role of one column, by name first and by the
// content of the sample rows second.
func ClassifyColumn(header string, sample [][]string, index int) (domain.Role, bool) {
	if role, ok := ClassifyByName(header); ok {
		return role, true
	}
	if len(sample) == 0 {
		return "", false
	}
	return ClassifyByContent(sample, index)
}

// ClassifyByName matches a column name against the role keyword sets.
func ClassifyByName(header string) (domain.Role, bool) {
	name := strings.ToLower(strings.TrimSpace(header))
	if name == "" {
		return "", false
	}
	for _, role := range domain.ClassificationOrder {
		for _, kw := range roleKeywords[role] {
			if strings.Contains(name, kw) {
				return role, true
			}
		}
	}
	return "", false
}

// ClassifyByContent looks at the values of a column. Dates and free text are
// recognized by shape; numeric columns are split into new and accumulated
// counts by magnitude only, which is a coarse approximation: it cannot tell
// cases from deaths or vaccinations and it misreads small accumulated series.
func ClassifyByContent(sample [][]string, index int) (domain.Role, bool) {
	if index < 0 || index >= len(sample[0]) {
		return "", false
	}

	values := make([]string, 0, contentSampleSize)
	for _, row := range sample {
		if len(values) == contentSampleSize {
			break
		}
		if index < len(row) {
			values = append(values, strings.TrimSpace(row[index]))
		}
	}
	if len(values) == 0 {
		return "", false
	}

	dateLike := 0
	for _, v := range values {
		if yearFirstDate.MatchString(v) || yearLastDate.MatchString(v) {
			dateLike++
		}
	}
	if dateLike*10 >= len(values)*contentShare {
		return domain.RoleDate, true
	}

	nonEmpty, text := 0, 0
	for _, v := range values {
		if v == "" {
			continue
		}
		nonEmpty++
		if !plainNumber.MatchString(v) {
			text++
		}
	}
	if nonEmpty > 0 && text*10 >= nonEmpty*contentShare {
		return domain.RoleLocation, true
	}

	var sum, maxValue float64
	count := 0
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if count == 0 || f > maxValue {
			maxValue = f
		}
		sum += f
		count++
	}
	if count == 0 {
		return "", false
	}

	if sum/float64(count) > accumulatedAverage || maxValue > accumulatedMax {
		return domain.RoleAccumulatedCases, true
	}
	return domain.RoleNewCases, true
}
