package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"epicli/pkg/contracts/domain"
)

func TestClassifyByName(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   domain.Role
		wantOK bool
	}{
		{name: "data", header: "Data", want: domain.RoleDate, wantOK: true},
		{name: "english date", header: " date ", want: domain.RoleDate, wantOK: true},
		{name: "municipio", header: "MUNICIPIO", want: domain.RoleLocation, wantOK: true},
		{name: "localidade", header: "Localidade", want: domain.RoleLocation, wantOK: true},
		{name: "novos casos", header: "novos_casos", want: domain.RoleNewCases, wantOK: true},
		{name: "daily cases", header: "daily_cases", want: domain.RoleNewCases, wantOK: true},
		{name: "new deaths", header: "new_deaths", want: domain.RoleNewDeaths, wantOK: true},
		{name: "obitos novos", header: "Obitos_Novos", want: domain.RoleNewDeaths, wantOK: true},
		{name: "new vaccinated", header: "new_vaccinated", want: domain.RoleNewVaccinated, wantOK: true},
		{name: "casos acumulados", header: "Casos_Acumulados", want: domain.RoleAccumulatedCases, wantOK: true},
		{name: "total obitos", header: "total_obitos", want: domain.RoleAccumulatedDeaths, wantOK: true},
		{name: "accumulated vaccinated", header: "accumulated_vaccinated", want: domain.RoleAccumulatedVaccinated, wantOK: true},
		{name: "date keyword wins over later roles", header: "data_novos_casos", want: domain.RoleDate, wantOK: true},
		{name: "unknown", header: "observacao", wantOK: false},
		{name: "blank", header: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyByName(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func column(values ...string) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return rows
}

func TestClassifyByContent(t *testing.T) {
	tests := []struct {
		name   string
		sample [][]string
		index  int
		want   domain.Role
		wantOK bool
	}{
		{
			name:   "iso dates",
			sample: column("2025-01-08", "2025-01-09", "2025-01-10"),
			want:   domain.RoleDate, wantOK: true,
		},
		{
			name:   "day first dates",
			sample: column("08/01/2025", "09/01/2025", "10.01.2025"),
			want:   domain.RoleDate, wantOK: true,
		},
		{
			name:   "seven of ten dates",
			sample: column("2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05", "2025-01-06", "2025-01-07", "x", "y", "z"),
			want:   domain.RoleDate, wantOK: true,
		},
		{
			name:   "six of ten dates is not enough",
			sample: column("2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05", "2025-01-06", "x", "y", "z", "w"),
			want:   domain.RoleLocation, wantOK: true,
		},
		{
			name:   "place names",
			sample: column("Aracaju", "Lagarto", "Itabaiana"),
			want:   domain.RoleLocation, wantOK: true,
		},
		{
			name:   "blanks ignored for text share",
			sample: column("Aracaju", "", "", "", "Lagarto"),
			want:   domain.RoleLocation, wantOK: true,
		},
		{
			name:   "small counts",
			sample: column("15", "3", "22", "7"),
			want:   domain.RoleNewCases, wantOK: true,
		},
		{
			name:   "decimal comma counts",
			sample: column("1,5", "2,5", "3,0"),
			want:   domain.RoleNewCases, wantOK: true,
		},
		{
			name:   "high average",
			sample: column("1500", "1503", "1525"),
			want:   domain.RoleAccumulatedCases, wantOK: true,
		},
		{
			name:   "one large value",
			sample: column("1", "2", "3", "4", "5", "6", "7", "8", "9", "1001"),
			want:   domain.RoleAccumulatedCases, wantOK: true,
		},
		{
			name:   "only the first ten values are read",
			sample: column("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "999999"),
			want:   domain.RoleNewCases, wantOK: true,
		},
		{
			name:   "all blank",
			sample: column("", "", ""),
			wantOK: false,
		},
		{
			name:   "index outside first row",
			sample: column("1", "2"),
			index:  3,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyByContent(tt.sample, tt.index)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyColumn(t *testing.T) {
	sample := [][]string{{"Aracaju", "15"}, {"Lagarto", "3"}}

	t.Run("name match skips content", func(t *testing.T) {
		role, ok := ClassifyColumn("total_casos", sample, 1)
		assert.True(t, ok)
		assert.Equal(t, domain.RoleAccumulatedCases, role)
	})

	t.Run("content fallback", func(t *testing.T) {
		role, ok := ClassifyColumn("col_b", sample, 0)
		assert.True(t, ok)
		assert.Equal(t, domain.RoleLocation, role)
	})

	t.Run("no sample rows", func(t *testing.T) {
		_, ok := ClassifyColumn("col_b", nil, 0)
		assert.False(t, ok)
	})
}

func TestClassifyColumns(t *testing.T) {
	columns := []string{"quando", "onde", "novos_casos", "notas"}
	sample := [][]string{
		{"2025-01-08", "Aracaju", "15", ""},
		{"2025-01-09", "Lagarto", "3", ""},
	}

	mapping := ClassifyColumns(columns, sample)

	assert.Equal(t, domain.RoleMapping{
		{Column: "quando", Role: domain.RoleDate},
		{Column: "onde", Role: domain.RoleLocation},
		{Column: "novos_casos", Role: domain.RoleNewCases, ByName: true},
	}, mapping)
}
