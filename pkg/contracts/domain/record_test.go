package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Metric(t *testing.T) {
	var r Record
	for i, role := range MetricRoles {
		r.SetMetric(role, int64(i+1))
	}

	assert.Equal(t, int64(1), r.NewCases)
	assert.Equal(t, int64(6), r.AccumulatedVaccinated)
	for i, role := range MetricRoles {
		assert.Equal(t, int64(i+1), r.Metric(role))
	}
	assert.Zero(t, r.Metric(RoleLocation))
}

func TestRecord_MonthKey(t *testing.T) {
	r := Record{Date: time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "01/2025", r.MonthKey())

	r.Date = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "12/2024", r.MonthKey())
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := Record{
		Date:     time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Location: "Aracaju",
		NewCases: 12,
		Extra:    ExtraFields{{Name: "bairro", Value: "Centro"}},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2025-03-01", decoded["date"])
	assert.Equal(t, "Aracaju", decoded["location"])
	assert.Equal(t, float64(12), decoded["new_cases"])
	assert.Equal(t, map[string]interface{}{"bairro": "Centro"}, decoded["extra_fields"])
}

func TestExtraFields(t *testing.T) {
	extra := ExtraFields{{Name: "a", Value: "1"}, {Name: "b", Value: ""}}

	v, ok := extra.Get("b")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = extra.Get("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, extra.Keys())
}

func TestFormatDateRange(t *testing.T) {
	first := time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)
	last := time.Date(2025, time.July, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "08/01/2025 – 31/07/2025", FormatDateRange(first, last))
}
