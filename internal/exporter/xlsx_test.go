package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"epicli/pkg/contracts/domain"
)

func TestExportXLSX(t *testing.T) {
	monthly := []domain.MonthlySummary{
		{Month: "01/2025", Year: 2025, Num: 1, NewCases: 18, NewDeaths: 1, MaxAccumulatedCases: 1503, Records: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, testRecords(), monthly))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RecordsSheet, MonthlySheet}, f.GetSheetList())

	rows, err := f.GetRows(RecordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers(testRecords()), rows[0])
	assert.Equal(t, []string{"2025-01-08", "Aracaju", "15", "1", "4", "1500", "89", "9661", "sms", "a, b"}, rows[1])

	monthRows, err := f.GetRows(MonthlySheet)
	require.NoError(t, err)
	require.Len(t, monthRows, 2)
	assert.Equal(t, MonthlyHeaders, monthRows[0])
	assert.Equal(t, []string{"01/2025", "2", "18", "1", "0", "1503", "0", "0"}, monthRows[1])
}

func TestExportXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RecordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, CoreHeaders(), rows[0])
}
