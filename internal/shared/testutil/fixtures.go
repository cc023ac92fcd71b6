package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// HeaderTable is a comma-separated table with named columns. It yields four
// records, two per location, with 23 new cases in total.
const HeaderTable = "data,municipio,novos_casos,novos_obitos,casos_acumulados\n" +
	"01/03/2024,Aracaju,10,1,100\n" +
	"02/03/2024,Aracaju,5,0,105\n" +
	"01/03/2024,Lagarto,3,0,30\n" +
	"15/04/2024,Lagarto,5,1,35\n"

// HeaderTableNewCases is the new-case total of HeaderTable.
const HeaderTableNewCases = 23

// HeaderlessTable is a semicolon-separated table without a header row.
// Its last column is large enough to classify as accumulated cases.
const HeaderlessTable = "2024-01-05;Estancia;4;1200\n" +
	"2024-01-06;Estancia;6;1206\n" +
	"2024-02-01;Itabaiana;2;500\n"

// UnusableTable has rows but too few columns to yield a date and location.
const UnusableTable = "valor\n1\n2\n"

// WriteFile writes content to name inside a fresh temporary directory and
// returns the directory and the full path.
func WriteFile(t *testing.T, name string, content []byte) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return dir, path
}
