package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
}

func TestFindDataFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		dirs     []string
		expected []string
	}{
		{
			name:     "data files sorted by name",
			files:    []string{"b.tsv", "a.csv", "c.xlsx", "d.txt"},
			expected: []string{"a.csv", "b.tsv", "c.xlsx", "d.txt"},
		},
		{
			name:     "extension case ignored",
			files:    []string{"CASOS.CSV", "Dados.XLSX"},
			expected: []string{"CASOS.CSV", "Dados.XLSX"},
		},
		{
			name:     "other types skipped",
			files:    []string{"report.pdf", "legacy.xls", "notes.md", "data.csv"},
			expected: []string{"data.csv"},
		},
		{
			name:     "directories skipped",
			files:    []string{"data.csv"},
			dirs:     []string{"archive.csv"},
			expected: []string{"data.csv"},
		},
		{
			name:     "empty directory",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
			}
			for _, name := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
			}

			found, err := DiscoverDataFiles(dir)
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.Equal(t, int64(1), f.Size)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindDataFiles_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "data", "casos.csv"), []byte("x"), 0644))

	found, err := NewDiscovery(base).FindDataFiles("data")

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "data", "casos.csv"), found[0].Path)
}

func TestFindDataFiles_MissingDirectory(t *testing.T) {
	_, err := DiscoverDataFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestIsDataFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "casos.csv", want: true},
		{name: "casos.TSV", want: true},
		{name: "casos.txt", want: true},
		{name: "casos.xlsx", want: true},
		{name: "casos.xls", want: false},
		{name: "casos", want: false},
		{name: "casos.csv.bak", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDataFile(tt.name))
		})
	}
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()

	t.Run("empty list", func(t *testing.T) {
		_, ok := GetLatestFile(nil)
		assert.False(t, ok)
	})

	t.Run("most recent wins", func(t *testing.T) {
		files := []FileInfo{
			{Name: "old.csv", ModTime: now.Add(-2 * time.Hour)},
			{Name: "new.csv", ModTime: now},
			{Name: "mid.csv", ModTime: now.Add(-time.Hour)},
		}

		latest, ok := GetLatestFile(files)
		assert.True(t, ok)
		assert.Equal(t, "new.csv", latest.Name)
	})
}
