package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the absolute directories the application reads and writes.
type Paths struct {
	BaseDir   string
	DataDir   string
	ExportDir string
	LogsDir   string
}

// ResolvePaths makes the configured directories absolute. Relative entries
// are joined to baseDir, which defaults to the working directory.
func (c *Config) ResolvePaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(baseDir, p)
	}

	paths := &Paths{
		BaseDir:   baseDir,
		DataDir:   abs(c.Ingest.DataDir),
		ExportDir: abs(c.Export.Dir),
	}
	if c.Logging.Output != "console" && c.Logging.FilePath != "" {
		paths.LogsDir = filepath.Dir(abs(c.Logging.FilePath))
	}
	return paths, nil
}

// EnsureDirectories creates the export and log directories. The data
// directory is only read, so a missing one is left to the caller.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ExportDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns name inside the export directory.
func (p *Paths) ExportPath(name string) string {
	return filepath.Join(p.ExportDir, name)
}

// DataPath returns name inside the data directory.
func (p *Paths) DataPath(name string) string {
	return filepath.Join(p.DataDir, name)
}

// LogPathResolution logs where each directory resolved to.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("paths resolved",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("export_dir", p.ExportDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
