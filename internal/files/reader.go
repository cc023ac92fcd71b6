package files

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	apperrors "epicli/internal/errors"
)

var (
	// ErrUndecodable means no configured encoding produced non-blank text.
	ErrUndecodable = errors.New("no encoding produced readable text")

	// ErrUnsupportedFormat is returned for file types that cannot be read.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when a file exceeds the configured size.
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

// DefaultEncodings is the order encodings are tried in. latin1 maps every
// byte, so the encodings after it are only reached when it is removed.
var DefaultEncodings = []string{"utf-8", "utf-8-sig", "latin1", "cp1252", "iso-8859-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decoders maps an encoding name to a function that decodes data or
// reports that it cannot.
var decoders = map[string]func([]byte) (string, bool){
	"utf-8":      decodeUTF8,
	"utf8":       decodeUTF8,
	"utf-8-sig":  decodeUTF8Sig,
	"latin1":     charmapDecoder(charmap.ISO8859_1),
	"iso-8859-1": charmapDecoder(charmap.ISO8859_1),
	"cp1252":     charmapDecoder(charmap.Windows1252),
}

// KnownEncoding reports whether name can be used in ReaderConfig.Encodings.
func KnownEncoding(name string) bool {
	_, ok := decoders[strings.ToLower(name)]
	return ok
}

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	// BasePath resolves relative paths. Empty means the working directory.
	BasePath string
	// Encodings overrides DefaultEncodings.
	Encodings []string
	// MaxBytes rejects larger files. Zero means no limit.
	MaxBytes int64
}

// Reader loads data files as text.
type Reader struct {
	basePath  string
	encodings []string
	maxBytes  int64
	logger    *slog.Logger
}

// NewReader creates a reader.
func NewReader(cfg ReaderConfig, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	encodings := cfg.Encodings
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	return &Reader{
		basePath:  cfg.BasePath,
		encodings: encodings,
		maxBytes:  cfg.MaxBytes,
		logger:    logger.With(slog.String("component", "files")),
	}
}

// ReadSource reads path as text, rendering workbooks as CSV. Legacy .xls
// workbooks are rejected with ErrUnsupportedFormat.
func (r *Reader) ReadSource(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return r.ReadWorkbookText(path)
	case ".xls":
		return "", apperrors.NewStorageError("legacy .xls workbooks are not supported", ErrUnsupportedFormat).
			WithContext("path", path)
	default:
		return r.ReadText(path)
	}
}

// ReadText reads a delimited text file, trying each configured encoding in
// order and returning the first non-blank result.
func (r *Reader) ReadText(path string) (string, error) {
	data, err := r.readFile(path)
	if err != nil {
		return "", err
	}

	text, encoding, err := Decode(data, r.encodings)
	if err != nil {
		return "", apperrors.NewStorageError("failed to decode file", err).
			WithContext("path", path).
			WithContext("encodings", strings.Join(r.encodings, ","))
	}

	r.logger.Info("file decoded",
		slog.String("path", path),
		slog.String("encoding", encoding),
		slog.Int("size_bytes", len(data)))

	return text, nil
}

// ReadWorkbookText renders the first non-empty sheet of an .xlsx workbook as
// comma-separated text.
func (r *Reader) ReadWorkbookText(path string) (string, error) {
	fullPath := r.resolvePath(path)
	if err := r.checkSize(fullPath, path); err != nil {
		return "", err
	}

	f, err := excelize.OpenFile(fullPath)
	if err != nil {
		return "", apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", apperrors.NewStorageError("failed to read sheet", err).
				WithContext("path", path).
				WithContext("sheet", sheet)
		}
		if len(rows) == 0 {
			continue
		}

		text, err := rowsToCSV(rows)
		if err != nil {
			return "", apperrors.NewStorageError("failed to render sheet", err).WithContext("path", path)
		}

		r.logger.Info("workbook sheet read",
			slog.String("path", path),
			slog.String("sheet", sheet),
			slog.Int("rows", len(rows)))
		return text, nil
	}

	return "", apperrors.NewStorageError("workbook has no data", ErrUndecodable).WithContext("path", path)
}

// Decode converts data to text with the first encoding that yields
// non-blank content, and returns that encoding's name.
func Decode(data []byte, encodings []string) (string, string, error) {
	for _, name := range encodings {
		decode, ok := decoders[strings.ToLower(name)]
		if !ok {
			continue
		}
		text, ok := decode(data)
		if ok && strings.TrimSpace(text) != "" {
			return text, name, nil
		}
	}
	return "", "", ErrUndecodable
}

func (r *Reader) readFile(path string) ([]byte, error) {
	fullPath := r.resolvePath(path)
	if err := r.checkSize(fullPath, path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read file", err).WithContext("path", path)
	}
	return data, nil
}

// checkSize stats fullPath. Errors carry path as the caller gave it so the
// resolved base directory never reaches a client.
func (r *Reader) checkSize(fullPath, path string) error {
	info, err := os.Stat(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewNotFoundError("data file", err).WithContext("path", path)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to stat file", err).WithContext("path", path)
	}
	if r.maxBytes > 0 && info.Size() > r.maxBytes {
		return apperrors.NewStorageError(fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), r.maxBytes), ErrFileTooLarge).
			WithContext("path", path)
	}
	return nil
}

func (r *Reader) resolvePath(path string) string {
	if filepath.IsAbs(path) || r.basePath == "" {
		return path
	}
	return filepath.Join(r.basePath, path)
}

func rowsToCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func decodeUTF8Sig(data []byte) (string, bool) {
	return decodeUTF8(bytes.TrimPrefix(data, utf8BOM))
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		out, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}
