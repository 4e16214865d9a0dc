package document

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/dustin/go-humanize"
	"github.com/ledongthuc/pdf"
)

type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger}
}

// LoadFile reads a single file. It fails only when path is not a regular
// file; parse failures are reported in the returned File.
func (l *Loader) LoadFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("loading %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return File{}, fmt.Errorf("loading %s: not a regular file", path)
	}
	return l.load(path, info.Size()), nil
}

// LoadFolder walks dir recursively in lexical order and returns one record
// per regular file.
func (l *Loader) LoadFolder(dir string) ([]File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("loading folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("loading folder %s: not a directory", dir)
	}

	w := &folderWalk{loader: l, root: dir}
	if err := filepath.WalkDir(dir, w.visit); err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	l.logger.Info("loaded folder", "dir", dir, "files", len(w.files), "size", humanize.Bytes(uint64(w.total)))
	return w.files, nil
}

type folderWalk struct {
	loader *Loader
	root   string
	files  []File
	total  int64
}

// visit loads one walked entry. An unreadable entry below the root is
// recorded as an error and skipped so the rest of the folder still loads.
func (w *folderWalk) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		if path == w.root || d == nil {
			return err
		}
		w.loader.logger.Warn("skipping unreadable entry", "path", path, "error", err)
		w.files = append(w.files, File{Path: path, Kind: KindError, Err: err})
		if d.IsDir() {
			return fs.SkipDir
		}
		return nil
	}
	if !d.Type().IsRegular() {
		return nil
	}
	fi, err := d.Info()
	if err != nil {
		w.files = append(w.files, File{Path: path, Kind: KindError, Err: err})
		return nil
	}
	f := w.loader.load(path, fi.Size())
	w.total += f.Size
	w.files = append(w.files, f)
	return nil
}

func (l *Loader) load(path string, size int64) File {
	f := File{Path: path, Kind: DetectKind(path), Size: size}
	var err error
	switch f.Kind {
	case KindTable:
		f.Table, err = loadTable(path)
	case KindText:
		f.Text, err = loadText(path)
	case KindDocument:
		f.Text, err = loadDocument(path)
	default:
		l.logger.Debug("skipping unknown file", "path", path)
		return f
	}
	if err != nil {
		l.logger.Warn("load failed", "path", path, "error", err)
		return File{Path: path, Kind: KindError, Size: size, Err: err}
	}
	l.logger.Debug("loaded file", "path", path, "kind", f.Kind, "size", humanize.Bytes(uint64(size)))
	return f
}

func loadTable(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func loadCSV(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	t := &Table{}
	if len(records) > 0 {
		t.Header = records[0]
		t.Rows = records[1:]
	}
	return t, nil
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		md, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return "", fmt.Errorf("converting html: %w", err)
		}
		return md, nil
	default:
		return string(data), nil
	}
}

func loadDocument(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func loadPDF(path string) (text string, err error) {
	fh, r, err := pdf.Open(path)
	if fh != nil {
		defer fh.Close()
	}
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	// the pdf reader panics on some malformed streams
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("reading pdf: %v", p)
		}
	}()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}
