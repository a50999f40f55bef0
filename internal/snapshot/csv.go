// Package snapshot caches cleaned articles on disk so an analysis can be
// repeated without refetching. Snapshots are a cache, never a source of
// truth: a missing or corrupt file means "fetch again".
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/narrative/pkg/models"
	"github.com/seenimoa/narrative/pkg/utils"
)

// Columns is the CSV header in write order.
var Columns = []string{
	"id", "section_name", "published_at", "byline", "headline",
	"body_text", "word_count", "body_text_cleaned", "web_url",
}

// required columns; web_url is optional on read.
var required = Columns[:8]

// ErrUnknownFormat is returned for a snapshot path with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown snapshot format: use .csv, .db or .sqlite")

// RowError reports a snapshot row that could not be decoded.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("snapshot line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []models.CleanedArticle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.ID,
			r.SectionName,
			r.PublishedAt.UTC().Format(time.RFC3339),
			r.Byline,
			r.Headline,
			r.BodyText,
			strconv.Itoa(r.WordCount),
			r.BodyTextCleaned,
			r.WebURL,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads rows written by WriteCSV. Columns are matched by header
// name, so column order is free.
func ReadCSV(r io.Reader) ([]models.CleanedArticle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty snapshot")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("snapshot header missing column %q", c)
		}
	}

	var out []models.CleanedArticle
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// *csv.ParseError already names the line.
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		// quoted fields may span lines, so ask the reader where the record starts
		line, _ := cr.FieldPos(0)
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		published, err := time.Parse(time.RFC3339, get("published_at"))
		if err != nil {
			return nil, &RowError{Line: line, Column: "published_at", Err: err}
		}
		wc := 0
		if s := get("word_count"); s != "" {
			if wc, err = strconv.Atoi(s); err != nil {
				return nil, &RowError{Line: line, Column: "word_count", Err: err}
			}
		}
		out = append(out, models.CleanedArticle{
			Article: models.Article{
				ID:          get("id"),
				SectionName: get("section_name"),
				PublishedAt: published.UTC(),
				Byline:      get("byline"),
				Headline:    get("headline"),
				BodyText:    get("body_text"),
				WordCount:   wc,
				WebURL:      get("web_url"),
			},
			BodyTextCleaned: get("body_text_cleaned"),
		})
	}
	return out, nil
}

// Format is a snapshot file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Save writes rows to path in the format implied by its extension,
// replacing any previous snapshot.
func Save(path string, rows []models.CleanedArticle) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	switch format {
	case FormatSQLite:
		s, err := Open(path)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Save(rows)
	default:
		tmp := path + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}
		if err := WriteCSV(f, rows); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
		if err := f.Close(); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("close snapshot: %w", err)
		}
		return os.Rename(tmp, path)
	}
}

// Load reads the snapshot at path.
func Load(path string) ([]models.CleanedArticle, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	switch format {
	case FormatSQLite:
		s, err := Open(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Load()
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// LoadWindow reads the snapshot rows published on days within [from, to].
// SQLite snapshots filter in the query; CSV snapshots are read whole.
func LoadWindow(path string, from, to time.Time) ([]models.CleanedArticle, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format != FormatSQLite {
		rows, err := Load(path)
		if err != nil {
			return nil, err
		}
		var out []models.CleanedArticle
		for _, r := range rows {
			if utils.InWindow(r.PublishedAt, from, to) {
				out = append(out, r)
			}
		}
		return out, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Between(from, to)
}

// Count returns the number of articles in the snapshot at path.
func Count(path string) (int, error) {
	format, err := FormatOf(path)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("open snapshot: %w", err)
	}
	if format != FormatSQLite {
		rows, err := Load(path)
		return len(rows), err
	}
	s, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return s.Count()
}
