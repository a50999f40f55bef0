package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seenimoa/narrative/pkg/models"
	"github.com/seenimoa/narrative/pkg/utils"
)

// Store is a SQLite-backed snapshot with the same schema as the CSV file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite snapshot at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// One writer at a time; queue in Go rather than hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id                TEXT PRIMARY KEY,
			section_name      TEXT NOT NULL DEFAULT '',
			published_at      TEXT NOT NULL,
			byline            TEXT NOT NULL DEFAULT '',
			headline          TEXT NOT NULL DEFAULT '',
			body_text         TEXT NOT NULL DEFAULT '',
			word_count        INTEGER NOT NULL DEFAULT 0,
			body_text_cleaned TEXT NOT NULL DEFAULT '',
			web_url           TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);
	`)
	return err
}

// Save replaces the stored snapshot with rows in one transaction.
// Times are stored as RFC3339 UTC so they sort lexically.
func (s *Store) Save(rows []models.CleanedArticle) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO articles (id, section_name, published_at, byline, headline,
			body_text, word_count, body_text_cleaned, web_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			section_name      = excluded.section_name,
			published_at      = excluded.published_at,
			byline            = excluded.byline,
			headline          = excluded.headline,
			body_text         = excluded.body_text,
			word_count        = excluded.word_count,
			body_text_cleaned = excluded.body_text_cleaned,
			web_url           = excluded.web_url
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.ID, r.SectionName, r.PublishedAt.UTC().Format(time.RFC3339),
			r.Byline, r.Headline, r.BodyText, r.WordCount, r.BodyTextCleaned, r.WebURL); err != nil {
			return fmt.Errorf("save article %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Load returns every stored article ordered by publication time, then id.
func (s *Store) Load() ([]models.CleanedArticle, error) {
	return s.query(`
		SELECT id, section_name, published_at, byline, headline,
			body_text, word_count, body_text_cleaned, web_url
		FROM articles
		ORDER BY published_at ASC, id ASC
	`)
}

// Between returns the articles published on days within [from, to]. A zero
// bound leaves that side open.
func (s *Store) Between(from, to time.Time) ([]models.CleanedArticle, error) {
	lo, hi := "", "9999-12-31"
	if !from.IsZero() {
		lo = utils.FormatDay(from)
	}
	if !to.IsZero() {
		hi = utils.FormatDay(to.UTC().AddDate(0, 0, 1))
	}
	return s.query(`
		SELECT id, section_name, published_at, byline, headline,
			body_text, word_count, body_text_cleaned, web_url
		FROM articles
		WHERE published_at >= ? AND published_at < ?
		ORDER BY published_at ASC, id ASC
	`, lo, hi)
}

// Count returns the number of stored articles.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n)
	return n, err
}

func (s *Store) query(q string, args ...any) ([]models.CleanedArticle, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CleanedArticle
	for rows.Next() {
		var (
			a         models.CleanedArticle
			published string
		)
		if err := rows.Scan(&a.ID, &a.SectionName, &published, &a.Byline, &a.Headline,
			&a.BodyText, &a.WordCount, &a.BodyTextCleaned, &a.WebURL); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, published)
		if err != nil {
			return nil, fmt.Errorf("article %s: published_at: %w", a.ID, err)
		}
		a.PublishedAt = t.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
