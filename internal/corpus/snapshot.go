package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/narrative/internal/snapshot"
	"github.com/seenimoa/narrative/pkg/models"
)

// Snapshot replays a cached snapshot file as a Source so a run can be
// repeated offline.
type Snapshot struct {
	path string
}

// NewSnapshot creates a Source reading the snapshot at path.
func NewSnapshot(path string) *Snapshot { return &Snapshot{path: path} }

// Name returns the data source name.
func (s *Snapshot) Name() string { return "snapshot " + s.path }

// Fetch loads the snapshot and keeps the articles within [from, to]. The
// query is ignored: a snapshot already holds the results of one query.
func (s *Snapshot) Fetch(ctx context.Context, _ string, from, to time.Time) ([]models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := snapshot.Load(s.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	articles := make([]models.Article, len(rows))
	for i, r := range rows {
		articles[i] = r.Article
	}
	return filterArticles(articles, "", from, to), nil
}
