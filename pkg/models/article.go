package models

import (
	"strings"
	"time"
)

// Article is a single news article returned by a corpus source.
// Articles are immutable once fetched.
type Article struct {
	ID          string    `json:"id"`
	SectionName string    `json:"section_name"`
	PublishedAt time.Time `json:"published_at"`
	Byline      string    `json:"byline,omitempty"` // empty when the publisher has no byline
	Headline    string    `json:"headline"`
	BodyText    string    `json:"body_text"`
	WordCount   int       `json:"word_count"`
	WebURL      string    `json:"web_url,omitempty"`
}

// HasByline reports whether the article carries an author byline.
func (a Article) HasByline() bool {
	return strings.TrimSpace(a.Byline) != ""
}

// CleanedArticle is an Article with its normalized body text.
type CleanedArticle struct {
	Article
	BodyTextCleaned string `json:"body_text_cleaned"`
}

// TokenRecord is one (document, word) pair produced by tokenization.
type TokenRecord struct {
	DocumentID string `json:"document_id"`
	Word       string `json:"word"`
}
