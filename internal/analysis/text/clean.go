package text

import "github.com/seenimoa/narrative/pkg/models"

// Clean derives the CleanedArticle of a. The article itself is not modified.
func Clean(a models.Article) models.CleanedArticle {
	return models.CleanedArticle{
		Article:         a,
		BodyTextCleaned: Normalize(a.BodyText),
	}
}

// CleanAll cleans every article, preserving order.
func CleanAll(articles []models.Article) []models.CleanedArticle {
	out := make([]models.CleanedArticle, len(articles))
	for i, a := range articles {
		out[i] = Clean(a)
	}
	return out
}
