package dto

import (
	"time"

	"github.com/deskhub/support-portal/internal/domain"
)

// ArticleResponse is a knowledge base entry.
type ArticleResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewArticleResponse maps an article.
func NewArticleResponse(a domain.Article) ArticleResponse {
	return ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
	}
}
