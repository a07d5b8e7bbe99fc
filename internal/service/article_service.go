package service

import (
	"context"
	"strings"

	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/repository"
)

// ArticleService serves the self-help knowledge base.
type ArticleService struct {
	articles repository.ArticleRepository
}

// NewArticleService builds the service.
func NewArticleService(articles repository.ArticleRepository) *ArticleService {
	return &ArticleService{articles: articles}
}

// List returns all articles, or a title search when query is non-blank.
func (s *ArticleService) List(ctx context.Context, query string) ([]domain.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.articles.List(ctx)
	}
	return s.articles.Search(ctx, query)
}
