package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskhub/support-portal/internal/domain"
)

// ArticleRepository reads knowledge-base articles.
type ArticleRepository interface {
	List(ctx context.Context) ([]domain.Article, error)
	Search(ctx context.Context, query string) ([]domain.Article, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository returns a Postgres-backed implementation.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

func (r *articleRepository) List(ctx context.Context) ([]domain.Article, error) {
	const query = `SELECT id, title, content, created_at FROM kb_articles ORDER BY title ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(&article.ID, &article.Title, &article.Content, &article.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}

func (r *articleRepository) Search(ctx context.Context, search string) ([]domain.Article, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return r.List(ctx)
	}
	const query = `
        SELECT id, title, content, created_at FROM kb_articles
        WHERE LOWER(title) LIKE $1 ORDER BY title ASC`
	rows, err := r.pool.Query(ctx, query, "%"+strings.ToLower(search)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(&article.ID, &article.Title, &article.Content, &article.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}
