package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskhub/support-portal/internal/api/dto"
	"github.com/deskhub/support-portal/internal/service"
)

// ArticlesHandler serves the public knowledge base.
type ArticlesHandler struct {
	articles *service.ArticleService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articleService *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{articles: articleService}
}

// List handles GET /articles?query=.
func (h *ArticlesHandler) List(c *fiber.Ctx) error {
	articles, err := h.articles.List(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	out := make([]dto.ArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, dto.NewArticleResponse(a))
	}
	return c.JSON(fiber.Map{"data": out})
}
