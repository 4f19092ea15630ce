package proxy

import (
	"context"
	"errors"
	"net/http"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/proxyConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/proxyModel"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/gin-gonic/gin"
)

type QuoteService interface {
	Search(ctx context.Context, query string) ([]model.SearchMatch, error)
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

type Handler struct {
	quoteService QuoteService
}

func NewHandler(quoteService QuoteService) *Handler {
	return &Handler{quoteService: quoteService}
}

// Search serves GET /search?query=<text>. "q" is accepted as an alias.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		query = c.Query("q")
	}

	matches, err := h.quoteService.Search(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, proxyConverter.ConvertSearchToProxy(matches))
}

// GetQuote serves GET /quote/<symbol>.
func (h *Handler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetQuote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, proxyConverter.ConvertQuoteToProxy(quote))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, proxyModel.Error{Error: "query is required"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, proxyModel.Error{Error: "symbol not found"})
	default:
		c.JSON(http.StatusBadGateway, proxyModel.Error{Error: err.Error()})
	}
}
