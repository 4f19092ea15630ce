package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type QuoteRouter struct {
	handler *Handler
}

func NewQuoteRouter(handler *Handler) *QuoteRouter {
	return &QuoteRouter{handler: handler}
}

func (r *QuoteRouter) Load(g *gin.Engine) {
	g.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	g.GET("/search", r.handler.Search)
	g.GET("/quote/:symbol", r.handler.GetQuote)
}
