package search

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/config"
)

// Handlers carries the three proxy adapters behind the /api routes.
type Handlers struct {
	Places   *PlaceAdapter
	Shopping *ShoppingSearchAdapter
	Shop     *ShopAdapter
}

func NewHandlers() *Handlers {
	return &Handlers{
		Places:   NewPlaceAdapter(),
		Shopping: NewShoppingSearchAdapter(),
		Shop:     NewShopAdapter(),
	}
}

// RegisterRoutes mounts the proxy endpoints. They are session-free; CORS
// is applied globally in the server.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/places", h.HandlePlaces)
	r.GET("/api/search", h.HandleSearch)
	r.GET("/api/shop", h.HandleShop)
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return config.SearchLimit
	}
	return limit
}

// HandlePlaces proxies the place search. Upstream failures of any kind
// return HTTP 200 with an empty result; the page structure is not ours
// to rely on.
func (h *Handlers) HandlePlaces(c *gin.Context) {
	query := c.Query("query")
	if query == "" || !config.SearchProxyEnabled() {
		c.JSON(http.StatusOK, emptyResult(query))
		return
	}

	result, err := h.Places.Search(c.Request.Context(), query, c.Query("x"), c.Query("y"), limitParam(c))
	if err != nil {
		logSearchError("search", "HandlePlaces", query, err)
		c.JSON(http.StatusOK, emptyResult(query))
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleSearch proxies the shopping search page with the same
// degrade-to-empty contract as HandlePlaces.
func (h *Handlers) HandleSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" || !config.SearchProxyEnabled() {
		c.JSON(http.StatusOK, emptyResult(query))
		return
	}

	result, err := h.Shopping.Search(c.Request.Context(), query, limitParam(c))
	if err != nil {
		logSearchError("search", "HandleSearch", query, err)
		c.JSON(http.StatusOK, emptyResult(query))
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleShop proxies the shopping open API. This upstream has a real
// contract, so failures are 500s with an error envelope.
func (h *Handlers) HandleShop(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if !config.SearchProxyEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shop search disabled"})
		return
	}

	result, err := h.Shop.Search(c.Request.Context(), query, limitParam(c))
	if err != nil {
		logSearchError("search", "HandleShop", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shop search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
