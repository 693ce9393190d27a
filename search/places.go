package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nplaceworks/adrank_backend/config"
)

// PlaceSearchResult is the /api/places and /api/search response body.
type PlaceSearchResult struct {
	Query      string       `json:"query"`
	AdMids     []string     `json:"adMids"`
	NormalList []SearchItem `json:"normalList"`
}

func emptyResult(query string) *PlaceSearchResult {
	return &PlaceSearchResult{Query: query, AdMids: []string{}, NormalList: []SearchItem{}}
}

// PlaceAdapter isolates the scraping of the map-place search page. Any
// upstream failure, HTML drift included, degrades to an empty result.
type PlaceAdapter struct {
	client  *upstreamClient
	baseURL string
}

func NewPlaceAdapter() *PlaceAdapter {
	return &PlaceAdapter{
		client:  newUpstreamClient(),
		baseURL: envOr("PLACE_SEARCH_BASE_URL", "https://m.place.naver.com/place/list"),
	}
}

// Search scrapes the place list page for query at map coordinates (x, y).
func (a *PlaceAdapter) Search(ctx context.Context, query, x, y string, limit int) (*PlaceSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	if x != "" {
		params.Set("x", x)
	}
	if y != "" {
		params.Set("y", y)
	}
	if limit > 0 {
		params.Set("display", strconv.Itoa(limit))
	}

	html, err := a.client.fetch(ctx, fmt.Sprintf("%s?%s", a.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	state, err := extractApolloState(html)
	if err != nil {
		return nil, err
	}

	adMids, normalList := classify(collectListItems(state, limit))
	return &PlaceSearchResult{Query: query, AdMids: adMids, NormalList: normalList}, nil
}

// ShoppingSearchAdapter scrapes the shopping search page. Same envelope,
// different upstream.
type ShoppingSearchAdapter struct {
	client  *upstreamClient
	baseURL string
}

func NewShoppingSearchAdapter() *ShoppingSearchAdapter {
	return &ShoppingSearchAdapter{
		client:  newUpstreamClient(),
		baseURL: envOr("SHOPPING_SEARCH_BASE_URL", "https://search.shopping.naver.com/search/all"),
	}
}

func (a *ShoppingSearchAdapter) Search(ctx context.Context, query string, limit int) (*PlaceSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)

	html, err := a.client.fetch(ctx, fmt.Sprintf("%s?%s", a.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	state, err := extractApolloState(html)
	if err != nil {
		return nil, err
	}

	adMids, normalList := classify(collectListItems(state, limit))
	return &PlaceSearchResult{Query: query, AdMids: adMids, NormalList: normalList}, nil
}

func logSearchError(module, funcName, query string, err error) {
	logger := config.GetLogger()
	config.LogError(logger, module, funcName, "upstream search failed", query, err)
}
