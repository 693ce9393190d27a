package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ShopItem mirrors the shopping API's item shape; HTML tags come through
// in titles and are passed along untouched.
type ShopItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	Lprice      string `json:"lprice"`
	Hprice      string `json:"hprice"`
	MallName    string `json:"mallName"`
	ProductId   string `json:"productId"`
	ProductType string `json:"productType"`
	Brand       string `json:"brand"`
	Maker       string `json:"maker"`
	Category1   string `json:"category1"`
	Category2   string `json:"category2"`
}

// ShopSearchResult is the /api/shop response body.
type ShopSearchResult struct {
	LastBuildDate string     `json:"lastBuildDate"`
	Total         int        `json:"total"`
	Display       int        `json:"display"`
	Items         []ShopItem `json:"items"`
}

type shopPage struct {
	LastBuildDate string     `json:"lastBuildDate"`
	Total         int        `json:"total"`
	Start         int        `json:"start"`
	Display       int        `json:"display"`
	Items         []ShopItem `json:"items"`
}

const shopPageSize = 100

// ShopAdapter calls the shopping open API. Unlike the scrapers this
// upstream is a stable JSON contract, so failures surface as errors (the
// handler turns them into 500s).
type ShopAdapter struct {
	client       *upstreamClient
	baseURL      string
	clientId     string
	clientSecret string
}

func NewShopAdapter() *ShopAdapter {
	return &ShopAdapter{
		client:       newUpstreamClient(),
		baseURL:      envOr("SHOP_API_BASE_URL", "https://openapi.naver.com/v1/search/shop.json"),
		clientId:     envOr("SHOP_API_CLIENT_ID", ""),
		clientSecret: envOr("SHOP_API_CLIENT_SECRET", ""),
	}
}

func (a *ShopAdapter) fetchPage(ctx context.Context, query string, start, display int) (*shopPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("display", strconv.Itoa(display))

	headers := map[string]string{
		"X-Naver-Client-Id":     a.clientId,
		"X-Naver-Client-Secret": a.clientSecret,
	}
	body, err := a.client.fetch(ctx, fmt.Sprintf("%s?%s", a.baseURL, params.Encode()), headers)
	if err != nil {
		return nil, err
	}
	var page shopPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Search fans out the paginated shopping API with errgroup until limit
// items are collected. The first page runs alone to learn the total, the
// rest in parallel.
func (a *ShopAdapter) Search(ctx context.Context, query string, limit int) (*ShopSearchResult, error) {
	if limit <= 0 {
		limit = shopPageSize
	}

	firstDisplay := limit
	if firstDisplay > shopPageSize {
		firstDisplay = shopPageSize
	}
	first, err := a.fetchPage(ctx, query, 1, firstDisplay)
	if err != nil {
		return nil, err
	}

	remaining := limit - len(first.Items)
	if remaining <= 0 || len(first.Items) < firstDisplay || first.Total <= len(first.Items) {
		return &ShopSearchResult{
			LastBuildDate: first.LastBuildDate,
			Total:         first.Total,
			Display:       len(first.Items),
			Items:         first.Items,
		}, nil
	}

	pageCount := (remaining + shopPageSize - 1) / shopPageSize
	pages := make([][]ShopItem, pageCount)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := 0; i < pageCount; i++ {
		i := i
		g.Go(func() error {
			start := 1 + firstDisplay + i*shopPageSize
			display := shopPageSize
			if left := remaining - i*shopPageSize; left < display {
				display = left
			}
			page, err := a.fetchPage(gctx, query, start, display)
			if err != nil {
				return err
			}
			mu.Lock()
			pages[i] = page.Items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := first.Items
	for _, page := range pages {
		items = append(items, page...)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return &ShopSearchResult{
		LastBuildDate: first.LastBuildDate,
		Total:         first.Total,
		Display:       len(items),
		Items:         items,
	}, nil
}
