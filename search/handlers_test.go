package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func TestHandlePlaces_OK(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "" {
			t.Error("query param not forwarded")
		}
		w.Write([]byte(placePageHTML))
	}))
	defer upstream.Close()
	t.Setenv("PLACE_SEARCH_BASE_URL", upstream.URL)
	t.Setenv("SEARCH_PROXY_ENABLED", "true")

	r := newTestRouter(NewHandlers())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/places?query=espresso&x=127.1&y=37.5", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var result PlaceSearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Query != "espresso" {
		t.Fatalf("query = %q", result.Query)
	}
	if len(result.AdMids) != 1 || len(result.NormalList) != 2 {
		t.Fatalf("adMids=%v normalList=%v", result.AdMids, result.NormalList)
	}
}

// Upstream breakage degrades to an empty 200, never an error status.
func TestHandlePlaces_UpstreamFailureIsEmpty200(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()
	t.Setenv("PLACE_SEARCH_BASE_URL", upstream.URL)
	t.Setenv("SEARCH_PROXY_ENABLED", "true")

	r := newTestRouter(NewHandlers())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/places?query=espresso", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on upstream failure", w.Code)
	}
	var result PlaceSearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.AdMids) != 0 || len(result.NormalList) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestHandleSearch_BadHTMLIsEmpty200(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>no state here</html>"))
	}))
	defer upstream.Close()
	t.Setenv("SHOPPING_SEARCH_BASE_URL", upstream.URL)
	t.Setenv("SEARCH_PROXY_ENABLED", "true")

	r := newTestRouter(NewHandlers())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search?query=keyboard", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var result PlaceSearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Query != "keyboard" || len(result.NormalList) != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestHandleShop_OK(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") == "" {
			t.Error("client id header missing")
		}
		json.NewEncoder(w).Encode(shopPage{
			LastBuildDate: "Mon, 01 Sep 2026 12:00:00 +0900",
			Total:         2,
			Display:       2,
			Items: []ShopItem{
				{Title: "Mechanical <b>Keyboard</b>", ProductId: "1001", Lprice: "89000"},
				{Title: "Keycap Set", ProductId: "1002", Lprice: "35000"},
			},
		})
	}))
	defer upstream.Close()
	t.Setenv("SHOP_API_BASE_URL", upstream.URL)
	t.Setenv("SEARCH_PROXY_ENABLED", "true")
	t.Setenv("SHOP_API_CLIENT_ID", "test-id")
	t.Setenv("SHOP_API_CLIENT_SECRET", "test-secret")

	r := newTestRouter(NewHandlers())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shop?query=keyboard&limit=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var result ShopSearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Total != 2 || result.Display != 2 || len(result.Items) != 2 {
		t.Fatalf("result = %+v", result)
	}
}

func TestHandleShop_UpstreamFailureIs500(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()
	t.Setenv("SHOP_API_BASE_URL", upstream.URL)
	t.Setenv("SEARCH_PROXY_ENABLED", "true")

	r := newTestRouter(NewHandlers())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shop?query=keyboard", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestHandleShop_MissingQueryIs400(t *testing.T) {
	r := newTestRouter(NewHandlers())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shop", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
