package search

import (
	"testing"
)

const placePageHTML = `<!doctype html>
<html><head><title>search</title></head>
<body>
<script>
window.__APOLLO_STATE__ = {
	"ROOT_QUERY": {"__typename": "Query"},
	"RestaurantListSummary:11111": {"__typename": "RestaurantListSummary", "id": "11111", "name": "Herring House", "rank": "2"},
	"RestaurantListSummary:22222": {"__typename": "RestaurantListSummary", "id": "22222", "name": "Brace {Cafe}", "rank": 1},
	"AdBusinessSummary:99999": {"__typename": "AdBusinessSummary", "id": "99999", "name": "Paid Place"},
	"ImageSummary:5": {"__typename": "ImageSummary", "id": "", "url": "x.jpg"}
};
window.__PLACE_STATE__ = {"foo": "bar"};
</script>
</body></html>`

func TestExtractApolloState(t *testing.T) {
	state, err := extractApolloState([]byte(placePageHTML))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, ok := state["RestaurantListSummary:11111"]; !ok {
		t.Fatalf("missing list entry, got keys %d", len(state))
	}
}

func TestExtractApolloState_NoState(t *testing.T) {
	_, err := extractApolloState([]byte("<html><body>nothing here</body></html>"))
	if err == nil {
		t.Fatal("expected error for page without apollo state")
	}
}

func TestExtractApolloState_Unterminated(t *testing.T) {
	_, err := extractApolloState([]byte(`window.__APOLLO_STATE__ = {"a": {"b": 1}`))
	if err == nil {
		t.Fatal("expected error for unterminated object")
	}
}

func TestCollectListItems_ClassifiesAndSorts(t *testing.T) {
	state, err := extractApolloState([]byte(placePageHTML))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	items := collectListItems(state, 0)
	if len(items) != 3 {
		t.Fatalf("expected 3 items (empty-id entry dropped), got %d", len(items))
	}
	// Ranked entries first, rank ascending; unranked ad last.
	if items[0].Mid != "22222" || items[0].Rank != 1 {
		t.Fatalf("first item = %+v", items[0])
	}
	if items[1].Mid != "11111" || items[1].Rank != 2 {
		t.Fatalf("second item = %+v", items[1])
	}
	if !items[2].IsAd || items[2].Mid != "99999" {
		t.Fatalf("third item should be the ad, got %+v", items[2])
	}

	adMids, normalList := classify(items)
	if len(adMids) != 1 || adMids[0] != "99999" {
		t.Fatalf("adMids = %v", adMids)
	}
	if len(normalList) != 2 {
		t.Fatalf("normalList = %v", normalList)
	}
}

func TestCollectListItems_Limit(t *testing.T) {
	state, err := extractApolloState([]byte(placePageHTML))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	items := collectListItems(state, 1)
	if len(items) != 1 {
		t.Fatalf("limit not applied, got %d items", len(items))
	}
}

func TestIsAdTypename(t *testing.T) {
	cases := map[string]bool{
		"AdBusinessSummary":     true,
		"RestaurantAd":          true,
		"RestaurantListSummary": false,
		"ShoppingProductAd":     true,
		"PlaceSummary":          false,
	}
	for typename, want := range cases {
		if got := isAdTypename(typename); got != want {
			t.Errorf("isAdTypename(%q) = %v, want %v", typename, got, want)
		}
	}
}
