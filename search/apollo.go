package search

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"
)

// The place and shopping search pages embed their data as a JS
// assignment: window.__APOLLO_STATE__ = {...};. We cut the object out of
// the HTML and parse it as JSON.
var apolloMarkerRe = regexp.MustCompile(`window\.__APOLLO_STATE__\s*=\s*\{`)

var errNoApolloState = errors.New("no apollo state found in page")

// extractApolloState pulls the embedded state object out of raw HTML.
// The object is cut by brace matching rather than a greedy regex, since
// the JSON itself is full of braces.
func extractApolloState(html []byte) (map[string]json.RawMessage, error) {
	loc := apolloMarkerRe.FindIndex(html)
	if loc == nil {
		return nil, errNoApolloState
	}
	blob, err := cutJSONObject(html[loc[1]-1:])
	if err != nil {
		return nil, err
	}
	var state map[string]json.RawMessage
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, err
	}
	return state, nil
}

// cutJSONObject returns the balanced {...} prefix of b, tracking string
// literals and escapes so braces inside values do not confuse the count.
func cutJSONObject(b []byte) ([]byte, error) {
	depth := 0
	inString := false
	escaped := false
	for i, c := range b {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1], nil
			}
		}
	}
	return nil, errors.New("unterminated object in apollo state")
}

// apolloItem is the subset of a list entry we care about. The upstream
// schema is not under our control; unknown fields are ignored and missing
// ones leave zero values.
type apolloItem struct {
	Typename string  `json:"__typename"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Rank     flexInt `json:"rank"`
}

// flexInt tolerates upstream sending ranks as numbers or quoted strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	var n int
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// SearchItem is one classified result row.
type SearchItem struct {
	Mid  string `json:"mid"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
	IsAd bool   `json:"isAd"`
}

// isAdTypename tags an entry as a paid placement by its type string.
// Upstream uses type names like "AdBusinessSummary" or "...Ad" for paid
// rows and plain summaries for organic ones.
func isAdTypename(typename string) bool {
	return strings.HasSuffix(typename, "Ad") ||
		strings.HasSuffix(typename, "AdSummary") ||
		strings.Contains(typename, "AdBusiness")
}

// collectListItems walks the state map and picks out list entries: keys
// look like "RestaurantListSummary:12345" or "AdBusiness:999". The key
// prefix is the typename, which beats trusting the __typename field when
// the two disagree.
func collectListItems(state map[string]json.RawMessage, limit int) []SearchItem {
	var items []SearchItem
	for key, raw := range state {
		typename, _, found := strings.Cut(key, ":")
		if !found || typename == "ROOT_QUERY" {
			continue
		}
		if !strings.Contains(typename, "Summary") && !isAdTypename(typename) {
			continue
		}

		var entry apolloItem
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if entry.ID == "" {
			continue
		}
		name := entry.Name
		if name == "" {
			name = entry.Title
		}
		items = append(items, SearchItem{
			Mid:  entry.ID,
			Name: name,
			Rank: int(entry.Rank),
			IsAd: isAdTypename(typename),
		})
	}

	// Map iteration is unordered; present ranked items first, then the
	// rest by id for a stable response.
	sort.Slice(items, func(i, j int) bool {
		if items[i].Rank != items[j].Rank {
			if items[i].Rank == 0 {
				return false
			}
			if items[j].Rank == 0 {
				return true
			}
			return items[i].Rank < items[j].Rank
		}
		return items[i].Mid < items[j].Mid
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// classify splits items into the response shape: ad mids on one side,
// organic entries on the other.
func classify(items []SearchItem) (adMids []string, normalList []SearchItem) {
	adMids = []string{}
	normalList = []SearchItem{}
	for _, item := range items {
		if item.IsAd {
			adMids = append(adMids, item.Mid)
			continue
		}
		normalList = append(normalList, item)
	}
	return adMids, normalList
}
