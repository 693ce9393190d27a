package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func boolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// RefundRequiresApproval forces cancel/refund requests into an admin
// approval queue instead of settling immediately.
//
// Set via env:
// - REFUND_REQUIRES_APPROVAL=true
func RefundRequiresApproval() bool {
	return boolEnv("REFUND_REQUIRES_APPROVAL")
}

// SearchProxyEnabled gates the /api/places, /api/search and /api/shop
// upstream proxies. Disabled proxies return empty results.
//
// Set via env:
// - SEARCH_PROXY_ENABLED=true
func SearchProxyEnabled() bool {
	return boolEnv("SEARCH_PROXY_ENABLED")
}

// LoginFailWindow is how long failed-login counters live before the
// slate is wiped. Defaults to 15 minutes.
//
// Set via env:
// - LOGIN_FAIL_WINDOW_MINUTES=30
func LoginFailWindow() time.Duration {
	v := strings.TrimSpace(os.Getenv("LOGIN_FAIL_WINDOW_MINUTES"))
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return 15 * time.Minute
}

// PurchasePointRewardPercent returns the percent of a slot purchase that is
// credited back to the buyer as points (0 disables the reward).
//
// Set via env:
// - PURCHASE_POINT_REWARD_PERCENT=3
func PurchasePointRewardPercent() int {
	v := strings.TrimSpace(os.Getenv("PURCHASE_POINT_REWARD_PERCENT"))
	if v == "" {
		return 0
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	if n > 100 {
		return 0
	}
	return n
}
