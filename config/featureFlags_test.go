package config

import (
	"testing"
	"time"
)

func TestLoginFailWindow(t *testing.T) {
	t.Setenv("LOGIN_FAIL_WINDOW_MINUTES", "")
	if got := LoginFailWindow(); got != 15*time.Minute {
		t.Errorf("default window should be 15m, got %s", got)
	}

	t.Setenv("LOGIN_FAIL_WINDOW_MINUTES", "30")
	if got := LoginFailWindow(); got != 30*time.Minute {
		t.Errorf("expected 30m, got %s", got)
	}

	t.Setenv("LOGIN_FAIL_WINDOW_MINUTES", "junk")
	if got := LoginFailWindow(); got != 15*time.Minute {
		t.Errorf("invalid values should fall back to 15m, got %s", got)
	}

	t.Setenv("LOGIN_FAIL_WINDOW_MINUTES", "0")
	if got := LoginFailWindow(); got != 15*time.Minute {
		t.Errorf("zero should fall back to 15m, got %s", got)
	}
}
