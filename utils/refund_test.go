package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func basePolicy() RefundPolicy {
	return RefundPolicy{
		Enabled:       true,
		MinUsageDays:  1,
		MaxRefundDays: 30,
		PartialRefund: true,
	}
}

func TestCalculateRefund_PartialMidPeriod(t *testing.T) {
	// 10-day period, cancelled on day 5: half the amount comes back.
	res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), basePolicy(), day(2025, 1, 5))

	if !res.IsRefundable {
		t.Fatalf("expected refundable, got reason %q", res.Reason)
	}
	if res.UsedDays != 5 || res.RemainingDays != 5 || res.TotalDays != 10 {
		t.Fatalf("expected used=5 remaining=5 total=10, got used=%d remaining=%d total=%d", res.UsedDays, res.RemainingDays, res.TotalDays)
	}
	if !res.RefundAmount.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected refund 50000, got %s", res.RefundAmount)
	}
}

func TestCalculateRefund_AfterPeriodEnd(t *testing.T) {
	res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), basePolicy(), day(2025, 1, 11))

	if res.IsRefundable {
		t.Fatal("expected not refundable after period end")
	}
	if res.UsedDays != 10 {
		t.Fatalf("expected used days clamped to 10, got %d", res.UsedDays)
	}
	if !res.RefundAmount.IsZero() {
		t.Fatalf("expected zero refund, got %s", res.RefundAmount)
	}
}

func TestCalculateRefund_MinUsageNotReached(t *testing.T) {
	policy := basePolicy()
	policy.MinUsageDays = 3

	for _, today := range []time.Time{day(2025, 1, 1), day(2025, 1, 2)} {
		res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), policy, today)
		if res.IsRefundable {
			t.Fatalf("today=%s: expected not refundable below min usage days", today.Format("2006-01-02"))
		}
	}
}

func TestCalculateRefund_MaxRefundWindowExceeded(t *testing.T) {
	policy := basePolicy()
	policy.MaxRefundDays = 3

	res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), policy, day(2025, 1, 8))
	if res.IsRefundable {
		t.Fatal("expected not refundable past the refund window")
	}
}

func TestCalculateRefund_FullRefundPolicy(t *testing.T) {
	policy := basePolicy()
	policy.PartialRefund = false

	res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), policy, day(2025, 1, 5))
	if !res.IsRefundable {
		t.Fatalf("expected refundable, got reason %q", res.Reason)
	}
	if !res.RefundAmount.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected full 100000 refund, got %s", res.RefundAmount)
	}
}

func TestCalculateRefund_UsedPlusRemainingEqualsTotal(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 1, 10)
	for d := 0; d < 10; d++ {
		today := start.AddDate(0, 0, d)
		res := CalculateRefund(start, end, decimal.NewFromInt(100000), basePolicy(), today)
		if res.UsedDays+res.RemainingDays != res.TotalDays {
			t.Fatalf("today=%s: used(%d)+remaining(%d) != total(%d)", today.Format("2006-01-02"), res.UsedDays, res.RemainingDays, res.TotalDays)
		}
	}
}

func TestCalculateRefund_PartialRefundCeils(t *testing.T) {
	// 3 days total, 1 remaining: 10000/3 rounds up to 3334.
	res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 3), decimal.NewFromInt(10000), basePolicy(), day(2025, 1, 2))
	if !res.IsRefundable {
		t.Fatalf("expected refundable, got reason %q", res.Reason)
	}
	if !res.RefundAmount.Equal(decimal.NewFromInt(3334)) {
		t.Fatalf("expected ceil(10000/3)=3334, got %s", res.RefundAmount)
	}
}

func TestCalculateRefund_DisabledAndCutoff(t *testing.T) {
	policy := basePolicy()
	policy.Enabled = false
	if res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), policy, day(2025, 1, 5)); res.IsRefundable {
		t.Fatal("expected not refundable when policy disabled")
	}

	// Before the cutoff hour, today is not yet a used day.
	policy = basePolicy()
	policy.CutoffHour = 12
	morning := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	res := CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), policy, morning)
	if res.UsedDays != 4 {
		t.Fatalf("expected 4 used days before cutoff, got %d", res.UsedDays)
	}
	afternoon := time.Date(2025, 1, 5, 13, 0, 0, 0, time.UTC)
	res = CalculateRefund(day(2025, 1, 1), day(2025, 1, 10), decimal.NewFromInt(100000), policy, afternoon)
	if res.UsedDays != 5 {
		t.Fatalf("expected 5 used days after cutoff, got %d", res.UsedDays)
	}
}
