package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundPolicy mirrors the per-product refund configuration.
// CutoffHour: before this hour of day, the current day does not yet count
// as used. DelayDays shifts the effective refund date forward.
type RefundPolicy struct {
	Enabled          bool `json:"enabled"`
	MinUsageDays     int  `json:"min_usage_days"`
	MaxRefundDays    int  `json:"max_refund_days"`
	PartialRefund    bool `json:"partial_refund"`
	RequiresApproval bool `json:"requires_approval"`
	CutoffHour       int  `json:"cutoff_hour"`
	DelayDays        int  `json:"delay_days"`
}

type RefundResult struct {
	IsRefundable     bool            `json:"is_refundable"`
	UsedDays         int             `json:"used_days"`
	RemainingDays    int             `json:"remaining_days"`
	TotalDays        int             `json:"total_days"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	RequiresApproval bool            `json:"requires_approval"`
	EffectiveDate    time.Time       `json:"effective_date"`
	Reason           string          `json:"reason"`
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

// CalculateRefund computes refundability and the refund amount for a period
// purchase of originalAmount running [start, end] inclusive, as of now.
//
// Day counting is inclusive: start==end is a one-day period. A day counts
// as used once now reaches the policy cutoff hour on that day.
func CalculateRefund(start, end time.Time, originalAmount decimal.Decimal, policy RefundPolicy, now time.Time) RefundResult {
	res := RefundResult{
		RefundAmount:     decimal.Zero,
		RequiresApproval: policy.RequiresApproval,
		EffectiveDate:    startOfDay(now).AddDate(0, 0, policy.DelayDays),
	}

	if !policy.Enabled {
		res.Reason = "refund disabled"
		return res
	}
	if end.Before(start) {
		res.Reason = "invalid period"
		return res
	}

	totalDays := daysBetween(start, end) + 1
	res.TotalDays = totalDays

	usedDays := 0
	if !now.Before(startOfDay(start)) {
		usedDays = daysBetween(start, now) + 1
		// The current day only counts as used from the cutoff hour on.
		if policy.CutoffHour > 0 && now.Hour() < policy.CutoffHour {
			usedDays--
		}
		if usedDays > totalDays {
			usedDays = totalDays
		}
		if usedDays < 0 {
			usedDays = 0
		}
	}
	res.UsedDays = usedDays
	res.RemainingDays = totalDays - usedDays

	if startOfDay(now).After(startOfDay(end)) {
		res.Reason = "period already ended"
		return res
	}
	if usedDays < policy.MinUsageDays {
		res.Reason = "minimum usage period not reached"
		return res
	}
	if policy.MaxRefundDays > 0 && usedDays > policy.MaxRefundDays {
		res.Reason = "refund window exceeded"
		return res
	}

	res.IsRefundable = true
	if policy.PartialRefund {
		remaining := decimal.NewFromInt(int64(res.RemainingDays))
		total := decimal.NewFromInt(int64(totalDays))
		res.RefundAmount = originalAmount.Mul(remaining).Div(total).Ceil()
	} else {
		res.RefundAmount = originalAmount
	}
	return res
}
