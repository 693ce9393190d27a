package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestHoldingSumMatchesBuckets(t *testing.T) {
	holding := GuaranteeSlotHolding{
		BuyerHeld:      d("70000"),
		SellerHeld:     d("20000"),
		SellerReleased: d("10000"),
	}
	if !holding.Sum().Equal(d("100000")) {
		t.Fatalf("sum = %s, want 100000", holding.Sum())
	}
}

func TestValidateHoldingSplit(t *testing.T) {
	total := d("100000")

	cases := []struct {
		name    string
		buyer   string
		seller  string
		release string
		wantErr bool
	}{
		{"fresh purchase", "100000", "0", "0", false},
		{"after three settlements", "70000", "30000", "0", false},
		{"after payout", "70000", "0", "30000", false},
		{"fully settled", "0", "0", "100000", false},
		{"sum short", "60000", "30000", "0", true},
		{"sum over", "80000", "30000", "0", true},
		{"negative bucket", "-10000", "80000", "30000", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateHoldingSplit(total, d(tc.buyer), d(tc.seller), d(tc.release))
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

// A full settlement run moves daily amounts buyer→seller→released and
// never breaks the sum invariant at any step.
func TestHoldingSettlementWalk(t *testing.T) {
	total := d("100000")
	daily := d("10000")
	buyer, seller, released := total, decimal.Zero, decimal.Zero

	for day := 0; day < 10; day++ {
		buyer = buyer.Sub(daily)
		seller = seller.Add(daily)
		if err := ValidateHoldingSplit(total, buyer, seller, released); err != nil {
			t.Fatalf("day %d settle: %v", day, err)
		}
	}
	released = released.Add(seller)
	seller = decimal.Zero
	if err := ValidateHoldingSplit(total, buyer, seller, released); err != nil {
		t.Fatalf("payout: %v", err)
	}
	if !buyer.IsZero() || !released.Equal(total) {
		t.Fatalf("final buckets buyer=%s released=%s", buyer, released)
	}
}
