package workflow

import (
	"testing"

	"github.com/nplaceworks/adrank_backend/models"
)

func TestCanCancelSlot(t *testing.T) {
	slot := &models.GuaranteeSlot{
		BusinessId: "buyer-tenant",
		BuyerId:    3,
		SellerId:   7,
	}

	if !canCancelSlot(slot, 3, false) {
		t.Error("the buyer should be able to cancel their own slot")
	}
	if canCancelSlot(slot, 7, false) {
		t.Error("the seller should not be able to cancel the buyer's slot")
	}
	if canCancelSlot(slot, 11, false) {
		t.Error("an unrelated user should not be able to cancel the slot")
	}
	// Admins execute approved cancellations on the buyer's behalf, from
	// any tenant.
	if !canCancelSlot(slot, 99, true) {
		t.Error("an admin should be able to cancel on behalf of the buyer")
	}
}
