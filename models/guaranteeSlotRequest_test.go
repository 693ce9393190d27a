package models

import "testing"

// Counterparties register under different business ids, so request and
// slot access must key on the participants, never on the caller's tenant.
func TestSlotRequestPartyAccess(t *testing.T) {
	request := GuaranteeSlotRequest{
		BusinessId: "buyer-tenant",
		BuyerId:    3,
		SellerId:   7,
	}

	if !request.IsParty(3) {
		t.Error("buyer should be a party to their own request")
	}
	if !request.IsParty(7) {
		t.Error("the addressed seller should be a party even though the row carries the buyer's business id")
	}
	if request.IsParty(11) {
		t.Error("a third user should not be a party")
	}
}

func TestSlotPartyAccess(t *testing.T) {
	slot := GuaranteeSlot{
		BusinessId: "buyer-tenant",
		BuyerId:    3,
		SellerId:   7,
	}

	for _, userId := range []int{3, 7} {
		if !slot.IsParty(userId) {
			t.Errorf("user %d should be a party to the slot", userId)
		}
	}
	if slot.IsParty(11) {
		t.Error("a third user should not be a party to the slot")
	}
}
