package workflow

import (
	"testing"

	"github.com/nplaceworks/adrank_backend/models"
	"github.com/sirupsen/logrus"
)

func TestRefundNotificationsSellerIsUrgent(t *testing.T) {
	slot := &models.GuaranteeSlot{ID: 41, BuyerId: 3, SellerId: 7}

	notifications := refundNotifications("buyer-tenant", slot)
	if len(notifications) != 2 {
		t.Fatalf("expected a notification for each party, got %d", len(notifications))
	}

	var seller, buyer *models.Notification
	for i := range notifications {
		switch notifications[i].UserId {
		case slot.SellerId:
			seller = &notifications[i]
		case slot.BuyerId:
			buyer = &notifications[i]
		}
	}
	if seller == nil || buyer == nil {
		t.Fatal("both parties should be notified")
	}
	if seller.Priority != models.NotificationPriorityUrgent {
		t.Errorf("seller cancellation notice should be Urgent, got %s", seller.Priority)
	}
	if buyer.Priority == models.NotificationPriorityUrgent {
		t.Error("buyer cancellation notice should not be Urgent")
	}
	for _, n := range notifications {
		if n.Type != models.NotificationTypeSlotCancelled {
			t.Errorf("expected SlotCancelled type, got %s", n.Type)
		}
		if n.ResourceId != slot.ID {
			t.Errorf("expected resource id %d, got %d", slot.ID, n.ResourceId)
		}
	}
}

func TestDeliverUrgentSMSSkipsNonUrgent(t *testing.T) {
	logger := logrus.New()
	notification := &models.Notification{
		UserId:   3,
		Priority: models.NotificationPriorityNormal,
	}
	// Non-urgent notifications return before any user lookup, so a nil
	// transaction must be safe here.
	deliverUrgentSMS(nil, logger, notification)
}
