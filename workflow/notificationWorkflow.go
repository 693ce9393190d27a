package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProcessSlotPurchaseWorkflow fans out the purchase notifications after
// the synchronous accept transaction committed. The money already moved;
// this handler only tells both parties about it.
func ProcessSlotPurchaseWorkflow(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	var slot models.GuaranteeSlot
	if err := json.Unmarshal(msg.NewObj, &slot); err != nil {
		return err
	}

	notifications := []models.Notification{
		{
			BusinessId: msg.BusinessId,
			UserId:     slot.BuyerId,
			Type:       models.NotificationTypeSlotAccepted,
			Priority:   models.NotificationPriorityHigh,
			Title:      "Guarantee slot purchased",
			Body:       fmt.Sprintf("Your request was accepted; slot %d is active for %d days at rank %d", slot.ID, slot.GuaranteeCount, slot.TargetRank),
			ResourceId: slot.ID,
		},
		{
			BusinessId: msg.BusinessId,
			UserId:     slot.SellerId,
			Type:       models.NotificationTypeSlotAccepted,
			Title:      "Guarantee slot started",
			Body:       fmt.Sprintf("Slot %d is active; achieve rank %d on %d days", slot.ID, slot.TargetRank, slot.GuaranteeCount),
			ResourceId: slot.ID,
		},
	}
	for i := range notifications {
		if err := models.CreateNotificationTx(tx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

// refundNotifications builds the cancellation fan-out. The seller loses
// an active engagement mid-flight, so their copy goes out Urgent and is
// handed to SMS delivery when a phone is on file.
func refundNotifications(businessId string, slot *models.GuaranteeSlot) []models.Notification {
	return []models.Notification{
		{
			BusinessId: businessId,
			UserId:     slot.BuyerId,
			Type:       models.NotificationTypeSlotCancelled,
			Priority:   models.NotificationPriorityHigh,
			Title:      "Guarantee slot cancelled",
			Body:       fmt.Sprintf("Slot %d was cancelled; the refund has been credited to your wallet", slot.ID),
			ResourceId: slot.ID,
		},
		{
			BusinessId: businessId,
			UserId:     slot.SellerId,
			Type:       models.NotificationTypeSlotCancelled,
			Priority:   models.NotificationPriorityUrgent,
			Title:      "Guarantee slot cancelled",
			Body:       fmt.Sprintf("Slot %d was cancelled by the buyer; accrued days were paid out", slot.ID),
			ResourceId: slot.ID,
		},
	}
}

// ProcessSlotRefundWorkflow notifies both parties after a cancellation.
func ProcessSlotRefundWorkflow(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	var slot models.GuaranteeSlot
	if err := json.Unmarshal(msg.NewObj, &slot); err != nil {
		return err
	}

	notifications := refundNotifications(msg.BusinessId, &slot)
	for i := range notifications {
		if err := models.CreateNotificationTx(tx, &notifications[i]); err != nil {
			return err
		}
		deliverUrgentSMS(tx, logger, &notifications[i])
	}
	return nil
}

// ProcessRequestExpiryWorkflow notifies both parties that a request
// lapsed without a decision.
func ProcessRequestExpiryWorkflow(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	var request models.GuaranteeSlotRequest
	if err := json.Unmarshal(msg.NewObj, &request); err != nil {
		return err
	}

	for _, userId := range []int{request.BuyerId, request.SellerId} {
		notification := models.Notification{
			BusinessId: msg.BusinessId,
			UserId:     userId,
			Type:       models.NotificationTypeSlotExpired,
			Title:      "Guarantee slot request expired",
			Body:       fmt.Sprintf("Request %d expired without a decision", request.ID),
			ResourceId: request.ID,
		}
		if err := models.CreateNotificationTx(tx, &notification); err != nil {
			return err
		}
	}
	return nil
}

// ProcessNotificationWorkflow handles NTF messages: request lifecycle
// events that only need a notification, such as rejections. Urgent
// notifications for users with a phone on file are also queued for SMS.
func ProcessNotificationWorkflow(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	var request models.GuaranteeSlotRequest
	if err := json.Unmarshal(msg.NewObj, &request); err != nil {
		return err
	}

	var notificationType models.NotificationType
	var title, body string
	switch request.Status {
	case models.SlotRequestStatusRejected:
		notificationType = models.NotificationTypeSlotRejected
		title = "Guarantee slot request rejected"
		body = fmt.Sprintf("The seller declined request %d", request.ID)
	case models.SlotRequestStatusNegotiating:
		notificationType = models.NotificationTypeSlotNegotiation
		title = "New offer on your request"
		body = fmt.Sprintf("Request %d has a new price proposal", request.ID)
	default:
		notificationType = models.NotificationTypeSystem
		title = "Guarantee slot request updated"
		body = fmt.Sprintf("Request %d is now %s", request.ID, request.Status)
	}

	notification := models.Notification{
		BusinessId: msg.BusinessId,
		UserId:     request.BuyerId,
		Type:       notificationType,
		Title:      title,
		Body:       body,
		ResourceId: request.ID,
	}
	if err := models.CreateNotificationTx(tx, &notification); err != nil {
		return err
	}

	deliverUrgentSMS(tx, logger, &notification)
	return nil
}

// deliverUrgentSMS logs the SMS hand-off for urgent notifications when
// the user has a normalized phone number. Delivery through an SMS gateway
// is fire-and-forget; failures never roll back the notification.
func deliverUrgentSMS(tx *gorm.DB, logger *logrus.Logger, notification *models.Notification) {
	if notification.Priority != models.NotificationPriorityUrgent {
		return
	}
	var user models.User
	if err := tx.Where("id = ?", notification.UserId).Take(&user).Error; err != nil || user.Phone == "" {
		return
	}
	payload, _ := utils.MarshalToJSON(notification)
	logger.WithFields(logrus.Fields{
		"field":           "NotificationWorkflow",
		"user_id":         user.ID,
		"phone":           user.Phone,
		"notification_id": notification.ID,
		"payload":         payload,
	}).Info("urgent notification queued for SMS delivery")
}
