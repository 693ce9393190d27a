package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SettlementEvent is the SST outbox payload: one day's rank check for an
// active slot, recorded by the rank-check endpoint.
type SettlementEvent struct {
	SlotId         int    `json:"slot_id"`
	SettlementDate string `json:"settlement_date"`
	AchievedRank   int    `json:"achieved_rank"`
}

// ProcessSlotSettlementWorkflow posts one daily settlement. Achieved days
// move daily_amount from buyer_held to seller_held and bump the completed
// counter; the day that reaches guarantee_count also pays out seller_held
// to the seller wallet with its Settlement ledger row and completes the
// slot. Duplicate (slot, date) deliveries are no-ops.
func ProcessSlotSettlementWorkflow(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	var event SettlementEvent
	if err := utils.UnmarshalFromJSON(msg.NewObj, &event); err != nil {
		return err
	}
	if event.SettlementDate == "" {
		return errors.New("settlement event missing settlement_date")
	}

	slot, err := models.LockSlotTx(tx, event.SlotId)
	if err != nil {
		return err
	}
	if slot.Status != models.SlotStatusActive {
		// The slot ended between the rank check and this delivery.
		logger.WithFields(logrus.Fields{
			"field":   "SlotSettlementWorkflow",
			"slot_id": slot.ID,
			"status":  slot.Status,
		}).Warn("settlement for non-active slot dropped")
		return nil
	}

	achieved := event.AchievedRank > 0 && event.AchievedRank <= slot.TargetRank

	settlement := models.GuaranteeSlotSettlement{
		BusinessId:     slot.BusinessId,
		SlotId:         slot.ID,
		SettlementDate: event.SettlementDate,
		TargetRank:     slot.TargetRank,
		AchievedRank:   event.AchievedRank,
		Achieved:       achieved,
	}
	if achieved {
		settlement.PayoutAmount = slot.DailyAmount
	}
	if err := models.CreateSettlementTx(tx, &settlement); err != nil {
		if errors.Is(err, models.ErrSettlementExists) {
			return nil
		}
		return err
	}

	if !achieved {
		return nil
	}

	holding, err := models.LockHoldingTx(tx, slot.ID)
	if err != nil {
		return err
	}
	if err := models.MoveDailyToSellerHeldTx(tx, slot, holding); err != nil {
		return err
	}
	if err := models.IncrementCompletedCountTx(tx, slot); err != nil {
		return err
	}

	if err := models.CreateNotificationTx(tx, &models.Notification{
		BusinessId: slot.BusinessId,
		UserId:     slot.BuyerId,
		Type:       models.NotificationTypeSlotSettled,
		Title:      "Guaranteed rank achieved",
		Body:       fmt.Sprintf("Slot %d reached rank %d on %s (%d/%d days)", slot.ID, event.AchievedRank, event.SettlementDate, slot.CompletedCount, slot.GuaranteeCount),
		ResourceId: slot.ID,
	}); err != nil {
		return err
	}

	if slot.CompletedCount < slot.GuaranteeCount {
		return nil
	}
	return completeSlotTx(tx, slot, holding, msg.CorrelationId)
}

// completeSlotTx pays out everything accrued in seller_held and closes
// the slot on its final achieved day.
func completeSlotTx(tx *gorm.DB, slot *models.GuaranteeSlot, holding *models.GuaranteeSlotHolding, correlationId string) error {
	payout, err := models.ReleaseSellerHeldTx(tx, slot, holding, models.HoldingStatusCompleted)
	if err != nil {
		return err
	}

	before, after, err := models.CreditCashTx(tx, slot.SellerId, payout)
	if err != nil {
		return err
	}
	if err := models.AppendLedgerEntryTx(tx, slot.BusinessId, slot.SellerId, slot.ID,
		models.LedgerEntryTypeSettlement, payout, before, after,
		fmt.Sprintf("guarantee slot %d settlement payout", slot.ID), correlationId); err != nil {
		return err
	}

	if err := models.TransitionSlotTx(tx, slot, models.SlotStatusCompleted, time.Now()); err != nil {
		return err
	}

	for _, n := range []models.Notification{
		{
			BusinessId: slot.BusinessId,
			UserId:     slot.SellerId,
			Type:       models.NotificationTypeSlotCompleted,
			Priority:   models.NotificationPriorityHigh,
			Title:      "Guarantee slot completed",
			Body:       fmt.Sprintf("Slot %d completed; %s paid out", slot.ID, payout.StringFixed(0)),
			ResourceId: slot.ID,
		},
		{
			BusinessId: slot.BusinessId,
			UserId:     slot.BuyerId,
			Type:       models.NotificationTypeSlotCompleted,
			Title:      "Guarantee slot completed",
			Body:       fmt.Sprintf("Slot %d finished all %d guaranteed days", slot.ID, slot.GuaranteeCount),
			ResourceId: slot.ID,
		},
	} {
		notification := n
		if err := models.CreateNotificationTx(tx, &notification); err != nil {
			return err
		}
	}
	return nil
}
