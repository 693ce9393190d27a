package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
)

// CancelSlotResult reports what a cancellation moved where.
type CancelSlotResult struct {
	Slot         *models.GuaranteeSlot `json:"slot"`
	Refund       utils.RefundResult    `json:"refund"`
	SellerPayout string                `json:"seller_payout"`
}

// canCancelSlot gates the cancellation: the buyer cancels their own
// slots, admins execute approved cancellations on the buyer's behalf.
// The refund always flows to the buyer wallet regardless of who calls.
func canCancelSlot(slot *models.GuaranteeSlot, callerId int, isAdmin bool) bool {
	return isAdmin || slot.BuyerId == callerId
}

// CancelSlot cancels an active slot. The refund decision comes from the
// refund policy; the money moves happen here, in one transaction under
// the posting lock: the refundable part of buyer_held returns to the
// buyer wallet (Refund row), the rest plus accrued seller_held pays out
// to the seller (Cancellation row).
func CancelSlot(ctx context.Context, callerId int, isAdmin bool, slotId int, policy utils.RefundPolicy) (*CancelSlotResult, error) {
	db := config.GetDB()
	now := time.Now()
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	// Resolve the slot's tenant before taking the posting lock.
	target, err := models.GetSlotById(ctx, slotId)
	if err != nil {
		return nil, err
	}
	if !canCancelSlot(target, callerId, isAdmin) {
		return nil, utils.ErrorRecordNotFound
	}
	businessId := target.BusinessId

	var result *CancelSlotResult
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireBusinessPostingLock(tx, businessId); err != nil {
			return err
		}
		defer ReleaseBusinessPostingLock(tx, businessId)

		slot, err := models.LockSlotTx(tx, slotId)
		if err != nil {
			return err
		}
		if !canCancelSlot(slot, callerId, isAdmin) {
			return utils.ErrorRecordNotFound
		}
		if slot.Status != models.SlotStatusActive {
			return errors.New("only active slots can be cancelled")
		}

		end := slot.StartedAt.AddDate(0, 0, slot.GuaranteeCount-1)
		refund := utils.CalculateRefund(slot.StartedAt, end, slot.TotalAmount, policy, now)
		if !refund.IsRefundable {
			return fmt.Errorf("not refundable: %s", refund.Reason)
		}

		holding, err := models.LockHoldingTx(tx, slot.ID)
		if err != nil {
			return err
		}
		refundAmount := refund.RefundAmount
		if refundAmount.GreaterThan(holding.BuyerHeld) {
			refundAmount = holding.BuyerHeld
		}
		forfeit := holding.BuyerHeld.Sub(refundAmount)

		sellerPayout, err := models.CancelHoldingTx(tx, slot, holding, refundAmount, forfeit)
		if err != nil {
			return err
		}

		if refundAmount.IsPositive() {
			before, after, err := models.CreditCashTx(tx, slot.BuyerId, refundAmount)
			if err != nil {
				return err
			}
			if err := models.AppendLedgerEntryTx(tx, businessId, slot.BuyerId, slot.ID,
				models.LedgerEntryTypeRefund, refundAmount, before, after,
				fmt.Sprintf("guarantee slot %d cancellation refund", slot.ID), correlationId); err != nil {
				return err
			}
		}
		if sellerPayout.IsPositive() {
			before, after, err := models.CreditCashTx(tx, slot.SellerId, sellerPayout)
			if err != nil {
				return err
			}
			if err := models.AppendLedgerEntryTx(tx, businessId, slot.SellerId, slot.ID,
				models.LedgerEntryTypeCancellation, sellerPayout, before, after,
				fmt.Sprintf("guarantee slot %d cancellation payout", slot.ID), correlationId); err != nil {
				return err
			}
		}

		old := *slot
		if err := models.TransitionSlotTx(tx, slot, models.SlotStatusCancelled, now); err != nil {
			return err
		}

		if err := models.PublishToSlotWorkflow(ctx, tx, businessId, now, slot.ID,
			models.SlotReferenceTypeRefund, slot, &old, models.PubSubMessageActionUpdate); err != nil {
			return err
		}

		result = &CancelSlotResult{
			Slot:         slot,
			Refund:       refund,
			SellerPayout: sellerPayout.String(),
		}
		return nil
	})
	return result, err
}
