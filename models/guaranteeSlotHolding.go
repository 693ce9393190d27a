package models

import (
	"errors"
	"time"

	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuaranteeSlotHolding tracks where a slot's purchase money sits.
// BuyerHeld starts at the slot total; settlements move daily amounts into
// SellerHeld; payout moves SellerHeld into SellerReleased. The three
// buckets always sum to the slot's TotalAmount.
type GuaranteeSlotHolding struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"size:64;not null;index" json:"business_id"`
	SlotId         int             `gorm:"not null;uniqueIndex" json:"slot_id"`
	BuyerHeld      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"buyer_held"`
	SellerHeld     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"seller_held"`
	SellerReleased decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"seller_released"`
	Status         HoldingStatus   `gorm:"type:enum('Holding','PartialReleased','Completed','Refunded');default:Holding" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Sum returns buyer_held + seller_held + seller_released.
func (h GuaranteeSlotHolding) Sum() decimal.Decimal {
	return h.BuyerHeld.Add(h.SellerHeld).Add(h.SellerReleased)
}

func LockHoldingTx(tx *gorm.DB, slotId int) (*GuaranteeSlotHolding, error) {
	var holding GuaranteeSlotHolding
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slot_id = ?", slotId).
		Take(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &holding, nil
}

// ValidateHoldingSplit checks the bucket arithmetic: no negative bucket,
// and the three buckets sum to the slot total.
func ValidateHoldingSplit(total, buyerHeld, sellerHeld, sellerReleased decimal.Decimal) error {
	if buyerHeld.IsNegative() || sellerHeld.IsNegative() || sellerReleased.IsNegative() {
		return errors.New("holding buckets must not be negative")
	}
	if !buyerHeld.Add(sellerHeld).Add(sellerReleased).Equal(total) {
		return errors.New("holding split does not sum to slot total")
	}
	return nil
}

// applyHoldingSplit writes the new bucket values after checking the sum
// against the slot total and the status move against the table.
func applyHoldingSplit(tx *gorm.DB, slot *GuaranteeSlot, holding *GuaranteeSlotHolding, buyerHeld, sellerHeld, sellerReleased decimal.Decimal, next HoldingStatus) error {
	if err := ValidateHoldingSplit(slot.TotalAmount, buyerHeld, sellerHeld, sellerReleased); err != nil {
		return err
	}
	if next != holding.Status && !holding.Status.CanTransitionTo(next) {
		return utils.ErrorInvalidTransition
	}

	updates := map[string]any{
		"buyer_held":      buyerHeld,
		"seller_held":     sellerHeld,
		"seller_released": sellerReleased,
		"status":          next,
	}
	if err := tx.Model(holding).Updates(updates).Error; err != nil {
		return err
	}
	holding.BuyerHeld = buyerHeld
	holding.SellerHeld = sellerHeld
	holding.SellerReleased = sellerReleased
	holding.Status = next
	return nil
}

// MoveDailyToSellerHeldTx is the achieved-day settlement move:
// daily_amount leaves buyer_held for seller_held.
func MoveDailyToSellerHeldTx(tx *gorm.DB, slot *GuaranteeSlot, holding *GuaranteeSlotHolding) error {
	if holding.BuyerHeld.LessThan(slot.DailyAmount) {
		return errors.New("buyer holding below daily amount")
	}
	return applyHoldingSplit(tx, slot, holding,
		holding.BuyerHeld.Sub(slot.DailyAmount),
		holding.SellerHeld.Add(slot.DailyAmount),
		holding.SellerReleased,
		HoldingStatusPartialReleased)
}

// ReleaseSellerHeldTx pays out everything accrued in seller_held. Used on
// slot completion and, for the accrued part, on cancellation. Returns the
// released amount.
func ReleaseSellerHeldTx(tx *gorm.DB, slot *GuaranteeSlot, holding *GuaranteeSlotHolding, next HoldingStatus) (decimal.Decimal, error) {
	released := holding.SellerHeld
	err := applyHoldingSplit(tx, slot, holding,
		holding.BuyerHeld,
		decimal.Zero,
		holding.SellerReleased.Add(released),
		next)
	if err != nil {
		return decimal.Zero, err
	}
	return released, nil
}

// CancelHoldingTx settles the holding on cancellation. buyer_held shrinks
// to the refunded amount (it stays on the Refunded row as the record of
// what went back to the buyer wallet); the non-refundable remainder and
// everything accrued in seller_held are released to the seller. The
// caller performs both wallet credits in the same transaction.
func CancelHoldingTx(tx *gorm.DB, slot *GuaranteeSlot, holding *GuaranteeSlotHolding, refundToBuyer, forfeitToSeller decimal.Decimal) (sellerPayout decimal.Decimal, err error) {
	if !refundToBuyer.Add(forfeitToSeller).Equal(holding.BuyerHeld) {
		return decimal.Zero, errors.New("refund and forfeit must consume buyer_held exactly")
	}
	sellerPayout = holding.SellerHeld.Add(forfeitToSeller)
	err = applyHoldingSplit(tx, slot, holding,
		refundToBuyer,
		decimal.Zero,
		holding.SellerReleased.Add(sellerPayout),
		HoldingStatusRefunded)
	if err != nil {
		return decimal.Zero, err
	}
	return sellerPayout, nil
}
