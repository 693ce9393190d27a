package models

import (
	"context"
	"errors"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuaranteeSlot is a purchased guarantee: the seller must achieve
// TargetRank on GuaranteeCount distinct days. TotalAmount is always
// DailyAmount * GuaranteeCount, charged up front and held until days are
// settled.
type GuaranteeSlot struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"size:64;not null;index" json:"business_id"`
	RequestId      int             `gorm:"not null;uniqueIndex" json:"request_id"`
	CampaignId     int             `gorm:"not null;index" json:"campaign_id"`
	BuyerId        int             `gorm:"not null;index" json:"buyer_id"`
	SellerId       int             `gorm:"not null;index" json:"seller_id"`
	TargetRank     int             `gorm:"not null" json:"target_rank"`
	GuaranteeCount int             `gorm:"not null" json:"guarantee_count"`
	CompletedCount int             `gorm:"not null;default:0" json:"completed_count"`
	DailyAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"daily_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Status         SlotStatus      `gorm:"type:enum('Active','Completed','Cancelled');default:Active" json:"status"`
	StartedAt      time.Time       `gorm:"not null" json:"started_at"`
	EndedAt        *time.Time      `json:"ended_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreateSlotFromRequestTx materializes an accepted request into an active
// slot plus its holding row. Wallet movement and the ledger row are the
// caller's responsibility, in the same transaction.
func CreateSlotFromRequestTx(tx *gorm.DB, request *GuaranteeSlotRequest, dailyAmount decimal.Decimal, startedAt time.Time) (*GuaranteeSlot, *GuaranteeSlotHolding, error) {
	if !dailyAmount.IsPositive() {
		return nil, nil, errors.New("daily amount must be positive")
	}
	if request.GuaranteeCount <= 0 {
		return nil, nil, errors.New("guarantee count must be positive")
	}

	total := dailyAmount.Mul(decimal.NewFromInt(int64(request.GuaranteeCount)))
	slot := GuaranteeSlot{
		BusinessId:     request.BusinessId,
		RequestId:      request.ID,
		CampaignId:     request.CampaignId,
		BuyerId:        request.BuyerId,
		SellerId:       request.SellerId,
		TargetRank:     request.TargetRank,
		GuaranteeCount: request.GuaranteeCount,
		DailyAmount:    dailyAmount,
		TotalAmount:    total,
		Status:         SlotStatusActive,
		StartedAt:      startedAt,
	}
	if err := tx.Create(&slot).Error; err != nil {
		return nil, nil, err
	}

	holding := GuaranteeSlotHolding{
		BusinessId: slot.BusinessId,
		SlotId:     slot.ID,
		BuyerHeld:  total,
		Status:     HoldingStatusHolding,
	}
	if err := tx.Create(&holding).Error; err != nil {
		return nil, nil, err
	}
	return &slot, &holding, nil
}

// IsParty reports whether the user is the slot's buyer or seller.
func (s *GuaranteeSlot) IsParty(userId int) bool {
	return s.BuyerId == userId || s.SellerId == userId
}

func GetSlotById(ctx context.Context, id int) (*GuaranteeSlot, error) {
	db := config.GetDB()
	var slot GuaranteeSlot
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func ListSlotsForUser(ctx context.Context, userId int, status SlotStatus, limit, offset int) ([]GuaranteeSlot, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}

	query := db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userId, userId)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var slots []GuaranteeSlot
	err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&slots).Error
	return slots, err
}

// LockSlotTx fetches the slot FOR UPDATE. Every settlement and refund
// serializes on this row inside the posting lock.
func LockSlotTx(tx *gorm.DB, slotId int) (*GuaranteeSlot, error) {
	var slot GuaranteeSlot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", slotId).
		Take(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// TransitionSlotTx moves a locked slot to next per the transition table
// and stamps EndedAt on terminal states.
func TransitionSlotTx(tx *gorm.DB, slot *GuaranteeSlot, next SlotStatus, now time.Time) error {
	if !slot.Status.CanTransitionTo(next) {
		return utils.ErrorInvalidTransition
	}
	updates := map[string]any{"status": next}
	if next == SlotStatusCompleted || next == SlotStatusCancelled {
		updates["ended_at"] = now
	}
	if err := tx.Model(slot).Updates(updates).Error; err != nil {
		return err
	}
	slot.Status = next
	if next == SlotStatusCompleted || next == SlotStatusCancelled {
		slot.EndedAt = &now
	}
	return nil
}

// IncrementCompletedCountTx bumps the achieved-day counter, never past
// the guarantee count.
func IncrementCompletedCountTx(tx *gorm.DB, slot *GuaranteeSlot) error {
	if slot.CompletedCount >= slot.GuaranteeCount {
		return errors.New("completed count already at guarantee count")
	}
	next := slot.CompletedCount + 1
	if err := tx.Model(slot).Update("completed_count", next).Error; err != nil {
		return err
	}
	slot.CompletedCount = next
	return nil
}
