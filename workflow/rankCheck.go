package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"gorm.io/gorm"
)

// RecordRankCheck stores the day's rank snapshot for the slot's campaign
// and queues the settlement event. The wallet and holding moves happen in
// the worker, so replays of the same day settle exactly once.
func RecordRankCheck(ctx context.Context, callerId int, isAdmin bool, slotId int, achievedRank int, checkedAt time.Time) (*models.GuaranteeSlotSettlement, error) {
	db := config.GetDB()
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}
	settlementDate := checkedAt.Format("2006-01-02")

	slot, err := models.GetSlotById(ctx, slotId)
	if err != nil {
		return nil, err
	}
	if !isAdmin && slot.SellerId != callerId {
		return nil, errors.New("only the slot seller can report rank checks")
	}
	if slot.Status != models.SlotStatusActive {
		return nil, errors.New("slot is not active")
	}
	businessId := slot.BusinessId

	if _, err := models.AppendRankSnapshot(ctx, businessId, slot.CampaignId, achievedRank, checkedAt); err != nil {
		return nil, err
	}

	event := SettlementEvent{
		SlotId:         slot.ID,
		SettlementDate: settlementDate,
		AchievedRank:   achievedRank,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return models.PublishToSlotWorkflow(ctx, tx, businessId, checkedAt, slot.ID,
			models.SlotReferenceTypeSettlement, event, nil, models.PubSubMessageActionCreate)
	})
	if err != nil {
		return nil, err
	}

	// Preview of what the worker will record.
	achieved := achievedRank > 0 && achievedRank <= slot.TargetRank
	preview := models.GuaranteeSlotSettlement{
		BusinessId:     businessId,
		SlotId:         slot.ID,
		SettlementDate: settlementDate,
		TargetRank:     slot.TargetRank,
		AchievedRank:   achievedRank,
		Achieved:       achieved,
	}
	if achieved {
		preview.PayoutAmount = slot.DailyAmount
	}
	return &preview, nil
}
