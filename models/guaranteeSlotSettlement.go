package models

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/nplaceworks/adrank_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrSettlementExists marks a duplicate (slot, date) settlement. Callers
// treat it as an idempotent no-op.
var ErrSettlementExists = errors.New("settlement already recorded for this slot and date")

// GuaranteeSlotSettlement is one day's rank-check outcome for a slot.
// Rows are immutable; the unique (slot_id, settlement_date) key makes a
// replayed settlement message a no-op.
type GuaranteeSlotSettlement struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"size:64;not null;index" json:"business_id"`
	SlotId         int             `gorm:"not null;uniqueIndex:uniq_settlement_slot_date,priority:1" json:"slot_id"`
	SettlementDate string          `gorm:"size:10;not null;uniqueIndex:uniq_settlement_slot_date,priority:2" json:"settlement_date"`
	TargetRank     int             `gorm:"not null" json:"target_rank"`
	AchievedRank   int             `gorm:"not null;default:0" json:"achieved_rank"`
	Achieved       bool            `gorm:"not null" json:"achieved"`
	PayoutAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"payout_amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (s *GuaranteeSlotSettlement) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("settlement rows cannot be updated")
}

func (s *GuaranteeSlotSettlement) BeforeDelete(tx *gorm.DB) error {
	return errors.New("settlement rows cannot be deleted")
}

// CreateSettlementTx inserts the daily settlement row, mapping the MySQL
// duplicate-key error to ErrSettlementExists.
func CreateSettlementTx(tx *gorm.DB, settlement *GuaranteeSlotSettlement) error {
	if err := tx.Create(settlement).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrSettlementExists
		}
		return err
	}
	return nil
}

func ListSettlementsForSlot(ctx context.Context, slotId int) ([]GuaranteeSlotSettlement, error) {
	db := config.GetDB()
	var settlements []GuaranteeSlotSettlement
	err := db.WithContext(ctx).
		Where("slot_id = ?", slotId).
		Order("settlement_date").
		Find(&settlements).Error
	return settlements, err
}

// ListSettlementsForExport returns settlements in a date range across the
// whole platform, for the admin Excel report.
func ListSettlementsForExport(ctx context.Context, fromDate, toDate string) ([]GuaranteeSlotSettlement, error) {
	db := config.GetDB()
	var settlements []GuaranteeSlotSettlement
	query := db.WithContext(ctx).Order("settlement_date, slot_id")
	if fromDate != "" {
		query = query.Where("settlement_date >= ?", fromDate)
	}
	if toDate != "" {
		query = query.Where("settlement_date <= ?", toDate)
	}
	err := query.Find(&settlements).Error
	return settlements, err
}
