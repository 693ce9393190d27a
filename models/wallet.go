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

// Wallet holds a user's cash and point balances. All mutations go through
// the *Tx helpers below, under a row lock, and every cash movement appends
// a GuaranteeSlotTransaction row in the same DB transaction.
type Wallet struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"size:64;not null;index" json:"business_id"`
	UserId       int             `gorm:"not null;uniqueIndex" json:"user_id"`
	CashBalance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_balance"`
	PointBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"point_balance"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetWalletByUserId(ctx context.Context, userId int) (*Wallet, error) {
	db := config.GetDB()
	var wallet Wallet
	if err := db.WithContext(ctx).Where("user_id = ?", userId).Take(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func lockWalletTx(tx *gorm.DB, userId int) (*Wallet, error) {
	var wallet Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userId).
		Take(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// DebitCashTx locks the wallet row, checks funds and deducts amount.
// Returns balance before and after.
func DebitCashTx(tx *gorm.DB, userId int, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, errors.New("amount must not be negative")
	}
	wallet, err := lockWalletTx(tx, userId)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if wallet.CashBalance.LessThan(amount) {
		return decimal.Zero, decimal.Zero, utils.ErrorInsufficientBalance
	}
	before := wallet.CashBalance
	after := before.Sub(amount)
	err = tx.Model(&Wallet{}).Where("id = ?", wallet.ID).
		Update("cash_balance", after).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return before, after, nil
}

// CreditCashTx locks the wallet row and adds amount.
// Returns balance before and after.
func CreditCashTx(tx *gorm.DB, userId int, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, errors.New("amount must not be negative")
	}
	wallet, err := lockWalletTx(tx, userId)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	before := wallet.CashBalance
	after := before.Add(amount)
	err = tx.Model(&Wallet{}).Where("id = ?", wallet.ID).
		Update("cash_balance", after).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return before, after, nil
}

func CreditPointsTx(tx *gorm.DB, userId int, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if amount.IsZero() {
		return nil
	}
	wallet, err := lockWalletTx(tx, userId)
	if err != nil {
		return err
	}
	return tx.Model(&Wallet{}).Where("id = ?", wallet.ID).
		Update("point_balance", wallet.PointBalance.Add(amount)).Error
}
