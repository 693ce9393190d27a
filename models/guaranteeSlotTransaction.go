package models

import (
	"context"
	"errors"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GuaranteeSlotTransaction is the append-only cash ledger. Every wallet
// movement caused by a slot writes exactly one row here, inside the same
// DB transaction as the wallet update.
type GuaranteeSlotTransaction struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"size:64;not null;index;index:idx_gst_biz_user,priority:1" json:"business_id"`
	UserId        int             `gorm:"not null;index;index:idx_gst_biz_user,priority:2" json:"user_id"`
	SlotId        int             `gorm:"index" json:"slot_id"`
	Type          LedgerEntryType `gorm:"type:enum('Purchase','Settlement','Refund','Cancellation')" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance_after"`
	Description   string          `gorm:"size:255" json:"description"`
	CorrelationId string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// Ledger immutability guardrails: rows are append-only.

func (t *GuaranteeSlotTransaction) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("immutable ledger: guarantee_slot_transactions cannot be updated")
}

func (t *GuaranteeSlotTransaction) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: guarantee_slot_transactions cannot be deleted")
}

// AppendLedgerEntryTx inserts a ledger row. balanceBefore/balanceAfter come
// from the wallet mutation performed in the same transaction; their delta
// must equal the signed amount. An empty correlationId gets a fresh one.
func AppendLedgerEntryTx(tx *gorm.DB, businessId string, userId int, slotId int, entryType LedgerEntryType, amount, balanceBefore, balanceAfter decimal.Decimal, description, correlationId string) error {
	// Guard the ledger identity before writing anything.
	delta := balanceAfter.Sub(balanceBefore)
	if !delta.Abs().Equal(amount.Abs()) {
		return errors.New("ledger entry amount does not match balance delta")
	}
	if correlationId == "" {
		correlationId = correlationIdFromContextOrNew(nil)
	}
	entry := GuaranteeSlotTransaction{
		BusinessId:    businessId,
		UserId:        userId,
		SlotId:        slotId,
		Type:          entryType,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Description:   description,
		CorrelationId: correlationId,
	}
	return tx.Create(&entry).Error
}

func ListLedgerEntries(ctx context.Context, userId int, limit, offset int) ([]GuaranteeSlotTransaction, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}
	var entries []GuaranteeSlotTransaction
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

// LedgerCheckResult compares the wallet row against the ledger tail.
// WalletBalance comes from the wallet, LedgerBalance from the last
// entry's balance_after.
type LedgerCheckResult struct {
	Consistent    bool            `json:"consistent"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
}

func newLedgerCheckResult(walletBalance, ledgerBalance decimal.Decimal) *LedgerCheckResult {
	return &LedgerCheckResult{
		Consistent:    walletBalance.Equal(ledgerBalance),
		WalletBalance: walletBalance,
		LedgerBalance: ledgerBalance,
	}
}

// LedgerBalanceCheck recomputes a user's cash balance from the ledger tail
// and compares it against the wallet row. Used by the reconciliation
// report and ops tooling.
func LedgerBalanceCheck(ctx context.Context, userId int) (*LedgerCheckResult, error) {
	db := config.GetDB()

	var last GuaranteeSlotTransaction
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("id DESC").
		Take(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			wallet, werr := GetWalletByUserId(ctx, userId)
			if werr != nil {
				return nil, werr
			}
			return newLedgerCheckResult(wallet.CashBalance, wallet.CashBalance), nil
		}
		return nil, err
	}

	wallet, err := GetWalletByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	return newLedgerCheckResult(wallet.CashBalance, last.BalanceAfter), nil
}
