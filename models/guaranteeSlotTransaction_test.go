package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerCheckResultDivergence(t *testing.T) {
	wallet := decimal.NewFromInt(500)
	ledger := decimal.NewFromInt(470)

	result := newLedgerCheckResult(wallet, ledger)
	if result.Consistent {
		t.Error("diverging balances should not be consistent")
	}
	if !result.WalletBalance.Equal(wallet) {
		t.Errorf("wallet_balance should carry the wallet side, got %s", result.WalletBalance)
	}
	if !result.LedgerBalance.Equal(ledger) {
		t.Errorf("ledger_balance should carry the ledger tail, got %s", result.LedgerBalance)
	}
}

func TestLedgerCheckResultMatch(t *testing.T) {
	balance := decimal.RequireFromString("123.4500")
	result := newLedgerCheckResult(balance, decimal.RequireFromString("123.45"))
	if !result.Consistent {
		t.Error("equal balances should be consistent regardless of exponent")
	}
}
