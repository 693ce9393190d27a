package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AcceptSlotRequest is the seller accepting: acceptance IS the purchase.
// Inside one transaction under the business posting lock it validates the
// buyer's balance, debits the wallet, creates the slot and its holding,
// appends the Purchase ledger row and queues the outbox record. The
// balance check has to be synchronous, so this cannot go through the
// worker.
func AcceptSlotRequest(ctx context.Context, sellerId, requestId int) (*models.GuaranteeSlot, error) {
	db := config.GetDB()
	now := time.Now()

	// The posting lock is keyed by the buyer's tenant, which the seller's
	// session does not carry, so resolve it from the request row first.
	request, err := models.GetSlotRequestById(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request.SellerId != sellerId {
		return nil, errors.New("only the addressed seller can accept the request")
	}
	businessId := request.BusinessId

	var slot *models.GuaranteeSlot
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireBusinessPostingLock(tx, businessId); err != nil {
			return err
		}
		defer ReleaseBusinessPostingLock(tx, businessId)

		request, err := models.LockSlotRequestTx(tx, requestId)
		if err != nil {
			return err
		}
		if request.SellerId != sellerId {
			return errors.New("only the addressed seller can accept the request")
		}
		if request.ExpiresAt.Before(now) {
			return errors.New("request has expired")
		}

		dailyAmount, err := resolveDailyAmount(tx, request)
		if err != nil {
			return err
		}

		old := *request
		if err := models.TransitionSlotRequestTx(tx, request, models.SlotRequestStatusAccepted); err != nil {
			return err
		}

		created, holding, err := models.CreateSlotFromRequestTx(tx, request, dailyAmount, now)
		if err != nil {
			return err
		}

		before, after, err := models.DebitCashTx(tx, request.BuyerId, created.TotalAmount)
		if err != nil {
			return err
		}
		correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
		if err := models.AppendLedgerEntryTx(tx, businessId, request.BuyerId, created.ID,
			models.LedgerEntryTypePurchase, created.TotalAmount.Neg(), before, after,
			fmt.Sprintf("guarantee slot purchase (request %d)", request.ID), correlationId); err != nil {
			return err
		}
		if err := models.ValidateHoldingSplit(created.TotalAmount, holding.BuyerHeld, holding.SellerHeld, holding.SellerReleased); err != nil {
			return err
		}

		// Point reward on purchase, outside the cash ledger.
		if pct := config.PurchasePointRewardPercent(); pct > 0 {
			reward := created.TotalAmount.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(4)
			if reward.IsPositive() {
				if err := models.CreditPointsTx(tx, request.BuyerId, reward); err != nil {
					return err
				}
			}
		}

		if err := models.PublishToSlotWorkflow(ctx, tx, businessId, now, created.ID,
			models.SlotReferenceTypePurchase, created, &old, models.PubSubMessageActionCreate); err != nil {
			return err
		}

		slot = created
		return nil
	})
	return slot, err
}

// resolveDailyAmount prefers the latest negotiated unit price and falls
// back to the request budget spread over the guarantee days.
func resolveDailyAmount(tx *gorm.DB, request *models.GuaranteeSlotRequest) (decimal.Decimal, error) {
	proposed, err := models.LatestProposedUnitPriceTx(tx, request.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if proposed != nil && proposed.IsPositive() {
		return *proposed, nil
	}
	if request.Budget.IsPositive() && request.GuaranteeCount > 0 {
		return request.Budget.Div(decimal.NewFromInt(int64(request.GuaranteeCount))).Round(4), nil
	}
	return decimal.Zero, errors.New("no agreed price: negotiate a unit price or set a budget")
}
