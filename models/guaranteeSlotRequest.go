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

// GuaranteeSlotRequest is a buyer's ask for a guaranteed-rank slot on one
// of their campaigns. It moves Requested → Negotiating (on a priced
// counter) → Accepted/Rejected, or Expired when expires_at passes.
type GuaranteeSlotRequest struct {
	ID             int               `gorm:"primary_key" json:"id"`
	BusinessId     string            `gorm:"size:64;not null;index" json:"business_id"`
	CampaignId     int               `gorm:"not null;index" json:"campaign_id"`
	BuyerId        int               `gorm:"not null;index" json:"buyer_id"`
	SellerId       int               `gorm:"not null;index" json:"seller_id"`
	TargetRank     int               `gorm:"not null" json:"target_rank"`
	GuaranteeCount int               `gorm:"not null" json:"guarantee_count"`
	Budget         decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"budget"`
	Status         SlotRequestStatus `gorm:"type:enum('Requested','Negotiating','Accepted','Rejected','Expired');default:Requested" json:"status"`
	ExpiresAt      time.Time         `gorm:"not null;index" json:"expires_at"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSlotRequest struct {
	CampaignId     int             `json:"campaign_id" binding:"required"`
	SellerId       int             `json:"seller_id" binding:"required"`
	TargetRank     int             `json:"target_rank" binding:"required,min=1"`
	GuaranteeCount int             `json:"guarantee_count" binding:"required,min=1"`
	Budget         decimal.Decimal `json:"budget"`
	ExpiresInHours int             `json:"expires_in_hours"`
}

func CreateSlotRequest(ctx context.Context, businessId string, buyerId int, input NewSlotRequest) (*GuaranteeSlotRequest, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Campaign](ctx, businessId, input.CampaignId); err != nil {
		return nil, err
	}

	seller, err := GetUserById(ctx, input.SellerId)
	if err != nil {
		return nil, err
	}
	if seller.Role != UserRoleSeller {
		return nil, errors.New("seller_id does not refer to a seller account")
	}
	if input.Budget.IsNegative() {
		return nil, errors.New("budget must not be negative")
	}

	hours := input.ExpiresInHours
	if hours <= 0 {
		hours = 72
	}

	request := GuaranteeSlotRequest{
		BusinessId:     businessId,
		CampaignId:     input.CampaignId,
		BuyerId:        buyerId,
		SellerId:       input.SellerId,
		TargetRank:     input.TargetRank,
		GuaranteeCount: input.GuaranteeCount,
		Budget:         input.Budget,
		Status:         SlotRequestStatusRequested,
		ExpiresAt:      time.Now().Add(time.Duration(hours) * time.Hour),
	}
	if err := db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// IsParty reports whether the user is one side of the request. BusinessId
// stays the buyer's tenant; counterparties authorize by membership, not
// by sharing a business id.
func (r *GuaranteeSlotRequest) IsParty(userId int) bool {
	return r.BuyerId == userId || r.SellerId == userId
}

func GetSlotRequestById(ctx context.Context, id int) (*GuaranteeSlotRequest, error) {
	db := config.GetDB()
	var request GuaranteeSlotRequest
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &request, nil
}

// ListSlotRequestsForUser returns requests where the user is either side.
// Sellers see requests addressed to them, buyers the ones they opened.
func ListSlotRequestsForUser(ctx context.Context, userId int, status SlotRequestStatus, limit, offset int) ([]GuaranteeSlotRequest, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}

	query := db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userId, userId)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []GuaranteeSlotRequest
	err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&requests).Error
	return requests, err
}

// LockSlotRequestTx fetches the request row FOR UPDATE so concurrent
// accept/reject/expire decisions serialize on it.
func LockSlotRequestTx(tx *gorm.DB, id int) (*GuaranteeSlotRequest, error) {
	var request GuaranteeSlotRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &request, nil
}

// TransitionSlotRequestTx moves the locked request to next, rejecting
// anything the transition table does not allow.
func TransitionSlotRequestTx(tx *gorm.DB, request *GuaranteeSlotRequest, next SlotRequestStatus) error {
	if !request.Status.CanTransitionTo(next) {
		return utils.ErrorInvalidTransition
	}
	if err := tx.Model(request).Update("status", next).Error; err != nil {
		return err
	}
	request.Status = next
	return nil
}

// RejectSlotRequest is the seller declining. Runs in its own transaction;
// the rejection notification goes out through the outbox.
func RejectSlotRequest(ctx context.Context, sellerId, id int) (*GuaranteeSlotRequest, error) {
	db := config.GetDB()

	var rejected *GuaranteeSlotRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := LockSlotRequestTx(tx, id)
		if err != nil {
			return err
		}
		if request.SellerId != sellerId {
			return errors.New("only the addressed seller can reject the request")
		}
		old := *request
		if err := TransitionSlotRequestTx(tx, request, SlotRequestStatusRejected); err != nil {
			return err
		}
		if err := PublishToSlotWorkflow(ctx, tx, request.BusinessId, time.Now(), request.ID,
			SlotReferenceTypeNotification, request, &old, PubSubMessageActionUpdate); err != nil {
			return err
		}
		rejected = request
		return nil
	})
	return rejected, err
}

// FindExpirableRequestIds returns open requests past their deadline. The
// sweeper expires each one in its own transaction.
func FindExpirableRequestIds(ctx context.Context, now time.Time, limit int) ([]int, error) {
	db := config.GetDB()
	if limit <= 0 {
		limit = 100
	}
	var ids []int
	err := db.WithContext(ctx).Model(&GuaranteeSlotRequest{}).
		Where("status IN ? AND expires_at < ?",
			[]SlotRequestStatus{SlotRequestStatusRequested, SlotRequestStatusNegotiating}, now).
		Order("expires_at").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// ExpireSlotRequest moves one overdue request to Expired and emits an
// expiry record to the outbox. A request raced into a terminal state by
// accept/reject is left alone.
func ExpireSlotRequest(ctx context.Context, id int, now time.Time) error {
	db := config.GetDB()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request GuaranteeSlotRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&request).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if request.Status.IsTerminal() || request.ExpiresAt.After(now) {
			return nil
		}
		old := request
		if err := TransitionSlotRequestTx(tx, &request, SlotRequestStatusExpired); err != nil {
			return err
		}
		return PublishToSlotWorkflow(ctx, tx, request.BusinessId, now, request.ID,
			SlotReferenceTypeRequestExpiry, &request, &old, PubSubMessageActionUpdate)
	})
}
