package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GuaranteeSlotNegotiation is one message in a request's negotiation
// thread. Messages are append-only; a priced message from the seller
// moves the request to Negotiating.
type GuaranteeSlotNegotiation struct {
	ID                int              `gorm:"primary_key" json:"id"`
	BusinessId        string           `gorm:"size:64;not null;index" json:"business_id"`
	RequestId         int              `gorm:"not null;index" json:"request_id"`
	AuthorId          int              `gorm:"not null" json:"author_id"`
	AuthorRole        UserRole         `gorm:"type:enum('A','S','B')" json:"author_role"`
	Message           string           `gorm:"size:2000;not null" json:"message"`
	ProposedUnitPrice *decimal.Decimal `gorm:"type:decimal(20,4)" json:"proposed_unit_price"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (n *GuaranteeSlotNegotiation) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("negotiation messages cannot be edited")
}

type NewNegotiationMessage struct {
	Message           string           `json:"message" binding:"required"`
	ProposedUnitPrice *decimal.Decimal `json:"proposed_unit_price"`
}

// AppendNegotiationMessage adds a message to an open request's thread.
// Only the two parties can post. A message carrying a price proposal from
// a Requested request moves it to Negotiating in the same transaction.
func AppendNegotiationMessage(ctx context.Context, authorId int, requestId int, input NewNegotiationMessage) (*GuaranteeSlotNegotiation, error) {
	db := config.GetDB()

	author, err := GetUserById(ctx, authorId)
	if err != nil {
		return nil, err
	}

	var message *GuaranteeSlotNegotiation
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := LockSlotRequestTx(tx, requestId)
		if err != nil {
			return err
		}
		if request.Status.IsTerminal() {
			return errors.New("negotiation is closed for this request")
		}
		if !request.IsParty(authorId) {
			return errors.New("only the request parties can post messages")
		}
		if input.ProposedUnitPrice != nil && input.ProposedUnitPrice.IsNegative() {
			return errors.New("proposed unit price must not be negative")
		}

		entry := GuaranteeSlotNegotiation{
			BusinessId:        request.BusinessId,
			RequestId:         request.ID,
			AuthorId:          authorId,
			AuthorRole:        author.Role,
			Message:           strings.TrimSpace(input.Message),
			ProposedUnitPrice: input.ProposedUnitPrice,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if input.ProposedUnitPrice != nil && request.Status == SlotRequestStatusRequested {
			if err := TransitionSlotRequestTx(tx, request, SlotRequestStatusNegotiating); err != nil {
				return err
			}
		}

		message = &entry
		return nil
	})
	return message, err
}

func ListNegotiationMessages(ctx context.Context, requestId int) ([]GuaranteeSlotNegotiation, error) {
	db := config.GetDB()

	var messages []GuaranteeSlotNegotiation
	err := db.WithContext(ctx).
		Where("request_id = ?", requestId).
		Order("id").
		Find(&messages).Error
	return messages, err
}

// LatestProposedUnitPrice returns the most recent priced offer in the
// thread, or nil when nobody has proposed a price yet. Accepting a
// request uses this over the request budget when present.
func LatestProposedUnitPriceTx(tx *gorm.DB, requestId int) (*decimal.Decimal, error) {
	var entry GuaranteeSlotNegotiation
	err := tx.
		Where("request_id = ? AND proposed_unit_price IS NOT NULL", requestId).
		Order("id DESC").
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry.ProposedUnitPrice, nil
}
