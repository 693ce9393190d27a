package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Inquiry is a support thread opened by a user. Messages are append-only;
// the thread status walks Open → InProgress → Resolved → Closed, with
// Resolved allowed to reopen to InProgress.
type Inquiry struct {
	ID         int           `gorm:"primary_key" json:"id"`
	BusinessId string        `gorm:"size:64;not null;index" json:"business_id"`
	UserId     int           `gorm:"not null;index" json:"user_id"`
	Title      string        `gorm:"size:200;not null" json:"title" binding:"required"`
	Category   string        `gorm:"size:50" json:"category"`
	Status     InquiryStatus `gorm:"type:enum('Open','InProgress','Resolved','Closed');default:Open" json:"status"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type InquiryMessage struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"size:64;not null;index" json:"business_id"`
	InquiryId  int       `gorm:"not null;index" json:"inquiry_id"`
	AuthorId   int       `gorm:"not null" json:"author_id"`
	AuthorRole UserRole  `gorm:"type:enum('A','S','B')" json:"author_role"`
	Body       string    `gorm:"size:4000;not null" json:"body"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *InquiryMessage) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("inquiry messages cannot be edited")
}

type NewInquiry struct {
	Title    string `json:"title" binding:"required"`
	Category string `json:"category"`
	Body     string `json:"body" binding:"required"`
}

// OpenInquiry creates the thread with its first message.
func OpenInquiry(ctx context.Context, businessId string, userId int, input NewInquiry) (*Inquiry, error) {
	db := config.GetDB()

	author, err := GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	var inquiry *Inquiry
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		thread := Inquiry{
			BusinessId: businessId,
			UserId:     userId,
			Title:      strings.TrimSpace(input.Title),
			Category:   strings.TrimSpace(input.Category),
			Status:     InquiryStatusOpen,
		}
		if err := tx.Create(&thread).Error; err != nil {
			return err
		}
		first := InquiryMessage{
			BusinessId: businessId,
			InquiryId:  thread.ID,
			AuthorId:   userId,
			AuthorRole: author.Role,
			Body:       strings.TrimSpace(input.Body),
		}
		if err := tx.Create(&first).Error; err != nil {
			return err
		}
		inquiry = &thread
		return nil
	})
	return inquiry, err
}

// GetInquiryById fetches by id alone; owner and admin checks live with
// the callers so admins can work any tenant's thread.
func GetInquiryById(ctx context.Context, id int) (*Inquiry, error) {
	db := config.GetDB()
	var inquiry Inquiry
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&inquiry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &inquiry, nil
}

func ListInquiries(ctx context.Context, userId int, isAdmin bool, limit, offset int) ([]Inquiry, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}

	// Admins see every tenant's threads.
	query := db.WithContext(ctx).Model(&Inquiry{})
	if !isAdmin {
		query = query.Where("user_id = ?", userId)
	}

	var inquiries []Inquiry
	err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&inquiries).Error
	return inquiries, err
}

// AppendInquiryMessage posts to a thread. An admin reply to an Open
// thread moves it to InProgress; any post to a Resolved thread reopens it.
func AppendInquiryMessage(ctx context.Context, authorId int, isAdmin bool, inquiryId int, body string) (*InquiryMessage, error) {
	db := config.GetDB()

	author, err := GetUserById(ctx, authorId)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("message body is required")
	}

	var message *InquiryMessage
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread Inquiry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", inquiryId).
			Take(&thread).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if !isAdmin && thread.UserId != authorId {
			return errors.New("only the thread owner can post messages")
		}
		if thread.Status == InquiryStatusClosed {
			return errors.New("inquiry is closed")
		}

		entry := InquiryMessage{
			BusinessId: thread.BusinessId,
			InquiryId:  thread.ID,
			AuthorId:   authorId,
			AuthorRole: author.Role,
			Body:       body,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var next InquiryStatus
		switch {
		case isAdmin && thread.Status == InquiryStatusOpen:
			next = InquiryStatusInProgress
		case thread.Status == InquiryStatusResolved:
			next = InquiryStatusInProgress
		}
		if next != "" {
			if !thread.Status.CanTransitionTo(next) {
				return utils.ErrorInvalidTransition
			}
			if err := tx.Model(&thread).Update("status", next).Error; err != nil {
				return err
			}
		}

		message = &entry
		return nil
	})
	return message, err
}

func ListInquiryMessages(ctx context.Context, userId int, isAdmin bool, inquiryId int) ([]InquiryMessage, error) {
	db := config.GetDB()

	inquiry, err := GetInquiryById(ctx, inquiryId)
	if err != nil {
		return nil, err
	}
	if !isAdmin && inquiry.UserId != userId {
		return nil, utils.ErrorRecordNotFound
	}

	var messages []InquiryMessage
	err = db.WithContext(ctx).
		Where("inquiry_id = ?", inquiryId).
		Order("id").
		Find(&messages).Error
	return messages, err
}

// ChangeInquiryStatus transitions the thread per the table. Resolving and
// closing are admin actions; the owner may close their own thread.
func ChangeInquiryStatus(ctx context.Context, userId int, isAdmin bool, inquiryId int, next InquiryStatus) (*Inquiry, error) {
	db := config.GetDB()

	inquiry, err := GetInquiryById(ctx, inquiryId)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		if inquiry.UserId != userId {
			return nil, utils.ErrorRecordNotFound
		}
		if next != InquiryStatusClosed {
			return nil, errors.New("only admins can change inquiry status")
		}
	}
	if !inquiry.Status.CanTransitionTo(next) {
		return nil, utils.ErrorInvalidTransition
	}
	if err := db.WithContext(ctx).Model(inquiry).Update("status", next).Error; err != nil {
		return nil, err
	}
	inquiry.Status = next
	return inquiry, nil
}
