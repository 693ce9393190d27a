package models

import (
	"context"
	"errors"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
)

// Notification is an in-app message for one user. Urgent notifications
// additionally go out over SMS when the user has a normalized phone; that
// delivery happens in the notification workflow, not here.
type Notification struct {
	ID         int                  `gorm:"primary_key" json:"id"`
	BusinessId string               `gorm:"size:64;not null;index" json:"business_id"`
	UserId     int                  `gorm:"not null;index:idx_notification_user_status,priority:1" json:"user_id"`
	Type       NotificationType     `gorm:"size:30;not null" json:"type"`
	Priority   NotificationPriority `gorm:"type:enum('Low','Normal','High','Urgent');default:Normal" json:"priority"`
	Status     NotificationStatus   `gorm:"type:enum('Unread','Read','Archived');default:Unread;index:idx_notification_user_status,priority:2" json:"status"`
	Title      string               `gorm:"size:200;not null" json:"title"`
	Body       string               `gorm:"size:1000" json:"body"`
	ResourceId int                  `json:"resource_id"`
	CreatedAt  time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreateNotificationTx inserts a notification in the caller's
// transaction, so slot events and their notifications commit together.
func CreateNotificationTx(tx *gorm.DB, notification *Notification) error {
	if notification.Priority == "" {
		notification.Priority = NotificationPriorityNormal
	}
	notification.Status = NotificationStatusUnread
	return tx.Create(notification).Error
}

// ListNotifications is recipient-scoped: the business id on a row is the
// originating tenant, which for cross-party events is not the recipient's
// own, so reads key on user_id alone.
func ListNotifications(ctx context.Context, userId int, status NotificationStatus, limit, offset int) ([]Notification, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}

	query := db.WithContext(ctx).Where("user_id = ?", userId)
	if status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status <> ?", NotificationStatusArchived)
	}

	var notifications []Notification
	err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, err
}

func CountUnreadNotifications(ctx context.Context, userId int) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND status = ?", userId, NotificationStatusUnread).
		Count(&count).Error
	return count, err
}

func markNotification(ctx context.Context, userId, id int, next NotificationStatus) (*Notification, error) {
	db := config.GetDB()

	var notification Notification
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Take(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if notification.Status == next {
		return &notification, nil
	}
	if !notification.Status.CanTransitionTo(next) {
		return nil, utils.ErrorInvalidTransition
	}
	if err := db.WithContext(ctx).Model(&notification).Update("status", next).Error; err != nil {
		return nil, err
	}
	notification.Status = next
	return &notification, nil
}

func MarkNotificationRead(ctx context.Context, userId, id int) (*Notification, error) {
	return markNotification(ctx, userId, id, NotificationStatusRead)
}

func ArchiveNotification(ctx context.Context, userId, id int) (*Notification, error) {
	return markNotification(ctx, userId, id, NotificationStatusArchived)
}

// MarkAllNotificationsRead flips every unread notification for the user.
func MarkAllNotificationsRead(ctx context.Context, userId int) (int64, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND status = ?", userId, NotificationStatusUnread).
		Update("status", NotificationStatusRead)
	return result.RowsAffected, result.Error
}
