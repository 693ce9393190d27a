package models

import (
	"context"
	"errors"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
)

// Attachment is a GCS-backed file owned by a user: inquiry screenshots,
// campaign images (with generated thumbnails), settlement evidence.
type Attachment struct {
	ID           int       `gorm:"primary_key" json:"id"`
	BusinessId   string    `gorm:"size:64;not null;index" json:"business_id"`
	OwnerId      int       `gorm:"not null;index" json:"owner_id"`
	Kind         string    `gorm:"size:30;not null" json:"kind"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	ObjectName   string    `gorm:"size:500;not null" json:"object_name"`
	Url          string    `gorm:"size:500;not null" json:"url"`
	ThumbnailUrl string    `gorm:"size:500" json:"thumbnail_url"`
	ContentType  string    `gorm:"size:100" json:"content_type"`
	SizeBytes    int64     `gorm:"not null;default:0" json:"size_bytes"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateAttachment(ctx context.Context, attachment *Attachment) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(attachment).Error
}

func GetAttachmentById(ctx context.Context, businessId string, id int) (*Attachment, error) {
	db := config.GetDB()
	var attachment Attachment
	err := db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessId).
		Take(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func ListAttachments(ctx context.Context, businessId string, ownerId int, kind string) ([]Attachment, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).
		Where("business_id = ? AND owner_id = ?", businessId, ownerId)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var attachments []Attachment
	err := query.Order("id DESC").Find(&attachments).Error
	return attachments, err
}

// DeleteAttachment removes the row and best-effort deletes the objects
// behind it. A failed object delete is logged, not surfaced.
func DeleteAttachment(ctx context.Context, businessId string, ownerId, id int) error {
	db := config.GetDB()
	logger := config.GetLogger()

	attachment, err := GetAttachmentById(ctx, businessId, id)
	if err != nil {
		return err
	}
	if attachment.OwnerId != ownerId {
		return utils.ErrorRecordNotFound
	}
	if err := db.WithContext(ctx).Delete(attachment).Error; err != nil {
		return err
	}

	if err := utils.DeleteObjectFromGCS(ctx, attachment.ObjectName); err != nil {
		config.LogError(logger, "models", "DeleteAttachment", "delete object", attachment.ObjectName, err)
	}
	if attachment.ThumbnailUrl != "" {
		if key := utils.ExtractObjectKeyFromURL(attachment.ThumbnailUrl); key != "" {
			if err := utils.DeleteObjectFromGCS(ctx, key); err != nil {
				config.LogError(logger, "models", "DeleteAttachment", "delete thumbnail", key, err)
			}
		}
	}
	return nil
}
