package models

import (
	"context"
	"errors"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
)

// RankSnapshot is one observed search position for a campaign keyword.
// Rank 0 means the target was not found within the checked range.
type RankSnapshot struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"size:64;not null;index" json:"business_id"`
	CampaignId int       `gorm:"not null;index:idx_rank_campaign_checked,priority:1" json:"campaign_id"`
	Keyword    string    `gorm:"size:150;not null" json:"keyword"`
	Rank       int       `gorm:"not null;default:0" json:"rank"`
	CheckedAt  time.Time `gorm:"not null;index:idx_rank_campaign_checked,priority:2" json:"checked_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func AppendRankSnapshot(ctx context.Context, businessId string, campaignId int, rank int, checkedAt time.Time) (*RankSnapshot, error) {
	db := config.GetDB()

	campaign, err := GetCampaignById(ctx, businessId, campaignId)
	if err != nil {
		return nil, err
	}
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}
	if rank < 0 {
		rank = 0
	}

	snapshot := RankSnapshot{
		BusinessId: businessId,
		CampaignId: campaign.ID,
		Keyword:    campaign.Keyword,
		Rank:       rank,
		CheckedAt:  checkedAt,
	}
	if err := db.WithContext(ctx).Create(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func ListRankSnapshots(ctx context.Context, businessId string, campaignId int, limit int) ([]RankSnapshot, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}
	var snapshots []RankSnapshot
	err := db.WithContext(ctx).
		Where("business_id = ? AND campaign_id = ?", businessId, campaignId).
		Order("checked_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}

func LatestRank(ctx context.Context, businessId string, campaignId int) (*RankSnapshot, error) {
	db := config.GetDB()
	var snapshot RankSnapshot
	err := db.WithContext(ctx).
		Where("business_id = ? AND campaign_id = ?", businessId, campaignId).
		Order("checked_at DESC").
		Take(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}
