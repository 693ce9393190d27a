package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
)

// Campaign is a keyword-tracking unit owned by a buyer. Place campaigns
// track a map listing by MID, shopping campaigns track a product URL.
type Campaign struct {
	ID         int            `gorm:"primary_key" json:"id"`
	BusinessId string         `gorm:"size:64;not null;index" json:"business_id"`
	OwnerId    int            `gorm:"not null;index" json:"owner_id"`
	Name       string         `gorm:"size:150;not null" json:"name" binding:"required"`
	Type       CampaignType   `gorm:"type:enum('Place','Shopping');default:Place" json:"type"`
	Keyword    string         `gorm:"size:150;not null;index" json:"keyword" binding:"required"`
	TargetMid  string         `gorm:"size:64" json:"target_mid"`
	TargetUrl  string         `gorm:"size:500" json:"target_url"`
	Status     CampaignStatus `gorm:"type:enum('Draft','Active','Paused','Ended');default:Draft" json:"status"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCampaign struct {
	Name      string       `json:"name" binding:"required"`
	Type      CampaignType `json:"type"`
	Keyword   string       `json:"keyword" binding:"required"`
	TargetMid string       `json:"target_mid"`
	TargetUrl string       `json:"target_url"`
}

type UpdateCampaign struct {
	Name      *string `json:"name"`
	Keyword   *string `json:"keyword"`
	TargetMid *string `json:"target_mid"`
	TargetUrl *string `json:"target_url"`
}

func CreateCampaign(ctx context.Context, businessId string, ownerId int, input NewCampaign) (*Campaign, error) {
	db := config.GetDB()

	campaignType := input.Type
	if _, err := ParseCampaignType(string(campaignType)); err != nil {
		campaignType = CampaignTypePlace
	}
	if campaignType == CampaignTypePlace && strings.TrimSpace(input.TargetMid) == "" {
		return nil, errors.New("place campaign requires target_mid")
	}
	if campaignType == CampaignTypeShopping && strings.TrimSpace(input.TargetUrl) == "" {
		return nil, errors.New("shopping campaign requires target_url")
	}
	if err := utils.ValidateUnique[Campaign](ctx, businessId, "name", strings.TrimSpace(input.Name), 0); err != nil {
		return nil, err
	}

	campaign := Campaign{
		BusinessId: businessId,
		OwnerId:    ownerId,
		Name:       strings.TrimSpace(input.Name),
		Type:       campaignType,
		Keyword:    strings.TrimSpace(input.Keyword),
		TargetMid:  strings.TrimSpace(input.TargetMid),
		TargetUrl:  strings.TrimSpace(input.TargetUrl),
		Status:     CampaignStatusDraft,
	}
	if err := db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func GetCampaignById(ctx context.Context, businessId string, id int) (*Campaign, error) {
	db := config.GetDB()
	var campaign Campaign
	err := db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessId).
		Take(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func ListCampaigns(ctx context.Context, businessId string, limit, offset int) ([]Campaign, int64, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}

	var total int64
	base := db.WithContext(ctx).Model(&Campaign{}).Where("business_id = ?", businessId)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []Campaign
	err := db.WithContext(ctx).
		Where("business_id = ?", businessId).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&campaigns).Error
	return campaigns, total, err
}

func UpdateCampaignFields(ctx context.Context, businessId string, id int, input UpdateCampaign) (*Campaign, error) {
	db := config.GetDB()

	campaign, err := GetCampaignById(ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Keyword != nil {
		updates["keyword"] = strings.TrimSpace(*input.Keyword)
	}
	if input.TargetMid != nil {
		updates["target_mid"] = strings.TrimSpace(*input.TargetMid)
	}
	if input.TargetUrl != nil {
		updates["target_url"] = strings.TrimSpace(*input.TargetUrl)
	}
	if len(updates) == 0 {
		return campaign, nil
	}

	if err := db.WithContext(ctx).Model(campaign).Updates(updates).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// ChangeCampaignStatus moves a campaign through its lifecycle. Invalid
// moves are rejected before any write.
func ChangeCampaignStatus(ctx context.Context, businessId string, id int, next CampaignStatus) (*Campaign, error) {
	db := config.GetDB()

	campaign, err := GetCampaignById(ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if !campaign.Status.CanTransitionTo(next) {
		return nil, utils.ErrorInvalidTransition
	}
	if err := db.WithContext(ctx).Model(campaign).Update("status", next).Error; err != nil {
		return nil, err
	}
	campaign.Status = next
	return campaign, nil
}

func DeleteCampaign(ctx context.Context, businessId string, id int) error {
	db := config.GetDB()

	campaign, err := GetCampaignById(ctx, businessId, id)
	if err != nil {
		return err
	}

	openRequests, err := utils.ResourceCountWhere[GuaranteeSlotRequest](ctx, businessId,
		"campaign_id = ? AND status IN ?", campaign.ID,
		[]SlotRequestStatus{SlotRequestStatusRequested, SlotRequestStatusNegotiating, SlotRequestStatusAccepted})
	if err != nil {
		return err
	}
	if openRequests > 0 {
		return errors.New("campaign has open guarantee-slot requests")
	}

	return db.WithContext(ctx).Delete(campaign).Error
}
