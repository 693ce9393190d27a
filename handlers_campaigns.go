package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/nplaceworks/adrank_backend/workflow"
)

func createCampaignHandler(c *gin.Context) {
	businessId, userId, _ := sessionIdentity(c)

	var input models.NewCampaign
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := models.CreateCampaign(c.Request.Context(), businessId, userId, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func listCampaignsHandler(c *gin.Context) {
	businessId, _, _ := sessionIdentity(c)
	limit, offset := pageParams(c)

	campaigns, total, err := models.ListCampaigns(c.Request.Context(), businessId, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
	})
}

func getCampaignHandler(c *gin.Context) {
	businessId, _, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	campaign, err := models.GetCampaignById(c.Request.Context(), businessId, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func updateCampaignHandler(c *gin.Context) {
	businessId, _, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	var input models.UpdateCampaign
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := models.UpdateCampaignFields(c.Request.Context(), businessId, id, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, campaign)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func changeCampaignStatusHandler(c *gin.Context) {
	businessId, _, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := models.ChangeCampaignStatus(c.Request.Context(), businessId, id, models.CampaignStatus(req.Status))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func deleteCampaignHandler(c *gin.Context) {
	businessId, _, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	if err := models.DeleteCampaign(c.Request.Context(), businessId, id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func listRankSnapshotsHandler(c *gin.Context) {
	businessId, _, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}
	limit, _ := pageParams(c)

	snapshots, err := models.ListRankSnapshots(c.Request.Context(), businessId, id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	latest, err := models.LatestRank(c.Request.Context(), businessId, id)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshots": snapshots,
		"latest":    latest,
	})
}

type rankCheckRequest struct {
	AchievedRank int    `json:"achieved_rank"`
	CheckedAt    string `json:"checked_at"`
}

// recordRankCheckHandler records a rank observation against an active
// slot and queues the settlement decision for the worker.
func recordRankCheckHandler(c *gin.Context) {
	_, userId, isAdmin := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	var req rankCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AchievedRank < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "achieved_rank must be >= 0"})
		return
	}

	checkedAt := time.Now().UTC()
	if req.CheckedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CheckedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "checked_at must be RFC3339: " + strconv.Quote(req.CheckedAt)})
			return
		}
		checkedAt = parsed
	}

	preview, err := workflow.RecordRankCheck(c.Request.Context(), userId, isAdmin, id, req.AchievedRank, checkedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, preview)
}
