package main

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/nplaceworks/adrank_backend/workflow"
)

func createSlotRequestHandler(c *gin.Context) {
	businessId, userId, _ := sessionIdentity(c)

	var input models.NewSlotRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := models.CreateSlotRequest(c.Request.Context(), businessId, userId, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, request)
}

func listSlotRequestsHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	limit, offset := pageParams(c)

	requests, err := models.ListSlotRequestsForUser(c.Request.Context(), userId, models.SlotRequestStatus(c.Query("status")), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func getSlotRequestHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := models.GetSlotRequestById(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if !request.IsParty(userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, request)
}

func postNegotiationMessageHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var input models.NewNegotiationMessage
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := models.AppendNegotiationMessage(c.Request.Context(), userId, id, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, message)
}

func listNegotiationMessagesHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := models.GetSlotRequestById(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if !request.IsParty(userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	messages, err := models.ListNegotiationMessages(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// acceptSlotRequestHandler is the purchase: it runs synchronously so the
// buyer sees the debit (or the failure) in the response.
func acceptSlotRequestHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	slot, err := workflow.AcceptSlotRequest(c.Request.Context(), userId, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, slot)
}

func rejectSlotRequestHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := models.RejectSlotRequest(c.Request.Context(), userId, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, request)
}

func listSlotsHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	limit, offset := pageParams(c)

	slots, err := models.ListSlotsForUser(c.Request.Context(), userId, models.SlotStatus(c.Query("status")), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func getSlotHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	slot, err := models.GetSlotById(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		return
	}
	if !slot.IsParty(userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, slot)
}

func listSlotSettlementsHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	slot, err := models.GetSlotById(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		return
	}
	if !slot.IsParty(userId) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	settlements, err := models.ListSettlementsForSlot(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}

// refundPolicyFromEnv assembles the platform refund policy. The knobs
// mirror the per-product configuration of the original service.
func refundPolicyFromEnv() utils.RefundPolicy {
	policy := utils.RefundPolicy{
		Enabled:          true,
		PartialRefund:    true,
		RequiresApproval: config.RefundRequiresApproval(),
	}
	if v := strings.TrimSpace(os.Getenv("REFUND_MIN_USAGE_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			policy.MinUsageDays = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REFUND_MAX_REFUND_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			policy.MaxRefundDays = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REFUND_CUTOFF_HOUR")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < 24 {
			policy.CutoffHour = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REFUND_DELAY_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			policy.DelayDays = n
		}
	}
	return policy
}

// cancelSlotHandler refunds the unused days to the buyer and pays out
// the used days to the seller, synchronously.
func cancelSlotHandler(c *gin.Context) {
	businessId, userId, isAdmin := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	policy := refundPolicyFromEnv()
	if policy.RequiresApproval && !isAdmin {
		// Approval mode: open a support thread instead of moving money.
		inquiry, err := models.OpenInquiry(c.Request.Context(), businessId, userId, models.NewInquiry{
			Title:    "Cancellation request for slot " + strconv.Itoa(id),
			Category: "refund",
			Body:     "Buyer requested cancellation of guarantee slot " + strconv.Itoa(id) + "; pending admin approval.",
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "pending_approval",
			"inquiry": inquiry,
		})
		return
	}

	result, err := workflow.CancelSlot(c.Request.Context(), userId, isAdmin, id, policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
