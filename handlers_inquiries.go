package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/models"
)

func openInquiryHandler(c *gin.Context) {
	businessId, userId, _ := sessionIdentity(c)

	var input models.NewInquiry
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := models.OpenInquiry(c.Request.Context(), businessId, userId, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

func listInquiriesHandler(c *gin.Context) {
	_, userId, isAdmin := sessionIdentity(c)
	limit, offset := pageParams(c)

	inquiries, err := models.ListInquiries(c.Request.Context(), userId, isAdmin, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries})
}

func getInquiryHandler(c *gin.Context) {
	_, userId, isAdmin := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	inquiry, err := models.GetInquiryById(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "inquiry not found"})
		return
	}
	if !isAdmin && inquiry.UserId != userId {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

func listInquiryMessagesHandler(c *gin.Context) {
	_, userId, isAdmin := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	messages, err := models.ListInquiryMessages(c.Request.Context(), userId, isAdmin, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type inquiryMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func postInquiryMessageHandler(c *gin.Context) {
	_, userId, isAdmin := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	var req inquiryMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := models.AppendInquiryMessage(c.Request.Context(), userId, isAdmin, id, req.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, message)
}

func changeInquiryStatusHandler(c *gin.Context) {
	_, userId, isAdmin := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := models.ChangeInquiryStatus(c.Request.Context(), userId, isAdmin, id, models.InquiryStatus(req.Status))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inquiry)
}
