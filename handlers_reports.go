package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/models/reports"
)

// exportSettlementsHandler streams the platform-wide settlement workbook
// for a date range (defaults to the last 30 days). Admin only.
func exportSettlementsHandler(c *gin.Context) {
	fromDate := c.Query("from")
	toDate := c.Query("to")
	if toDate == "" {
		toDate = time.Now().UTC().Format("2006-01-02")
	}
	if fromDate == "" {
		fromDate = time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", fromDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	if _, err := time.Parse("2006-01-02", toDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	if err := reports.ExportSettlements(c.Request.Context(), c.Writer, fromDate, toDate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}

// exportLedgerHandler streams the session user's own ledger workbook.
func exportLedgerHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)

	if err := reports.ExportLedger(c.Request.Context(), c.Writer, userId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}
