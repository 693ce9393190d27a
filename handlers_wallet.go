package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/models"
)

func getWalletHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)

	wallet, err := models.GetWalletByUserId(c.Request.Context(), userId)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func listLedgerHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	limit, offset := pageParams(c)

	entries, err := models.ListLedgerEntries(c.Request.Context(), userId, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ledgerBalanceCheckHandler compares the wallet cash balance against the
// last ledger row. A mismatch means a posting bypassed the ledger.
func ledgerBalanceCheckHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)

	result, err := models.LedgerBalanceCheck(c.Request.Context(), userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
