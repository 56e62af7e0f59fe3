package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
)

// WithdrawTreasuryRequest is the request body for fee payouts
type WithdrawTreasuryRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// GetTreasury returns the claimable protocol fee balance
func GetTreasury(c *gin.Context) {
	balance := engine.TreasuryBalance()
	c.JSON(http.StatusOK, gin.H{
		"balance":   balance.Dec(),
		"balance_d": ethDisplay(balance),
	})
}

// WithdrawTreasury pays out protocol fees
func WithdrawTreasury(c *gin.Context) {
	var req WithdrawTreasuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	to, err := parseAddress(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := parseWei(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	remaining, err := engine.WithdrawTreasury(to, amount)
	if err != nil {
		abortTradeErr(c, err)
		return
	}

	if dbconfig.DB != nil {
		record := models.TreasuryWithdrawal{
			To:        to.Hex(),
			Amount:    amount.Dec(),
			Remaining: remaining.Dec(),
		}
		if err := dbconfig.DB.Create(&record).Error; err != nil {
			logger.Errorf("Failed to persist treasury withdrawal: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"to":        to.Hex(),
		"amount":    amount.Dec(),
		"remaining": remaining.Dec(),
	})
}
