package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/launchpad"
)

// TradeRequest is the shared request body for buys and sells. Amount is the
// exact input: wei for buys, token units for sells. MinOut bounds slippage
// and Deadline (unix seconds) bounds staleness; both are optional.
type TradeRequest struct {
	Trader   string `json:"trader" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	MinOut   string `json:"min_out"`
	Deadline int64  `json:"deadline"`
}

// BuyAsset executes an exact-input buy against the curve
func BuyAsset(c *gin.Context) {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trader, err := parseAddress(req.Trader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := parseWei(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := launchpad.BuyParams{
		AssetID: id,
		Buyer:   trader,
		EthIn:   amount,
	}
	if req.MinOut != "" {
		if params.MinTokensOut, err = parseWei(req.MinOut); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Deadline > 0 {
		params.Deadline = time.Unix(req.Deadline, 0)
	}

	receipt, err := engine.Buy(params)
	if err != nil {
		abortTradeErr(c, err)
		return
	}

	persistTrade(id.Hex(), receipt)
	c.JSON(http.StatusOK, receiptView(receipt))
}

// SellAsset executes an exact-input sell back into the curve
func SellAsset(c *gin.Context) {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trader, err := parseAddress(req.Trader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := parseWei(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := launchpad.SellParams{
		AssetID:  id,
		Seller:   trader,
		TokensIn: amount,
	}
	if req.MinOut != "" {
		if params.MinEthOut, err = parseWei(req.MinOut); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Deadline > 0 {
		params.Deadline = time.Unix(req.Deadline, 0)
	}

	receipt, err := engine.Sell(params)
	if err != nil {
		abortTradeErr(c, err)
		return
	}

	persistTrade(id.Hex(), receipt)
	c.JSON(http.StatusOK, receiptView(receipt))
}

// GetTraderBalance returns a trader's token balance for an asset
func GetTraderBalance(c *gin.Context) {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trader, err := parseAddress(c.Param("trader"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tok, err := engine.Token(id)
	if err != nil {
		abortTradeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_id": id.Hex(),
		"trader":   trader.Hex(),
		"balance":  tok.BalanceOf(trader).Dec(),
	})
}

// ListTradeRecords returns persisted trades for an asset
func ListTradeRecords(c *gin.Context) {
	if dbconfig.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}

	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var records []models.TradeRecord
	if err := dbconfig.DB.Where("asset_id = ?", id.Hex()).
		Order("seq desc").
		Limit(200).
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// persistTrade writes the trade record and flips the asset row on
// graduation. Persistence failures are logged, never surfaced: the trade is
// already committed in the engine.
func persistTrade(assetID string, r *launchpad.TradeReceipt) {
	if dbconfig.DB == nil {
		return
	}

	record := models.TradeRecord{
		Ref:       r.Ref,
		AssetID:   assetID,
		Side:      r.Side,
		Trader:    r.Trader.Hex(),
		Gross:     r.Gross.Dec(),
		Fee:       r.Fee.Dec(),
		Net:       r.Net.Dec(),
		Tokens:    r.Tokens.Dec(),
		Graduated: r.Graduated,
		Seq:       r.Seq,
	}
	if err := dbconfig.DB.Create(&record).Error; err != nil {
		logger.Errorf("Failed to persist trade %s: %v", r.Ref, err)
	}

	if r.Graduated {
		if err := dbconfig.DB.Model(&models.Asset{}).
			Where("asset_id = ?", assetID).
			Update("graduated", true).Error; err != nil {
			logger.Errorf("Failed to mark asset %s graduated: %v", assetID, err)
		}
	}
}

func receiptView(r *launchpad.TradeReceipt) gin.H {
	out := gin.H{
		"ref":       r.Ref,
		"asset_id":  r.AssetID.Hex(),
		"side":      r.Side,
		"trader":    r.Trader.Hex(),
		"gross":     r.Gross.Dec(),
		"gross_d":   ethDisplay(r.Gross),
		"fee":       r.Fee.Dec(),
		"net":       r.Net.Dec(),
		"tokens":    r.Tokens.Dec(),
		"graduated": r.Graduated,
		"seq":       r.Seq,
	}
	if r.Migration != nil {
		out["migration"] = gin.H{
			"pool":             r.Migration.Pool.Hex(),
			"token_amount":     r.Migration.TokenAmount.Dec(),
			"eth_amount":       r.Migration.EthAmount.Dec(),
			"liquidity":        r.Migration.Liquidity.Dec(),
			"locked_liquidity": r.Migration.LockedLiquidity.Dec(),
			"token_dust":       r.Migration.TokenDust.Dec(),
			"eth_dust":         r.Migration.EthDust.Dec(),
		}
	}
	return out
}
