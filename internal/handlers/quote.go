package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchcontrol/pkg/launchpad"
)

// GetBuyQuote prices a prospective buy without executing it. With
// mode=exact_in (default) amount is the gross wei paid; with mode=exact_out
// it is the token amount wanted.
func GetBuyQuote(c *gin.Context) {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := parseWei(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var q *launchpad.BuyQuote
	switch c.DefaultQuery("mode", "exact_in") {
	case "exact_in":
		q, err = engine.QuoteBuyExactIn(id, amount)
	case "exact_out":
		q, err = engine.QuoteBuyExactOut(id, amount)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be exact_in or exact_out"})
		return
	}
	if err != nil {
		abortTradeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, buyQuoteView(q))
}

// GetSellQuote prices a prospective sell. With mode=exact_in (default)
// amount is the token amount sold; with mode=exact_out it is the net wei the
// seller wants to receive.
func GetSellQuote(c *gin.Context) {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := parseWei(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var q *launchpad.SellQuote
	switch c.DefaultQuery("mode", "exact_in") {
	case "exact_in":
		q, err = engine.QuoteSellExactIn(id, amount)
	case "exact_out":
		q, err = engine.QuoteSellExactOut(id, amount)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be exact_in or exact_out"})
		return
	}
	if err != nil {
		abortTradeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_id": id.Hex(),
		"tokens":   q.Tokens.Dec(),
		"gross":    q.Gross.Dec(),
		"fee":      q.Fee.Dec(),
		"net":      q.Net.Dec(),
		"net_d":    ethDisplay(q.Net),
	})
}

// GetMaxBuy returns the largest buy the excess cap still admits
func GetMaxBuy(c *gin.Context) {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := engine.MaxBuy(id)
	if err != nil {
		abortTradeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, buyQuoteView(q))
}

func buyQuoteView(q *launchpad.BuyQuote) gin.H {
	out := gin.H{
		"gross":          q.Gross.Dec(),
		"gross_d":        ethDisplay(q.Gross),
		"fee":            q.Fee.Dec(),
		"net":            q.Net.Dec(),
		"would_graduate": q.WouldGraduate,
	}
	if q.Tokens != nil {
		out["tokens"] = q.Tokens.Dec()
	}
	return out
}
