package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/launchpad"
)

// LaunchAssetRequest is the request body for issuing a new asset
type LaunchAssetRequest struct {
	Name       string `json:"name" binding:"required"`
	Symbol     string `json:"symbol" binding:"required"`
	Creator    string `json:"creator" binding:"required"`
	CurveID    string `json:"curve_id"`
	StrategyID string `json:"strategy_id"`
}

// LaunchAsset issues a new asset on the bonding curve
func LaunchAsset(c *gin.Context) {
	var req LaunchAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creator, err := parseAddress(req.Creator)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := engine.Launch(launchpad.LaunchParams{
		Name:       req.Name,
		Symbol:     req.Symbol,
		Creator:    creator,
		CurveID:    req.CurveID,
		StrategyID: req.StrategyID,
	})
	if err != nil {
		abortTradeErr(c, err)
		return
	}

	if dbconfig.DB != nil {
		record := models.Asset{
			AssetID:             cfg.AssetID.Hex(),
			Name:                cfg.Name,
			Symbol:              cfg.Symbol,
			Creator:             cfg.Creator.Hex(),
			CurveID:             cfg.CurveID,
			StrategyID:          cfg.StrategyID,
			BuyFeeBps:           cfg.BuyFeeBps,
			SellFeeBps:          cfg.SellFeeBps,
			GraduationThreshold: cfg.GraduationThreshold.Dec(),
			ExcessCap:           cfg.ExcessCap.Dec(),
			MigrationFee:        cfg.MigrationFee.Dec(),
			CreatorAllocation:   cfg.CreatorAllocation.Dec(),
			TotalSupply:         cfg.TotalSupply.Dec(),
			Custody:             cfg.Custody.Hex(),
			Venue:               cfg.Venue.Hex(),
		}
		if err := dbconfig.DB.Create(&record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusCreated, assetConfigView(cfg))
}

// ListAssets returns the ids of every issued asset
func ListAssets(c *gin.Context) {
	ids := engine.Assets()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	c.JSON(http.StatusOK, gin.H{"assets": out})
}

// GetAsset returns the live ledger view of an asset
func GetAsset(c *gin.Context) {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := engine.Snapshot(id)
	if err != nil {
		abortTradeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotView(snap))
}

// ListAssetSnapshots returns the periodic curve-progress records for an asset
func ListAssetSnapshots(c *gin.Context) {
	if dbconfig.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}

	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limitStr := c.DefaultQuery("limit", "100")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	var snapshots []models.AssetSnapshot
	if err := dbconfig.DB.Where("asset_id = ?", id.Hex()).
		Order("created_at desc").
		Limit(limit).
		Find(&snapshots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

func assetConfigView(cfg *launchpad.AssetConfig) gin.H {
	return gin.H{
		"asset_id":             cfg.AssetID.Hex(),
		"name":                 cfg.Name,
		"symbol":               cfg.Symbol,
		"creator":              cfg.Creator.Hex(),
		"curve_id":             cfg.CurveID,
		"strategy_id":          cfg.StrategyID,
		"buy_fee_bps":          cfg.BuyFeeBps,
		"sell_fee_bps":         cfg.SellFeeBps,
		"graduation_threshold": cfg.GraduationThreshold.Dec(),
		"excess_cap":           cfg.ExcessCap.Dec(),
		"migration_fee":        cfg.MigrationFee.Dec(),
		"creator_allocation":   cfg.CreatorAllocation.Dec(),
		"total_supply":         cfg.TotalSupply.Dec(),
		"custody":              cfg.Custody.Hex(),
		"venue":                cfg.Venue.Hex(),
		"created_at":           cfg.CreatedAt,
	}
}

func snapshotView(snap *launchpad.Snapshot) gin.H {
	out := gin.H{
		"config":           assetConfigView(&snap.Config),
		"eth_collected":    snap.EthCollected.Dec(),
		"eth_collected_d":  ethDisplay(snap.EthCollected),
		"released_supply":  snap.ReleasedSupply.Dec(),
		"graduated":        snap.Graduated,
	}
	if snap.VirtualTokenReserve != nil {
		out["virtual_token_reserve"] = snap.VirtualTokenReserve.Dec()
		out["virtual_eth_reserve"] = snap.VirtualEthReserve.Dec()
	}
	return out
}
