package main

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
)

// getZeroSecondTime truncates a timestamp to the whole minute
func getZeroSecondTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// RecordAssetSnapshots writes one curve-progress row per asset, sourced from
// the last trade event persisted for it.
func RecordAssetSnapshots() error {
	logger.Info("> Recording asset snapshots")

	var assets []models.Asset
	if err := dbconfig.DB.Find(&assets).Error; err != nil {
		logger.Errorf("> Failed to list assets: %v", err)
		return err
	}

	logger.Infof("> Found %d assets", len(assets))

	now := time.Now()
	for _, asset := range assets {
		ethCollected, releasedSupply := "0", "0"

		var last models.EventRecord
		err := dbconfig.DB.Where("asset_id = ? AND type = ?", asset.AssetID, "trade").
			Order("seq desc").
			First(&last).Error
		switch err {
		case nil:
			if trade, ok := last.Payload["trade"].(map[string]interface{}); ok {
				if v, ok := trade["eth_collected"].(string); ok {
					ethCollected = v
				}
				if v, ok := trade["released_supply"].(string); ok {
					releasedSupply = v
				}
			}
		case gorm.ErrRecordNotFound:
			// No trades yet, record the zero state.
		default:
			logger.Errorf("> Failed to load last trade for asset %s: %v", asset.AssetID, err)
			continue
		}

		record := models.AssetSnapshot{
			AssetID:            asset.AssetID,
			EthCollected:       ethCollected,
			ReleasedSupply:     releasedSupply,
			Graduated:          asset.Graduated,
			CreatedAtByZeroSec: getZeroSecondTime(now),
		}
		if err := dbconfig.DB.Create(&record).Error; err != nil {
			logger.Errorf("> Failed to create snapshot for asset %s: %v", asset.AssetID, err)
			continue
		}
	}

	logger.Info("> Asset snapshots recorded")
	return nil
}

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/asset_snapshot_record.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.Warn("Cannot open log file, logging to stdout")
	}

	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)
	logger.Info("> Starting snapshot recorder...")

	dbconfig.InitDB()
	logger.Info("> Database connection ready")

	c := cron.New(cron.WithSeconds())

	// Every 15 minutes
	_, err = c.AddFunc("0 */15 * * * *", func() {
		if err := RecordAssetSnapshots(); err != nil {
			logger.Errorf("> Snapshot run failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> Failed to schedule snapshot job: %v", err)
	}

	logger.Info("> Snapshot job scheduled every 15 minutes")

	c.Start()

	select {}
}
