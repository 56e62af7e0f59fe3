package main

import (
	"encoding/json"
	"log"

	"github.com/holiman/uint256"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/config"
	"launchcontrol/pkg/launchpad"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	// Create consumer for the engine event queue
	msgConsumer, err := config.NewConsumer(config.EventQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Launch stats worker started, waiting for events...")

	// Start consuming messages
	err = msgConsumer.Consume(func(msg []byte) error {
		var ev launchpad.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			logrus.Errorf("Failed to unmarshal event: %v", err)
			// Poison message, do not requeue forever.
			return nil
		}

		switch ev.Type {
		case launchpad.EventTrade:
			if ev.Trade == nil {
				return nil
			}
			if err := applyTrade(&ev); err != nil {
				logrus.Errorf("Failed to apply trade event %d: %v", ev.Seq, err)
				return err
			}
			logrus.WithFields(logrus.Fields{
				"seq":    ev.Seq,
				"asset":  ev.AssetID,
				"trader": ev.Trade.Trader,
				"side":   ev.Trade.Side,
			}).Info("Trade event applied")

		case launchpad.EventGraduation:
			if err := config.DB.Model(&models.Asset{}).
				Where("asset_id = ?", ev.AssetID).
				Update("graduated", true).Error; err != nil {
				logrus.Errorf("Failed to apply graduation event %d: %v", ev.Seq, err)
				return err
			}
			logrus.WithFields(logrus.Fields{
				"seq":   ev.Seq,
				"asset": ev.AssetID,
			}).Info("Graduation event applied")
		}

		return nil
	})

	if err != nil {
		log.Fatal("Failed to start consumer: ", err)
	}
}

// applyTrade folds a trade event into the per-trader aggregate. Events can be
// redelivered, so updates are guarded by the last applied sequence number.
func applyTrade(ev *launchpad.Event) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		var stat models.TraderStat
		err := tx.Where("trader = ? AND asset_id = ?", ev.Trade.Trader, ev.AssetID).
			First(&stat).Error
		if err == gorm.ErrRecordNotFound {
			stat = models.TraderStat{
				Trader:  ev.Trade.Trader,
				AssetID: ev.AssetID,
				EthIn:   "0",
				EthOut:  "0",
			}
		} else if err != nil {
			return err
		}

		if ev.Seq <= stat.LastSeq {
			// Already applied.
			return nil
		}

		switch ev.Trade.Side {
		case "buy":
			stat.BuyCount++
			stat.EthIn = addDecimal(stat.EthIn, ev.Trade.Gross)
		case "sell":
			stat.SellCount++
			stat.EthOut = addDecimal(stat.EthOut, ev.Trade.Net)
		}
		stat.LastSeq = ev.Seq

		return tx.Save(&stat).Error
	})
}

// addDecimal sums two decimal wei strings.
func addDecimal(a, b string) string {
	x, errX := uint256.FromDecimal(a)
	y, errY := uint256.FromDecimal(b)
	if errX != nil || errY != nil {
		logrus.Errorf("Bad decimal amounts: %q + %q", a, b)
		return a
	}
	return new(uint256.Int).Add(x, y).Dec()
}
