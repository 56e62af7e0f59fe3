package main

import (
	"log"
	"os"

	logger "github.com/sirupsen/logrus"

	"launchcontrol/internal/handlers"
	"launchcontrol/internal/routes"
	"launchcontrol/pkg/config"
	"launchcontrol/pkg/curve"
	"launchcontrol/pkg/launchpad"
	"launchcontrol/pkg/venue"
)

func main() {
	logger.SetFormatter(&logger.JSONFormatter{})
	logger.SetLevel(logger.InfoLevel)

	// Initialize database (optional, read endpoints degrade without it)
	if os.Getenv("DB_HOST") != "" {
		config.InitDB()
		config.ExecuteMigrations()
		log.Println("Database initialized successfully")
	} else {
		log.Println("Database not configured, skipping initialization")
	}

	// Initialize RabbitMQ (optional, will log warning if not configured)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	engine, err := buildEngine()
	if err != nil {
		log.Fatal("Failed to build engine:", err)
	}

	// Wire event sinks: database first, then queue, then websocket fanout.
	hub := handlers.NewStreamHub()
	engine.AddSink(handlers.DBSink{})
	if config.RabbitMQ != nil {
		pub, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create publisher:", err)
		}
		defer pub.Close()
		engine.AddSink(handlers.NewQueueSink(pub))
	}
	engine.AddSink(hub)

	handlers.Setup(engine)

	// Set up router
	r := routes.SetupRouter(hub)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// buildEngine registers the supported curves and venue strategies and wires
// them into a fresh orchestrator.
func buildEngine() (*launchpad.Engine, error) {
	reg := launchpad.NewRegistry()
	locker := venue.NewLocker()

	if err := reg.RegisterCurve("cp-grad8.5", curve.GraduateAt8Point5ETH()); err != nil {
		return nil, err
	}
	if err := reg.RegisterCurve("cp-grad8", curve.GraduateAt8ETH()); err != nil {
		return nil, err
	}
	if err := reg.RegisterStrategy("univ2", venue.NewUniswapV2Strategy(locker)); err != nil {
		return nil, err
	}
	if err := reg.RegisterStrategy("univ4", venue.NewUniswapV4Strategy(locker)); err != nil {
		return nil, err
	}
	for _, curveID := range []string{"cp-grad8.5", "cp-grad8"} {
		for _, strategyID := range []string{"univ2", "univ4"} {
			if err := reg.AllowPair(curveID, strategyID); err != nil {
				return nil, err
			}
		}
	}

	return launchpad.NewEngine(reg, launchpad.ProductionDefaults(), logger.NewEntry(logger.StandardLogger()))
}
