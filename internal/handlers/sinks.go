package handlers

import (
	"encoding/json"

	logger "github.com/sirupsen/logrus"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/launchpad"
)

// QueueSink forwards engine events to RabbitMQ for the stats worker.
type QueueSink struct {
	pub *dbconfig.Publisher
}

func NewQueueSink(pub *dbconfig.Publisher) *QueueSink {
	return &QueueSink{pub: pub}
}

// Publish implements launchpad.EventSink
func (s *QueueSink) Publish(ev launchpad.Event) {
	if err := s.pub.Publish(dbconfig.EventQueue, ev); err != nil {
		logger.Errorf("Failed to publish event %d to queue: %v", ev.Seq, err)
	}
}

// DBSink persists every engine event as an EventRecord row.
type DBSink struct{}

// Publish implements launchpad.EventSink
func (DBSink) Publish(ev launchpad.Event) {
	if dbconfig.DB == nil {
		return
	}

	// Round-trip through JSON so the typed detail struct lands in jsonb.
	raw, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("Failed to marshal event %d: %v", ev.Seq, err)
		return
	}
	var payload models.JSONB
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.Errorf("Failed to decode event %d: %v", ev.Seq, err)
		return
	}

	record := models.EventRecord{
		Seq:     ev.Seq,
		EventID: ev.ID,
		Type:    string(ev.Type),
		AssetID: ev.AssetID,
		Payload: payload,
		At:      ev.At,
	}
	if err := dbconfig.DB.Create(&record).Error; err != nil {
		logger.Errorf("Failed to persist event %d: %v", ev.Seq, err)
	}
}
