package service

import (
	"context"

	"go.uber.org/zap"

	"aquawatch/internal/models"
	"aquawatch/internal/realtime"
	"aquawatch/internal/repository"
)

// ReadingStream is a cancellable stream of persisted readings.
type ReadingStream interface {
	Readings() <-chan models.SensorReading
	Close()
}

// StoreGateway ties the readings repository to the realtime broker: every
// persisted reading is also published, so subscribers only ever see rows that
// exist in the store. Repository errors propagate to the caller unchanged.
type StoreGateway struct {
	readings *repository.ReadingsRepository
	broker   *realtime.Broker
	logger   *zap.Logger
}

// NewStoreGateway builds the gateway.
func NewStoreGateway(readings *repository.ReadingsRepository, broker *realtime.Broker, logger *zap.Logger) *StoreGateway {
	return &StoreGateway{
		readings: readings,
		broker:   broker,
		logger:   logger,
	}
}

// AddReading persists a reading and announces the stored row. A publish
// failure does not fail the insert; subscribers fall back to polling.
func (g *StoreGateway) AddReading(ctx context.Context, reading models.SensorReading) (models.SensorReading, error) {
	if err := g.readings.Insert(ctx, &reading); err != nil {
		return models.SensorReading{}, err
	}
	if err := g.broker.Publish(ctx, reading); err != nil {
		g.logger.Warn("failed to publish reading event",
			zap.String("device_id", reading.DeviceID),
			zap.Error(err),
		)
	}
	return reading, nil
}

// Latest returns up to limit readings for a device, newest first.
func (g *StoreGateway) Latest(ctx context.Context, deviceID string, limit int) ([]models.SensorReading, error) {
	return g.readings.Latest(ctx, deviceID, limit)
}

// Subscribe opens a per-device stream of newly persisted readings.
func (g *StoreGateway) Subscribe(ctx context.Context, deviceID string) (ReadingStream, error) {
	return g.broker.Subscribe(ctx, deviceID)
}
