package service

import (
	"context"

	"go.uber.org/zap"

	"aquawatch/internal/device"
	"aquawatch/internal/models"
	"aquawatch/internal/repository"
)

// HistoryService serves the trend screen: stored readings first, with a
// best-effort fallback to the device's own history when the store is empty.
type HistoryService struct {
	store   *StoreGateway
	devices *repository.DevicesRepository
	gateway *device.Gateway
	logger  *zap.Logger
}

// NewHistoryService builds service.
func NewHistoryService(
	store *StoreGateway,
	devices *repository.DevicesRepository,
	gateway *device.Gateway,
	logger *zap.Logger,
) *HistoryService {
	return &HistoryService{
		store:   store,
		devices: devices,
		gateway: gateway,
		logger:  logger,
	}
}

// Readings returns up to limit readings for a device, newest first. When the
// store has nothing, on-device history is fetched, validated and persisted so
// the next query is served from the store.
func (s *HistoryService) Readings(ctx context.Context, deviceID string, limit int) ([]models.SensorReading, error) {
	stored, err := s.store.Latest(ctx, deviceID, limit)
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		return stored, nil
	}

	d, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	fetched := s.gateway.HistoricalData(ctx, d.IPAddress)
	readings := make([]models.SensorReading, 0, len(fetched))
	for _, raw := range fetched {
		persisted, err := s.store.AddReading(ctx, models.SensorReading{
			DeviceID:     deviceID,
			TDSValue:     raw.TDS,
			Temperature:  raw.Temperature,
			Drinkability: raw.Drinkability,
		})
		if err != nil {
			s.logger.Warn("failed to persist device history entry",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
			continue
		}
		readings = append(readings, persisted)
	}

	// Device history arrives oldest-first; the trend screen wants newest-first.
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	if limit > 0 && len(readings) > limit {
		readings = readings[:limit]
	}
	return readings, nil
}
