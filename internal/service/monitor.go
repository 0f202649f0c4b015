package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"aquawatch/internal/models"
	"aquawatch/internal/water"
)

// Monitor states.
const (
	StateIdle    = "idle"
	StateLoading = "loading"
	StateReady   = "ready"
	StateError   = "error"
)

// ReadingStore is the store-gateway surface the monitor needs.
type ReadingStore interface {
	Latest(ctx context.Context, deviceID string, limit int) ([]models.SensorReading, error)
	AddReading(ctx context.Context, reading models.SensorReading) (models.SensorReading, error)
	Subscribe(ctx context.Context, deviceID string) (ReadingStream, error)
}

// SensorSource reads live data from a device.
type SensorSource interface {
	SensorData(ctx context.Context, address string) (water.Reading, error)
}

// Snapshot is the dashboard-facing view of the monitor. When Error is set a
// previously acquired reading is retained, so the dashboard can show last-good
// data next to a non-blocking error banner.
type Snapshot struct {
	State      string                `json:"state"`
	Device     *models.Device        `json:"device,omitempty"`
	Reading    *models.SensorReading `json:"reading,omitempty"`
	Assessment *water.Assessment     `json:"assessment,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Monitor orchestrates reading acquisition for the currently selected device:
// store first, device fallback with write-back, plus one live subscription
// that overwrites the current reading as new rows land.
type Monitor struct {
	store  ReadingStore
	source SensorSource
	logger *zap.Logger

	mu      sync.Mutex
	device  *models.Device
	state   string
	current *models.SensorReading
	errMsg  string
	seq     uint64

	stream   ReadingStream
	pumpDone chan struct{}
}

// NewMonitor returns an idle monitor.
func NewMonitor(store ReadingStore, source SensorSource, logger *zap.Logger) *Monitor {
	return &Monitor{
		store:  store,
		source: source,
		logger: logger,
		state:  StateIdle,
	}
}

// Select switches the monitor to a device: tears down the previous
// subscription, runs an initial acquisition and starts a fresh subscription.
// Exactly one subscription is live per selection.
func (m *Monitor) Select(ctx context.Context, device *models.Device) Snapshot {
	m.mu.Lock()
	m.teardownLocked()
	m.device = device
	m.current = nil
	m.errMsg = ""
	if device == nil {
		m.state = StateIdle
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap
	}
	m.state = StateLoading
	m.mu.Unlock()

	snap := m.Refresh(ctx)
	m.startSubscription(ctx, device)
	return snap
}

// Refresh re-runs acquisition for the selected device. Responses are guarded
// by a sequence number: if another Refresh or Select started after this one,
// its result is discarded instead of overwriting newer state.
func (m *Monitor) Refresh(ctx context.Context) Snapshot {
	m.mu.Lock()
	device := m.device
	if device == nil {
		m.state = StateIdle
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap
	}
	m.seq++
	seq := m.seq
	m.state = StateLoading
	m.mu.Unlock()

	reading, err := m.acquire(ctx, device)

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq || m.device == nil || m.device.ID != device.ID {
		// A newer acquisition superseded this one.
		return m.snapshotLocked()
	}
	if err != nil {
		m.logger.Error("failed to fetch sensor data",
			zap.String("device_id", device.ID),
			zap.Error(err),
		)
		m.state = StateError
		m.errMsg = "Failed to fetch sensor data"
		return m.snapshotLocked()
	}
	m.state = StateReady
	m.current = &reading
	m.errMsg = ""
	return m.snapshotLocked()
}

// Stop clears the selection and cancels the live subscription.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	m.device = nil
	m.current = nil
	m.errMsg = ""
	m.state = StateIdle
}

// Snapshot returns the current monitor state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// acquire implements store-first acquisition: adopt the newest stored reading
// when one exists, otherwise read the device directly and write the result
// back so the store stays the source of truth. The returned row carries the
// store-assigned id and timestamp, not the device-reported ones.
func (m *Monitor) acquire(ctx context.Context, device *models.Device) (models.SensorReading, error) {
	stored, err := m.store.Latest(ctx, device.ID, 1)
	if err != nil {
		return models.SensorReading{}, err
	}
	if len(stored) > 0 {
		return stored[0], nil
	}

	raw, err := m.source.SensorData(ctx, device.IPAddress)
	if err != nil {
		return models.SensorReading{}, err
	}
	return m.store.AddReading(ctx, models.SensorReading{
		DeviceID:     device.ID,
		TDSValue:     raw.TDS,
		Temperature:  raw.Temperature,
		Drinkability: raw.Drinkability,
	})
}

func (m *Monitor) startSubscription(ctx context.Context, device *models.Device) {
	stream, err := m.store.Subscribe(ctx, device.ID)
	if err != nil {
		m.logger.Warn("live updates unavailable",
			zap.String("device_id", device.ID),
			zap.Error(err),
		)
		return
	}

	done := make(chan struct{})
	m.mu.Lock()
	if m.device == nil || m.device.ID != device.ID {
		// Selection changed while subscribing.
		m.mu.Unlock()
		stream.Close()
		return
	}
	m.stream = stream
	m.pumpDone = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		for reading := range stream.Readings() {
			m.mu.Lock()
			if m.device != nil && m.device.ID == reading.DeviceID {
				reading := reading
				m.current = &reading
				m.state = StateReady
				m.errMsg = ""
			}
			m.mu.Unlock()
		}
	}()
}

// teardownLocked cancels the live subscription. Callers hold m.mu; the lock
// is dropped while waiting for the pump so it can finish its final write.
func (m *Monitor) teardownLocked() {
	stream := m.stream
	done := m.pumpDone
	m.stream = nil
	m.pumpDone = nil
	if stream == nil {
		return
	}
	stream.Close()
	m.mu.Unlock()
	<-done
	m.mu.Lock()
}

func (m *Monitor) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:  m.state,
		Device: m.device,
		Error:  m.errMsg,
	}
	if m.current != nil {
		reading := *m.current
		snap.Reading = &reading
		assessment := water.Classify(reading.TDSValue, reading.Temperature)
		snap.Assessment = &assessment
	}
	return snap
}
