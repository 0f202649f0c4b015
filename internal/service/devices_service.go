package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"aquawatch/internal/device"
	"aquawatch/internal/models"
	"aquawatch/internal/repository"
	"aquawatch/internal/state"
)

// DeviceService manages the device registry and the per-user selection.
type DeviceService struct {
	repo      *repository.DevicesRepository
	gateway   *device.Gateway
	selection *state.SelectionStore
	monitor   *Monitor
	logger    *zap.Logger
}

// NewDeviceService builds service.
func NewDeviceService(
	repo *repository.DevicesRepository,
	gateway *device.Gateway,
	selection *state.SelectionStore,
	monitor *Monitor,
	logger *zap.Logger,
) *DeviceService {
	return &DeviceService{
		repo:      repo,
		gateway:   gateway,
		selection: selection,
		monitor:   monitor,
		logger:    logger,
	}
}

// Register adds a device by name and address.
func (s *DeviceService) Register(ctx context.Context, name, ipAddress string) (*models.Device, error) {
	d := &models.Device{Name: name, IPAddress: ipAddress}
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns all registered devices.
func (s *DeviceService) List(ctx context.Context) ([]models.Device, error) {
	return s.repo.List(ctx)
}

// Remove marks the device offline, deletes it and drops any selection
// pointing at it.
func (s *DeviceService) Remove(ctx context.Context, userID, deviceID string) error {
	if err := s.repo.UpdateStatus(ctx, deviceID, models.DeviceStatusOffline); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, deviceID); err != nil {
		return err
	}

	selected, err := s.selection.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read selection", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if selected == deviceID {
		if err := s.selection.Clear(ctx, userID); err != nil {
			s.logger.Warn("failed to clear selection", zap.String("user_id", userID), zap.Error(err))
		}
		s.monitor.Stop()
	}
	return nil
}

// Select makes a device current for the user, persists the choice and points
// the monitor at it.
func (s *DeviceService) Select(ctx context.Context, userID, deviceID string) (*models.Device, error) {
	d, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := s.selection.Save(ctx, userID, deviceID); err != nil {
		return nil, err
	}
	s.monitor.Select(ctx, d)
	return d, nil
}

// RestoreSelection re-selects the persisted device at startup, if any.
func (s *DeviceService) RestoreSelection(ctx context.Context, userID string) error {
	deviceID, err := s.selection.Get(ctx, userID)
	if err != nil {
		return err
	}
	if deviceID == "" {
		return nil
	}
	d, err := s.repo.GetByID(ctx, deviceID)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		return s.selection.Clear(ctx, userID)
	}
	if err != nil {
		return err
	}
	s.monitor.Select(ctx, d)
	return nil
}

// RefreshStatus probes the device and records the result in the registry.
// The probe itself never fails; a failed store update does.
func (s *DeviceService) RefreshStatus(ctx context.Context, deviceID string) (device.Status, error) {
	d, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return device.Status{}, err
	}

	st := s.gateway.Status(ctx, d.IPAddress)
	status := models.DeviceStatusOffline
	if st.Connected {
		status = models.DeviceStatusOnline
	}
	if err := s.repo.UpdateStatus(ctx, deviceID, status); err != nil {
		return st, err
	}
	return st, nil
}

// Scan registers the next candidate device on the local subnet. Real
// discovery is out of scope; like the firmware's pairing flow this assigns
// sequential names and addresses, then probes the address for liveness.
func (s *DeviceService) Scan(ctx context.Context) (*models.Device, error) {
	devices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	n := len(devices) + 1

	d, err := s.Register(ctx,
		fmt.Sprintf("Device %d", n),
		fmt.Sprintf("192.168.1.%d", n),
	)
	if err != nil {
		return nil, err
	}

	if st := s.gateway.Status(ctx, d.IPAddress); !st.Connected {
		if err := s.repo.UpdateStatus(ctx, d.ID, models.DeviceStatusOffline); err != nil {
			s.logger.Warn("failed to mark scanned device offline", zap.String("device_id", d.ID), zap.Error(err))
		} else {
			d.Status = models.DeviceStatusOffline
		}
	}
	return d, nil
}
