package app

import (
	"context"
	"database/sql"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"aquawatch/internal/config"
	"aquawatch/internal/device"
	httpserver "aquawatch/internal/http"
	"aquawatch/internal/http/handlers"
	"aquawatch/internal/realtime"
	"aquawatch/internal/repository"
	"aquawatch/internal/service"
	"aquawatch/internal/state"
	"aquawatch/internal/ws"
	"aquawatch/libs/db"
	libredis "aquawatch/libs/redis"
)

// App wires aquawatch dependencies.
type App struct {
	server  *httpserver.Server
	devices *service.DeviceService
	monitor *service.Monitor
	db      *sql.DB
	redis   *goredis.Client
	cfg     *config.Config
	logger  *zap.Logger
}

// New constructs application components.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	devicesRepo := repository.NewDevicesRepository(sqlDB)
	readingsRepo := repository.NewReadingsRepository(sqlDB)
	prefsRepo := repository.NewPreferencesRepository(sqlDB)

	broker := realtime.NewBroker(redisClient, logger)
	storeGateway := service.NewStoreGateway(readingsRepo, broker, logger)
	selectionStore := state.NewSelectionStore(redisClient)

	deviceClient := device.NewClient(&http.Client{}, cfg.Device.Timeout, cfg.Device.Retries, cfg.Device.RetryDelay, logger)
	deviceGateway := device.NewGateway(deviceClient, logger)

	monitor := service.NewMonitor(storeGateway, deviceGateway, logger)
	deviceService := service.NewDeviceService(devicesRepo, deviceGateway, selectionStore, monitor, logger)
	historyService := service.NewHistoryService(storeGateway, devicesRepo, deviceGateway, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Devices:       handlers.NewDevicesHandler(deviceService, logger),
		Dashboard:     handlers.NewDashboardHandler(monitor, logger),
		History:       handlers.NewHistoryHandler(historyService, logger),
		Preferences:   handlers.NewPreferencesHandler(prefsRepo, logger),
		DeviceControl: handlers.NewDeviceControlHandler(devicesRepo, deviceGateway, logger),
		Readings:      ws.NewHandler(storeGateway, logger),
		Health:        handlers.NewHealthHandler(),
	}, cfg.HTTP.AllowedOrigins)

	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:  server,
		devices: deviceService,
		monitor: monitor,
		db:      sqlDB,
		redis:   redisClient,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Run restores the persisted device selection and serves HTTP requests.
func (a *App) Run(ctx context.Context) error {
	if err := a.devices.RestoreSelection(ctx, a.cfg.DefaultUser); err != nil {
		a.logger.Warn("failed to restore device selection", zap.Error(err))
	}
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	a.monitor.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
