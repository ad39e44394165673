package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"storebot/internal/api"
	"storebot/internal/bot"
	"storebot/internal/config"
	"storebot/internal/database"
	"storebot/internal/events"
	"storebot/internal/google"
	"storebot/internal/logging"
	"storebot/internal/metrics"
	"storebot/internal/models"
	"storebot/internal/repository"
	"storebot/internal/service"
	"storebot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, products, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, products, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	stateService, cartRepo := initStores(cfg, redisClient, &logger)

	// Воркер синхронизации заказов с Google Sheets
	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, worker.PolicyFromConfig(cfg.Google), &logger)
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	subscribeOrderEvents(ctx, eventBus, db, sheetsWorker, &logger)
	subscribeCatalogEvents(eventBus, &logger)

	// Инициализация бизнес-сервисов
	catalogService := service.NewCatalogService(db, &logger)
	if err := catalogService.Refresh(ctx); err != nil {
		logger.Error().Err(err).Msg("Ошибка загрузки каталога")
		return err
	}
	cartService := service.NewCartService(cartRepo, catalogService, &logger)
	userService := service.NewUserService(db, cfg, &logger)
	orderService := service.NewOrderService(service.OrderServiceDeps{
		State:    stateService,
		Carts:    cartService,
		Catalog:  catalogService,
		Orders:   db,
		Promos:   db,
		Users:    userService,
		EventBus: eventBus,
		TopN:     cfg.Bot.TopProductsLimit,
	}, &logger)
	adminService := service.NewAdminService(cfg.Admins, stateService, catalogService, db, eventBus, &logger)

	botMetrics := bot.NewMetrics(prometheus.DefaultRegisterer)
	startMetrics(ctx, cfg, &logger)

	if cfg.API.Enabled && cfg.API.HTTP.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, api.NewCatalogHandler(catalogService, orderService), &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	return startBot(ctx, cfg, botServices{
		state:   stateService,
		carts:   cartService,
		catalog: catalogService,
		orders:  orderService,
		admin:   adminService,
		users:   userService,
	}, botMetrics, &logger)
}

func loadConfigAndLogger() (*config.Config, []models.Product, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "configs/catalog.yaml"
	}
	products, err := loadCatalog(catalogPath)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", catalogPath).Msg("Ошибка чтения каталога")
		return nil, nil, zerolog.Logger{}, closer, err
	}

	return cfg, products, logger, closer, nil
}

// loadCatalog reads the seed catalog. A missing file means an empty seed.
func loadCatalog(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var catalog struct {
		Products []models.Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := config.ValidateProducts(catalog.Products); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return catalog.Products, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initDatabase(cfg *config.Config, products []models.Product, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return nil, err
	}

	ctx := context.Background()
	added, err := db.SeedProducts(ctx, products)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка заполнения каталога")
	} else if added > 0 {
		logger.Info().Int("added", added).Msg("Seed catalog applied")
	}

	for i := range cfg.PromoCodes {
		promo := cfg.PromoCodes[i]
		if err := db.AddPromoCode(ctx, &promo); err != nil {
			logger.Error().Err(err).Str("code", promo.Code).Msg("Ошибка сохранения промокода")
		}
	}
	return db, nil
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if !cfg.Google.Enabled() {
		logger.Info().Msg("Google Sheets sync disabled")
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.OrdersSpreadsheet, cfg.Google.OrdersSheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		// Чаще всего таблица не расшарена на сервисный аккаунт
		email, _ := google.ServiceAccountEmail(cfg.Google.CredentialsFile)
		logger.Error().Err(err).Str("service_account", email).Msg("Google Sheets connection test failed")
		return nil
	}
	if err := sheetsSvc.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to warm up sheet row cache")
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}
	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		// клиент остаётся: failover-репозитории переключатся на Redis, когда он поднимется
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory stores")
	}
	return client
}

// initStores builds session and cart stores: Redis first, memory as fallback.
func initStores(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) (*service.StateService, *repository.FailoverCartRepository) {
	sessionTTL := time.Duration(cfg.Bot.SessionTTL) * time.Second
	cartTTL := time.Duration(cfg.Bot.CartTTL) * time.Second

	stateRepo := repository.NewFailoverStateRepository(
		repository.NewRedisStateRepository(client, sessionTTL),
		repository.NewMemoryStateRepository(sessionTTL),
		logger,
	)
	cartRepo := repository.NewFailoverCartRepository(
		repository.NewRedisCartRepository(client, cartTTL),
		repository.NewMemoryCartRepository(cartTTL),
		logger,
	)
	return service.NewStateService(stateRepo, logger), cartRepo
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

type botServices struct {
	state   *service.StateService
	carts   *service.CartService
	catalog *service.CatalogService
	orders  *service.OrderService
	admin   *service.AdminService
	users   *service.UserService
}

func startBot(ctx context.Context, cfg *config.Config, svc botServices, botMetrics *bot.Metrics, logger *zerolog.Logger) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	tgService := service.NewTelegramService(bot.NewBotWrapper(botAPI))

	telegramBot, err := bot.NewBot(
		tgService, cfg, svc.state, svc.carts, svc.catalog,
		svc.orders, svc.admin, svc.users, botMetrics, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// subscribeOrderEvents ставит каждый новый заказ в очередь синхронизации с таблицей.
func subscribeOrderEvents(
	ctx context.Context,
	bus *events.EventBus,
	db *database.DB,
	sheetsWorker *worker.SheetsWorker,
	logger *zerolog.Logger,
) {
	if bus == nil || sheetsWorker == nil || db == nil {
		return
	}

	bus.Subscribe(events.EventOrderCreated, func(ev *events.Event) error {
		var payload events.OrderEventPayload
		if err := ev.Decode(&payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		order, err := db.GetOrder(ctx, payload.OrderID)
		if err != nil {
			logger.Error().Err(err).Int64("order_id", payload.OrderID).Msg("event bus: load order")
			return nil
		}

		if err := sheetsWorker.EnqueueOrder(ctx, order); err != nil {
			logger.Error().Err(err).Int64("order_id", order.ID).Msg("event bus: enqueue order")
		}
		return nil
	})
}

// subscribeCatalogEvents пишет изменения каталога администраторами в журнал.
func subscribeCatalogEvents(bus *events.EventBus, logger *zerolog.Logger) {
	audit := func(ev *events.Event) error {
		var payload events.ProductEventPayload
		if err := ev.Decode(&payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Str("product", payload.Name).
			Int64("admin_id", payload.AdminID).
			Int64("price", payload.Price).
			Bool("replaced", payload.Replaced).
			Msg("catalog changed")
		return nil
	}
	bus.Subscribe(events.EventProductAdded, audit)
	bus.Subscribe(events.EventProductDeleted, audit)
}
