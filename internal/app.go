package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	jsonfile_adapter "matjib-service/internal/adapters/jsonfile"
	kakao_geocoder "matjib-service/internal/adapters/kakao_geocoder"
	logger_adapter "matjib-service/internal/adapters/logger"
	"matjib-service/internal/adapters/memory"
	openai_relay "matjib-service/internal/adapters/openai_relay"
	postgres_adapter "matjib-service/internal/adapters/postgres"
	rabbitmq_adapter "matjib-service/internal/adapters/rabbitmq"
	"matjib-service/internal/adapters/rest"
	"matjib-service/internal/adapters/snapshot"
	unsplash_client "matjib-service/internal/adapters/unsplash_client"
	"matjib-service/internal/configs"
	"matjib-service/internal/constants"
	"matjib-service/internal/core/port"
	"matjib-service/internal/core/usecase"
	"matjib-service/internal/metrics"
	fluentlogger "matjib-service/pkg/fluent_logger"
	"matjib-service/pkg/postgres"
	"matjib-service/pkg/rabbitmq/rabbitmq_common"
	"matjib-service/pkg/rabbitmq/rabbitmq_consumer"
	"matjib-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sessionSweepInterval = 5 * time.Minute
	initialLoadTimeout   = time.Minute
	shutdownTimeout      = 15 * time.Second
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	dataset        *snapshot.Store
	sessions       *memory.SessionStore
	connManager    *rabbitmq_common.ConnectionManager
	eventProducer  *rabbitmq_producer.Publisher
	reloadConsumer *rabbitmq_consumer.Consumer
}

// NewApp - composition root: здесь создаются и связываются все зависимости
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			fluentClient.Close()
			return nil, fmt.Errorf("failed to create fluentbit adapter: %w", err)
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       appLogger,
	}
	// при ошибке сборки освобождаем то, что уже открыто
	ok := false
	defer func() {
		if !ok {
			application.closeResources()
		}
	}()

	// --- СЛОВАРЬ ТЕГОВ ---
	vocab, err := configs.LoadTagVocabulary(appConfig.LifestyleTagsFile)
	if err != nil {
		appLogger.Error("Failed to load lifestyle tag vocabulary", err, nil)
		return nil, err
	}
	appLogger.Info("Lifestyle tag vocabulary loaded", port.Fields{"tags": len(vocab.Tags)})

	recorder := metrics.NewRecorder()

	// --- ДАТАСЕТ ---
	var loader port.DatasetLoaderPort
	switch appConfig.Dataset.Source {
	case configs.DatasetSourcePostgres:
		application.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Dataset.DatabaseURL, MaxConns: 4})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		appLogger.Info("Successfully connected to PostgreSQL pool", nil)

		loader, err = postgres_adapter.NewDatasetLoader(application.dbPool, vocab)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres dataset loader: %w", err)
		}
	default:
		loader = jsonfile_adapter.NewDatasetLoader(appConfig.Dataset.HousesFile, appConfig.Dataset.RegionsFile)
	}

	application.dataset = snapshot.NewStore(loader, baseLogger, recorder)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), initialLoadTimeout)
	err = application.dataset.Reload(loadCtx)
	cancelLoad()
	if err != nil {
		return nil, fmt.Errorf("initial dataset load failed: %w", err)
	}

	// --- ИСХОДЯЩИЕ АДАПТЕРЫ ---
	var events port.SearchEventsPort = rabbitmq_adapter.NoopEventsPublisher{}
	if appConfig.RabbitMQ.Enabled {
		connManagerBridge := rabbitmq_adapter.NewLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
		application.connManager, err = rabbitmq_common.NewConnectionManager(appConfig.RabbitMQ.URL, connManagerBridge)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}

		application.eventProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ExchangeMatjibEvents,
			ExchangeType:             constants.ExchangeTypeTopic,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
		}, application.connManager)
		if err != nil {
			appLogger.Error("Failed to create event producer", err, nil)
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}

		publisher, err := rabbitmq_adapter.NewSearchEventsPublisher(application.eventProducer)
		if err != nil {
			return nil, err
		}
		events = publisher
		appLogger.Info("RabbitMQ search events publisher initialized", port.Fields{"exchange": constants.ExchangeMatjibEvents})

		application.reloadConsumer, err = rabbitmq_consumer.NewConsumer(rabbitmq_consumer.ConsumerConfig{
			Config:          rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:       constants.QueueDatasetReload,
			DurableQueue:    true,
			ExchangeName:    constants.ExchangeMatjibEvents,
			ExchangeType:    constants.ExchangeTypeTopic,
			DurableExchange: true,
			RoutingKey:      constants.RoutingKeyDatasetUpdated,
			PrefetchCount:   1,
			ConsumerTag:     constants.ConsumerTagDatasetReload,
			Logger:          rabbitmq_adapter.NewLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_consumer"})),
		},
			rabbitmq_adapter.NewDatasetReloadHandler(application.dataset, baseLogger),
			application.connManager,
		)
		if err != nil {
			appLogger.Error("Failed to create dataset reload consumer", err, nil)
			return nil, fmt.Errorf("failed to create dataset reload consumer: %w", err)
		}
	}

	relay := openai_relay.NewClient(openai_relay.Config{
		APIKey:  appConfig.OpenAI.APIKey,
		BaseURL: appConfig.OpenAI.BaseURL,
		Model:   appConfig.OpenAI.Model,
		Timeout: appConfig.HTTPClientTimeout,
	}, baseLogger)
	photos := unsplash_client.NewClient(unsplash_client.Config{
		AccessKey: appConfig.Unsplash.AccessKey,
		BaseURL:   appConfig.Unsplash.BaseURL,
		Timeout:   appConfig.HTTPClientTimeout,
		CacheTTL:  appConfig.Unsplash.CacheTTL,
	}, baseLogger)
	geocoder := kakao_geocoder.NewClient(kakao_geocoder.Config{
		RESTAPIKey: appConfig.Kakao.RESTAPIKey,
		BaseURL:    appConfig.Kakao.BaseURL,
		Timeout:    appConfig.HTTPClientTimeout,
	}, baseLogger)

	application.sessions = memory.NewSessionStore(appConfig.SessionTTL, baseLogger, recorder)
	appLogger.Info("All outgoing adapters initialized", nil)

	// --- USE CASES ---
	sessionsUC := usecase.NewSessionsUseCase(application.sessions)
	anchorsUC := usecase.NewManageAnchorsUseCase(application.sessions, geocoder, recorder)
	searchUC := usecase.NewSearchListingsUseCase(application.sessions, application.dataset, vocab, events, recorder)
	markersUC := usecase.NewSessionMarkersUseCase(application.sessions, application.dataset)
	recommendUC := usecase.NewRecommendNeighborhoodsUseCase(application.sessions, application.dataset, relay, vocab, events, recorder, appConfig.Recommend.CandidateLimit)
	relayUC := usecase.NewRelayRecommendationsUseCase(relay, recorder)

	detailsUC := usecase.NewGetListingDetailsUseCase(application.dataset, vocab)
	photosUC := usecase.NewGetListingPhotosUseCase(photos, recorder)
	byTagUC := usecase.NewSearchByTagUseCase(application.dataset, vocab)
	dictionariesUC := usecase.NewGetDictionariesUseCase(vocab)
	appLogger.Info("All use cases initialized", nil)

	// --- REST ---
	application.apiServer = rest.NewServer(
		rest.ServerConfig{
			Port:               appConfig.Rest.PORT,
			CORSAllowedOrigins: appConfig.Rest.CORSAllowedOrigins,
			RecommendRateLimit: appConfig.Rest.RecommendRateLimit,
		},
		rest.NewListingHandlers(detailsUC, photosUC, byTagUC, dictionariesUC),
		rest.NewSessionHandlers(sessionsUC, anchorsUC, searchUC, markersUC, recommendUC),
		rest.NewRelayHandlers(relayUC),
		baseLogger,
	)
	appLogger.Info("REST API server configured", nil)

	ok = true
	return application, nil
}

// Run запускает фоновые задачи и HTTP-сервер и ждет сигнала на остановку
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)
		cancelApp()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.dataset.Stop()
		wg.Wait()
		a.logger.Info("All background processes finished", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	if err := a.dataset.StartRefresh(appCtx, a.config.Dataset.RefreshCron); err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sessions.RunSweeper(appCtx, sessionSweepInterval)
	}()

	errorsCh := make(chan error, 2)
	if a.reloadConsumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.reloadConsumer.StartConsuming(appCtx); err != nil {
				errorsCh <- fmt.Errorf("dataset reload consumer failed: %w", err)
			}
		}()
	}

	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
		return nil
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		return err
	}
}

// closeResources закрывает внешние соединения в обратном порядке создания
func (a *App) closeResources() {
	if a.reloadConsumer != nil {
		if err := a.reloadConsumer.Close(); err != nil {
			a.logger.Error("Error closing dataset reload consumer", err, nil)
		}
	}
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed", nil)
	}

	a.logger.Info("Application shut down gracefully", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	level, ok := logger_adapter.ParseLevel(levelStr)
	if !ok {
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
	}
	return level
}
