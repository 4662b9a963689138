// Package app wires repositories, services and workers into one engine.
package app

import (
	"time"

	"GrainHero/internal/config"
	alertService "GrainHero/internal/modules/alert/application/service"
	alertPersistence "GrainHero/internal/modules/alert/infrastructure/persistence"
	"GrainHero/internal/modules/alert/infrastructure/push"
	"GrainHero/internal/modules/alert/infrastructure/queue"
	engineService "GrainHero/internal/modules/engine/application/service"
	"GrainHero/internal/modules/engine/interface/event"
	"GrainHero/internal/modules/engine/interface/scheduler"
	handler "GrainHero/internal/modules/gateway/interface/http"
	riskService "GrainHero/internal/modules/risk/application/service"
	"GrainHero/internal/modules/risk/infrastructure/model"
	riskPersistence "GrainHero/internal/modules/risk/infrastructure/persistence"
	storageService "GrainHero/internal/modules/storage/application/service"
	storagePersistence "GrainHero/internal/modules/storage/infrastructure/persistence"
	telemetryService "GrainHero/internal/modules/telemetry/application/service"
	telemetryPersistence "GrainHero/internal/modules/telemetry/infrastructure/persistence"
	"GrainHero/pkg/keylock"
	"GrainHero/pkg/mq"
	"GrainHero/pkg/ws"

	"gorm.io/gorm"
)

const lockTTL = 30 * time.Second

// Options selects the optional backends.
type Options struct {
	UseRedis bool
	// Publisher carries outbox rows to the notification topic. Nil publishes
	// straight to the websocket hub.
	Publisher mq.Publisher
}

// App is the assembled engine.
type App struct {
	Hub           *ws.Hub
	Policies      storageService.PolicyService
	Lifecycle     storageService.LifecycleService
	Normalizer    telemetryService.NormalizerService
	Scoring       riskService.ScoringService
	Dispatcher    alertService.DispatcherService
	Notifications alertService.NotificationService
	Pipeline      engineService.PipelineService

	Relay            *queue.OutboxRelay
	DeliveryWorker   *queue.DeliveryWorker
	TelemetryHandler *event.TelemetryHandler
	Scheduler        *scheduler.SchedulerManager
	Handlers         handler.Handlers
}

func New(conf *config.Config, db *gorm.DB, opts Options) *App {
	engine := conf.EngineConfig

	tenantRepo := storagePersistence.NewTenantRepository(db)
	siloRepo := storagePersistence.NewSiloRepository(db)
	batchRepo := storagePersistence.NewBatchRepository(db)
	transitionRepo := storagePersistence.NewTransitionRepository(db)
	storageUow := storagePersistence.NewStorageUnitOfWork(db)
	readingRepo := telemetryPersistence.NewReadingRepository(db)
	telemetryUow := telemetryPersistence.NewTelemetryUnitOfWork(db)
	assessmentRepo := riskPersistence.NewAssessmentRepository(db)
	riskUow := riskPersistence.NewRiskUnitOfWork(db)
	notificationRepo := alertPersistence.NewNotificationRepository(db)
	deliveryRepo := alertPersistence.NewDeliveryRepository(db)
	alertUow := alertPersistence.NewAlertUnitOfWork(db)

	// silo locks stay in process: one engine node owns a silo's stream.
	// Dedup keys span nodes, so they go through Redis when it is up.
	var dedupLocker keylock.Locker = keylock.New()
	if opts.UseRedis {
		dedupLocker = keylock.NewRedisLocker("grainhero:lock:", lockTTL)
	}

	a := &App{Hub: ws.NewHub()}
	a.Policies = storageService.NewPolicyService(tenantRepo, engine)
	a.Lifecycle = storageService.NewLifecycleService(siloRepo, batchRepo, transitionRepo, storageUow)
	a.Normalizer = telemetryService.NewNormalizerService(readingRepo, telemetryUow, engine.ClockSkew())
	a.Scoring = riskService.NewScoringService(batchRepo, siloRepo, assessmentRepo, riskUow, model.NewThresholdModel(), engine.MaxRaceRetries)
	a.Dispatcher = alertService.NewDispatcherService(alertUow, dedupLocker)
	a.Notifications = alertService.NewNotificationService(notificationRepo, deliveryRepo)
	a.Pipeline = engineService.NewPipelineService(
		a.Normalizer, a.Scoring, a.Lifecycle, a.Policies, a.Dispatcher, a.Notifications,
		siloRepo, keylock.New(), engine.RequestTimeout(),
	)

	pub := opts.Publisher
	if pub == nil {
		pub = push.NewHubPublisher(a.Hub)
	}
	a.Relay = queue.NewOutboxRelay(deliveryRepo, pub, conf.KafkaConfig.NotificationTopic,
		conf.RelayConfig.BatchSize, time.Duration(conf.RelayConfig.PollIntervalMs)*time.Millisecond)
	a.DeliveryWorker = queue.NewDeliveryWorker(a.Hub)
	a.TelemetryHandler = event.NewTelemetryHandler(a.Pipeline)
	a.Scheduler = scheduler.NewSchedulerManager(a.Pipeline, scheduler.Config{
		SweepCron:             engine.SweepCron,
		RetentionCron:         engine.RetentionCron,
		BatchRetention:        time.Duration(engine.BatchRetentionDays) * 24 * time.Hour,
		NotificationRetention: time.Duration(engine.NotificationRetentionDays) * 24 * time.Hour,
	})

	a.Handlers = handler.Handlers{
		Telemetry:    handler.NewTelemetryHandler(a.Pipeline),
		Silo:         handler.NewSiloHandler(a.Lifecycle, a.Policies),
		Batch:        handler.NewBatchHandler(a.Pipeline, a.Lifecycle, a.Scoring),
		Notification: handler.NewNotificationHandler(a.Notifications),
		Policy:       handler.NewPolicyHandler(a.Policies),
		Inbox:        handler.NewInboxHandler(a.Hub),
		Policies:     a.Policies,
	}
	return a
}
