package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	https_server "GrainHero/api/http"
	"GrainHero/internal/app"
	"GrainHero/internal/config"
	"GrainHero/internal/initial"
	"GrainHero/pkg/metrics"
	"GrainHero/pkg/mq"
	"GrainHero/pkg/mq/kafka"
	"GrainHero/pkg/redis"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		zlog.Fatal("engine stopped with error", zap.Error(err))
	}
}

func run() error {
	conf := config.GetConfig()
	if err := zlog.Init(zlog.Options{
		LogPath:    conf.LogConfig.LogPath,
		Level:      conf.LogConfig.Level,
		MaxSizeMB:  conf.LogConfig.MaxSizeMB,
		MaxBackups: conf.LogConfig.MaxBackups,
		MaxAgeDays: conf.LogConfig.MaxAgeDays,
	}); err != nil {
		return err
	}
	defer zlog.Sync()
	metrics.Register()

	db, err := initial.OpenDatabase(conf)
	if err != nil {
		return err
	}
	useRedis := initial.SetupRedis(conf)
	defer func() { _ = redis.Close() }()

	kafkaOn, err := initial.EnsureTopics(conf)
	if err != nil {
		return err
	}

	var publisher mq.Publisher
	if kafkaOn {
		publisher, err = kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:  conf.KafkaConfig.Brokers,
			ClientID: conf.KafkaConfig.ClientID,
		})
		if err != nil {
			return err
		}
		defer func() { _ = publisher.Close() }()
	}

	engine := app.New(conf, db, app.Options{UseRedis: useRedis, Publisher: publisher})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           https_server.Setup(conf, engine.Handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		zlog.Info("http server listening", zap.String("addr", addr), zap.Bool("tls", conf.TlsConfig.Enabled))
		var err error
		if conf.TlsConfig.Enabled {
			err = srv.ListenAndServeTLS(conf.TlsConfig.CertFile, conf.TlsConfig.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zlog.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := engine.Relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if kafkaOn {
		telemetry, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:  conf.KafkaConfig.Brokers,
			GroupID:  conf.KafkaConfig.TelemetryGroupID,
			Topics:   []string{conf.KafkaConfig.TelemetryTopic},
			ClientID: conf.KafkaConfig.ClientID,
		})
		if err != nil {
			return err
		}
		defer func() { _ = telemetry.Close() }()
		g.Go(func() error { return telemetry.Run(ctx, engine.TelemetryHandler) })

		delivery, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:  conf.KafkaConfig.Brokers,
			GroupID:  conf.KafkaConfig.DeliveryGroupID,
			Topics:   []string{conf.KafkaConfig.NotificationTopic},
			ClientID: conf.KafkaConfig.ClientID,
		})
		if err != nil {
			return err
		}
		defer func() { _ = delivery.Close() }()
		g.Go(func() error { return delivery.Run(ctx, engine.DeliveryWorker) })
	}

	if err := engine.Scheduler.Start(); err != nil {
		return err
	}
	defer engine.Scheduler.Stop()

	err = g.Wait()
	zlog.Info("engine stopped")
	return err
}
