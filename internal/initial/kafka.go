package initial

import (
	"time"

	"GrainHero/internal/config"
	"GrainHero/pkg/mq/kafka"
	"GrainHero/pkg/zlog"

	"go.uber.org/zap"
)

const (
	telemetryRetention    = 3 * 24 * time.Hour
	notificationRetention = 7 * 24 * time.Hour
)

// EnsureTopics creates the telemetry and notification topics. It reports
// false when Kafka is not configured.
func EnsureTopics(conf *config.Config) (bool, error) {
	k := conf.KafkaConfig
	if len(k.Brokers) == 0 {
		zlog.Info("kafka not configured, notifications go straight to the websocket hub")
		return false, nil
	}
	admin := kafka.TopicAdminConfig{Brokers: k.Brokers, ClientID: k.ClientID}
	if err := kafka.EnsureTopic(admin, k.TelemetryTopic, k.Partitions, k.Replication, telemetryRetention); err != nil {
		return false, err
	}
	if err := kafka.EnsureTopic(admin, k.NotificationTopic, k.Partitions, k.Replication, notificationRetention); err != nil {
		return false, err
	}
	zlog.Info("kafka topics ready",
		zap.String("telemetry", k.TelemetryTopic), zap.String("notifications", k.NotificationTopic))
	return true, nil
}
