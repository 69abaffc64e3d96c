// Package kafka는 도메인 이벤트를 Kafka로 발행합니다.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/YouSangSon/reports-service/internal/domain/event"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/YouSangSon/reports-service/internal/pkg/metrics"
	"go.uber.org/zap"
)

var _ event.Publisher = (*Producer)(nil)

// Producer는 Kafka 동기 프로듀서입니다
type Producer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	metrics  *metrics.Metrics
}

// ProducerConfig는 프로듀서 설정입니다
type ProducerConfig struct {
	Brokers          []string
	ClientID         string
	MaxMessageBytes  int
	RequiredAcks     sarama.RequiredAcks
	Compression      sarama.CompressionCodec
	MaxRetries       int
	RetryBackoff     time.Duration
	EnableIdempotent bool
	// Topics는 이벤트 종류별 토픽입니다. 없으면 DefaultTopic을 사용합니다.
	Topics       map[event.Type]string
	DefaultTopic string
}

// SaramaConfig는 ProducerConfig로 sarama 설정을 만듭니다
func (cfg *ProducerConfig) SaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = cfg.ClientID
	config.Producer.RequiredAcks = cfg.RequiredAcks
	config.Producer.Compression = cfg.Compression
	if cfg.MaxMessageBytes > 0 {
		config.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	}
	config.Producer.Retry.Max = cfg.MaxRetries
	config.Producer.Retry.Backoff = cfg.RetryBackoff
	config.Producer.Idempotent = cfg.EnableIdempotent
	if cfg.EnableIdempotent {
		config.Producer.RequiredAcks = sarama.WaitForAll
		config.Net.MaxOpenRequests = 1
	}
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Version = sarama.V3_6_0_0
	return config
}

// NewProducer는 새로운 Kafka 프로듀서를 생성합니다
func NewProducer(cfg *ProducerConfig) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	logger.Info(context.Background(), "kafka producer initialized",
		logger.Field("brokers", cfg.Brokers),
		logger.Field("client_id", cfg.ClientID),
	)
	return NewProducerWithSync(producer, cfg), nil
}

// NewProducerWithSync는 주어진 SyncProducer로 Producer를 생성합니다
func NewProducerWithSync(producer sarama.SyncProducer, cfg *ProducerConfig) *Producer {
	return &Producer{producer: producer, config: cfg, metrics: metrics.GetMetrics()}
}

// TopicFor는 이벤트 종류에 해당하는 토픽을 반환합니다
func (p *Producer) TopicFor(t event.Type) string {
	if topic, ok := p.config.Topics[t]; ok && topic != "" {
		return topic
	}
	return p.config.DefaultTopic
}

// Publish는 이벤트를 문서 ID를 키로 발행합니다
func (p *Producer) Publish(ctx context.Context, e event.Event) error {
	topic := p.TopicFor(e.Type)
	if topic == "" {
		return fmt.Errorf("no topic configured for event %s", e.Type)
	}
	return p.PublishEvent(ctx, topic, e.DocumentID, e)
}

// PublishEvent는 이벤트를 JSON으로 인코딩해 발행합니다
func (p *Producer) PublishEvent(ctx context.Context, topic string, key string, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Error(ctx, "failed to marshal event",
			logger.Topic(topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: e.Timestamp,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(e.Type)},
			{Key: []byte("event_id"), Value: []byte(e.ID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.metrics.RecordEventPublished(topic, "error")
		logger.Error(ctx, "failed to send event",
			logger.Topic(topic),
			logger.Field("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send event: %w", err)
	}

	p.metrics.RecordEventPublished(topic, "success")
	logger.Debug(ctx, "event published successfully",
		logger.Topic(topic),
		logger.Field("key", key),
		logger.Field("partition", partition),
		logger.Field("offset", offset),
	)
	return nil
}

// Close는 프로듀서를 종료합니다
func (p *Producer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
