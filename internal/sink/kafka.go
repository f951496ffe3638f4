package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"go.uber.org/zap"
)

// ErrBackpressure는 producer 입력 버퍼가 가득 차 레코드를 버렸을 때 반환됩니다
var ErrBackpressure = errors.New(errors.ErrCodeSinkUnavailable, "kafka producer input buffer is full")

// KafkaConfig는 KafkaSink 설정입니다
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	ClientID     string
	Compression  sarama.CompressionCodec
	RequiredAcks sarama.RequiredAcks
	BufferSize   int
	FlushFreq    time.Duration
	Version      sarama.KafkaVersion
}

// KafkaSink는 레코드를 JSON으로 직렬화해 Kafka 토픽에 비동기로 보냅니다.
// 입력이 막히면 기다리지 않고 레코드를 버립니다.
type KafkaSink struct {
	producer sarama.AsyncProducer
	topic    string

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewKafkaSink는 sarama AsyncProducer를 만들고 KafkaSink로 감쌉니다
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	config := sarama.NewConfig()
	config.ClientID = cfg.ClientID
	config.Producer.RequiredAcks = cfg.RequiredAcks
	config.Producer.Compression = cfg.Compression
	config.Producer.Return.Successes = false
	config.Producer.Return.Errors = true
	if cfg.BufferSize > 0 {
		config.ChannelBufferSize = cfg.BufferSize
	}
	if cfg.FlushFreq > 0 {
		config.Producer.Flush.Frequency = cfg.FlushFreq
	}
	config.Version = sarama.V3_6_0_0
	if cfg.Version != (sarama.KafkaVersion{}) {
		config.Version = cfg.Version
	}

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create async producer: %w", err)
	}

	logger.Info(context.Background(), "kafka sink initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
		zap.String("client_id", cfg.ClientID),
	)

	return NewKafkaSinkWithProducer(producer, cfg.Topic), nil
}

// NewKafkaSinkWithProducer는 이미 만들어진 producer로 KafkaSink를 생성합니다
func NewKafkaSinkWithProducer(producer sarama.AsyncProducer, topic string) *KafkaSink {
	s := &KafkaSink{
		producer: producer,
		topic:    topic,
		done:     make(chan struct{}),
	}
	go s.drain()
	return s
}

// Emit은 레코드를 producer 입력에 넣습니다. 입력이 가득 차면 ErrBackpressure를 반환합니다.
func (s *KafkaSink) Emit(rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     s.topic,
		Key:       sarama.StringEncoder(fmt.Sprintf("%s/%d", rec.IndexName, rec.ShardID)),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: rec.StartTime,
		Headers: []sarama.RecordHeader{
			{Key: []byte("role"), Value: []byte(rec.Role())},
		},
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errors.ErrSinkUnavailable
	}

	select {
	case s.producer.Input() <- msg:
		return nil
	default:
		return ErrBackpressure
	}
}

// drain은 producer의 결과 채널을 비웁니다. 비우지 않으면 producer가 멈춥니다.
func (s *KafkaSink) drain() {
	defer close(s.done)

	successes := s.producer.Successes()
	failures := s.producer.Errors()
	for successes != nil || failures != nil {
		select {
		case _, ok := <-successes:
			if !ok {
				successes = nil
			}
		case perr, ok := <-failures:
			if !ok {
				failures = nil
				continue
			}
			logger.Warn(context.Background(), "timing record publish failed",
				zap.String("topic", perr.Msg.Topic),
				zap.Error(perr.Err),
			)
		}
	}
}

// Close는 producer를 닫고 결과 채널이 비워질 때까지 기다립니다
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.producer.Close()
	<-s.done
	return err
}

func (s *KafkaSink) Name() string { return "kafka" }
