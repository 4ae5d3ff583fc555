// Package kafka 把问答事件投递到 Kafka，供统计看板消费。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"qa-session-go/internal/config"
	"qa-session-go/pkg/events"
	"qa-session-go/pkg/log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter 是 kafka.Writer 中被用到的部分，便于测试替换。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ExchangePublisher 以场景 ID 为消息键投递问答事件。
type ExchangePublisher struct {
	writer messageWriter
}

// NewExchangePublisher 根据配置创建事件生产者。
func NewExchangePublisher(cfg config.KafkaConfig) *ExchangePublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.Brokers, ",")...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		// 异步写入，投递结果只记录日志
		Async: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Errorf("[Kafka] 投递 %d 条问答事件失败: %v", len(messages), err)
			}
		},
	}
	log.Infof("Kafka 事件生产者初始化成功, topic=%s", cfg.Topic)
	return &ExchangePublisher{writer: w}
}

// Record 投递一条问答事件。writer 为异步模式时只返回编码或入队错误。
func (p *ExchangePublisher) Record(ctx context.Context, ev events.Exchange) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.SceneID), Value: value}); err != nil {
		return fmt.Errorf("failed to write exchange event: %w", err)
	}
	return nil
}

// Close 刷新并关闭底层 writer。
func (p *ExchangePublisher) Close() error {
	return p.writer.Close()
}
