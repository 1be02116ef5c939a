package mirror

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Consumer applies book events from Kafka to the search index.
type Consumer struct {
	target  Mirror
	log     *zap.Logger
	timeout time.Duration
}

func NewConsumer(target Mirror, log *zap.Logger) *Consumer {
	return &Consumer{
		target:  target,
		log:     log.Named("consumer"),
		timeout: 10 * time.Second,
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				c.log.Warn("message channel was closed")
				return nil
			}
			if err := c.handle(session.Context(), message); err != nil {
				c.log.Warn("apply event", zap.Error(err),
					zap.String("key", string(message.Key)), zap.Int64("offset", message.Offset))
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle applies one message; a failed event is logged and skipped.
func (c *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	e, err := DecodeEvent(message.Value)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := e.Apply(ctx, c.target); err != nil {
		return err
	}
	c.log.Debug("event applied", zap.String("op", string(e.Op)), zap.Int64("book_id", e.BookID),
		zap.Time("timestamp", message.Timestamp))
	return nil
}
