package mirror

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// Publisher forwards mirror changes to a Kafka topic consumed by search-sync.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Upsert(_ context.Context, doc Document) error {
	return p.send(Event{Op: OpUpsert, BookID: doc.BookID, Document: &doc})
}

func (p *Publisher) Delete(_ context.Context, bookID int64) error {
	return p.send(Event{Op: OpDelete, BookID: bookID})
}

func (p *Publisher) send(e Event) error {
	b, err := e.Encode()
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ObjectID(e.BookID)),
		Value: sarama.ByteEncoder(b),
	})
	return errors.Wrap(err, "producer.SendMessage")
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
