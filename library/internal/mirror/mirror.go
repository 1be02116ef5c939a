package mirror

import (
	"context"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

type Mode string

const (
	ModeOff    Mode = "off"
	ModeDirect Mode = "direct"
	ModeKafka  Mode = "kafka"
)

// Mirror keeps an external search index in sync with book records.
type Mirror interface {
	Upsert(ctx context.Context, doc Document) error
	Delete(ctx context.Context, bookID int64) error
}

// Document is the search record of one book.
type Document struct {
	ObjectID        string   `json:"objectID"`
	BookID          int64    `json:"book_id"`
	Title           string   `json:"title"`
	Subtitle        *string  `json:"subtitle"`
	ISBN            *string  `json:"isbn"`
	PublisherID     *int64   `json:"publisher_id"`
	PublisherName   *string  `json:"publisher_name"`
	Category        *string  `json:"category"`
	Language        *string  `json:"language"`
	Price           *float64 `json:"price"`
	Summary         *string  `json:"summary"`
	TotalCopies     int      `json:"total_copies"`
	AvailableCopies int      `json:"available_copies"`
	IsAvailable     bool     `json:"is_available"`
}

func NewDocument(b model.Book) Document {
	doc := Document{
		ObjectID:        ObjectID(b.ID),
		BookID:          b.ID,
		Title:           b.Title,
		Subtitle:        b.Subtitle,
		ISBN:            b.ISBN,
		PublisherID:     b.PublisherID,
		PublisherName:   b.PublisherName,
		Category:        b.Category,
		Language:        b.Language,
		Summary:         b.Summary,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		IsAvailable:     b.AvailableCopies > 0,
	}
	if b.Price != nil {
		p := b.Price.InexactFloat64()
		doc.Price = &p
	}
	return doc
}

func ObjectID(bookID int64) string {
	return strconv.FormatInt(bookID, 10)
}

type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Event is the Kafka message carrying one mirror change.
type Event struct {
	Op       Op        `json:"op"`
	BookID   int64     `json:"book_id"`
	Document *Document `json:"document,omitempty"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEvent(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}

// Apply replays e against m.
func (e Event) Apply(ctx context.Context, m Mirror) error {
	switch e.Op {
	case OpUpsert:
		if e.Document == nil {
			return errEmptyDocument
		}
		return m.Upsert(ctx, *e.Document)
	case OpDelete:
		return m.Delete(ctx, e.BookID)
	}
	return errUnknownOp
}

type noop struct{}

func Noop() Mirror { return noop{} }

func (noop) Upsert(context.Context, Document) error { return nil }
func (noop) Delete(context.Context, int64) error    { return nil }
