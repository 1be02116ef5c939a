package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	algolia "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	cb "github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
)

type recorder struct {
	mu       sync.Mutex
	upserts  []Document
	deletes  []int64
	ops      []string
	err      error
	blockFor time.Duration
}

func (r *recorder) Upsert(_ context.Context, doc Document) error {
	time.Sleep(r.blockFor)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts = append(r.upserts, doc)
	r.ops = append(r.ops, "upsert "+doc.ObjectID)
	return r.err
}

func (r *recorder) Delete(_ context.Context, bookID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, bookID)
	r.ops = append(r.ops, "delete "+ObjectID(bookID))
	return r.err
}

func strPtr(s string) *string { return &s }

func sampleBook() model.Book {
	price := decimal.RequireFromString("12.50")
	pub := int64(3)
	return model.Book{
		ID:              42,
		ISBN:            strPtr("978-7-111"),
		Title:           "Go in Action",
		PublisherID:     &pub,
		PublisherName:   strPtr("Manning"),
		Price:           &price,
		TotalCopies:     2,
		AvailableCopies: 0,
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(sampleBook())
	require.Equal(t, "42", doc.ObjectID)
	require.Equal(t, int64(42), doc.BookID)
	require.Equal(t, "Manning", *doc.PublisherName)
	require.InDelta(t, 12.5, *doc.Price, 1e-9)
	require.False(t, doc.IsAvailable)

	b := sampleBook()
	b.AvailableCopies = 1
	b.Price = nil
	doc = NewDocument(b)
	require.True(t, doc.IsAvailable)
	require.Nil(t, doc.Price)
}

func TestEvent_Apply(t *testing.T) {
	doc := NewDocument(sampleBook())
	raw, err := Event{Op: OpUpsert, BookID: doc.BookID, Document: &doc}.Encode()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"objectID":"42"`)

	rec := &recorder{}
	e, err := DecodeEvent(raw)
	require.NoError(t, err)
	require.NoError(t, e.Apply(context.Background(), rec))
	require.Equal(t, []Document{doc}, rec.upserts)

	require.NoError(t, Event{Op: OpDelete, BookID: 7}.Apply(context.Background(), rec))
	require.Equal(t, []int64{7}, rec.deletes)

	require.ErrorIs(t, Event{Op: OpUpsert}.Apply(context.Background(), rec), errEmptyDocument)
	require.ErrorIs(t, Event{Op: "noop"}.Apply(context.Background(), rec), errUnknownOp)
}

type fakeIndex struct {
	saved   []interface{}
	deleted []string
	opts    [][]interface{}
	err     error
}

func (f *fakeIndex) SaveObject(object interface{}, opts ...interface{}) (algolia.SaveObjectRes, error) {
	f.saved = append(f.saved, object)
	f.opts = append(f.opts, opts)
	return algolia.SaveObjectRes{}, f.err
}

func (f *fakeIndex) DeleteObject(objectID string, opts ...interface{}) (algolia.DeleteTaskRes, error) {
	f.deleted = append(f.deleted, objectID)
	f.opts = append(f.opts, opts)
	return algolia.DeleteTaskRes{}, f.err
}

func TestAlgolia(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{}
	a := newAlgolia(idx, cb.New(cb.Config{Window: 2, FailureRatio: 1, Cooldown: time.Hour}))

	type ctxKey struct{}
	ctx = context.WithValue(ctx, ctxKey{}, "req")
	require.NoError(t, a.Upsert(ctx, NewDocument(sampleBook())))
	require.NoError(t, a.Delete(ctx, 42))
	require.Len(t, idx.saved, 1)
	require.Equal(t, []string{"42"}, idx.deleted)
	// the request context is handed to the client as a call option
	for _, opts := range idx.opts {
		require.Equal(t, []interface{}{ctx}, opts)
	}

	idx.err = errors.New("unreachable")
	require.Error(t, a.Delete(ctx, 1))
	require.Error(t, a.Delete(ctx, 2))
	// breaker is open, the index is not called anymore
	require.ErrorIs(t, a.Delete(ctx, 3), cb.ErrOpenCB)
	require.Equal(t, []string{"42", "1", "2"}, idx.deleted)

	_, err := NewAlgolia(AlgoliaConfig{AppID: "app"}, cb.Config{})
	require.Error(t, err)
}

func TestPublisher(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		e, err := DecodeEvent(val)
		if err != nil {
			return err
		}
		if e.Op != OpUpsert || e.Document == nil || e.Document.ObjectID != "42" {
			return errors.New("unexpected upsert event")
		}
		return nil
	})
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		e, err := DecodeEvent(val)
		if err != nil {
			return err
		}
		if e.Op != OpDelete || e.BookID != 42 {
			return errors.New("unexpected delete event")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisher(producer, "library.books")
	require.NoError(t, p.Upsert(context.Background(), NewDocument(sampleBook())))
	require.NoError(t, p.Delete(context.Background(), 42))
	require.ErrorIs(t, p.Delete(context.Background(), 43), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestConsumer_handle(t *testing.T) {
	rec := &recorder{}
	c := NewConsumer(rec, zap.NewNop())

	raw, err := Event{Op: OpDelete, BookID: 9}.Encode()
	require.NoError(t, err)
	require.NoError(t, c.handle(context.Background(), &sarama.ConsumerMessage{Value: raw}))
	require.Equal(t, []int64{9}, rec.deletes)

	require.Error(t, c.handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}))
}

func TestDispatcher(t *testing.T) {
	rec := &recorder{blockFor: 20 * time.Millisecond, err: errors.New("index down")}
	d := NewDispatcher(rec, zap.NewNop())

	d.BookChanged(sampleBook())
	d.BookDeleted(42)

	require.NoError(t, d.Close(context.Background()))
	require.Len(t, rec.upserts, 1)
	require.Equal(t, []int64{42}, rec.deletes)

	// dropped after close
	d.BookDeleted(43)
	require.Equal(t, []int64{42}, rec.deletes)
}

func TestDispatcher_KeepsOrder(t *testing.T) {
	rec := &recorder{blockFor: 50 * time.Millisecond}
	d := NewDispatcher(rec, zap.NewNop())

	b := sampleBook()
	b.ID = 7
	d.BookChanged(b)
	d.BookDeleted(7)
	d.BookChanged(sampleBook())

	require.NoError(t, d.Close(context.Background()))
	require.Equal(t, []string{"upsert 7", "delete 7", "upsert 42"}, rec.ops)
}

func TestDispatcher_CloseTimeout(t *testing.T) {
	rec := &recorder{blockFor: time.Second}
	d := NewDispatcher(rec, zap.NewNop())
	d.BookChanged(sampleBook())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}
