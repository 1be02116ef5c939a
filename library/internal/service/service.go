package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/auth"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ReceiptGenerator issues payment receipt numbers.
type ReceiptGenerator interface {
	NewReceipt(at time.Time) string
}

type ulidReceipts struct{}

func (ulidReceipts) NewReceipt(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

// Notifier receives committed book changes for the search mirror.
type Notifier interface {
	BookChanged(b model.Book)
	BookDeleted(bookID int64)
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
	TTL() time.Duration
}

type Service struct {
	log      *zap.Logger
	repo     libraryRepo.Repository
	mirror   Notifier
	tokens   TokenIssuer
	clock    Clock
	receipts ReceiptGenerator
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithReceipts(g ReceiptGenerator) Option {
	return func(s *Service) { s.receipts = g }
}

func NewService(repo libraryRepo.Repository, mirror Notifier, tokens TokenIssuer, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:      log.Named("svc"),
		repo:     repo,
		mirror:   mirror,
		tokens:   tokens,
		clock:    systemClock{},
		receipts: ulidReceipts{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// notFound replaces the repository not-found sentinel with a domain error.
func notFound(err error, code, msg string) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound(code, msg)
	}
	return err
}

// missing is notFound for rows that a consistent database always has.
func missing(err error, what string) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.Consistency(errs.CodeInconsistentData, what+" is missing")
	}
	return err
}

func (s *Service) bookChanged(ctx context.Context, bookIDs ...int64) {
	for _, id := range bookIDs {
		b, err := s.repo.GetBook(ctx, id)
		if err != nil {
			s.log.Warn("mirror: reload book", zap.Int64("book_id", id), zap.Error(err))
			continue
		}
		s.mirror.BookChanged(b)
	}
}
