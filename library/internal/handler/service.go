package handler

import (
	"context"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error)
	RegisterReader(ctx context.Context, req model.RegisterReaderRequest) (model.TokenResponse, error)

	ListCategories(ctx context.Context) ([]model.ReaderCategory, error)
	CreateCategory(ctx context.Context, req model.CategoryRequest) (model.ReaderCategory, error)
	UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.ReaderCategory, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListReaders(ctx context.Context) ([]model.Reader, error)
	GetReader(ctx context.Context, id auth.Identity, readerID int64) (model.Reader, error)
	UpdateReader(ctx context.Context, readerID int64, upd model.ReaderUpdate) (model.Reader, error)
	DeleteReader(ctx context.Context, readerID int64) error

	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	CreatePublisher(ctx context.Context, req model.PublisherRequest) (model.Publisher, error)
	UpdatePublisher(ctx context.Context, id int64, req model.PublisherRequest) (model.Publisher, error)
	DeletePublisher(ctx context.Context, id int64) error

	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	ListCopies(ctx context.Context, bookID *int64) ([]model.BookCopy, error)
	GetCopy(ctx context.Context, id int64) (model.BookCopy, error)
	CreateCopy(ctx context.Context, req model.CopyRequest) (model.BookCopy, error)
	UpdateCopy(ctx context.Context, id int64, req model.CopyRequest) (model.BookCopy, error)
	DeleteCopy(ctx context.Context, id int64) error

	Borrow(ctx context.Context, id auth.Identity, req model.BorrowRequest) (model.BorrowRecord, error)
	Return(ctx context.Context, id auth.Identity, req model.ReturnRequest) (model.BorrowRecord, error)
	PayFine(ctx context.Context, id auth.Identity, fineID int64, req model.PayRequest) (model.PaymentRecord, error)
	ListBorrows(ctx context.Context, id auth.Identity, f model.ListFilter) ([]model.BorrowRecord, error)
	ListFines(ctx context.Context, id auth.Identity, f model.ListFilter) ([]model.FineRecord, error)
	ListPayments(ctx context.Context, id auth.Identity, f model.ListFilter) ([]model.PaymentRecord, error)
}

var _ LibraryService = (*service.Service)(nil)
