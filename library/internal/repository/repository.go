package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
)

// Tx is the set of statements that may run inside one transaction.
// Methods named *ForUpdate take a row lock held until the transaction ends.
type Tx interface {
	GetCategory(ctx context.Context, id int64) (model.ReaderCategory, error)
	CreateCategory(ctx context.Context, req model.CategoryRequest) (model.ReaderCategory, error)
	UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.ReaderCategory, error)
	DeleteCategory(ctx context.Context, id int64) error
	CategoryInUse(ctx context.Context, id int64) (bool, error)

	CreatePublisher(ctx context.Context, req model.PublisherRequest) (model.Publisher, error)
	UpdatePublisher(ctx context.Context, id int64, req model.PublisherRequest) (model.Publisher, error)
	DeletePublisher(ctx context.Context, id int64) error

	GetBook(ctx context.Context, id int64) (model.Book, error)
	BookForUpdate(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SetBookCounters(ctx context.Context, id int64, total, available int) error
	CountCopies(ctx context.Context, bookID int64) (int, error)

	CopyForUpdate(ctx context.Context, id int64) (model.BookCopy, error)
	CreateCopy(ctx context.Context, req model.CopyRequest) (model.BookCopy, error)
	UpdateCopy(ctx context.Context, id int64, req model.CopyRequest) (model.BookCopy, error)
	SetCopyStatus(ctx context.Context, id int64, status model.CopyStatus) error
	DeleteCopy(ctx context.Context, id int64) error

	ReaderForUpdate(ctx context.Context, id int64) (model.Reader, error)
	CreateReader(ctx context.Context, r model.Reader) (model.Reader, error)
	UpdateReader(ctx context.Context, id int64, upd model.ReaderUpdate) (model.Reader, error)
	SetReaderCounters(ctx context.Context, r model.Reader) error
	DeleteReader(ctx context.Context, id int64) error
	OpenBorrowCount(ctx context.Context, readerID int64) (int, error)

	CreateUser(ctx context.Context, u model.User) (model.User, error)
	DeleteReaderUsers(ctx context.Context, readerID int64) error

	CreateBorrow(ctx context.Context, b model.BorrowRecord) (model.BorrowRecord, error)
	BorrowForUpdate(ctx context.Context, id int64) (model.BorrowRecord, error)
	SaveBorrow(ctx context.Context, b model.BorrowRecord) error

	CreateFine(ctx context.Context, f model.FineRecord) (model.FineRecord, error)
	FineForUpdate(ctx context.Context, id int64) (model.FineRecord, error)
	SaveFine(ctx context.Context, f model.FineRecord) error

	CreatePayment(ctx context.Context, p model.PaymentRecord) (model.PaymentRecord, error)
}

type Repository interface {
	Tx
	// InTx runs fn in a single transaction, rolled back when fn returns an error.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	ListCategories(ctx context.Context) ([]model.ReaderCategory, error)
	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	GetPublisher(ctx context.Context, id int64) (model.Publisher, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	ListCopies(ctx context.Context, bookID *int64) ([]model.BookCopy, error)
	GetCopy(ctx context.Context, id int64) (model.BookCopy, error)
	ListReaders(ctx context.Context) ([]model.Reader, error)
	GetReader(ctx context.Context, id int64) (model.Reader, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListBorrows(ctx context.Context, f model.ListFilter) ([]model.BorrowRecord, error)
	ListFines(ctx context.Context, f model.ListFilter) ([]model.FineRecord, error)
	ListPayments(ctx context.Context, f model.ListFilter) ([]model.PaymentRecord, error)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db  querier
	log *zap.Logger
}

type repository struct {
	*queries
	pool *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	log = log.Named("repo")
	return &repository{
		queries: &queries{db: db, log: log},
		pool:    db,
	}, nil
}

func (r *repository) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.log.Error("rollback", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(&queries{db: tx, log: r.log}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

const (
	categoryTableName  = `reader_categories`
	readerTableName    = `readers`
	publisherTableName = `publishers`
	bookTableName      = `books`
	copyTableName      = `book_copies`
	userTableName      = `users`
	borrowTableName    = `borrow_records`
	fineTableName      = `fine_records`
	paymentTableName   = `payment_records`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var constraintMessages = map[string]string{
	"reader_categories_category_name_key": "category name already exists",
	"readers_reader_no_key":               "reader_no already exists",
	"publishers_name_key":                 "publisher name already exists",
	"books_isbn_key":                      "isbn already exists",
	"book_copies_barcode_key":             "barcode already exists",
	"users_username_key":                  "username already exists",
	"payment_records_fine_id_key":         "fine already has a payment",
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg, ok := constraintMessages[pgErr.ConstraintName]
		if !ok {
			msg = pgErr.Message
		}
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errs.Conflict(errs.CodeDuplicate, msg)
		case pgerrcode.ForeignKeyViolation:
			return errs.Conflict(errs.CodeReferenced, pgErr.Message)
		case pgerrcode.CheckViolation:
			return errs.Consistency(errs.CodeInconsistentData, fmt.Sprintf("check %s violated", pgErr.ConstraintName))
		}
	}
	return errors.Wrap(err, op)
}

func getOne[T any](ctx context.Context, db querier, b sq.Sqlizer, op string) (T, error) {
	var zero T
	query, args, err := b.ToSql()
	if err != nil {
		return zero, err
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return zero, translate(err, op)
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, translate(err, op)
	}
	return item, nil
}

func getAll[T any](ctx context.Context, db querier, b sq.Sqlizer, op string) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, op)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, translate(err, op)
	}
	return items, nil
}

// exec runs a statement that must touch at least one row.
func exec(ctx context.Context, db querier, b sq.Sqlizer, op string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return translate(err, op)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func count(ctx context.Context, db querier, b sq.Sqlizer, op string) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, translate(err, op)
	}
	return n, nil
}

func returning(cols []string) string {
	return "RETURNING " + strings.Join(cols, ", ")
}
