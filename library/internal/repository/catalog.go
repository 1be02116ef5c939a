package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

var categoryColumns = []string{
	"category_id", "category_name", "max_borrow_count", "max_borrow_days", "fine_per_day", "created_at",
}

func (r *queries) ListCategories(ctx context.Context) ([]model.ReaderCategory, error) {
	return getAll[model.ReaderCategory](ctx, r.db,
		qb.Select(categoryColumns...).From(categoryTableName).OrderBy("category_id"),
		"ListCategories")
}

func (r *queries) GetCategory(ctx context.Context, id int64) (model.ReaderCategory, error) {
	return getOne[model.ReaderCategory](ctx, r.db,
		qb.Select(categoryColumns...).From(categoryTableName).Where(sq.Eq{"category_id": id}),
		"GetCategory")
}

func categoryValues(req model.CategoryRequest) map[string]any {
	return map[string]any{
		"category_name":    req.Name,
		"max_borrow_count": req.MaxBorrowCount,
		"max_borrow_days":  req.MaxBorrowDays,
		"fine_per_day":     req.FinePerDay,
	}
}

func (r *queries) CreateCategory(ctx context.Context, req model.CategoryRequest) (model.ReaderCategory, error) {
	return getOne[model.ReaderCategory](ctx, r.db,
		qb.Insert(categoryTableName).SetMap(categoryValues(req)).Suffix(returning(categoryColumns)),
		"CreateCategory")
}

func (r *queries) UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.ReaderCategory, error) {
	return getOne[model.ReaderCategory](ctx, r.db,
		qb.Update(categoryTableName).SetMap(categoryValues(req)).
			Where(sq.Eq{"category_id": id}).
			Suffix(returning(categoryColumns)),
		"UpdateCategory")
}

func (r *queries) DeleteCategory(ctx context.Context, id int64) error {
	return exec(ctx, r.db, qb.Delete(categoryTableName).Where(sq.Eq{"category_id": id}), "DeleteCategory")
}

func (r *queries) CategoryInUse(ctx context.Context, id int64) (bool, error) {
	n, err := count(ctx, r.db,
		qb.Select("count(*)").From(readerTableName).Where(sq.Eq{"category_id": id}),
		"CategoryInUse")
	return n > 0, err
}

var publisherColumns = []string{"publisher_id", "name", "contact", "phone", "address", "created_at"}

func publisherValues(req model.PublisherRequest) map[string]any {
	return map[string]any{
		"name":    req.Name,
		"contact": req.Contact,
		"phone":   req.Phone,
		"address": req.Address,
	}
}

func (r *queries) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	return getAll[model.Publisher](ctx, r.db,
		qb.Select(publisherColumns...).From(publisherTableName).OrderBy("publisher_id DESC"),
		"ListPublishers")
}

func (r *queries) GetPublisher(ctx context.Context, id int64) (model.Publisher, error) {
	return getOne[model.Publisher](ctx, r.db,
		qb.Select(publisherColumns...).From(publisherTableName).Where(sq.Eq{"publisher_id": id}),
		"GetPublisher")
}

func (r *queries) CreatePublisher(ctx context.Context, req model.PublisherRequest) (model.Publisher, error) {
	return getOne[model.Publisher](ctx, r.db,
		qb.Insert(publisherTableName).SetMap(publisherValues(req)).Suffix(returning(publisherColumns)),
		"CreatePublisher")
}

func (r *queries) UpdatePublisher(ctx context.Context, id int64, req model.PublisherRequest) (model.Publisher, error) {
	return getOne[model.Publisher](ctx, r.db,
		qb.Update(publisherTableName).SetMap(publisherValues(req)).
			Where(sq.Eq{"publisher_id": id}).
			Suffix(returning(publisherColumns)),
		"UpdatePublisher")
}

func (r *queries) DeletePublisher(ctx context.Context, id int64) error {
	return exec(ctx, r.db, qb.Delete(publisherTableName).Where(sq.Eq{"publisher_id": id}), "DeletePublisher")
}

var bookColumns = []string{
	"b.book_id", "b.isbn", "b.title", "b.subtitle", "b.publisher_id", "p.name AS publisher_name",
	"to_char(b.publish_date, 'YYYY-MM-DD') AS publish_date", "b.category", "b.language", "b.price",
	"b.summary", "b.total_copies", "b.available_copies", "b.created_at", "b.updated_at",
}

func selectBooks() sq.SelectBuilder {
	return qb.Select(bookColumns...).
		From(bookTableName + " b").
		LeftJoin(fmt.Sprintf("%s p ON p.publisher_id = b.publisher_id", publisherTableName))
}

func bookValues(req model.BookRequest) map[string]any {
	return map[string]any{
		"isbn":         req.ISBN,
		"title":        req.Title,
		"subtitle":     req.Subtitle,
		"publisher_id": req.PublisherID,
		"publish_date": req.PublishDate,
		"category":     req.Category,
		"language":     req.Language,
		"price":        req.Price,
		"summary":      req.Summary,
	}
}

func (r *queries) ListBooks(ctx context.Context) ([]model.Book, error) {
	return getAll[model.Book](ctx, r.db, selectBooks().OrderBy("b.book_id DESC"), "ListBooks")
}

func (r *queries) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return getOne[model.Book](ctx, r.db, selectBooks().Where(sq.Eq{"b.book_id": id}), "GetBook")
}

func (r *queries) BookForUpdate(ctx context.Context, id int64) (model.Book, error) {
	return getOne[model.Book](ctx, r.db,
		selectBooks().Where(sq.Eq{"b.book_id": id}).Suffix("FOR UPDATE OF b"),
		"BookForUpdate")
}

func (r *queries) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	query, args, err := qb.Insert(bookTableName).SetMap(bookValues(req)).Suffix("RETURNING book_id").ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return model.Book{}, translate(err, "CreateBook")
	}
	return r.GetBook(ctx, id)
}

func (r *queries) UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error) {
	if err := exec(ctx, r.db,
		qb.Update(bookTableName).SetMap(bookValues(req)).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"book_id": id}),
		"UpdateBook"); err != nil {
		return model.Book{}, err
	}
	return r.GetBook(ctx, id)
}

func (r *queries) DeleteBook(ctx context.Context, id int64) error {
	return exec(ctx, r.db, qb.Delete(bookTableName).Where(sq.Eq{"book_id": id}), "DeleteBook")
}

func (r *queries) SetBookCounters(ctx context.Context, id int64, total, available int) error {
	return exec(ctx, r.db,
		qb.Update(bookTableName).
			Set("total_copies", total).
			Set("available_copies", available).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"book_id": id}),
		"SetBookCounters")
}

func (r *queries) CountCopies(ctx context.Context, bookID int64) (int, error) {
	return count(ctx, r.db,
		qb.Select("count(*)").From(copyTableName).Where(sq.Eq{"book_id": bookID}),
		"CountCopies")
}

var copyColumns = []string{"copy_id", "book_id", "barcode", "location", "status", "created_at", "updated_at"}

func (r *queries) ListCopies(ctx context.Context, bookID *int64) ([]model.BookCopy, error) {
	q := qb.Select(copyColumns...).From(copyTableName).OrderBy("copy_id DESC")
	if bookID != nil {
		q = q.Where(sq.Eq{"book_id": *bookID})
	}
	return getAll[model.BookCopy](ctx, r.db, q, "ListCopies")
}

func (r *queries) GetCopy(ctx context.Context, id int64) (model.BookCopy, error) {
	return getOne[model.BookCopy](ctx, r.db,
		qb.Select(copyColumns...).From(copyTableName).Where(sq.Eq{"copy_id": id}),
		"GetCopy")
}

func (r *queries) CopyForUpdate(ctx context.Context, id int64) (model.BookCopy, error) {
	return getOne[model.BookCopy](ctx, r.db,
		qb.Select(copyColumns...).From(copyTableName).Where(sq.Eq{"copy_id": id}).Suffix("FOR UPDATE"),
		"CopyForUpdate")
}

func (r *queries) CreateCopy(ctx context.Context, req model.CopyRequest) (model.BookCopy, error) {
	return getOne[model.BookCopy](ctx, r.db,
		qb.Insert(copyTableName).
			Columns("book_id", "barcode", "location", "status").
			Values(req.BookID, req.Barcode, req.Location, req.Status).
			Suffix(returning(copyColumns)),
		"CreateCopy")
}

func (r *queries) UpdateCopy(ctx context.Context, id int64, req model.CopyRequest) (model.BookCopy, error) {
	return getOne[model.BookCopy](ctx, r.db,
		qb.Update(copyTableName).
			Set("book_id", req.BookID).
			Set("barcode", req.Barcode).
			Set("location", req.Location).
			Set("status", req.Status).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"copy_id": id}).
			Suffix(returning(copyColumns)),
		"UpdateCopy")
}

func (r *queries) SetCopyStatus(ctx context.Context, id int64, status model.CopyStatus) error {
	return exec(ctx, r.db,
		qb.Update(copyTableName).
			Set("status", status).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"copy_id": id}),
		"SetCopyStatus")
}

func (r *queries) DeleteCopy(ctx context.Context, id int64) error {
	return exec(ctx, r.db, qb.Delete(copyTableName).Where(sq.Eq{"copy_id": id}), "DeleteCopy")
}
