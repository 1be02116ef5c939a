package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

var borrowColumns = []string{
	"borrow_id", "reader_id", "copy_id", "book_id", "borrow_time", "due_time", "return_time", "status",
	"overdue_days", "is_damaged", "damage_desc", "fine_amount", "fine_status",
}

func filtered(q sq.SelectBuilder, f model.ListFilter) sq.SelectBuilder {
	if f.ReaderID != nil {
		q = q.Where(sq.Eq{"reader_id": *f.ReaderID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	return q
}

func (r *queries) ListBorrows(ctx context.Context, f model.ListFilter) ([]model.BorrowRecord, error) {
	q := qb.Select(borrowColumns...).From(borrowTableName).OrderBy("borrow_id DESC")
	return getAll[model.BorrowRecord](ctx, r.db, filtered(q, f), "ListBorrows")
}

func (r *queries) BorrowForUpdate(ctx context.Context, id int64) (model.BorrowRecord, error) {
	return getOne[model.BorrowRecord](ctx, r.db,
		qb.Select(borrowColumns...).From(borrowTableName).Where(sq.Eq{"borrow_id": id}).Suffix("FOR UPDATE"),
		"BorrowForUpdate")
}

func (r *queries) CreateBorrow(ctx context.Context, b model.BorrowRecord) (model.BorrowRecord, error) {
	return getOne[model.BorrowRecord](ctx, r.db,
		qb.Insert(borrowTableName).
			Columns("reader_id", "copy_id", "book_id", "borrow_time", "due_time", "status", "fine_amount", "fine_status").
			Values(b.ReaderID, b.CopyID, b.BookID, b.BorrowTime, b.DueTime, b.Status, b.FineAmount, b.FineStatus).
			Suffix(returning(borrowColumns)),
		"CreateBorrow")
}

// SaveBorrow writes the return-time fields of b.
func (r *queries) SaveBorrow(ctx context.Context, b model.BorrowRecord) error {
	return exec(ctx, r.db,
		qb.Update(borrowTableName).
			Set("return_time", b.ReturnTime).
			Set("status", b.Status).
			Set("overdue_days", b.OverdueDays).
			Set("is_damaged", b.IsDamaged).
			Set("damage_desc", b.DamageDesc).
			Set("fine_amount", b.FineAmount).
			Set("fine_status", b.FineStatus).
			Where(sq.Eq{"borrow_id": b.ID}),
		"SaveBorrow")
}

var fineColumns = []string{"fine_id", "reader_id", "borrow_id", "reason", "amount", "status", "created_at", "paid_at"}

func (r *queries) ListFines(ctx context.Context, f model.ListFilter) ([]model.FineRecord, error) {
	q := qb.Select(fineColumns...).From(fineTableName).OrderBy("fine_id DESC")
	return getAll[model.FineRecord](ctx, r.db, filtered(q, f), "ListFines")
}

func (r *queries) FineForUpdate(ctx context.Context, id int64) (model.FineRecord, error) {
	return getOne[model.FineRecord](ctx, r.db,
		qb.Select(fineColumns...).From(fineTableName).Where(sq.Eq{"fine_id": id}).Suffix("FOR UPDATE"),
		"FineForUpdate")
}

func (r *queries) CreateFine(ctx context.Context, f model.FineRecord) (model.FineRecord, error) {
	return getOne[model.FineRecord](ctx, r.db,
		qb.Insert(fineTableName).
			Columns("reader_id", "borrow_id", "reason", "amount", "status", "created_at").
			Values(f.ReaderID, f.BorrowID, f.Reason, f.Amount, f.Status, f.CreatedAt).
			Suffix(returning(fineColumns)),
		"CreateFine")
}

func (r *queries) SaveFine(ctx context.Context, f model.FineRecord) error {
	return exec(ctx, r.db,
		qb.Update(fineTableName).
			Set("status", f.Status).
			Set("paid_at", f.PaidAt).
			Where(sq.Eq{"fine_id": f.ID}),
		"SaveFine")
}

var paymentColumns = []string{"pay_id", "receipt_no", "reader_id", "fine_id", "amount", "method", "paid_at"}

func (r *queries) ListPayments(ctx context.Context, f model.ListFilter) ([]model.PaymentRecord, error) {
	q := qb.Select(paymentColumns...).From(paymentTableName).OrderBy("pay_id DESC")
	if f.ReaderID != nil {
		q = q.Where(sq.Eq{"reader_id": *f.ReaderID})
	}
	return getAll[model.PaymentRecord](ctx, r.db, q, "ListPayments")
}

func (r *queries) CreatePayment(ctx context.Context, p model.PaymentRecord) (model.PaymentRecord, error) {
	return getOne[model.PaymentRecord](ctx, r.db,
		qb.Insert(paymentTableName).
			Columns("receipt_no", "reader_id", "fine_id", "amount", "method", "paid_at").
			Values(p.ReceiptNo, p.ReaderID, p.FineID, p.Amount, p.Method, p.PaidAt).
			Suffix(returning(paymentColumns)),
		"CreatePayment")
}
