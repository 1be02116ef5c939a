package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

var readerColumns = []string{
	"reader_id", "category_id", "reader_no", "name", "gender", "phone", "email", "address", "status",
	"borrowed_count", "fine_balance", "fine_total_history", "created_at", "updated_at",
}

func (r *queries) ListReaders(ctx context.Context) ([]model.Reader, error) {
	return getAll[model.Reader](ctx, r.db,
		qb.Select(readerColumns...).From(readerTableName).OrderBy("reader_id DESC"),
		"ListReaders")
}

func (r *queries) GetReader(ctx context.Context, id int64) (model.Reader, error) {
	return getOne[model.Reader](ctx, r.db,
		qb.Select(readerColumns...).From(readerTableName).Where(sq.Eq{"reader_id": id}),
		"GetReader")
}

func (r *queries) ReaderForUpdate(ctx context.Context, id int64) (model.Reader, error) {
	return getOne[model.Reader](ctx, r.db,
		qb.Select(readerColumns...).From(readerTableName).Where(sq.Eq{"reader_id": id}).Suffix("FOR UPDATE"),
		"ReaderForUpdate")
}

func (r *queries) CreateReader(ctx context.Context, rd model.Reader) (model.Reader, error) {
	return getOne[model.Reader](ctx, r.db,
		qb.Insert(readerTableName).
			Columns("category_id", "reader_no", "name", "gender", "phone", "email", "address", "status").
			Values(rd.CategoryID, rd.ReaderNo, rd.Name, rd.Gender, rd.Phone, rd.Email, rd.Address, rd.Status).
			Suffix(returning(readerColumns)),
		"CreateReader")
}

func (r *queries) UpdateReader(ctx context.Context, id int64, upd model.ReaderUpdate) (model.Reader, error) {
	q := qb.Update(readerTableName).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"reader_id": id}).
		Suffix(returning(readerColumns))
	if upd.CategoryID != nil {
		q = q.Set("category_id", *upd.CategoryID)
	}
	if upd.Name != nil {
		q = q.Set("name", *upd.Name)
	}
	if upd.Gender != nil {
		q = q.Set("gender", *upd.Gender)
	}
	if upd.Phone != nil {
		q = q.Set("phone", *upd.Phone)
	}
	if upd.Email != nil {
		q = q.Set("email", *upd.Email)
	}
	if upd.Address != nil {
		q = q.Set("address", *upd.Address)
	}
	if upd.Status != nil {
		q = q.Set("status", *upd.Status)
	}
	return getOne[model.Reader](ctx, r.db, q, "UpdateReader")
}

// SetReaderCounters writes the denormalized counters of rd.
func (r *queries) SetReaderCounters(ctx context.Context, rd model.Reader) error {
	return exec(ctx, r.db,
		qb.Update(readerTableName).
			Set("borrowed_count", rd.BorrowedCount).
			Set("fine_balance", rd.FineBalance).
			Set("fine_total_history", rd.FineTotalHistory).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"reader_id": rd.ID}),
		"SetReaderCounters")
}

func (r *queries) DeleteReader(ctx context.Context, id int64) error {
	return exec(ctx, r.db, qb.Delete(readerTableName).Where(sq.Eq{"reader_id": id}), "DeleteReader")
}

func (r *queries) OpenBorrowCount(ctx context.Context, readerID int64) (int, error) {
	return count(ctx, r.db,
		qb.Select("count(*)").From(borrowTableName).
			Where(sq.Eq{"reader_id": readerID, "status": model.BorrowBorrowed}),
		"OpenBorrowCount")
}

var userColumns = []string{
	"user_id", "username", "password_hash", "role", "reader_id", "status", "created_at", "updated_at",
}

func (r *queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return getOne[model.User](ctx, r.db,
		qb.Select(userColumns...).From(userTableName).Where(sq.Eq{"username": username}),
		"GetUserByUsername")
}

func (r *queries) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	return getOne[model.User](ctx, r.db,
		qb.Insert(userTableName).
			Columns("username", "password_hash", "role", "reader_id", "status").
			Values(u.Username, u.PasswordHash, u.Role, u.ReaderID, u.Status).
			Suffix(returning(userColumns)),
		"CreateUser")
}

func (r *queries) DeleteReaderUsers(ctx context.Context, readerID int64) error {
	query, args, err := qb.Delete(userTableName).Where(sq.Eq{"reader_id": readerID}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return translate(err, "DeleteReaderUsers")
}
