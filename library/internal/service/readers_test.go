package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/pkg/auth"
)

func TestCategories(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	c, err := e.svc.CreateCategory(ctx, model.CategoryRequest{
		Name: " student ", MaxBorrowCount: 5, MaxBorrowDays: 30, FinePerDay: dec("0.125"),
	})
	require.NoError(t, err)
	require.Equal(t, "student", c.Name)
	require.True(t, dec("0.13").Equal(c.FinePerDay), c.FinePerDay.String())

	_, err = e.svc.CreateCategory(ctx, model.CategoryRequest{Name: "x", MaxBorrowCount: 1, MaxBorrowDays: 1, FinePerDay: dec("-0.01")})
	requireErr(t, err, errs.KindValidation, errs.CodeValidation)
	_, err = e.svc.CreateCategory(ctx, model.CategoryRequest{Name: "student", MaxBorrowCount: 1, MaxBorrowDays: 1})
	requireErr(t, err, errs.KindConflict, errs.CodeDuplicate)

	c, err = e.svc.UpdateCategory(ctx, c.ID, model.CategoryRequest{Name: "student", MaxBorrowCount: 2, MaxBorrowDays: 7, FinePerDay: dec("1")})
	require.NoError(t, err)
	require.Equal(t, 2, c.MaxBorrowCount)
	_, err = e.svc.UpdateCategory(ctx, 9999, model.CategoryRequest{Name: "y", MaxBorrowCount: 1, MaxBorrowDays: 1})
	requireErr(t, err, errs.KindNotFound, errs.CodeCategoryNotFound)

	r := e.reader(t, c, "R1")
	err = e.svc.DeleteCategory(ctx, c.ID)
	requireErr(t, err, errs.KindConflict, errs.CodeCategoryInUse)

	require.NoError(t, e.svc.DeleteReader(ctx, r.ID))
	require.NoError(t, e.svc.DeleteCategory(ctx, c.ID))
	err = e.svc.DeleteCategory(ctx, c.ID)
	requireErr(t, err, errs.KindNotFound, errs.CodeCategoryNotFound)

	list, err := e.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestGetReader(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	cat := e.category(t, 3, 14, "0.50")
	r1 := e.reader(t, cat, "R1")
	r2 := e.reader(t, cat, "R2")

	tests := []struct {
		name     string
		caller   auth.Identity
		readerID int64
		code     string
	}{
		{name: "own record", caller: readerIdentity(r1), readerID: r1.ID},
		{name: "staff", caller: staff, readerID: r2.ID},
		{name: "someone else's", caller: readerIdentity(r1), readerID: r2.ID, code: errs.CodeNotOwner},
		{name: "unknown", caller: staff, readerID: 9999, code: errs.CodeReaderNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.svc.GetReader(ctx, tt.caller, tt.readerID)
			if tt.code != "" {
				require.Error(t, err)
				require.Equal(t, tt.code, errs.CodeOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.readerID, got.ID)
		})
	}
}

func TestUpdateReader(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	cat := e.category(t, 3, 14, "0.50")
	other := e.category(t, 1, 7, "1.00")
	r := e.reader(t, cat, "R1")

	got, err := e.svc.UpdateReader(ctx, r.ID, model.ReaderUpdate{})
	require.NoError(t, err)
	require.Equal(t, r, got)

	name, phone := "  Ann  ", "555"
	blocked := model.ReaderBlocked
	got, err = e.svc.UpdateReader(ctx, r.ID, model.ReaderUpdate{Name: &name, Phone: &phone, Status: &blocked, CategoryID: &other.ID})
	require.NoError(t, err)
	require.Equal(t, "Ann", got.Name)
	require.Equal(t, "555", *got.Phone)
	require.Equal(t, model.ReaderBlocked, got.Status)
	require.Equal(t, other.ID, got.CategoryID)
	require.Equal(t, r.ReaderNo, got.ReaderNo)
	require.Equal(t, r.Gender, got.Gender)

	blank := "   "
	_, err = e.svc.UpdateReader(ctx, r.ID, model.ReaderUpdate{Name: &blank})
	requireErr(t, err, errs.KindValidation, errs.CodeValidation)

	unknown := int64(9999)
	_, err = e.svc.UpdateReader(ctx, r.ID, model.ReaderUpdate{CategoryID: &unknown})
	requireErr(t, err, errs.KindNotFound, errs.CodeCategoryNotFound)

	_, err = e.svc.UpdateReader(ctx, 9999, model.ReaderUpdate{Name: &name})
	requireErr(t, err, errs.KindNotFound, errs.CodeReaderNotFound)
	_, err = e.svc.UpdateReader(ctx, 9999, model.ReaderUpdate{})
	requireErr(t, err, errs.KindNotFound, errs.CodeReaderNotFound)
}

func TestDeleteReader(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	cat := e.category(t, 3, 14, "0.50")

	_, err := e.svc.RegisterReader(ctx, model.RegisterReaderRequest{
		Username: "ann", Password: "secret1", ReaderNo: "R1", Name: "Ann", CategoryID: cat.ID,
	})
	require.NoError(t, err)
	u, err := e.repo.GetUserByUsername(ctx, "ann")
	require.NoError(t, err)
	readerID := *u.ReaderID
	r, err := e.repo.GetReader(ctx, readerID)
	require.NoError(t, err)

	_, cps := e.book(t, "B", 1)
	rec, err := e.svc.Borrow(ctx, readerIdentity(r), model.BorrowRequest{CopyID: cps[0].ID})
	require.NoError(t, err)

	err = e.svc.DeleteReader(ctx, readerID)
	requireErr(t, err, errs.KindConflict, errs.CodeReaderHasBorrows)
	_, err = e.repo.GetUserByUsername(ctx, "ann")
	require.NoError(t, err)

	_, err = e.svc.Return(ctx, staff, model.ReturnRequest{BorrowID: rec.ID})
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteReader(ctx, readerID))
	_, err = e.repo.GetUserByUsername(ctx, "ann")
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = e.svc.GetReader(ctx, staff, readerID)
	requireErr(t, err, errs.KindNotFound, errs.CodeReaderNotFound)

	err = e.svc.DeleteReader(ctx, readerID)
	requireErr(t, err, errs.KindNotFound, errs.CodeReaderNotFound)
}
