package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
)

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	empty, _ := e.book(t, "Empty", 0)
	require.NoError(t, e.svc.DeleteBook(ctx, empty.ID))
	require.Equal(t, []int64{empty.ID}, e.mirror.deleted)
	_, err := e.svc.GetBook(ctx, empty.ID)
	requireErr(t, err, errs.KindNotFound, errs.CodeBookNotFound)

	withCopy, _ := e.book(t, "One", 1)
	err = e.svc.DeleteBook(ctx, withCopy.ID)
	requireErr(t, err, errs.KindConflict, errs.CodeBookHasCopies)
	require.Equal(t, []int64{empty.ID}, e.mirror.deleted)
	_, err = e.svc.GetBook(ctx, withCopy.ID)
	require.NoError(t, err)

	err = e.svc.DeleteBook(ctx, 9999)
	requireErr(t, err, errs.KindNotFound, errs.CodeBookNotFound)
}

func TestBookMirror(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	pub, err := e.svc.CreatePublisher(ctx, model.PublisherRequest{Name: " Manning "})
	require.NoError(t, err)
	require.Equal(t, "Manning", pub.Name)

	blank := "  "
	b, err := e.svc.CreateBook(ctx, model.BookRequest{Title: "Go", ISBN: &blank, PublisherID: &pub.ID})
	require.NoError(t, err)
	require.Nil(t, b.ISBN)
	require.Equal(t, []int64{b.ID}, e.mirror.changed)
	require.Equal(t, "Manning", *e.mirror.last[b.ID].PublisherName)

	b, err = e.svc.UpdateBook(ctx, b.ID, model.BookRequest{Title: "Go 2"})
	require.NoError(t, err)
	require.Equal(t, "Go 2", e.mirror.last[b.ID].Title)
	require.Len(t, e.mirror.changed, 2)

	missing := int64(404)
	_, err = e.svc.CreateBook(ctx, model.BookRequest{Title: "X", PublisherID: &missing})
	requireErr(t, err, errs.KindNotFound, errs.CodePublisherNotFound)
	_, err = e.svc.UpdateBook(ctx, 9999, model.BookRequest{Title: "X"})
	requireErr(t, err, errs.KindNotFound, errs.CodeBookNotFound)
	price := dec("-1")
	_, err = e.svc.CreateBook(ctx, model.BookRequest{Title: "X", Price: &price})
	requireErr(t, err, errs.KindValidation, errs.CodeValidation)
	require.Len(t, e.mirror.changed, 2)

	// publishers go away without taking their books along
	_, err = e.svc.UpdateBook(ctx, b.ID, model.BookRequest{Title: "Go 2", PublisherID: &pub.ID})
	require.NoError(t, err)
	require.NoError(t, e.svc.DeletePublisher(ctx, pub.ID))
	b, err = e.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Nil(t, b.PublisherID)
	err = e.svc.DeletePublisher(ctx, pub.ID)
	requireErr(t, err, errs.KindNotFound, errs.CodePublisherNotFound)
}

func TestCopyCounters(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b1, _ := e.book(t, "B1", 0)
	b2, _ := e.book(t, "B2", 0)

	counters := func(id int64) (int, int) {
		b := e.repo.books[id]
		return b.TotalCopies, b.AvailableCopies
	}
	expect := func(id int64, total, available int) {
		t.Helper()
		gotTotal, gotAvailable := counters(id)
		require.Equal(t, total, gotTotal, "total of %d", id)
		require.Equal(t, available, gotAvailable, "available of %d", id)
		e.checkInvariants(t)
	}

	a, err := e.svc.CreateCopy(ctx, model.CopyRequest{BookID: b1.ID, Barcode: "A"})
	require.NoError(t, err)
	require.Equal(t, model.CopyAvailable, a.Status)
	expect(b1.ID, 1, 1)
	require.Equal(t, 1, e.mirror.last[b1.ID].AvailableCopies)

	r, err := e.svc.CreateCopy(ctx, model.CopyRequest{BookID: b1.ID, Barcode: "R", Status: model.CopyRepair})
	require.NoError(t, err)
	expect(b1.ID, 2, 1)

	_, err = e.svc.CreateCopy(ctx, model.CopyRequest{BookID: b1.ID, Barcode: "A"})
	requireErr(t, err, errs.KindConflict, errs.CodeDuplicate)
	expect(b1.ID, 2, 1)

	_, err = e.svc.CreateCopy(ctx, model.CopyRequest{BookID: 9999, Barcode: "Z"})
	requireErr(t, err, errs.KindNotFound, errs.CodeBookNotFound)

	_, err = e.svc.CreateCopy(ctx, model.CopyRequest{BookID: b1.ID, Barcode: "Q", Status: model.CopyBorrowed})
	requireErr(t, err, errs.KindValidation, errs.CodeValidation)

	// available -> lost
	_, err = e.svc.UpdateCopy(ctx, a.ID, model.CopyRequest{BookID: b1.ID, Barcode: "A", Status: model.CopyLost})
	require.NoError(t, err)
	expect(b1.ID, 2, 0)

	// repair -> available
	_, err = e.svc.UpdateCopy(ctx, r.ID, model.CopyRequest{BookID: b1.ID, Barcode: "R", Status: model.CopyAvailable})
	require.NoError(t, err)
	expect(b1.ID, 2, 1)

	// lost -> repair leaves available alone
	_, err = e.svc.UpdateCopy(ctx, a.ID, model.CopyRequest{BookID: b1.ID, Barcode: "A", Status: model.CopyRepair})
	require.NoError(t, err)
	expect(b1.ID, 2, 1)

	// empty status keeps the current one
	moved, err := e.svc.UpdateCopy(ctx, r.ID, model.CopyRequest{BookID: b2.ID, Barcode: "R2"})
	require.NoError(t, err)
	require.Equal(t, model.CopyAvailable, moved.Status)
	require.Equal(t, "R2", moved.Barcode)
	expect(b1.ID, 1, 0)
	expect(b2.ID, 1, 1)
	require.Equal(t, 0, e.mirror.last[b1.ID].AvailableCopies)
	require.Equal(t, 1, e.mirror.last[b2.ID].AvailableCopies)

	_, err = e.svc.UpdateCopy(ctx, r.ID, model.CopyRequest{BookID: b2.ID, Barcode: "R2", Status: model.CopyBorrowed})
	requireErr(t, err, errs.KindValidation, errs.CodeValidation)
	_, err = e.svc.UpdateCopy(ctx, r.ID, model.CopyRequest{BookID: 9999, Barcode: "R2"})
	requireErr(t, err, errs.KindNotFound, errs.CodeBookNotFound)
	expect(b2.ID, 1, 1)

	// a borrowed copy is frozen
	cat := e.category(t, 3, 14, "0.50")
	rd := e.reader(t, cat, "R1")
	rec, err := e.svc.Borrow(ctx, readerIdentity(rd), model.BorrowRequest{CopyID: r.ID})
	require.NoError(t, err)
	_, err = e.svc.UpdateCopy(ctx, r.ID, model.CopyRequest{BookID: b2.ID, Barcode: "R2", Status: model.CopyLost})
	requireErr(t, err, errs.KindConflict, errs.CodeCopyBorrowed)
	err = e.svc.DeleteCopy(ctx, r.ID)
	requireErr(t, err, errs.KindConflict, errs.CodeCopyBorrowed)
	expect(b2.ID, 1, 0)

	_, err = e.svc.Return(ctx, staff, model.ReturnRequest{BorrowID: rec.ID})
	require.NoError(t, err)
	expect(b2.ID, 1, 1)

	// copies with history stay
	err = e.svc.DeleteCopy(ctx, r.ID)
	requireErr(t, err, errs.KindConflict, errs.CodeReferenced)
	expect(b2.ID, 1, 1)

	require.NoError(t, e.svc.DeleteCopy(ctx, a.ID))
	expect(b1.ID, 0, 0)
	err = e.svc.DeleteCopy(ctx, a.ID)
	requireErr(t, err, errs.KindNotFound, errs.CodeCopyNotFound)

	copies, err := e.svc.ListCopies(ctx, &b2.ID)
	require.NoError(t, err)
	require.Len(t, copies, 1)
	all, err := e.svc.ListCopies(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
