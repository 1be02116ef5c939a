package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/auth"
)

const day = 24 * time.Hour

// actingReader resolves whose account a circulation call acts on.
// Readers always act on themselves; staff must name a reader.
func actingReader(id auth.Identity, requested *int64) (int64, error) {
	if id.Role == auth.RoleReader {
		if id.ReaderID == nil {
			return 0, errs.Permission(errs.CodeReaderNotBound, "reader account has no reader bound")
		}
		return *id.ReaderID, nil
	}
	if requested == nil {
		return 0, errs.Validation(errs.CodeReaderRequired, "reader_id is required")
	}
	return *requested, nil
}

// Borrow lends an available copy to a reader.
func (s *Service) Borrow(ctx context.Context, id auth.Identity, req model.BorrowRequest) (model.BorrowRecord, error) {
	readerID, err := actingReader(id, req.ReaderID)
	if err != nil {
		return model.BorrowRecord{}, err
	}

	var rec model.BorrowRecord
	err = s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		reader, err := tx.ReaderForUpdate(ctx, readerID)
		if err != nil {
			return notFound(err, errs.CodeReaderNotFound, "reader not found")
		}
		if reader.Status != model.ReaderActive {
			return errs.Conflict(errs.CodeReaderBlocked, "reader is blocked")
		}
		cat, err := tx.GetCategory(ctx, reader.CategoryID)
		if err != nil {
			return missing(err, "reader category")
		}
		if reader.BorrowedCount >= cat.MaxBorrowCount {
			return errs.Conflict(errs.CodeBorrowLimit, "borrow limit reached")
		}
		if reader.FineBalance.IsPositive() {
			return errs.Conflict(errs.CodeUnpaidFines, "reader has unpaid fines")
		}

		cp, err := tx.CopyForUpdate(ctx, req.CopyID)
		if err != nil {
			return notFound(err, errs.CodeCopyNotFound, "copy not found")
		}
		if cp.Status != model.CopyAvailable {
			return errs.Conflict(errs.CodeCopyUnavailable, "copy is not available")
		}
		book, err := tx.BookForUpdate(ctx, cp.BookID)
		if err != nil {
			return missing(err, "book of copy")
		}
		if book.AvailableCopies <= 0 {
			return errs.Conflict(errs.CodeBookUnavailable, "book has no available copies")
		}

		now := s.now()
		rec, err = tx.CreateBorrow(ctx, model.BorrowRecord{
			ReaderID:   reader.ID,
			CopyID:     cp.ID,
			BookID:     book.ID,
			BorrowTime: now,
			DueTime:    now.Add(time.Duration(cat.MaxBorrowDays) * day),
			Status:     model.BorrowBorrowed,
			FineAmount: decimal.Zero,
			FineStatus: model.FineNone,
		})
		if err != nil {
			return err
		}
		if err := tx.SetCopyStatus(ctx, cp.ID, model.CopyBorrowed); err != nil {
			return err
		}
		if err := tx.SetBookCounters(ctx, book.ID, book.TotalCopies, book.AvailableCopies-1); err != nil {
			return err
		}
		reader.BorrowedCount++
		return tx.SetReaderCounters(ctx, reader)
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.log.Debug("borrow", zap.Int64("borrow_id", rec.ID), zap.Int64("reader_id", rec.ReaderID), zap.Int64("copy_id", rec.CopyID))
	return rec, nil
}

// assessment is the outcome of returning a borrow at a given time.
type assessment struct {
	OverdueDays int
	Fine        decimal.Decimal
	Status      model.BorrowStatus
	Reason      model.FineReason
}

// overdueDays counts whole days elapsed after due.
func overdueDays(due, at time.Time) int {
	if !at.After(due) {
		return 0
	}
	return int(at.Sub(due) / day)
}

// assess computes the return status and fine. Damage wins the status label; fines are summed.
func assess(due, at time.Time, finePerDay decimal.Decimal, damaged bool) assessment {
	a := assessment{
		OverdueDays: overdueDays(due, at),
		Fine:        decimal.Zero,
		Status:      model.BorrowReturned,
	}
	if a.OverdueDays > 0 {
		a.Fine = finePerDay.Mul(decimal.NewFromInt(int64(a.OverdueDays)))
		a.Status = model.BorrowOverdueReturned
		a.Reason = model.ReasonOverdue
	}
	if damaged {
		a.Fine = a.Fine.Add(model.DamageFine)
		a.Status = model.BorrowDamagedReturned
		if a.Reason == "" {
			a.Reason = model.ReasonDamage
		}
	}
	a.Fine = a.Fine.Round(2)
	return a
}

// Return closes an open borrow, restores the copy and assesses the fine.
func (s *Service) Return(ctx context.Context, id auth.Identity, req model.ReturnRequest) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		var err error
		if rec, err = tx.BorrowForUpdate(ctx, req.BorrowID); err != nil {
			return notFound(err, errs.CodeBorrowNotFound, "borrow record not found")
		}
		if rec.Status != model.BorrowBorrowed {
			return errs.Conflict(errs.CodeBorrowClosed, "borrow record is already closed")
		}
		if !id.IsStaff() && !id.OwnsReader(rec.ReaderID) {
			return errs.Permission(errs.CodeNotOwner, "not your borrow record")
		}

		reader, err := tx.ReaderForUpdate(ctx, rec.ReaderID)
		if err != nil {
			return missing(err, "reader of borrow")
		}
		cat, err := tx.GetCategory(ctx, reader.CategoryID)
		if err != nil {
			return missing(err, "reader category")
		}
		cp, err := tx.CopyForUpdate(ctx, rec.CopyID)
		if err != nil {
			return missing(err, "copy of borrow")
		}
		book, err := tx.BookForUpdate(ctx, cp.BookID)
		if err != nil {
			return missing(err, "book of copy")
		}

		now := s.now()
		a := assess(rec.DueTime, now, cat.FinePerDay, req.IsDamaged)
		rec.ReturnTime = &now
		rec.OverdueDays = a.OverdueDays
		rec.Status = a.Status
		if req.IsDamaged {
			desc := model.DefaultDamageDesc
			if req.DamageDesc != nil && strings.TrimSpace(*req.DamageDesc) != "" {
				desc = strings.TrimSpace(*req.DamageDesc)
			}
			rec.IsDamaged = true
			rec.DamageDesc = &desc
		}

		if cp.Status == model.CopyBorrowed {
			if err := tx.SetCopyStatus(ctx, cp.ID, model.CopyAvailable); err != nil {
				return err
			}
			if err := tx.SetBookCounters(ctx, book.ID, book.TotalCopies, book.AvailableCopies+1); err != nil {
				return err
			}
		}
		if reader.BorrowedCount > 0 {
			reader.BorrowedCount--
		}

		rec.FineAmount = decimal.Zero
		rec.FineStatus = model.FineNone
		if a.Fine.IsPositive() {
			rec.FineAmount = a.Fine
			rec.FineStatus = model.FineUnpaid
			if _, err := tx.CreateFine(ctx, model.FineRecord{
				ReaderID:  reader.ID,
				BorrowID:  &rec.ID,
				Reason:    a.Reason,
				Amount:    a.Fine,
				Status:    model.FineUnpaid,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			reader.FineBalance = reader.FineBalance.Add(a.Fine)
			reader.FineTotalHistory = reader.FineTotalHistory.Add(a.Fine)
		}
		if err := tx.SaveBorrow(ctx, rec); err != nil {
			return err
		}
		return tx.SetReaderCounters(ctx, reader)
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.log.Debug("return", zap.Int64("borrow_id", rec.ID), zap.String("status", string(rec.Status)),
		zap.String("fine", rec.FineAmount.String()))
	return rec, nil
}

// PayFine settles an unpaid fine in full.
func (s *Service) PayFine(ctx context.Context, id auth.Identity, fineID int64, req model.PayRequest) (model.PaymentRecord, error) {
	var pay model.PaymentRecord
	err := s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		fine, err := tx.FineForUpdate(ctx, fineID)
		if err != nil {
			return notFound(err, errs.CodeFineNotFound, "fine not found")
		}
		if !id.IsStaff() && !id.OwnsReader(fine.ReaderID) {
			return errs.Permission(errs.CodeNotOwner, "not your fine")
		}
		if fine.Status != model.FineUnpaid {
			return errs.Conflict(errs.CodeFineSettled, "fine is already paid")
		}

		var borrow *model.BorrowRecord
		if fine.BorrowID != nil {
			b, err := tx.BorrowForUpdate(ctx, *fine.BorrowID)
			if err != nil {
				return missing(err, "borrow of fine")
			}
			borrow = &b
		}
		reader, err := tx.ReaderForUpdate(ctx, fine.ReaderID)
		if err != nil {
			return missing(err, "reader of fine")
		}

		now := s.now()
		if pay, err = tx.CreatePayment(ctx, model.PaymentRecord{
			ReceiptNo: s.receipts.NewReceipt(now),
			ReaderID:  fine.ReaderID,
			FineID:    fine.ID,
			Amount:    fine.Amount,
			Method:    model.NormalizePayMethod(req.Method),
			PaidAt:    now,
		}); err != nil {
			return err
		}

		fine.Status = model.FinePaid
		fine.PaidAt = &now
		if err := tx.SaveFine(ctx, fine); err != nil {
			return err
		}

		reader.FineBalance = reader.FineBalance.Sub(fine.Amount)
		if reader.FineBalance.IsNegative() {
			reader.FineBalance = decimal.Zero
		}
		if err := tx.SetReaderCounters(ctx, reader); err != nil {
			return err
		}

		if borrow != nil {
			borrow.FineStatus = model.FinePaid
			return tx.SaveBorrow(ctx, *borrow)
		}
		return nil
	})
	if err != nil {
		return model.PaymentRecord{}, err
	}
	s.log.Info("fine paid", zap.Int64("fine_id", fineID), zap.String("receipt", pay.ReceiptNo),
		zap.String("amount", pay.Amount.String()))
	return pay, nil
}

// scope restricts a listing to the caller's own rows unless the caller is staff.
func scope(id auth.Identity, f model.ListFilter) (model.ListFilter, error) {
	if id.IsStaff() {
		return f, nil
	}
	if id.ReaderID == nil {
		return f, errs.Permission(errs.CodeReaderNotBound, "reader account has no reader bound")
	}
	f.ReaderID = id.ReaderID
	return f, nil
}

func (s *Service) ListBorrows(ctx context.Context, id auth.Identity, f model.ListFilter) ([]model.BorrowRecord, error) {
	if f.Status != "" && !model.BorrowStatus(f.Status).Valid() {
		return nil, errs.Validation(errs.CodeValidation, "unknown borrow status")
	}
	f, err := scope(id, f)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBorrows(ctx, f)
}

func (s *Service) ListFines(ctx context.Context, id auth.Identity, f model.ListFilter) ([]model.FineRecord, error) {
	switch model.FineStatus(f.Status) {
	case "", model.FineUnpaid, model.FinePaid:
	default:
		return nil, errs.Validation(errs.CodeValidation, "unknown fine status")
	}
	f, err := scope(id, f)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFines(ctx, f)
}

func (s *Service) ListPayments(ctx context.Context, id auth.Identity, f model.ListFilter) ([]model.PaymentRecord, error) {
	f, err := scope(id, f)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, f)
}
