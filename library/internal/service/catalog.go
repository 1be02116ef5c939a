package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-circulation/library/internal/repository"
)

func (s *Service) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	return s.repo.ListPublishers(ctx)
}

func (s *Service) CreatePublisher(ctx context.Context, req model.PublisherRequest) (model.Publisher, error) {
	req.Name = strings.TrimSpace(req.Name)
	return s.repo.CreatePublisher(ctx, req)
}

func (s *Service) UpdatePublisher(ctx context.Context, id int64, req model.PublisherRequest) (model.Publisher, error) {
	req.Name = strings.TrimSpace(req.Name)
	p, err := s.repo.UpdatePublisher(ctx, id, req)
	return p, notFound(err, errs.CodePublisherNotFound, "publisher not found")
}

// DeletePublisher removes the publisher; its books keep existing without one.
func (s *Service) DeletePublisher(ctx context.Context, id int64) error {
	return notFound(s.repo.DeletePublisher(ctx, id), errs.CodePublisherNotFound, "publisher not found")
}

func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	b, err := s.repo.GetBook(ctx, id)
	return b, notFound(err, errs.CodeBookNotFound, "book not found")
}

func (s *Service) checkBook(ctx context.Context, req *model.BookRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.ISBN != nil && strings.TrimSpace(*req.ISBN) == "" {
		req.ISBN = nil
	}
	if req.Price != nil && req.Price.IsNegative() {
		return errs.Validation(errs.CodeValidation, "price must not be negative")
	}
	if req.PublisherID != nil {
		if _, err := s.repo.GetPublisher(ctx, *req.PublisherID); err != nil {
			return notFound(err, errs.CodePublisherNotFound, "publisher not found")
		}
	}
	return nil
}

func (s *Service) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	if err := s.checkBook(ctx, &req); err != nil {
		return model.Book{}, err
	}
	b, err := s.repo.CreateBook(ctx, req)
	if err != nil {
		return model.Book{}, err
	}
	s.mirror.BookChanged(b)
	return b, nil
}

func (s *Service) UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error) {
	if err := s.checkBook(ctx, &req); err != nil {
		return model.Book{}, err
	}
	b, err := s.repo.UpdateBook(ctx, id, req)
	if err != nil {
		return model.Book{}, notFound(err, errs.CodeBookNotFound, "book not found")
	}
	s.mirror.BookChanged(b)
	return b, nil
}

// DeleteBook is rejected while any copy still references the book.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	err := s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		if _, err := tx.BookForUpdate(ctx, id); err != nil {
			return notFound(err, errs.CodeBookNotFound, "book not found")
		}
		n, err := tx.CountCopies(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errs.Conflict(errs.CodeBookHasCopies, "book still has copies")
		}
		return tx.DeleteBook(ctx, id)
	})
	if err != nil {
		return err
	}
	s.mirror.BookDeleted(id)
	return nil
}

func (s *Service) ListCopies(ctx context.Context, bookID *int64) ([]model.BookCopy, error) {
	return s.repo.ListCopies(ctx, bookID)
}

func (s *Service) GetCopy(ctx context.Context, id int64) (model.BookCopy, error) {
	cp, err := s.repo.GetCopy(ctx, id)
	return cp, notFound(err, errs.CodeCopyNotFound, "copy not found")
}

func checkCopyStatus(st model.CopyStatus) error {
	if !st.Valid() {
		return errs.Validation(errs.CodeValidation, "unknown copy status")
	}
	if st == model.CopyBorrowed {
		return errs.Validation(errs.CodeValidation, "copy status borrowed is set by borrowing only")
	}
	return nil
}

// availableDelta is the change of a book's available counter when a copy moves from one status to another.
func availableDelta(from, to model.CopyStatus) int {
	switch {
	case from == model.CopyAvailable && to != model.CopyAvailable:
		return -1
	case from != model.CopyAvailable && to == model.CopyAvailable:
		return 1
	}
	return 0
}

func isAvailable(st model.CopyStatus) int {
	if st == model.CopyAvailable {
		return 1
	}
	return 0
}

func (s *Service) CreateCopy(ctx context.Context, req model.CopyRequest) (model.BookCopy, error) {
	if req.Status == "" {
		req.Status = model.CopyAvailable
	}
	if err := checkCopyStatus(req.Status); err != nil {
		return model.BookCopy{}, err
	}
	req.Barcode = strings.TrimSpace(req.Barcode)

	var cp model.BookCopy
	err := s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		book, err := tx.BookForUpdate(ctx, req.BookID)
		if err != nil {
			return notFound(err, errs.CodeBookNotFound, "book not found")
		}
		if cp, err = tx.CreateCopy(ctx, req); err != nil {
			return err
		}
		return tx.SetBookCounters(ctx, book.ID, book.TotalCopies+1, book.AvailableCopies+isAvailable(cp.Status))
	})
	if err != nil {
		return model.BookCopy{}, err
	}
	s.bookChanged(ctx, cp.BookID)
	return cp, nil
}

// UpdateCopy rewrites a copy, moving its counter contribution when the book or status changes.
// A borrowed copy is left to the return operation.
func (s *Service) UpdateCopy(ctx context.Context, id int64, req model.CopyRequest) (model.BookCopy, error) {
	req.Barcode = strings.TrimSpace(req.Barcode)

	var before, after model.BookCopy
	err := s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		var err error
		if before, err = tx.CopyForUpdate(ctx, id); err != nil {
			return notFound(err, errs.CodeCopyNotFound, "copy not found")
		}
		if before.Status == model.CopyBorrowed {
			return errs.Conflict(errs.CodeCopyBorrowed, "copy is borrowed")
		}
		if req.Status == "" {
			req.Status = before.Status
		}
		if err := checkCopyStatus(req.Status); err != nil {
			return err
		}

		if req.BookID == before.BookID {
			book, err := tx.BookForUpdate(ctx, before.BookID)
			if err != nil {
				return missing(err, "book of copy")
			}
			if after, err = tx.UpdateCopy(ctx, id, req); err != nil {
				return err
			}
			if d := availableDelta(before.Status, after.Status); d != 0 {
				return tx.SetBookCounters(ctx, book.ID, book.TotalCopies, book.AvailableCopies+d)
			}
			return nil
		}

		// lock both books in id order
		first, second := before.BookID, req.BookID
		if first > second {
			first, second = second, first
		}
		books := make(map[int64]model.Book, 2)
		for _, bid := range []int64{first, second} {
			b, err := tx.BookForUpdate(ctx, bid)
			if err != nil {
				if bid == req.BookID {
					return notFound(err, errs.CodeBookNotFound, "book not found")
				}
				return missing(err, "book of copy")
			}
			books[bid] = b
		}
		if after, err = tx.UpdateCopy(ctx, id, req); err != nil {
			return err
		}
		old, dst := books[before.BookID], books[req.BookID]
		if err := tx.SetBookCounters(ctx, old.ID, old.TotalCopies-1, old.AvailableCopies-isAvailable(before.Status)); err != nil {
			return err
		}
		return tx.SetBookCounters(ctx, dst.ID, dst.TotalCopies+1, dst.AvailableCopies+isAvailable(after.Status))
	})
	if err != nil {
		return model.BookCopy{}, err
	}
	if before.BookID != after.BookID {
		s.bookChanged(ctx, before.BookID, after.BookID)
	} else {
		s.bookChanged(ctx, after.BookID)
	}
	return after, nil
}

// DeleteCopy is rejected while the copy is borrowed.
func (s *Service) DeleteCopy(ctx context.Context, id int64) error {
	var cp model.BookCopy
	err := s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		var err error
		if cp, err = tx.CopyForUpdate(ctx, id); err != nil {
			return notFound(err, errs.CodeCopyNotFound, "copy not found")
		}
		if cp.Status == model.CopyBorrowed {
			return errs.Conflict(errs.CodeCopyBorrowed, "copy is borrowed")
		}
		book, err := tx.BookForUpdate(ctx, cp.BookID)
		if err != nil {
			return missing(err, "book of copy")
		}
		if err := tx.DeleteCopy(ctx, id); err != nil {
			return err
		}
		return tx.SetBookCounters(ctx, book.ID, book.TotalCopies-1, book.AvailableCopies-isAvailable(cp.Status))
	})
	if err != nil {
		return err
	}
	s.bookChanged(ctx, cp.BookID)
	return nil
}
