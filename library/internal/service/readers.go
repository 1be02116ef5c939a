package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/auth"
)

func (s *Service) ListCategories(ctx context.Context) ([]model.ReaderCategory, error) {
	return s.repo.ListCategories(ctx)
}

func checkCategory(req *model.CategoryRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.FinePerDay.IsNegative() {
		return errs.Validation(errs.CodeValidation, "fine_per_day must not be negative")
	}
	req.FinePerDay = req.FinePerDay.Round(2)
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, req model.CategoryRequest) (model.ReaderCategory, error) {
	if err := checkCategory(&req); err != nil {
		return model.ReaderCategory{}, err
	}
	return s.repo.CreateCategory(ctx, req)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.ReaderCategory, error) {
	if err := checkCategory(&req); err != nil {
		return model.ReaderCategory{}, err
	}
	c, err := s.repo.UpdateCategory(ctx, id, req)
	return c, notFound(err, errs.CodeCategoryNotFound, "reader category not found")
}

// DeleteCategory is rejected while any reader belongs to the category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		inUse, err := tx.CategoryInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return errs.Conflict(errs.CodeCategoryInUse, "reader category is in use")
		}
		return notFound(tx.DeleteCategory(ctx, id), errs.CodeCategoryNotFound, "reader category not found")
	})
}

func (s *Service) ListReaders(ctx context.Context) ([]model.Reader, error) {
	return s.repo.ListReaders(ctx)
}

func (s *Service) GetReader(ctx context.Context, id auth.Identity, readerID int64) (model.Reader, error) {
	if !id.IsStaff() && !id.OwnsReader(readerID) {
		return model.Reader{}, errs.Permission(errs.CodeNotOwner, "not your reader record")
	}
	r, err := s.repo.GetReader(ctx, readerID)
	return r, notFound(err, errs.CodeReaderNotFound, "reader not found")
}

// UpdateReader applies a partial update; counters are never client-writable.
func (s *Service) UpdateReader(ctx context.Context, readerID int64, upd model.ReaderUpdate) (model.Reader, error) {
	if upd.Empty() {
		r, err := s.repo.GetReader(ctx, readerID)
		return r, notFound(err, errs.CodeReaderNotFound, "reader not found")
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Reader{}, errs.Validation(errs.CodeValidation, "name must not be blank")
		}
		upd.Name = &name
	}
	if upd.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *upd.CategoryID); err != nil {
			return model.Reader{}, notFound(err, errs.CodeCategoryNotFound, "reader category not found")
		}
	}
	r, err := s.repo.UpdateReader(ctx, readerID, upd)
	return r, notFound(err, errs.CodeReaderNotFound, "reader not found")
}

// DeleteReader removes a reader without open borrows together with its login account.
func (s *Service) DeleteReader(ctx context.Context, readerID int64) error {
	return s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		if _, err := tx.ReaderForUpdate(ctx, readerID); err != nil {
			return notFound(err, errs.CodeReaderNotFound, "reader not found")
		}
		open, err := tx.OpenBorrowCount(ctx, readerID)
		if err != nil {
			return err
		}
		if open > 0 {
			return errs.Conflict(errs.CodeReaderHasBorrows, "reader has books out")
		}
		if err := tx.DeleteReaderUsers(ctx, readerID); err != nil {
			return err
		}
		return tx.DeleteReader(ctx, readerID)
	})
}
