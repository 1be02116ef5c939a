package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/auth"
)

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	u, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.TokenResponse{}, err
	}
	if err != nil || u.Status != model.UserEnabled {
		return model.TokenResponse{}, errs.Unauthenticated(errs.CodeBadCredentials, "unknown username or disabled account")
	}

	switch {
	case req.UserType == model.UserTypeStaff && !u.Role.IsStaff():
		return model.TokenResponse{}, errs.Validation(errs.CodeUserTypeMismatch, "reader account, log in as reader")
	case req.UserType == model.UserTypeReader && u.Role.IsStaff():
		return model.TokenResponse{}, errs.Validation(errs.CodeUserTypeMismatch, "staff account, log in as staff")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return model.TokenResponse{}, errs.Unauthenticated(errs.CodeBadCredentials, "wrong password")
	}
	if u.Role == auth.RoleReader && u.ReaderID == nil {
		return model.TokenResponse{}, errs.Permission(errs.CodeReaderNotBound, "reader account has no reader bound")
	}
	return s.issue(u)
}

// RegisterReader creates a reader and its login account in one transaction.
func (s *Service) RegisterReader(ctx context.Context, req model.RegisterReaderRequest) (model.TokenResponse, error) {
	_, err := s.repo.GetUserByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return model.TokenResponse{}, errs.Conflict(errs.CodeDuplicate, "username already exists")
	case !errors.Is(err, errs.ErrNotFound):
		return model.TokenResponse{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return model.TokenResponse{}, err
	}

	var user model.User
	err = s.repo.InTx(ctx, func(tx libraryRepo.Tx) error {
		if _, err := tx.GetCategory(ctx, req.CategoryID); err != nil {
			return notFound(err, errs.CodeCategoryNotFound, "reader category not found")
		}
		reader, err := tx.CreateReader(ctx, model.Reader{
			CategoryID: req.CategoryID,
			ReaderNo:   strings.TrimSpace(req.ReaderNo),
			Name:       strings.TrimSpace(req.Name),
			Gender:     "U",
			Status:     model.ReaderActive,
		})
		if err != nil {
			return err
		}
		user, err = tx.CreateUser(ctx, model.User{
			Username:     req.Username,
			PasswordHash: hash,
			Role:         auth.RoleReader,
			ReaderID:     &reader.ID,
			Status:       model.UserEnabled,
		})
		return err
	})
	if err != nil {
		return model.TokenResponse{}, err
	}
	s.log.Info("reader registered", zap.String("username", user.Username), zap.Int64p("reader_id", user.ReaderID))
	return s.issue(user)
}

// CreateUser adds a staff account.
func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	if !req.Role.IsStaff() {
		return model.User{}, errs.Validation(errs.CodeValidation, "role must be admin or librarian")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return model.User{}, err
	}
	return s.repo.CreateUser(ctx, model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.UserEnabled,
	})
}

func (s *Service) issue(u model.User) (model.TokenResponse, error) {
	token, err := s.tokens.Issue(auth.Identity{
		Subject:  u.Username,
		Role:     u.Role,
		UserID:   u.ID,
		ReaderID: u.ReaderID,
	})
	if err != nil {
		return model.TokenResponse{}, errors.Wrap(err, "issue token")
	}
	return model.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		Role:        u.Role,
		Username:    u.Username,
		ReaderID:    u.ReaderID,
	}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}
	return string(hash), nil
}
