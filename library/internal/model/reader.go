package model

import (
	"time"

	"github.com/Astemirdum/library-circulation/pkg/auth"
	"github.com/shopspring/decimal"
)

type ReaderStatus string

const (
	ReaderActive  ReaderStatus = "active"
	ReaderBlocked ReaderStatus = "blocked"
)

type ReaderCategory struct {
	ID             int64           `json:"category_id" db:"category_id"`
	Name           string          `json:"category_name" db:"category_name"`
	MaxBorrowCount int             `json:"max_borrow_count" db:"max_borrow_count"`
	MaxBorrowDays  int             `json:"max_borrow_days" db:"max_borrow_days"`
	FinePerDay     decimal.Decimal `json:"fine_per_day" db:"fine_per_day"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

type CategoryRequest struct {
	Name           string          `json:"category_name" validate:"required,max=50"`
	MaxBorrowCount int             `json:"max_borrow_count" validate:"required,gte=1"`
	MaxBorrowDays  int             `json:"max_borrow_days" validate:"required,gte=1"`
	FinePerDay     decimal.Decimal `json:"fine_per_day"`
}

type Reader struct {
	ID               int64           `json:"reader_id" db:"reader_id"`
	CategoryID       int64           `json:"category_id" db:"category_id"`
	ReaderNo         string          `json:"reader_no" db:"reader_no"`
	Name             string          `json:"name" db:"name"`
	Gender           string          `json:"gender" db:"gender"`
	Phone            *string         `json:"phone" db:"phone"`
	Email            *string         `json:"email" db:"email"`
	Address          *string         `json:"address" db:"address"`
	Status           ReaderStatus    `json:"status" db:"status"`
	BorrowedCount    int             `json:"borrowed_count" db:"borrowed_count"`
	FineBalance      decimal.Decimal `json:"fine_balance" db:"fine_balance"`
	FineTotalHistory decimal.Decimal `json:"fine_total_history" db:"fine_total_history"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// ReaderUpdate is a partial update; nil fields are left untouched.
type ReaderUpdate struct {
	CategoryID *int64        `json:"category_id" validate:"omitempty,gt=0"`
	Name       *string       `json:"name" validate:"omitempty,min=1,max=50"`
	Gender     *string       `json:"gender" validate:"omitempty,oneof=M F U"`
	Phone      *string       `json:"phone" validate:"omitempty,max=30"`
	Email      *string       `json:"email" validate:"omitempty,email,max=120"`
	Address    *string       `json:"address" validate:"omitempty,max=255"`
	Status     *ReaderStatus `json:"status" validate:"omitempty,oneof=active blocked"`
}

func (u ReaderUpdate) Empty() bool {
	return u.CategoryID == nil && u.Name == nil && u.Gender == nil && u.Phone == nil &&
		u.Email == nil && u.Address == nil && u.Status == nil
}

const UserEnabled = 1

type User struct {
	ID           int64     `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         auth.Role `json:"role" db:"role"`
	ReaderID     *int64    `json:"reader_id" db:"reader_id"`
	Status       int       `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type UserType string

const (
	UserTypeReader UserType = "reader"
	UserTypeStaff  UserType = "staff"
)

type LoginRequest struct {
	Username string   `json:"username" validate:"required"`
	Password string   `json:"password" validate:"required"`
	UserType UserType `json:"user_type" validate:"required,oneof=reader staff"`
}

type RegisterReaderRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	ReaderNo   string `json:"reader_no" validate:"required,max=30"`
	Name       string `json:"name" validate:"required,max=50"`
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
}

type CreateUserRequest struct {
	Username string    `json:"username" validate:"required,min=3,max=50"`
	Password string    `json:"password" validate:"required,min=6,max=72"`
	Role     auth.Role `json:"role" validate:"required,oneof=admin librarian"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Role        auth.Role `json:"role"`
	Username    string    `json:"username"`
	ReaderID    *int64    `json:"reader_id"`
}
