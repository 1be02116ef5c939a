package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CopyStatus string

const (
	CopyAvailable CopyStatus = "available"
	CopyBorrowed  CopyStatus = "borrowed"
	CopyLost      CopyStatus = "lost"
	CopyRepair    CopyStatus = "repair"
)

func (s CopyStatus) Valid() bool {
	switch s {
	case CopyAvailable, CopyBorrowed, CopyLost, CopyRepair:
		return true
	}
	return false
}

type Publisher struct {
	ID        int64     `json:"publisher_id" db:"publisher_id"`
	Name      string    `json:"name" db:"name"`
	Contact   *string   `json:"contact" db:"contact"`
	Phone     *string   `json:"phone" db:"phone"`
	Address   *string   `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type PublisherRequest struct {
	Name    string  `json:"name" validate:"required,max=120"`
	Contact *string `json:"contact" validate:"omitempty,max=120"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

type Book struct {
	ID              int64            `json:"book_id" db:"book_id"`
	ISBN            *string          `json:"isbn" db:"isbn"`
	Title           string           `json:"title" db:"title"`
	Subtitle        *string          `json:"subtitle" db:"subtitle"`
	PublisherID     *int64           `json:"publisher_id" db:"publisher_id"`
	PublisherName   *string          `json:"publisher_name" db:"publisher_name"`
	PublishDate     *string          `json:"publish_date" db:"publish_date"`
	Category        *string          `json:"category" db:"category"`
	Language        *string          `json:"language" db:"language"`
	Price           *decimal.Decimal `json:"price" db:"price"`
	Summary         *string          `json:"summary" db:"summary"`
	TotalCopies     int              `json:"total_copies" db:"total_copies"`
	AvailableCopies int              `json:"available_copies" db:"available_copies"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// BookRequest carries the client-writable book fields; counters are derived from copies.
type BookRequest struct {
	ISBN        *string          `json:"isbn" validate:"omitempty,max=20"`
	Title       string           `json:"title" validate:"required,max=200"`
	Subtitle    *string          `json:"subtitle" validate:"omitempty,max=200"`
	PublisherID *int64           `json:"publisher_id" validate:"omitempty,gt=0"`
	PublishDate *string          `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Category    *string          `json:"category" validate:"omitempty,max=80"`
	Language    *string          `json:"language" validate:"omitempty,max=30"`
	Price       *decimal.Decimal `json:"price"`
	Summary     *string          `json:"summary"`
}

type BookCopy struct {
	ID        int64      `json:"copy_id" db:"copy_id"`
	BookID    int64      `json:"book_id" db:"book_id"`
	Barcode   string     `json:"barcode" db:"barcode"`
	Location  *string    `json:"location" db:"location"`
	Status    CopyStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type CopyRequest struct {
	BookID   int64      `json:"book_id" validate:"required,gt=0"`
	Barcode  string     `json:"barcode" validate:"required,max=50"`
	Location *string    `json:"location" validate:"omitempty,max=80"`
	Status   CopyStatus `json:"status" validate:"omitempty,oneof=available lost repair"`
}
