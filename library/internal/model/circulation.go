package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BorrowStatus string

const (
	BorrowBorrowed        BorrowStatus = "borrowed"
	BorrowReturned        BorrowStatus = "returned"
	BorrowOverdueReturned BorrowStatus = "overdue_returned"
	BorrowDamagedReturned BorrowStatus = "damaged_returned"
	BorrowLost            BorrowStatus = "lost"
)

func (s BorrowStatus) Valid() bool {
	switch s {
	case BorrowBorrowed, BorrowReturned, BorrowOverdueReturned, BorrowDamagedReturned, BorrowLost:
		return true
	}
	return false
}

type FineStatus string

const (
	FineNone   FineStatus = "none"
	FineUnpaid FineStatus = "unpaid"
	FinePaid   FineStatus = "paid"
)

type FineReason string

const (
	ReasonOverdue FineReason = "overdue"
	ReasonDamage  FineReason = "damage"
	ReasonLost    FineReason = "lost"
	ReasonOther   FineReason = "other"
)

type PayMethod string

const (
	PayCash   PayMethod = "cash"
	PayWechat PayMethod = "wechat"
	PayAlipay PayMethod = "alipay"
	PayCard   PayMethod = "card"
	PayOther  PayMethod = "other"
)

// NormalizePayMethod maps unknown methods to "other"; an empty method means cash.
func NormalizePayMethod(m string) PayMethod {
	switch PayMethod(m) {
	case PayCash, PayWechat, PayAlipay, PayCard, PayOther:
		return PayMethod(m)
	case "":
		return PayCash
	}
	return PayOther
}

const DefaultDamageDesc = "damaged"

// DamageFine is the flat fine for a copy returned damaged.
var DamageFine = decimal.NewFromInt(10)

type BorrowRecord struct {
	ID          int64           `json:"borrow_id" db:"borrow_id"`
	ReaderID    int64           `json:"reader_id" db:"reader_id"`
	CopyID      int64           `json:"copy_id" db:"copy_id"`
	BookID      int64           `json:"book_id" db:"book_id"`
	BorrowTime  time.Time       `json:"borrow_time" db:"borrow_time"`
	DueTime     time.Time       `json:"due_time" db:"due_time"`
	ReturnTime  *time.Time      `json:"return_time" db:"return_time"`
	Status      BorrowStatus    `json:"status" db:"status"`
	OverdueDays int             `json:"overdue_days" db:"overdue_days"`
	IsDamaged   bool            `json:"is_damaged" db:"is_damaged"`
	DamageDesc  *string         `json:"damage_desc" db:"damage_desc"`
	FineAmount  decimal.Decimal `json:"fine_amount" db:"fine_amount"`
	FineStatus  FineStatus      `json:"fine_status" db:"fine_status"`
}

type FineRecord struct {
	ID        int64           `json:"fine_id" db:"fine_id"`
	ReaderID  int64           `json:"reader_id" db:"reader_id"`
	BorrowID  *int64          `json:"borrow_id" db:"borrow_id"`
	Reason    FineReason      `json:"reason" db:"reason"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Status    FineStatus      `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	PaidAt    *time.Time      `json:"paid_at" db:"paid_at"`
}

type PaymentRecord struct {
	ID        int64           `json:"pay_id" db:"pay_id"`
	ReceiptNo string          `json:"receipt_no" db:"receipt_no"`
	ReaderID  int64           `json:"reader_id" db:"reader_id"`
	FineID    int64           `json:"fine_id" db:"fine_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Method    PayMethod       `json:"method" db:"method"`
	PaidAt    time.Time       `json:"paid_at" db:"paid_at"`
}

type BorrowRequest struct {
	CopyID   int64  `json:"copy_id" validate:"required,gt=0"`
	ReaderID *int64 `json:"reader_id" validate:"omitempty,gt=0"`
}

type ReturnRequest struct {
	BorrowID   int64   `json:"borrow_id" validate:"required,gt=0"`
	IsDamaged  bool    `json:"is_damaged"`
	DamageDesc *string `json:"damage_desc" validate:"omitempty,max=255"`
}

type PayRequest struct {
	Method string `json:"method"`
}

type PayResponse struct {
	OK      bool          `json:"ok"`
	Payment PaymentRecord `json:"payment"`
}

// ListFilter narrows borrow/fine/payment listings. ReaderID is forced for reader callers.
type ListFilter struct {
	ReaderID *int64
	Status   string
}
