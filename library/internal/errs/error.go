package errs

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindConflict
	KindConsistency
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	case KindConsistency:
		return "consistency"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

const (
	CodeValidation        = "VALIDATION"
	CodeReaderRequired    = "READER_REQUIRED"
	CodeReaderNotFound    = "READER_NOT_FOUND"
	CodeReaderBlocked     = "READER_BLOCKED"
	CodeBorrowLimit       = "BORROW_LIMIT_REACHED"
	CodeUnpaidFines       = "UNPAID_FINES"
	CodeCopyNotFound      = "COPY_NOT_FOUND"
	CodeCopyUnavailable   = "COPY_UNAVAILABLE"
	CodeCopyBorrowed      = "COPY_BORROWED"
	CodeBookNotFound      = "BOOK_NOT_FOUND"
	CodeBookUnavailable   = "BOOK_UNAVAILABLE"
	CodeBookHasCopies     = "BOOK_HAS_COPIES"
	CodeBorrowNotFound    = "BORROW_NOT_FOUND"
	CodeBorrowClosed      = "BORROW_CLOSED"
	CodeNotOwner          = "NOT_OWNER"
	CodeFineNotFound      = "FINE_NOT_FOUND"
	CodeFineSettled       = "FINE_SETTLED"
	CodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	CodeCategoryInUse     = "CATEGORY_IN_USE"
	CodePublisherNotFound = "PUBLISHER_NOT_FOUND"
	CodeReaderHasBorrows  = "READER_HAS_BORROWS"
	CodeDuplicate         = "DUPLICATE"
	CodeReferenced        = "REFERENCED"
	CodeBadCredentials    = "BAD_CREDENTIALS"
	CodeAccountDisabled   = "ACCOUNT_DISABLED"
	CodeUserTypeMismatch  = "USER_TYPE_MISMATCH"
	CodeReaderNotBound    = "READER_NOT_BOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeInconsistentData  = "INCONSISTENT_DATA"
)

// Error is a domain failure reported to the caller with a kind and a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code, msg string) *Error  { return New(KindValidation, code, msg) }
func NotFound(code, msg string) *Error    { return New(KindNotFound, code, msg) }
func Permission(code, msg string) *Error  { return New(KindPermission, code, msg) }
func Conflict(code, msg string) *Error    { return New(KindConflict, code, msg) }
func Consistency(code, msg string) *Error { return New(KindConsistency, code, msg) }

func Unauthenticated(code, msg string) *Error {
	return New(KindUnauthenticated, code, msg)
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Response is the JSON body of a domain error.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
