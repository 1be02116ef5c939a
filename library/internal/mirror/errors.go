package mirror

import "github.com/pkg/errors"

var (
	errEmptyDocument = errors.New("upsert event without document")
	errUnknownOp     = errors.New("unknown mirror op")
)
