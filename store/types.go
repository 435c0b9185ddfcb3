package store

import (
	"github.com/pkg/errors"
)

// RecordKind is the type of chain record a filter targets.
type RecordKind uint8

const (
	KindNil RecordKind = iota
	KindHeader
	KindTransaction
	KindReceipt
	KindWithdrawal
)

func (k RecordKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindTransaction:
		return "tx"
	case KindReceipt:
		return "rcpt"
	case KindWithdrawal:
		return "wd"
	}

	return "nil"
}

var (
	// custom errors
	ErrNotFound                = errors.New("not found")
	ErrUnsupported             = errors.New("not supported")
	ErrInvalidFilter           = errors.New("invalid filter")
	ErrUnexpectedDestType      = errors.New("unexpected destination type")
	ErrContinousBlockRequired  = errors.New("continous block required")
	ErrInconsistentBlockRecord = errors.New("inconsistent block record")
)

// IsNotFound checks if the error is caused by missing data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
