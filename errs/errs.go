// Package errs defines the sentinel errors returned by the decoder and
// encoder packages, one per format.Status error code. Callers match them
// with errors.Is; call sites that need to attach context wrap the sentinel
// with fmt.Errorf("%w: ...", errs.ErrXxx, ...).
package errs

import (
	"errors"

	"github.com/kemu-studio/bjson/format"
)

var (
	ErrCanceledByClient           = errors.New(format.StatusCanceledByClient.String())
	ErrNotImplemented             = errors.New(format.StatusErrNotImplemented.String())
	ErrInvalidDataType            = errors.New(format.StatusErrInvalidDataType.String())
	ErrUnexpectedEndOfStream      = errors.New(format.StatusErrUnexpectedEndOfStream.String())
	ErrUnhandledDecodeStage       = errors.New(format.StatusErrUnhandledDecodeStage.String())
	ErrTooManyNestedContainers    = errors.New(format.StatusErrTooManyNestedContainers.String())
	ErrOutOfMemory                = errors.New(format.StatusErrOutOfMemory.String())
	ErrInvalidObjectKey           = errors.New(format.StatusErrInvalidObjectKey.String())
	ErrUnclosedMap                = errors.New(format.StatusErrUnclosedMap.String())
	ErrUnclosedArray              = errors.New(format.StatusErrUnclosedArray.String())
	ErrKeyWithoutValue            = errors.New(format.StatusErrKeyWithoutValue.String())
	ErrMoreDataThanDeclared       = errors.New(format.StatusErrMoreDataThanDeclared.String())
	ErrEmptyInputPassed           = errors.New(format.StatusErrEmptyInputPassed.String())
	ErrCloseMapButArrayOpen       = errors.New(format.StatusErrCloseMapButArrayOpen.String())
	ErrCloseArrayButMapOpen       = errors.New(format.StatusErrCloseArrayButMapOpen.String())
	ErrCloseMapAtRootLevel        = errors.New(format.StatusErrCloseMapAtRootLevel.String())
	ErrCloseArrayAtRootLevel      = errors.New(format.StatusErrCloseArrayAtRootLevel.String())
	ErrNegativeSize               = errors.New(format.StatusErrNegativeSize.String())
)

// statusErrors maps every non-ok format.Status to its sentinel error.
var statusErrors = map[format.Status]error{
	format.StatusCanceledByClient:           ErrCanceledByClient,
	format.StatusErrNotImplemented:          ErrNotImplemented,
	format.StatusErrInvalidDataType:         ErrInvalidDataType,
	format.StatusErrUnexpectedEndOfStream:   ErrUnexpectedEndOfStream,
	format.StatusErrUnhandledDecodeStage:    ErrUnhandledDecodeStage,
	format.StatusErrTooManyNestedContainers: ErrTooManyNestedContainers,
	format.StatusErrOutOfMemory:             ErrOutOfMemory,
	format.StatusErrInvalidObjectKey:        ErrInvalidObjectKey,
	format.StatusErrUnclosedMap:             ErrUnclosedMap,
	format.StatusErrUnclosedArray:           ErrUnclosedArray,
	format.StatusErrKeyWithoutValue:         ErrKeyWithoutValue,
	format.StatusErrMoreDataThanDeclared:    ErrMoreDataThanDeclared,
	format.StatusErrEmptyInputPassed:        ErrEmptyInputPassed,
	format.StatusErrCloseMapButArrayOpen:    ErrCloseMapButArrayOpen,
	format.StatusErrCloseArrayButMapOpen:    ErrCloseArrayButMapOpen,
	format.StatusErrCloseMapAtRootLevel:     ErrCloseMapAtRootLevel,
	format.StatusErrCloseArrayAtRootLevel:   ErrCloseArrayAtRootLevel,
	format.StatusErrNegativeSize:            ErrNegativeSize,
}

// errStatus is the reverse of statusErrors, keyed by the sentinel identity.
var errStatus = func() map[error]format.Status {
	m := make(map[error]format.Status, len(statusErrors))
	for status, err := range statusErrors {
		m[err] = status
	}
	return m
}()

// FromStatus returns the sentinel error for status, or nil for format.StatusOK.
func FromStatus(status format.Status) error {
	if status == format.StatusOK {
		return nil
	}
	if err, ok := statusErrors[status]; ok {
		return err
	}
	return errors.New(status.String())
}

// ToStatus returns the format.Status a sentinel error (or a wrapper of one)
// corresponds to. Returns format.StatusOK if err is nil, and
// format.StatusErrNotImplemented if err doesn't wrap a known sentinel.
func ToStatus(err error) format.Status {
	if err == nil {
		return format.StatusOK
	}
	for sentinel, status := range errStatus {
		if errors.Is(err, sentinel) {
			return status
		}
	}
	return format.StatusErrNotImplemented
}
