// Package errors defines the BMFS error taxonomy and the negative
// error-code discipline used at the external boundary.
package errors

import "fmt"

// Code is one of the canonical negative error codes BMFS returns.
type Code int

const (
	CodeFault    = Code(-1)
	CodeInvalid  = Code(-2)
	CodeNotFound = Code(-3)
	CodeIsDir    = Code(-4)
	CodeExists   = Code(-5)
	CodeNotDir   = Code(-6)
	CodeNoSpace  = Code(-7)
	CodeNoSys    = Code(-8)
	CodeIo       = Code(-9)
	CodePerm     = Code(-10)
	CodeNotEmpty = Code(-11)
	CodeNoMem    = Code(-12)
)

// String returns a short human-readable name for the code, e.g. "ENOSPC".
func (c Code) String() string {
	switch c {
	case CodeFault:
		return "EFAULT"
	case CodeInvalid:
		return "EINVAL"
	case CodeNotFound:
		return "ENOENT"
	case CodeIsDir:
		return "EISDIR"
	case CodeExists:
		return "EEXIST"
	case CodeNotDir:
		return "ENOTDIR"
	case CodeNoSpace:
		return "ENOSPC"
	case CodeNoSys:
		return "ENOSYS"
	case CodeIo:
		return "EIO"
	case CodePerm:
		return "EPERM"
	case CodeNotEmpty:
		return "ENOTEMPTY"
	case CodeNoMem:
		return "ENOMEM"
	default:
		return "EUNKNOWN"
	}
}

// DriverError is the interface every BMFS operation returns in place of a
// plain `error`. It carries a stable Code() in addition to a message, and
// supports chaining via WithMessage/WrapError.
type DriverError interface {
	error
	Code() Code
	WithMessage(message string) DriverError
	WrapError(err error) DriverError
	Unwrap() error
}

// BMFSError is a sentinel error type: a fixed code paired with a default
// message. The package-level Err* values below are the canonical instances.
type BMFSError struct {
	code    Code
	message string
}

func (e BMFSError) Error() string {
	return e.message
}

func (e BMFSError) Code() Code {
	return e.code
}

func (e BMFSError) WithMessage(message string) DriverError {
	return &wrappedError{
		code:    e.code,
		message: fmt.Sprintf("%s: %s", e.message, message),
		cause:   e,
	}
}

func (e BMFSError) WrapError(err error) DriverError {
	return &wrappedError{
		code:    e.code,
		message: fmt.Sprintf("%s: %s", e.message, err.Error()),
		cause:   err,
	}
}

func (e BMFSError) Unwrap() error {
	return nil
}

// Is lets errors.Is(err, errors.ErrNotFound) work across WithMessage/WrapError
// chains, by comparing codes rather than exact message text.
func (e BMFSError) Is(target error) bool {
	other, ok := target.(interface{ Code() Code })
	if !ok {
		return false
	}
	return other.Code() == e.code
}

// wrappedError is produced by WithMessage/WrapError and keeps the original
// cause reachable via errors.Unwrap/errors.Is.
type wrappedError struct {
	code    Code
	message string
	cause   error
}

func (e *wrappedError) Error() string {
	return e.message
}

func (e *wrappedError) Code() Code {
	return e.code
}

func (e *wrappedError) WithMessage(message string) DriverError {
	return &wrappedError{
		code:    e.code,
		message: fmt.Sprintf("%s: %s", e.message, message),
		cause:   e,
	}
}

func (e *wrappedError) WrapError(err error) DriverError {
	return &wrappedError{
		code:    e.code,
		message: fmt.Sprintf("%s: %s", e.message, err.Error()),
		cause:   err,
	}
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

func (e *wrappedError) Is(target error) bool {
	other, ok := target.(interface{ Code() Code })
	if !ok {
		return false
	}
	return other.Code() == e.code
}

// The canonical error values, one per Code.
var (
	ErrFault    = BMFSError{code: CodeFault, message: "required argument missing or structure uninitialized"}
	ErrInvalid  = BMFSError{code: CodeInvalid, message: "invalid argument"}
	ErrNotFound = BMFSError{code: CodeNotFound, message: "no such file or directory"}
	ErrIsDir    = BMFSError{code: CodeIsDir, message: "is a directory"}
	ErrExists   = BMFSError{code: CodeExists, message: "file exists"}
	ErrNotDir   = BMFSError{code: CodeNotDir, message: "not a directory"}
	ErrNoSpace  = BMFSError{code: CodeNoSpace, message: "no space left on device"}
	ErrNoSys    = BMFSError{code: CodeNoSys, message: "function not implemented"}
	ErrIo       = BMFSError{code: CodeIo, message: "input/output error"}
	ErrPerm     = BMFSError{code: CodePerm, message: "operation not permitted"}
	ErrNotEmpty = BMFSError{code: CodeNotEmpty, message: "directory not empty"}
	ErrNoMem    = BMFSError{code: CodeNoMem, message: "out of memory"}
)

var allErrors = []BMFSError{
	ErrFault, ErrInvalid, ErrNotFound, ErrIsDir, ErrExists, ErrNotDir,
	ErrNoSpace, ErrNoSys, ErrIo, ErrPerm, ErrNotEmpty, ErrNoMem,
}

// New wraps a bare Code in a DriverError using the code's default message.
func New(code Code) DriverError {
	for _, e := range allErrors {
		if e.code == code {
			return e
		}
	}
	return BMFSError{code: code, message: code.String()}
}
