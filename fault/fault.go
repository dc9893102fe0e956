package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide between retrying,
// fixing their input, or giving up.
type Kind int

const (
	Unknown Kind = iota
	Validation
	NotFound
	Conflict
	AuthenticationFailed
	TemporarilyUnavailable
	StoreUnavailable
	DimensionMismatch
	BackendError
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case AuthenticationFailed:
		return "authentication failed"
	case TemporarilyUnavailable:
		return "temporarily unavailable"
	case StoreUnavailable:
		return "store unavailable"
	case DimensionMismatch:
		return "dimension mismatch"
	case BackendError:
		return "backend error"
	default:
		return "unknown"
	}
}

// Retryable reports whether a caller may reasonably retry after this kind
// of failure. The core itself never retries.
func (k Kind) Retryable() bool {
	return k == TemporarilyUnavailable || k == StoreUnavailable
}

type Fault struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func New(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first Fault in err's chain,
// or Unknown if there is none.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return Unknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
