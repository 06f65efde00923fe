package catalog

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the expected failures of a deployment.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConnection means the catalog session could not be established. Fatal for the whole run.
	KindConnection
	// KindNotFound means a catalog object does not exist.
	KindNotFound
	// KindDeployment means the server rejected a project deployment.
	KindDeployment
	// KindUnknownParameter means a declared parameter has no matching project parameter.
	KindUnknownParameter
	// KindConfigFormat means a parameter file is missing or malformed.
	KindConfigFormat
	// KindConflict means an object with the same identity already exists.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindNotFound:
		return "not found"
	case KindDeployment:
		return "deployment"
	case KindUnknownParameter:
		return "unknown parameter"
	case KindConfigFormat:
		return "config format"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is an expected failure tagged with its Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf returns a new error of the given kind.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// Wrapf tags err with kind. It returns nil if err is nil.
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err})
}

// KindOf returns the kind of the outermost tagged error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is tagged with kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
