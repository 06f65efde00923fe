// Package merrors accumulates the independent failures of a batch.
package merrors

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// Error type implements the error interface, and contains the
// Errors used to construct it.
type Error []error

func New() *Error { return &Error{} }

// Error returns a concatenated string of the contained errors
func (es Error) Error() string {
	var buf bytes.Buffer

	if len(es) > 1 {
		fmt.Fprintf(&buf, "%d errors: ", len(es))
	}

	for i, err := range es {
		if i != 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(err.Error())
	}

	return buf.String()
}

// Add adds the error to the error list if it is not nil.
func (es *Error) Add(err error) {
	if err == nil {
		return
	}
	if merr, ok := err.(Error); ok {
		*es = append(*es, merr...)
	} else {
		*es = append(*es, err)
	}
}

// Addf adds err annotated with the formatted message, e.g. the item of the batch it
// belongs to. Nil errors are ignored.
func (es *Error) Addf(err error, format string, args ...interface{}) {
	if err == nil {
		return
	}
	if merr, ok := err.(Error); ok {
		for _, e := range merr {
			es.Add(errors.Wrapf(e, format, args...))
		}
		return
	}
	es.Add(errors.Wrapf(err, format, args...))
}

// Len returns the number of collected errors.
func (es Error) Len() int { return len(es) }

// Err returns the error list as an error or nil if it is empty.
func (es Error) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}
