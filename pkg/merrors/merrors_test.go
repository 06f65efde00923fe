package merrors

import (
	"testing"

	"github.com/observatorium/catalogctl/pkg/testutil"
	"github.com/pkg/errors"
)

func TestError(t *testing.T) {
	es := New()
	testutil.Ok(t, es.Err())

	es.Add(nil)
	es.Addf(nil, "ignored")
	testutil.Equals(t, 0, es.Len())

	es.Add(errors.New("a"))
	testutil.Equals(t, "a", es.Err().Error())

	es.Addf(errors.New("b"), "artifact %s", "P.ispac")
	testutil.Equals(t, "2 errors: a; artifact P.ispac: b", es.Err().Error())

	other := New()
	other.Add(errors.New("c"))
	other.Add(errors.New("d"))
	es.Addf(other.Err(), "batch")
	testutil.Equals(t, 4, es.Len())
	testutil.Equals(t, "4 errors: a; artifact P.ispac: b; batch: c; batch: d", es.Err().Error())
}
