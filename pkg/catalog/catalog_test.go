package catalog

import (
	"testing"
	"time"

	"github.com/observatorium/catalogctl/pkg/testutil"
)

func TestCoerce(t *testing.T) {
	for _, tcase := range []struct {
		typ      DataType
		raw      string
		expected string
	}{
		{typ: String, raw: " keep spaces ", expected: " keep spaces "},
		{typ: Char, raw: "x", expected: "x"},
		{typ: Boolean, raw: "True", expected: "true"},
		{typ: Boolean, raw: " FALSE ", expected: "false"},
		{typ: SByte, raw: "-128", expected: "-128"},
		{typ: Byte, raw: "255", expected: "255"},
		{typ: Int16, raw: " 42 ", expected: "42"},
		{typ: Int32, raw: "-2147483648", expected: "-2147483648"},
		{typ: UInt32, raw: "4294967295", expected: "4294967295"},
		{typ: Int64, raw: "9223372036854775807", expected: "9223372036854775807"},
		{typ: UInt64, raw: "18446744073709551615", expected: "18446744073709551615"},
		{typ: Single, raw: "1.5", expected: "1.5"},
		{typ: Double, raw: "2.25e3", expected: "2250"},
		{typ: Decimal, raw: "12345678901234567890.123", expected: "12345678901234567890.123"},
		{typ: DateTime, raw: "2020-01-31", expected: "2020-01-31T00:00:00Z"},
		{typ: DateTime, raw: "2020-01-31 13:45:00", expected: "2020-01-31T13:45:00Z"},
	} {
		t.Run(tcase.typ.String()+"/"+tcase.raw, func(t *testing.T) {
			v, err := Coerce(tcase.typ, tcase.raw)
			testutil.Ok(t, err)
			testutil.Equals(t, tcase.typ, v.Type())
			testutil.Equals(t, tcase.expected, v.String())
		})
	}
}

func TestCoerceTypedValues(t *testing.T) {
	v, err := Coerce(Boolean, "true")
	testutil.Ok(t, err)
	testutil.Equals(t, true, v.Interface())

	v, err = Coerce(Int32, "7")
	testutil.Ok(t, err)
	testutil.Equals(t, int64(7), v.Interface())

	v, err = Coerce(DateTime, "2020-01-31T10:00:00+02:00")
	testutil.Ok(t, err)
	testutil.Assert(t, v.Interface().(time.Time).Equal(time.Date(2020, 1, 31, 8, 0, 0, 0, time.UTC)), "unexpected time %v", v.Interface())
}

func TestCoerceInvalid(t *testing.T) {
	for _, tcase := range []struct {
		typ DataType
		raw string
	}{
		{typ: DataType(0), raw: "x"},
		{typ: DataType(17), raw: "x"},
		{typ: Char, raw: "ab"},
		{typ: Boolean, raw: "maybe"},
		{typ: Boolean, raw: "1"},
		{typ: Boolean, raw: "t"},
		{typ: SByte, raw: "128"},
		{typ: Byte, raw: "-1"},
		{typ: Int32, raw: "1.5"},
		{typ: Double, raw: "abc"},
		{typ: Decimal, raw: "1,5"},
		{typ: DateTime, raw: "yesterday"},
	} {
		_, err := Coerce(tcase.typ, tcase.raw)
		testutil.NotOk(t, err, "%v %q", tcase.typ, tcase.raw)
		testutil.Equals(t, KindConfigFormat, KindOf(err))
	}
}

func TestProjectReferences(t *testing.T) {
	p := &Project{Name: "P"}
	testutil.Assert(t, p.Reference("P", "F") == nil, "no reference expected")

	testutil.Ok(t, p.AddReference("P", "F"))
	testutil.Ok(t, p.AddReference("P", "Other"))
	err := p.AddReference("P", "F")
	testutil.NotOk(t, err)
	testutil.Equals(t, KindConflict, KindOf(err))

	p.RemoveReference("P", "F")
	testutil.Equals(t, []Reference{{EnvironmentName: "P", FolderName: "Other"}}, p.References)
	testutil.Ok(t, p.AddReference("P", "F"))
	testutil.Equals(t, 2, len(p.References))
}

func TestEnvironmentAddVariable(t *testing.T) {
	env := &Environment{Name: "E"}
	v, err := Coerce(Int16, "12")
	testutil.Ok(t, err)

	testutil.Ok(t, env.AddVariable("A", v, true, "desc"))
	testutil.Equals(t, &Variable{Name: "A", DataType: Int16, Value: "12", Sensitive: true, Description: "desc"}, env.Variable("A"))

	err = env.AddVariable("A", v, false, "")
	testutil.NotOk(t, err)
	testutil.Equals(t, KindConflict, KindOf(err))
}

func TestKindOf(t *testing.T) {
	testutil.Equals(t, KindUnknown, KindOf(nil))
	err := Errorf(KindNotFound, "folder %q", "F")
	testutil.Equals(t, `folder "F"`, err.Error())
	testutil.Assert(t, IsKind(err, KindNotFound), "expected not found")
	testutil.Assert(t, !IsKind(err, KindDeployment), "unexpected deployment kind")
	testutil.Equals(t, nil, Wrapf(nil, KindConnection, "x"))
}
