package caml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldRef_NameOnly(t *testing.T) {
	names := []string{"testField", "Title", "_x0020_Owner", "a", "Field With Spaces"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			f, err := NewFieldRef(name)
			require.NoError(t, err)
			assert.Equal(t, "<FieldRef Name='"+name+"'/>", f.Render())
			assert.Equal(t, name, f.Name())
		})
	}
}

func TestFieldRef_EmptyNameRejected(t *testing.T) {
	_, err := NewFieldRef("")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	var ae *ArgumentError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "name", ae.Param)

	assert.Panics(t, func() { Field("") })
}

func TestFieldRef_AttributeOrder(t *testing.T) {
	f, err := NewFieldRef("Total",
		WithTextOnly(true),
		WithLookupID(false),
		WithExplicit(true),
		Descending(),
		WithFunction(FuncSum),
		WithShowField("Title"),
		WithRefType("Id"),
		WithList("Orders"),
		WithKey("Primary"),
		WithID("{1234}"),
		WithFormat("Currency"),
		WithDisplayName("Order Total"),
		WithCreateURL("/new"),
		WithAlias("t"),
	)
	require.NoError(t, err)

	expected := "<FieldRef Alias='t' CreateURL='/new' DisplayName='Order Total' Format='Currency'" +
		" ID='{1234}' Key='Primary' List='Orders' Name='Total' RefType='Id' ShowField='Title'" +
		" Type='SUM' Ascending='FALSE' Explicit='TRUE' LookupId='FALSE' TextOnly='TRUE'/>"
	assert.Equal(t, expected, f.Render())
}

func TestFieldRef_BooleanAttributes(t *testing.T) {
	assert.Equal(t, "<FieldRef Name='Created' Ascending='TRUE'/>", Field("Created", WithAscending(true)).Render())
	assert.Equal(t, "<FieldRef Name='Created' Ascending='FALSE'/>", Field("Created", Descending()).Render())
	assert.Equal(t, "<FieldRef Name='Author' LookupId='TRUE'/>", Field("Author", WithLookupID(true)).Render())
}

func TestFieldRef_EmptyStringModifiersOmitted(t *testing.T) {
	f := Field("Title", WithAlias(""), WithDisplayName(""))
	assert.Equal(t, "<FieldRef Name='Title'/>", f.Render())
}

func TestFieldRef_FunctionAbbreviations(t *testing.T) {
	testCases := []struct {
		fn   FieldRefFunction
		abbr string
	}{
		{FuncAverage, "AVG"},
		{FuncCount, "COUNT"},
		{FuncMaximum, "MAX"},
		{FuncMinimum, "MIN"},
		{FuncSum, "SUM"},
		{FuncStandardDeviation, "STDEV"},
		{FuncVariance, "VAR"},
	}

	for _, tc := range testCases {
		t.Run(tc.abbr, func(t *testing.T) {
			f := Field("Amount", WithFunction(tc.fn))
			assert.Equal(t, "<FieldRef Name='Amount' Type='"+tc.abbr+"'/>", f.Render())

			parsed, err := ParseFieldRefFunction(tc.abbr)
			require.NoError(t, err)
			assert.Equal(t, tc.fn, parsed)
		})
	}
}

func TestFieldRef_UnknownFunctionRejected(t *testing.T) {
	_, err := NewFieldRef("Amount", WithFunction(FieldRefFunction(42)))
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = ParseFieldRefFunction("MEDIAN")
	assert.True(t, IsInvalidArgument(err))
}

func TestFieldRef_NoEscaping(t *testing.T) {
	f := Field("O'Brien")
	assert.Equal(t, "<FieldRef Name='O'Brien'/>", f.Render())
}

func TestFieldRef_ZeroValue(t *testing.T) {
	var f FieldRef
	assert.True(t, f.IsZero())
	assert.False(t, Field("x").IsZero())
}
