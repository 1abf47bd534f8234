package caml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperator_SimpleOperators(t *testing.T) {
	testCases := []struct {
		name  string
		build func(FieldRef) (*ComparisonOperator, error)
		tag   string
	}{
		{"is null", IsNull, "IsNull"},
		{"is not null", IsNotNull, "IsNotNull"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			op, err := tc.build(Field("testField"))
			require.NoError(t, err)

			out := op.Render()
			assert.Equal(t, "<"+tc.tag+"><FieldRef Name='testField'/></"+tc.tag+">", out)

			root := parseXML(t, out)
			assert.Equal(t, tc.tag, root.XMLName.Local)
			require.Len(t, root.Children, 1)
			assert.Equal(t, "FieldRef", root.Children[0].XMLName.Local)
			name, ok := root.Children[0].attr("Name")
			require.True(t, ok)
			assert.Equal(t, "testField", name)
		})
	}
}

func TestOperator_ComplexTags(t *testing.T) {
	testCases := []struct {
		op  ComparisonOperatorType
		tag string
	}{
		{OpEqual, "Eq"},
		{OpNotEqual, "Neq"},
		{OpGreaterThan, "Gt"},
		{OpGreaterThanOrEqualTo, "Geq"},
		{OpLowerThan, "Lt"},
		{OpLowerThanOrEqualTo, "Leq"},
		{OpBeginsWith, "BeginsWith"},
		{OpContains, "Contains"},
		{OpDateRangesOverlap, "DateRangesOverlap"},
		{OpIncludes, "Includes"},
		{OpNotIncludes, "NotIncludes"},
	}

	for _, tc := range testCases {
		t.Run(tc.tag, func(t *testing.T) {
			op, err := Compare(tc.op, Field("Status"), Text("Active"))
			require.NoError(t, err)
			assert.Equal(t, tc.op, op.OperatorType())

			expected := "<" + tc.tag + "><FieldRef Name='Status'/><Value Type='Text'>Active</Value></" + tc.tag + ">"
			assert.Equal(t, expected, op.Render())

			literal, err := CompareLiteral(tc.op, Field("Status"), ValueTypeText, "Active")
			require.NoError(t, err)
			assert.Equal(t, expected, literal.Render())
		})
	}
}

func TestOperator_NamedConstructors(t *testing.T) {
	f := Field("Amount")
	v := Integer(10)

	testCases := []struct {
		name  string
		build func() (*ComparisonOperator, error)
		tag   string
	}{
		{"Equal", func() (*ComparisonOperator, error) { return Equal(f, v) }, "Eq"},
		{"NotEqualLiteral", func() (*ComparisonOperator, error) { return NotEqualLiteral(f, ValueTypeInteger, 10) }, "Neq"},
		{"GreaterThanLiteral", func() (*ComparisonOperator, error) { return GreaterThanLiteral(f, ValueTypeInteger, 10) }, "Gt"},
		{"GreaterThanOrEqualTo", func() (*ComparisonOperator, error) { return GreaterThanOrEqualTo(f, v) }, "Geq"},
		{"LowerThan", func() (*ComparisonOperator, error) { return LowerThan(f, v) }, "Lt"},
		{"LowerThanOrEqualToLiteral", func() (*ComparisonOperator, error) { return LowerThanOrEqualToLiteral(f, ValueTypeInteger, 10) }, "Leq"},
		{"BeginsWithLiteral", func() (*ComparisonOperator, error) { return BeginsWithLiteral(f, ValueTypeInteger, 10) }, "BeginsWith"},
		{"ContainsLiteral", func() (*ComparisonOperator, error) { return ContainsLiteral(f, ValueTypeInteger, 10) }, "Contains"},
		{"DateRangesOverlap", func() (*ComparisonOperator, error) { return DateRangesOverlap(f, v) }, "DateRangesOverlap"},
		{"IncludesLiteral", func() (*ComparisonOperator, error) { return IncludesLiteral(f, ValueTypeInteger, 10) }, "Includes"},
		{"NotIncludes", func() (*ComparisonOperator, error) { return NotIncludes(f, v) }, "NotIncludes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			op, err := tc.build()
			require.NoError(t, err)
			assert.Equal(t,
				"<"+tc.tag+"><FieldRef Name='Amount'/><Value Type='Integer'>10</Value></"+tc.tag+">",
				op.Render())
		})
	}
}

func TestOperator_ValidationErrors(t *testing.T) {
	t.Run("compare rejects non-value operator", func(t *testing.T) {
		for _, op := range []ComparisonOperatorType{OpIsNull, OpIsNotNull, OpIn, OpMembership, 0, 99} {
			_, err := Compare(op, Field("x"), Text("y"))
			assert.True(t, IsInvalidArgument(err), "operator %v", op)
		}
	})

	t.Run("zero field", func(t *testing.T) {
		_, err := IsNull(FieldRef{})
		assert.True(t, IsInvalidArgument(err))

		_, err = Equal(FieldRef{}, Text("y"))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("zero value", func(t *testing.T) {
		_, err := Equal(Field("x"), Value{})
		assert.True(t, IsInvalidArgument(err))

		_, err = In(Field("x"), Text("a"), Value{})
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("invalid overridden type", func(t *testing.T) {
		_, err := Equal(Field("x"), Text("y", WithType(ValueType(500))))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("nil literal", func(t *testing.T) {
		_, err := EqualLiteral(Field("x"), ValueTypeText, nil)
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("unknown membership", func(t *testing.T) {
		_, err := Membership(Field("x"), MembershipType(0))
		assert.True(t, IsInvalidArgument(err))
	})
}

func TestOperator_In(t *testing.T) {
	op, err := In(Field("Status"), Text("Open"), Text("Pending"))
	require.NoError(t, err)

	out := op.Render()
	assert.Equal(t,
		"<In><Values><Value Type='Text'>Open</Value><Value Type='Text'>Pending</Value></Values></In>",
		out)

	root := parseXML(t, out)
	assert.Equal(t, "In", root.XMLName.Local)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Values", root.Children[0].XMLName.Local)
	assert.Len(t, root.Children[0].Children, 2)
	assert.Zero(t, root.countTag("FieldRef"))

	empty, err := In(Field("Status"))
	require.NoError(t, err)
	assert.Equal(t, "<In><Values></Values></In>", empty.Render())
}

func TestOperator_Membership(t *testing.T) {
	testCases := []struct {
		membership MembershipType
		name       string
	}{
		{SpWebAllUsers, "SpWebAllUsers"},
		{SpGroup, "SpGroup"},
		{SpWebGroups, "SpWebGroups"},
		{CurrentUserGroups, "CurrentUserGroups"},
		{SpWebUsers, "SpWebUsers"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			op, err := Membership(Field("AssignedTo"), tc.membership)
			require.NoError(t, err)
			assert.Equal(t,
				"<Membership Type='"+tc.name+"'><FieldRef Name='AssignedTo'/></Membership>",
				op.Render())

			parsed, err := ParseMembershipType(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.membership, parsed)
		})
	}
}

func TestOperator_ExtraAttributes(t *testing.T) {
	op := mustEq(t, "Title", "Report")

	require.NoError(t, op.AddAttribute("Nullable", "TRUE"))
	require.NoError(t, op.AddAttribute("Custom", "x"))

	assert.Equal(t,
		"<Eq><FieldRef Name='Title' Nullable='TRUE' Custom='x'/><Value Type='Text'>Report</Value></Eq>",
		op.Render())
	assert.Equal(t, [][2]string{{"Nullable", "TRUE"}, {"Custom", "x"}}, op.Attributes())

	has, err := op.HasAttribute("Nullable")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, op.RemoveAttribute("Nullable"))
	has, err = op.HasAttribute("Nullable")
	require.NoError(t, err)
	assert.False(t, has)
	assert.Equal(t, [][2]string{{"Custom", "x"}}, op.Attributes())

	// Removing an absent name is a no-op.
	require.NoError(t, op.RemoveAttribute("Missing"))
	assert.Len(t, op.Attributes(), 1)
}

func TestOperator_ExtraAttributesRejected(t *testing.T) {
	op := mustEq(t, "Title", "Report")
	require.NoError(t, op.AddAttribute("Nullable", "TRUE"))
	before := op.Render()

	testCases := []struct {
		name  string
		value string
	}{
		{"", "x"},
		{"Other", ""},
		{"Nullable", "FALSE"},
	}

	for _, tc := range testCases {
		err := op.AddAttribute(tc.name, tc.value)
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))
		assert.Equal(t, before, op.Render())
		assert.Len(t, op.Attributes(), 1)
	}

	_, err := op.HasAttribute("")
	assert.True(t, IsInvalidArgument(err))
	assert.True(t, IsInvalidArgument(op.RemoveAttribute("")))
}

func TestOperator_ExtraAttributesOnSimpleAndMembership(t *testing.T) {
	isNull := Must(IsNull(Field("Due")))
	require.NoError(t, isNull.AddAttribute("Nullable", "TRUE"))
	assert.Equal(t, "<IsNull><FieldRef Name='Due' Nullable='TRUE'/></IsNull>", isNull.Render())

	member := Must(Membership(Field("Owner"), SpGroup))
	require.NoError(t, member.AddAttribute("LookupId", "TRUE"))
	assert.Equal(t,
		"<Membership Type='SpGroup'><FieldRef Name='Owner' LookupId='TRUE'/></Membership>",
		member.Render())
}

func TestOperator_FieldModifiersRendered(t *testing.T) {
	op := Must(EqualLiteral(Field("Author", WithLookupID(true)), ValueTypeInteger, 7))
	assert.Equal(t,
		"<Eq><FieldRef Name='Author' LookupId='TRUE'/><Value Type='Integer'>7</Value></Eq>",
		op.Render())
	assert.Equal(t, "Author", op.Field().Name())
}
