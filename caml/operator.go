package caml

import (
	"fmt"
	"strings"
)

// ComparisonOperator is a predicate over a single field.
//
// The operator type decides which payload is used:
//   - IsNull, IsNotNull: no value
//   - Eq, Neq, Gt, Geq, Lt, Leq, BeginsWith, Contains, DateRangesOverlap,
//     Includes, NotIncludes: exactly one Value
//   - In: an ordered list of Values
//   - Membership: a MembershipType
//
// Extra attributes, added with AddAttribute, are appended to the operator's
// <FieldRef> tag in insertion order. In renders no <FieldRef>, so extra
// attributes on an In operator are carried but never emitted.
type ComparisonOperator struct {
	opType     ComparisonOperatorType
	tag        string
	field      FieldRef
	value      Value
	values     []Value
	membership MembershipType

	attrNames []string
	attrs     map[string]string
}

func (*ComparisonOperator) statementNode() {}

func newComparison(op ComparisonOperatorType, field FieldRef) (*ComparisonOperator, error) {
	tag, err := op.Tag()
	if err != nil {
		return nil, err
	}
	if field.IsZero() {
		return nil, newArgumentError("field", "field reference has no name")
	}
	return &ComparisonOperator{
		opType: op,
		tag:    tag,
		field:  field,
		attrs:  make(map[string]string),
	}, nil
}

// Compare builds a single-value operator of type op. op must be one of the
// complex operator types (Eq through NotIncludes).
func Compare(op ComparisonOperatorType, field FieldRef, value Value) (*ComparisonOperator, error) {
	if !op.isComplex() {
		return nil, newArgumentError("operatorType", fmt.Sprintf("%s does not take a single value", op))
	}
	if err := value.validate("value"); err != nil {
		return nil, err
	}
	c, err := newComparison(op, field)
	if err != nil {
		return nil, err
	}
	c.value = value
	return c, nil
}

// CompareLiteral is Compare with the value desugared from a (type, literal)
// pair into a Scalar.
func CompareLiteral(op ComparisonOperatorType, field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	value, err := Scalar(t, literal)
	if err != nil {
		return nil, err
	}
	return Compare(op, field, value)
}

// IsNull builds <IsNull>.
func IsNull(field FieldRef) (*ComparisonOperator, error) {
	return newComparison(OpIsNull, field)
}

// IsNotNull builds <IsNotNull>.
func IsNotNull(field FieldRef) (*ComparisonOperator, error) {
	return newComparison(OpIsNotNull, field)
}

// Equal builds <Eq>.
func Equal(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpEqual, field, value)
}

// EqualLiteral builds <Eq> from a scalar literal.
func EqualLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpEqual, field, t, literal)
}

// NotEqual builds <Neq>.
func NotEqual(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpNotEqual, field, value)
}

// NotEqualLiteral builds <Neq> from a scalar literal.
func NotEqualLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpNotEqual, field, t, literal)
}

// GreaterThan builds <Gt>.
func GreaterThan(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpGreaterThan, field, value)
}

// GreaterThanLiteral builds <Gt> from a scalar literal.
func GreaterThanLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpGreaterThan, field, t, literal)
}

// GreaterThanOrEqualTo builds <Geq>.
func GreaterThanOrEqualTo(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpGreaterThanOrEqualTo, field, value)
}

// GreaterThanOrEqualToLiteral builds <Geq> from a scalar literal.
func GreaterThanOrEqualToLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpGreaterThanOrEqualTo, field, t, literal)
}

// LowerThan builds <Lt>.
func LowerThan(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpLowerThan, field, value)
}

// LowerThanLiteral builds <Lt> from a scalar literal.
func LowerThanLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpLowerThan, field, t, literal)
}

// LowerThanOrEqualTo builds <Leq>.
func LowerThanOrEqualTo(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpLowerThanOrEqualTo, field, value)
}

// LowerThanOrEqualToLiteral builds <Leq> from a scalar literal.
func LowerThanOrEqualToLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpLowerThanOrEqualTo, field, t, literal)
}

// BeginsWith builds <BeginsWith>.
func BeginsWith(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpBeginsWith, field, value)
}

// BeginsWithLiteral builds <BeginsWith> from a scalar literal.
func BeginsWithLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpBeginsWith, field, t, literal)
}

// Contains builds <Contains>.
func Contains(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpContains, field, value)
}

// ContainsLiteral builds <Contains> from a scalar literal.
func ContainsLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpContains, field, t, literal)
}

// DateRangesOverlap builds <DateRangesOverlap>.
func DateRangesOverlap(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpDateRangesOverlap, field, value)
}

// DateRangesOverlapLiteral builds <DateRangesOverlap> from a scalar literal.
func DateRangesOverlapLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpDateRangesOverlap, field, t, literal)
}

// Includes builds <Includes>.
func Includes(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpIncludes, field, value)
}

// IncludesLiteral builds <Includes> from a scalar literal.
func IncludesLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpIncludes, field, t, literal)
}

// NotIncludes builds <NotIncludes>.
func NotIncludes(field FieldRef, value Value) (*ComparisonOperator, error) {
	return Compare(OpNotIncludes, field, value)
}

// NotIncludesLiteral builds <NotIncludes> from a scalar literal.
func NotIncludesLiteral(field FieldRef, t ValueType, literal any) (*ComparisonOperator, error) {
	return CompareLiteral(OpNotIncludes, field, t, literal)
}

// In builds <In> over an ordered list of values.
func In(field FieldRef, values ...Value) (*ComparisonOperator, error) {
	for i, v := range values {
		if err := v.validate(fmt.Sprintf("values[%d]", i)); err != nil {
			return nil, err
		}
	}
	c, err := newComparison(OpIn, field)
	if err != nil {
		return nil, err
	}
	c.values = make([]Value, len(values))
	copy(c.values, values)
	return c, nil
}

// Membership builds <Membership Type='...'>.
func Membership(field FieldRef, membership MembershipType) (*ComparisonOperator, error) {
	if _, err := membership.Name(); err != nil {
		return nil, err
	}
	c, err := newComparison(OpMembership, field)
	if err != nil {
		return nil, err
	}
	c.membership = membership
	return c, nil
}

// OperatorType returns the operator's type.
func (c *ComparisonOperator) OperatorType() ComparisonOperatorType { return c.opType }

// Field returns the target field reference.
func (c *ComparisonOperator) Field() FieldRef { return c.field }

// AddAttribute attaches an extra name='value' attribute to the operator's
// field reference. Empty names or values and duplicate names are rejected;
// a rejected call leaves the attributes unchanged.
func (c *ComparisonOperator) AddAttribute(name, value string) error {
	if name == "" {
		return newArgumentError("name", "attribute name cannot be empty")
	}
	if value == "" {
		return newArgumentError("value", "attribute value cannot be empty")
	}
	if _, exists := c.attrs[name]; exists {
		return newArgumentError("name", fmt.Sprintf("attribute %q already exists", name))
	}
	c.attrs[name] = value
	c.attrNames = append(c.attrNames, name)
	return nil
}

// HasAttribute reports whether an extra attribute named name is set.
func (c *ComparisonOperator) HasAttribute(name string) (bool, error) {
	if name == "" {
		return false, newArgumentError("name", "attribute name cannot be empty")
	}
	_, ok := c.attrs[name]
	return ok, nil
}

// RemoveAttribute removes an extra attribute. Removing an absent name is a
// no-op.
func (c *ComparisonOperator) RemoveAttribute(name string) error {
	if name == "" {
		return newArgumentError("name", "attribute name cannot be empty")
	}
	if _, ok := c.attrs[name]; !ok {
		return nil
	}
	delete(c.attrs, name)
	for i, n := range c.attrNames {
		if n == name {
			c.attrNames = append(c.attrNames[:i], c.attrNames[i+1:]...)
			break
		}
	}
	return nil
}

// Attributes returns the extra attributes in insertion order.
func (c *ComparisonOperator) Attributes() [][2]string {
	out := make([][2]string, 0, len(c.attrNames))
	for _, name := range c.attrNames {
		out = append(out, [2]string{name, c.attrs[name]})
	}
	return out
}

// Render returns the operator markup.
func (c *ComparisonOperator) Render() string {
	var b strings.Builder
	c.writeTo(&b)
	return b.String()
}

func (c *ComparisonOperator) extraAttributes() []attribute {
	if len(c.attrNames) == 0 {
		return nil
	}
	extra := make([]attribute, 0, len(c.attrNames))
	for _, name := range c.attrNames {
		extra = append(extra, attribute{name, c.attrs[name]})
	}
	return extra
}

func (c *ComparisonOperator) writeTo(b *strings.Builder) {
	switch {
	case c.opType == OpIn:
		b.WriteString("<In><Values>")
		for _, v := range c.values {
			v.writeTo(b)
		}
		b.WriteString("</Values></In>")
	case c.opType == OpMembership:
		// Validated by Membership.
		name, _ := c.membership.Name()
		b.WriteString("<Membership")
		writeAttributes(b, []attribute{{"Type", name}})
		b.WriteByte('>')
		c.field.writeTo(b, c.extraAttributes())
		b.WriteString("</Membership>")
	case c.opType.isSimple():
		openTag(b, c.tag)
		c.field.writeTo(b, c.extraAttributes())
		closeTag(b, c.tag)
	default:
		openTag(b, c.tag)
		c.field.writeTo(b, c.extraAttributes())
		c.value.writeTo(b)
		closeTag(b, c.tag)
	}
}

func openTag(b *strings.Builder, tag string) {
	b.WriteByte('<')
	b.WriteString(tag)
	b.WriteByte('>')
}

func closeTag(b *strings.Builder, tag string) {
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}
