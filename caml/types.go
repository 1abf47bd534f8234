package caml

import "fmt"

// ValueType is the kind of a Value, rendered as the Type attribute of the
// <Value> tag. The zero value means "not supplied" and suppresses the
// attribute.
type ValueType int

const (
	ValueTypeText ValueType = iota + 1
	ValueTypeDateTime
	ValueTypeInteger
	ValueTypeNote
	ValueTypeChoice
	ValueTypeNumber
	ValueTypeGuid
	ValueTypeBoolean
	ValueTypeCounter
	ValueTypeCurrency
	ValueTypeURL
	ValueTypeComputed
	ValueTypeLookup
	ValueTypeFile
	ValueTypeUser
	ValueTypeAttachments
	ValueTypeMultiChoice
	ValueTypeGridChoice
	ValueTypeThreading
	ValueTypeCrossProjectLink
	ValueTypeRecurrence
	ValueTypeModStat
	ValueTypeContentTypeId
	ValueTypeWorkflowStatus
	ValueTypeAllDayEvent
	ValueTypeError
	ValueTypeWorkflowEventType
)

var valueTypeNames = map[ValueType]string{
	ValueTypeText:              "Text",
	ValueTypeDateTime:          "DateTime",
	ValueTypeInteger:           "Integer",
	ValueTypeNote:              "Note",
	ValueTypeChoice:            "Choice",
	ValueTypeNumber:            "Number",
	ValueTypeGuid:              "Guid",
	ValueTypeBoolean:           "Boolean",
	ValueTypeCounter:           "Counter",
	ValueTypeCurrency:          "Currency",
	ValueTypeURL:               "URL",
	ValueTypeComputed:          "Computed",
	ValueTypeLookup:            "Lookup",
	ValueTypeFile:              "File",
	ValueTypeUser:              "User",
	ValueTypeAttachments:       "Attachments",
	ValueTypeMultiChoice:       "MultiChoice",
	ValueTypeGridChoice:        "GridChoice",
	ValueTypeThreading:         "Threading",
	ValueTypeCrossProjectLink:  "CrossProjectLink",
	ValueTypeRecurrence:        "Recurrence",
	ValueTypeModStat:           "ModStat",
	ValueTypeContentTypeId:     "ContentTypeId",
	ValueTypeWorkflowStatus:    "WorkflowStatus",
	ValueTypeAllDayEvent:       "AllDayEvent",
	ValueTypeError:             "Error",
	ValueTypeWorkflowEventType: "WorkflowEventType",
}

// String returns the wire name of the value type.
func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Valid reports whether t is one of the declared value types.
func (t ValueType) Valid() bool {
	_, ok := valueTypeNames[t]
	return ok
}

// ParseValueType maps a wire name (e.g. "Text", "DateTime") to its ValueType.
func ParseValueType(name string) (ValueType, error) {
	for t, n := range valueTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, newArgumentError("type", fmt.Sprintf("unknown value type %q", name))
}

// ComparisonOperatorType enumerates the comparison operators.
type ComparisonOperatorType int

const (
	OpEqual ComparisonOperatorType = iota + 1
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqualTo
	OpLowerThan
	OpLowerThanOrEqualTo
	OpIsNull
	OpIsNotNull
	OpBeginsWith
	OpContains
	OpDateRangesOverlap
	OpIncludes
	OpNotIncludes
	OpIn
	OpMembership
)

// Tag returns the wire-format tag name for the operator. The six relational
// operators use their abbreviated forms.
func (op ComparisonOperatorType) Tag() (string, error) {
	switch op {
	case OpEqual:
		return "Eq", nil
	case OpNotEqual:
		return "Neq", nil
	case OpGreaterThan:
		return "Gt", nil
	case OpGreaterThanOrEqualTo:
		return "Geq", nil
	case OpLowerThan:
		return "Lt", nil
	case OpLowerThanOrEqualTo:
		return "Leq", nil
	case OpIsNull:
		return "IsNull", nil
	case OpIsNotNull:
		return "IsNotNull", nil
	case OpBeginsWith:
		return "BeginsWith", nil
	case OpContains:
		return "Contains", nil
	case OpDateRangesOverlap:
		return "DateRangesOverlap", nil
	case OpIncludes:
		return "Includes", nil
	case OpNotIncludes:
		return "NotIncludes", nil
	case OpIn:
		return "In", nil
	case OpMembership:
		return "Membership", nil
	default:
		return "", newArgumentError("operatorType", fmt.Sprintf("unknown comparison operator %d", int(op)))
	}
}

// String returns the tag name, or a diagnostic form for unknown values.
func (op ComparisonOperatorType) String() string {
	tag, err := op.Tag()
	if err != nil {
		return fmt.Sprintf("ComparisonOperatorType(%d)", int(op))
	}
	return tag
}

// isSimple reports whether the operator takes no value.
func (op ComparisonOperatorType) isSimple() bool {
	return op == OpIsNull || op == OpIsNotNull
}

// isComplex reports whether the operator takes exactly one value.
func (op ComparisonOperatorType) isComplex() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqualTo,
		OpLowerThan, OpLowerThanOrEqualTo, OpBeginsWith, OpContains,
		OpDateRangesOverlap, OpIncludes, OpNotIncludes:
		return true
	default:
		return false
	}
}

// LogicalJoinType enumerates the logical joins.
type LogicalJoinType int

const (
	JoinAnd LogicalJoinType = iota + 1
	JoinOr
)

// Tag returns the wire-format tag name of the join.
func (j LogicalJoinType) Tag() (string, error) {
	switch j {
	case JoinAnd:
		return "And", nil
	case JoinOr:
		return "Or", nil
	default:
		return "", newArgumentError("joinType", fmt.Sprintf("unknown logical join %d", int(j)))
	}
}

func (j LogicalJoinType) String() string {
	tag, err := j.Tag()
	if err != nil {
		return fmt.Sprintf("LogicalJoinType(%d)", int(j))
	}
	return tag
}

// FieldRefFunction is the aggregation function carried by a FieldRef's Type
// attribute.
type FieldRefFunction int

const (
	FuncAverage FieldRefFunction = iota + 1
	FuncCount
	FuncMaximum
	FuncMinimum
	FuncSum
	FuncStandardDeviation
	FuncVariance
)

// Abbreviation returns the wire abbreviation (AVG, COUNT, ...).
func (f FieldRefFunction) Abbreviation() (string, error) {
	switch f {
	case FuncAverage:
		return "AVG", nil
	case FuncCount:
		return "COUNT", nil
	case FuncMaximum:
		return "MAX", nil
	case FuncMinimum:
		return "MIN", nil
	case FuncSum:
		return "SUM", nil
	case FuncStandardDeviation:
		return "STDEV", nil
	case FuncVariance:
		return "VAR", nil
	default:
		return "", newArgumentError("function", fmt.Sprintf("unknown field function %d", int(f)))
	}
}

func (f FieldRefFunction) String() string {
	abbr, err := f.Abbreviation()
	if err != nil {
		return fmt.Sprintf("FieldRefFunction(%d)", int(f))
	}
	return abbr
}

// ParseFieldRefFunction accepts either the wire abbreviation ("AVG") or the
// long name ("Average").
func ParseFieldRefFunction(name string) (FieldRefFunction, error) {
	switch name {
	case "AVG", "Average":
		return FuncAverage, nil
	case "COUNT", "Count":
		return FuncCount, nil
	case "MAX", "Maximum":
		return FuncMaximum, nil
	case "MIN", "Minimum":
		return FuncMinimum, nil
	case "SUM", "Sum":
		return FuncSum, nil
	case "STDEV", "StandardDeviation":
		return FuncStandardDeviation, nil
	case "VAR", "Variance":
		return FuncVariance, nil
	default:
		return 0, newArgumentError("function", fmt.Sprintf("unknown field function %q", name))
	}
}

// MembershipType selects the population tested by the Membership operator.
type MembershipType int

const (
	SpWebAllUsers MembershipType = iota + 1
	SpGroup
	SpWebGroups
	CurrentUserGroups
	SpWebUsers
)

// Name returns the enumeration name rendered in the Membership Type attribute.
func (m MembershipType) Name() (string, error) {
	switch m {
	case SpWebAllUsers:
		return "SpWebAllUsers", nil
	case SpGroup:
		return "SpGroup", nil
	case SpWebGroups:
		return "SpWebGroups", nil
	case CurrentUserGroups:
		return "CurrentUserGroups", nil
	case SpWebUsers:
		return "SpWebUsers", nil
	default:
		return "", newArgumentError("membershipType", fmt.Sprintf("unknown membership type %d", int(m)))
	}
}

func (m MembershipType) String() string {
	name, err := m.Name()
	if err != nil {
		return fmt.Sprintf("MembershipType(%d)", int(m))
	}
	return name
}

// ParseMembershipType maps an enumeration name to its MembershipType.
func ParseMembershipType(name string) (MembershipType, error) {
	for m := SpWebAllUsers; m <= SpWebUsers; m++ {
		if n, _ := m.Name(); n == name {
			return m, nil
		}
	}
	return 0, newArgumentError("membershipType", fmt.Sprintf("unknown membership type %q", name))
}
