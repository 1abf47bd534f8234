package caml

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/require"
)

// xmlNode is a generic element tree used to check that rendered fragments
// are well-formed and shaped as expected.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (n xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// innerText concatenates character data depth-first.
func (n xmlNode) innerText() string {
	text := n.Text
	for _, c := range n.Children {
		text += c.innerText()
	}
	return text
}

// leafTags returns the tag names of operator nodes (parents of a FieldRef or
// Values element) in depth-first, left-to-right order.
func (n xmlNode) operatorTags() []string {
	var tags []string
	for _, c := range n.Children {
		if c.XMLName.Local == "FieldRef" || c.XMLName.Local == "Values" {
			return []string{n.XMLName.Local}
		}
	}
	for _, c := range n.Children {
		tags = append(tags, c.operatorTags()...)
	}
	return tags
}

// countTag counts elements named tag in the subtree, including n.
func (n xmlNode) countTag(tag string) int {
	count := 0
	if n.XMLName.Local == tag {
		count++
	}
	for _, c := range n.Children {
		count += c.countTag(tag)
	}
	return count
}

func parseXML(t *testing.T, fragment string) xmlNode {
	t.Helper()
	var root xmlNode
	require.NoError(t, xml.Unmarshal([]byte(fragment), &root), "fragment is not well-formed: %s", fragment)
	return root
}

func mustEq(t *testing.T, field string, value string) *ComparisonOperator {
	t.Helper()
	op, err := EqualLiteral(Field(field), ValueTypeText, value)
	require.NoError(t, err)
	return op
}
