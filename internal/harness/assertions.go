package harness

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Expectation names, as used in AssertionError.Type.
const (
	AssertEquals      = "equals"
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertOrder       = "order"
	AssertLintClean   = "lint_clean"
	AssertError       = "error"
)

// AssertionError is returned when an expectation fails.
// It includes the rendered fragment to help debug the failure.
type AssertionError struct {
	Type     string // Expectation name for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Fragment string // Rendered fragment for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Fragment != "" {
		fmt.Fprintf(&buf, "\nFragment:\n  %s\n", e.Fragment)
	}

	return buf.String()
}

func assertEquals(fragment, expected string) error {
	if fragment == expected {
		return nil
	}
	return &AssertionError{
		Type:     AssertEquals,
		Expected: expected,
		Actual:   fragment,
	}
}

func assertContains(fragment string, substrings []string) error {
	for _, s := range substrings {
		if !strings.Contains(fragment, s) {
			return &AssertionError{
				Type:     AssertContains,
				Expected: fmt.Sprintf("fragment to contain %q", s),
				Actual:   "not found",
				Fragment: fragment,
			}
		}
	}
	return nil
}

func assertNotContains(fragment string, substrings []string) error {
	for _, s := range substrings {
		if strings.Contains(fragment, s) {
			return &AssertionError{
				Type:     AssertNotContains,
				Expected: fmt.Sprintf("fragment not to contain %q", s),
				Actual:   "found",
				Fragment: fragment,
			}
		}
	}
	return nil
}

// assertOrder checks that the named elements open in the given order.
// Elements don't need to be consecutive (intervening elements are allowed).
// Each expected name matches a later element than the one before it, so a
// name may be listed more than once.
func assertOrder(fragment string, names []string) error {
	elements, err := elementNames(fragment)
	if err != nil {
		return &AssertionError{
			Type:     AssertOrder,
			Expected: "well-formed XML",
			Actual:   err.Error(),
			Fragment: fragment,
		}
	}

	pos := 0
	for i, name := range names {
		found := false
		for pos < len(elements) {
			pos++
			if elements[pos-1] == name {
				found = true
				break
			}
		}
		if !found {
			actual := fmt.Sprintf("missing element: %s", name)
			if i > 0 {
				actual = fmt.Sprintf("no %s after %s", name, names[i-1])
			}
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("elements in order: %v", names),
				Actual:   actual,
				Fragment: fragment,
			}
		}
	}
	return nil
}

// elementNames lists start element names in document order.
func elementNames(fragment string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(fragment))
	var names []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			names = append(names, se.Name.Local)
		}
	}
}

func assertLintClean(warnings []string, wantClean bool) error {
	clean := len(warnings) == 0
	if clean == wantClean {
		return nil
	}
	if wantClean {
		return &AssertionError{
			Type:     AssertLintClean,
			Expected: "no lint warnings",
			Actual:   strings.Join(warnings, "; "),
		}
	}
	return &AssertionError{
		Type:     AssertLintClean,
		Expected: "lint warnings",
		Actual:   "none",
	}
}

func assertBuildError(buildErr error, contains string) error {
	if buildErr == nil {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("build error containing %q", contains),
			Actual:   "definition built successfully",
		}
	}
	if !strings.Contains(buildErr.Error(), contains) {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("build error containing %q", contains),
			Actual:   buildErr.Error(),
		}
	}
	return nil
}

// EvaluateExpectation checks a rendered fragment and its lint warnings.
// Returns one message per failed expectation.
func EvaluateExpectation(fragment string, lint []string, expect Expectation) []string {
	var errs []string
	check := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if expect.Equals != nil {
		check(assertEquals(fragment, *expect.Equals))
	}
	if len(expect.Contains) > 0 {
		check(assertContains(fragment, expect.Contains))
	}
	if len(expect.NotContains) > 0 {
		check(assertNotContains(fragment, expect.NotContains))
	}
	if len(expect.Order) > 0 {
		check(assertOrder(fragment, expect.Order))
	}
	if expect.LintClean != nil {
		check(assertLintClean(lint, *expect.LintClean))
	}

	return errs
}

func formatCaseError(index int, definition, msg string) string {
	return fmt.Sprintf("cases[%d] (%s): %s", index, definition, msg)
}
