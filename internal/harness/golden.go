package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as golden-file text: one block per case, headed
// by the definition name, holding the fragment or the build error.
//
//	-- active_orders --
//	<Where><Eq>...</Eq></Where>
func Snapshot(result *Result) []byte {
	var buf bytes.Buffer
	for _, c := range result.Cases {
		fmt.Fprintf(&buf, "-- %s --\n", c.Definition)
		if c.BuildError != "" {
			fmt.Fprintf(&buf, "!! %s\n", c.BuildError)
			continue
		}
		buf.WriteString(c.Fragment)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(result))

	return nil
}
