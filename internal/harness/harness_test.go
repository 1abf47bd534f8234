package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/camlkit/internal/querydef"
)

func TestRun_OrdersScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/orders.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Cases, 5)

	whereOnly := result.Cases[0]
	assert.True(t, whereOnly.WhereOnly)
	assert.Equal(t, querydef.FragmentHash(whereOnly.Fragment), whereOnly.Hash)

	full := result.Cases[1]
	assert.False(t, full.WhereOnly)
	assert.Contains(t, full.Fragment, whereOnly.Fragment)

	// titles_only is where-only by its own definition.
	assert.True(t, result.Cases[2].WhereOnly)

	assert.NotEmpty(t, result.Cases[3].Lint)

	failing := result.Cases[4]
	assert.True(t, failing.Pass)
	assert.Empty(t, failing.Fragment)
	assert.Contains(t, failing.BuildError, "unknown membership type")
}

func TestRun_FailingExpectations(t *testing.T) {
	content := `
name: failing
definitions:
  - inline:
      name: status
      where:
        eq: {field: Status, value: Active}
cases:
  - definition: status
    expect:
      contains: ["<Neq>"]
  - definition: status
    expect:
      error: anything
  - definition: missing
`
	scenario, err := ParseScenario([]byte(content), "")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 3)
	for _, c := range result.Cases {
		assert.False(t, c.Pass)
	}
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "cases[0] (status)")
	assert.Contains(t, result.Errors[1], "definition built successfully")
	assert.Contains(t, result.Errors[2], `unknown definition "missing"`)
}

func TestRun_BuildFailureWithoutErrorExpectation(t *testing.T) {
	content := `
name: build_failure
definitions:
  - inline:
      name: bad
      where:
        membership: {field: AssignedTo, membership: Everyone}
cases:
  - definition: bad
`
	scenario, err := ParseScenario([]byte(content), "")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "build failed")
}

func TestRun_DuplicateDefinition(t *testing.T) {
	content := `
name: duplicate
definitions:
  - inline: {name: q}
  - inline: {name: q}
cases:
  - definition: q
`
	scenario, err := ParseScenario([]byte(content), "")
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `definition "q" defined in both`)
}

func TestRun_InvalidInlineDefinition(t *testing.T) {
	content := `
name: invalid
definitions:
  - inline: {name: q, wher: {}}
cases:
  - definition: q
`
	scenario, err := ParseScenario([]byte(content), "")
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitions[0]")
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/orders.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, Snapshot(first), Snapshot(second))
}
