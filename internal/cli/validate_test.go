package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidDefinitions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.yaml", ordersYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Equal(t, "✓ All definitions valid (2)\n", out)
}

func TestValidateValidDefinitionsJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.yaml", ordersYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.Definitions)
	assert.Empty(t, result.Errors)
}

func TestValidateNonExistentPath(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/defs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestValidateLintWarnings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hazard.yaml", hazardYAML)

	t.Run("reported", func(t *testing.T) {
		out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
		require.NoError(t, err)
		assert.Contains(t, out, "✓ All definitions valid (1)")
		assert.Contains(t, out, "E120 warning: company_amp:")
	})

	t.Run("strict", func(t *testing.T) {
		out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path, "--strict")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "✗ Validation failed")
		assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
	})

	t.Run("strict json", func(t *testing.T) {
		out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path, "--strict")
		require.Error(t, err)

		var result ValidationResult
		resp := decodeResponse(t, out, &result)
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeLintFailed, resp.Error.Code)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Warnings)
	})
}

func TestValidateBuildError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", badMembershipYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E110 error: bad_membership.where.membership.membership")
}

func TestValidateDecodeError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fuzzy.yaml", unknownOperatorYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.Len(t, result.Errors, 1)

	issue := result.Errors[0]
	assert.Equal(t, ErrCodeInvalidWhere, issue.Code)
	assert.Equal(t, "fuzzy", issue.Definition)
	assert.Equal(t, "where.like", issue.Field)
	assert.Equal(t, path, issue.File)
	assert.Equal(t, 3, issue.Line)
}

func TestValidateMultipleErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", badMembershipYAML)
	writeFile(t, dir, "more.yaml", `queries:
  - name: bad_order
    order_by:
      - {name: Created, function: Sideways}
  - name: fine
    where:
      is_null: {field: Title}
`)

	_, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")
}

func TestValidateDefinitions(t *testing.T) {
	dir := t.TempDir()

	result, err := ValidateDefinitions(writeFile(t, dir, "orders.yaml", ordersYAML))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateDefinitions(writeFile(t, dir, "bad.yaml", badMembershipYAML))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)

	_, err = ValidateDefinitions(dir + "/missing")
	require.Error(t, err)
}

func TestMapFieldToErrorCode(t *testing.T) {
	testCases := []struct {
		field    string
		expected string
	}{
		{"name", ErrCodeInvalidName},
		{"where_only", ErrCodeInvalidOptions},
		{"description", ErrCodeInvalidOptions},
		{"where", ErrCodeInvalidWhere},
		{"where.and[1].eq.field", ErrCodeInvalidWhere},
		{"order_by[0].function", ErrCodeInvalidOrderBy},
		{"group_by", ErrCodeInvalidGroupBy},
		{"queries[2].where.or", ErrCodeInvalidWhere},
		{"queries[0].name", ErrCodeInvalidName},
		{"", ErrCodeGeneric},
		{"unknown", ErrCodeGeneric},
	}

	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapFieldToErrorCode(tc.field))
		})
	}
}
