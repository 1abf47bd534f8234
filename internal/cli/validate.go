package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/camlkit/caml"
	"github.com/roach88/camlkit/internal/querydef"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // treat lint warnings as failures
}

// ValidationIssue is one problem found in a definition.
type ValidationIssue struct {
	Code       string `json:"code"`
	Definition string `json:"definition,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Definitions int               `json:"definitions"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
	Warnings    []ValidationIssue `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate query definitions without rendering",
		Long: `Validate query definitions without rendering them.

Every definition is decoded and built into a query, and the query is
linted for values that would produce malformed markup (quotes in field
names, unescaped '<', '>' or '&' in values, empty joins).

Lint findings are warnings unless --strict is given.

Exit codes:
  0 - All definitions valid
  1 - One or more definitions invalid (or lint warnings with --strict)
  2 - Command error (path not found, no definition files, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on lint warnings")

	return cmd
}

func runValidate(opts *ValidateOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, err := LoadDefinitions(target)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		// A malformed definition is a validation failure, not a command error.
		if loadErr.Definition != "" || loadErr.Field != "" {
			return outputValidationResult(formatter, ValidationResult{
				Errors: []ValidationIssue{issueFromLoadError(loadErr)},
			}, opts.Strict)
		}
		return outputValidateError(formatter, loadErr.Code, loadErr.Message, loadErrorDetails(loadErr))
	}

	formatter.VerboseLog("Found %d definition file(s) in %s", loadResult.FileCount, target)

	result := validateAll(loadResult.Definitions, formatter)
	result.Valid = len(result.Errors) == 0 && (!opts.Strict || len(result.Warnings) == 0)

	return outputValidationResult(formatter, result, opts.Strict)
}

// validateAll builds and lints every definition.
func validateAll(defs []*querydef.Definition, formatter *OutputFormatter) ValidationResult {
	result := ValidationResult{Definitions: len(defs)}

	for _, def := range defs {
		formatter.VerboseLog("Validating definition: %s", def.Name)

		q, err := querydef.Build(def)
		if err != nil {
			result.Errors = append(result.Errors, issueFromLoadError(toLoadError(err)))
			continue
		}

		for _, w := range caml.Lint(q).Warnings {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Code:       ErrCodeLintFailed,
				Definition: def.Name,
				Message:    w,
				File:       def.Source,
			})
		}
	}

	return result
}

func issueFromLoadError(le *LoadError) ValidationIssue {
	return ValidationIssue{
		Code:       le.Code,
		Definition: le.Definition,
		Field:      le.Field,
		Message:    le.Message,
		File:       le.File,
		Line:       le.Line,
	}
}

// outputValidateError outputs a single command-level error (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationResult outputs the validation result. Invalid definitions
// (and warnings under --strict) are failures, exit code 1.
func outputValidationResult(formatter *OutputFormatter, result ValidationResult, strict bool) error {
	failures := len(result.Errors)
	if strict {
		failures += len(result.Warnings)
	}

	if formatter.Format == "json" {
		if failures == 0 {
			return formatter.Success(result)
		}

		first := result.Errors
		if len(first) == 0 {
			first = result.Warnings
		}
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    first[0].Code,
				Message: first[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", failures))
	}

	if failures == 0 {
		fmt.Fprintf(formatter.Writer, "✓ All definitions valid (%d)\n", result.Definitions)
		if len(result.Warnings) > 0 {
			fmt.Fprintln(formatter.Writer)
			writeIssues(formatter.Writer, "warning", result.Warnings)
		}
		return nil
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	writeIssues(formatter.Writer, "error", result.Errors)
	writeIssues(formatter.Writer, "warning", result.Warnings)

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", failures))
}

func writeIssues(w io.Writer, kind string, issues []ValidationIssue) {
	for _, issue := range issues {
		if issue.File != "" && issue.Line > 0 {
			fmt.Fprintf(w, "%s:%d\n", issue.File, issue.Line)
		}
		label := issue.Definition
		if issue.Field != "" {
			if label != "" {
				label += "."
			}
			label += issue.Field
		}
		if label == "" {
			fmt.Fprintf(w, "  %s %s: %s\n\n", issue.Code, kind, issue.Message)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s: %s\n\n", issue.Code, kind, label, issue.Message)
	}
}

// ValidateDefinitions validates every definition under target without
// printing anything. The returned error is non-nil only when the target
// could not be loaded at all.
func ValidateDefinitions(target string) (ValidationResult, error) {
	loadResult, err := LoadDefinitions(target)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && (loadErr.Definition != "" || loadErr.Field != "") {
			return ValidationResult{Errors: []ValidationIssue{issueFromLoadError(loadErr)}}, nil
		}
		return ValidationResult{}, err
	}

	silent := &OutputFormatter{Format: "text", Writer: io.Discard}
	result := validateAll(loadResult.Definitions, silent)
	result.Valid = len(result.Errors) == 0
	return result, nil
}
