package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/camlkit/internal/querydef"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Name      string // render only this definition
	WhereOnly bool   // force the bare <Where> form
	Output    string // output file path
}

// RenderedQuery is one rendered definition.
type RenderedQuery struct {
	Name        string `json:"name"`
	Source      string `json:"source,omitempty"`
	Fragment    string `json:"fragment"`
	Hash        string `json:"hash"`
	Fingerprint string `json:"fingerprint"`
}

// RenderResult holds every rendered definition, in load order.
type RenderResult struct {
	Queries []RenderedQuery `json:"queries"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <path>",
		Short: "Render query definitions to CAML",
		Long: `Render query definitions to CAML fragments.

<path> is a .yaml, .yml or .cue file, or a directory of them. Each
definition is built and rendered as <Query>...</Query>, or as the bare
<Where>...</Where> when the definition sets where_only or --where-only
is given.

With several definitions the text output separates them with
"-- name --" headers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "render only the named definition")
	cmd.Flags().BoolVar(&opts.WhereOnly, "where-only", false, "render only the <Where> element")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runRender(opts *RenderOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, err := LoadDefinitions(target)
	if err != nil {
		return outputRenderError(formatter, err)
	}

	formatter.VerboseLog("Found %d definition file(s) in %s", loadResult.FileCount, target)

	defs := loadResult.Definitions
	if opts.Name != "" {
		defs = selectDefinition(defs, opts.Name)
		if len(defs) == 0 {
			return outputRenderError(formatter, &LoadError{
				Code:    ErrCodeUnknownQueryName,
				Message: fmt.Sprintf("no definition named %q in %s", opts.Name, target),
			})
		}
	}

	result := RenderResult{Queries: make([]RenderedQuery, 0, len(defs))}
	var buildErrs []error
	for _, def := range defs {
		formatter.VerboseLog("Rendering definition: %s", def.Name)

		rendered, err := renderDefinition(def, opts.WhereOnly)
		if err != nil {
			buildErrs = append(buildErrs, err)
			continue
		}
		result.Queries = append(result.Queries, rendered)
	}

	if len(buildErrs) > 0 {
		return outputRenderErrors(formatter, buildErrs)
	}

	if opts.Output != "" {
		if err := writeFragments(result, opts.Output); err != nil {
			return outputRenderError(formatter, &LoadError{
				Code:    ErrCodeWriteFailed,
				Message: fmt.Sprintf("writing output file: %v", err),
			})
		}
	}

	return outputRenderSuccess(formatter, result, opts.Output)
}

// renderDefinition builds one definition. forceWhereOnly overrides the
// definition's own where_only setting but not its fingerprint.
func renderDefinition(def *querydef.Definition, forceWhereOnly bool) (RenderedQuery, error) {
	d := *def
	d.WhereOnly = d.WhereOnly || forceWhereOnly

	fragment, err := querydef.Render(&d)
	if err != nil {
		return RenderedQuery{}, err
	}
	fingerprint, err := querydef.Fingerprint(def)
	if err != nil {
		return RenderedQuery{}, err
	}
	return RenderedQuery{
		Name:        def.Name,
		Source:      def.Source,
		Fragment:    fragment,
		Hash:        querydef.FragmentHash(fragment),
		Fingerprint: fingerprint,
	}, nil
}

func selectDefinition(defs []*querydef.Definition, name string) []*querydef.Definition {
	for _, d := range defs {
		if d.Name == name {
			return []*querydef.Definition{d}
		}
	}
	return nil
}

// writeFragments writes the text form of result, the same bytes render
// prints to stdout.
func writeFragments(result RenderResult, filename string) error {
	var buf bytes.Buffer
	writeFragmentText(&buf, result)
	return os.WriteFile(filename, buf.Bytes(), 0644)
}

// writeFragmentText prints a lone fragment as is, and several as
// "-- name --" blocks.
func writeFragmentText(w io.Writer, result RenderResult) {
	if len(result.Queries) == 1 {
		fmt.Fprintln(w, result.Queries[0].Fragment)
		return
	}
	for _, q := range result.Queries {
		fmt.Fprintf(w, "-- %s --\n%s\n", q.Name, q.Fragment)
	}
}

func outputRenderSuccess(formatter *OutputFormatter, result RenderResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "✓ Rendered %d definition(s) to %s\n", len(result.Queries), outputFile)
		return nil
	}

	writeFragmentText(formatter.Writer, result)
	return nil
}

// outputRenderError outputs a single load error. Load errors are
// command-level errors (exit code 2).
func outputRenderError(formatter *OutputFormatter, err error) error {
	loadErr := toLoadError(err)
	_ = formatter.Error(loadErr.Code, loadErr.Message, loadErrorDetails(loadErr))
	return NewExitError(ExitCommandError, loadErr.Error())
}

// outputRenderErrors outputs every definition that failed to build.
func outputRenderErrors(formatter *OutputFormatter, errs []error) error {
	loadErrs := make([]*LoadError, len(errs))
	for i, err := range errs {
		loadErrs[i] = toLoadError(err)
	}

	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(loadErrs))
		for i, le := range loadErrs {
			cliErrors[i] = CLIError{Code: le.Code, Message: le.Message, Details: loadErrorDetails(le)}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("render failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Render failed")
	fmt.Fprintln(formatter.Writer)
	for _, le := range loadErrs {
		writeLoadErrorText(formatter.Writer, le)
	}

	// Render errors are command-level errors (exit code 2); validate reports
	// the same problems as failures.
	return NewExitError(ExitCommandError, fmt.Sprintf("render failed with %d error(s)", len(errs)))
}

// toLoadError normalises any error from loading or building into a LoadError.
// Build failures keep their field-based code.
func toLoadError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var defErr *querydef.DefinitionError
	if errors.As(err, &defErr) {
		code := MapFieldToErrorCode(defErr.Field)
		if code == ErrCodeGeneric {
			code = ErrCodeBuildFailed
		}
		return fromDefinitionError(defErr, code)
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// loadErrorDetails returns the location fields worth reporting, or nil.
func loadErrorDetails(le *LoadError) interface{} {
	details := map[string]any{}
	if le.Definition != "" {
		details["definition"] = le.Definition
	}
	if le.Field != "" {
		details["field"] = le.Field
	}
	if le.File != "" {
		details["file"] = le.File
	}
	if le.Line > 0 {
		details["line"] = le.Line
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func writeLoadErrorText(w io.Writer, le *LoadError) {
	switch {
	case le.File != "" && le.Line > 0:
		fmt.Fprintf(w, "%s:%d:%d\n", le.File, le.Line, le.Column)
	case le.File != "":
		fmt.Fprintf(w, "%s\n", le.File)
	}
	label := le.Definition
	if le.Field != "" {
		if label != "" {
			label += "."
		}
		label += le.Field
	}
	if label != "" {
		fmt.Fprintf(w, "  %s: %s: %s\n\n", le.Code, label, le.Message)
		return
	}
	fmt.Fprintf(w, "  %s: %s\n\n", le.Code, le.Message)
}
