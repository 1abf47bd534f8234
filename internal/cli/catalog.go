package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/camlkit/internal/querydef"
	"github.com/roach88/camlkit/internal/store"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Name string // save only this definition
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	History bool // print every revision, oldest first
}

// SavedQuery reports the catalog outcome for one definition.
type SavedQuery struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Fingerprint string `json:"fingerprint"`
	Inserted    bool   `json:"inserted"`
}

// SaveResult holds the outcome of a save command.
type SaveResult struct {
	Queries   []SavedQuery `json:"queries"`
	Inserted  int          `json:"inserted"`
	Unchanged int          `json:"unchanged"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Render definitions and record them in the catalog",
		Long: `Render query definitions and record them in the catalog database.

Each definition is stored under its name together with its canonical
form, fingerprint and rendered CAML. Saving a definition whose
fingerprint matches its current revision changes nothing, so save can
be run repeatedly.

The catalog path comes from --db, the db key of the config file, or
CAMLQ_DB.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	addDBFlag(cmd, rootOpts)
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "save only the named definition")

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List cataloged queries and their current revisions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}

	addDBFlag(cmd, rootOpts)

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the CAML of a cataloged query",
		Long: `Print the current CAML of a cataloged query.

With --history every revision is printed, oldest first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	addDBFlag(cmd, rootOpts)
	cmd.Flags().BoolVar(&opts.History, "history", false, "show every revision")

	return cmd
}

func addDBFlag(cmd *cobra.Command, rootOpts *RootOptions) {
	cmd.Flags().StringVar(&rootOpts.DB, "db", rootOpts.DB, "catalog database path (or CAMLQ_DB)")
}

// openCatalog opens the catalog named by opts.DB.
func openCatalog(formatter *OutputFormatter, opts *RootOptions) (*store.Store, error) {
	if opts.DB == "" {
		return nil, outputCatalogError(formatter, ExitCommandError, ErrCodeStoreFailed,
			"no catalog database: pass --db or set CAMLQ_DB", nil)
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, outputCatalogError(formatter, ExitCommandError, ErrCodeStoreFailed,
			fmt.Sprintf("opening catalog: %v", err), map[string]string{"db": opts.DB})
	}
	return st, nil
}

func runSave(opts *SaveOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, err := LoadDefinitions(target)
	if err != nil {
		return outputRenderError(formatter, err)
	}

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

	// Build everything before touching the catalog so a bad definition
	// leaves it unchanged.
	type pending struct {
		def         *querydef.Definition
		fragment    string
		canonical   string
		fingerprint string
	}
	batch := make([]pending, 0, len(defs))
	var buildErrs []error
	for _, def := range defs {
		fragment, err := querydef.Render(def)
		if err != nil {
			buildErrs = append(buildErrs, err)
			continue
		}
		canonical, err := querydef.CanonicalJSON(def)
		if err != nil {
			buildErrs = append(buildErrs, err)
			continue
		}
		fingerprint, err := querydef.Fingerprint(def)
		if err != nil {
			buildErrs = append(buildErrs, err)
			continue
		}
		batch = append(batch, pending{def, fragment, string(canonical), fingerprint})
	}
	if len(buildErrs) > 0 {
		return outputRenderErrors(formatter, buildErrs)
	}

	st, err := openCatalog(formatter, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	result := SaveResult{Queries: make([]SavedQuery, 0, len(batch))}
	for _, p := range batch {
		rev, inserted, err := st.SaveRevision(cmd.Context(), p.def.Name, p.fingerprint, p.canonical, p.fragment)
		if err != nil {
			return outputCatalogError(formatter, ExitCommandError, ErrCodeStoreFailed,
				fmt.Sprintf("saving %s: %v", p.def.Name, err), nil)
		}
		slog.Debug("saved definition", "name", rev.Name, "seq", rev.Seq, "inserted", inserted)

		result.Queries = append(result.Queries, SavedQuery{
			Name:        rev.Name,
			ID:          rev.ID,
			Seq:         rev.Seq,
			Fingerprint: rev.Fingerprint,
			Inserted:    inserted,
		})
		if inserted {
			result.Inserted++
		} else {
			result.Unchanged++
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, q := range result.Queries {
		if q.Inserted {
			fmt.Fprintf(formatter.Writer, "✓ %s: saved revision %d\n", q.Name, q.Seq)
		} else {
			fmt.Fprintf(formatter.Writer, "= %s: unchanged (revision %d)\n", q.Name, q.Seq)
		}
	}
	fmt.Fprintf(formatter.Writer, "\n%d saved, %d unchanged\n", result.Inserted, result.Unchanged)
	return nil
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := openCatalog(formatter, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	revs, err := st.List(cmd.Context())
	if err != nil {
		return outputCatalogError(formatter, ExitCommandError, ErrCodeStoreFailed,
			fmt.Sprintf("listing catalog: %v", err), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(revs)
	}

	if len(revs) == 0 {
		fmt.Fprintln(formatter.Writer, "No queries cataloged.")
		return nil
	}
	for _, rev := range revs {
		fmt.Fprintf(formatter.Writer, "%s\trevision %d\t%s\n", rev.Name, rev.Seq, shortFingerprint(rev.Fingerprint))
	}
	return nil
}

func runShow(opts *ShowOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openCatalog(formatter, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	var revs []store.Revision
	if opts.History {
		revs, err = st.History(cmd.Context(), name)
	} else {
		var rev store.Revision
		rev, err = st.Latest(cmd.Context(), name)
		revs = []store.Revision{rev}
	}
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(revs) == 0) {
		return outputCatalogError(formatter, ExitFailure, ErrCodeUnknownQueryName,
			fmt.Sprintf("no cataloged query named %q", name), nil)
	}
	if err != nil {
		return outputCatalogError(formatter, ExitCommandError, ErrCodeStoreFailed,
			fmt.Sprintf("reading %s: %v", name, err), nil)
	}

	if formatter.Format == "json" {
		if opts.History {
			return formatter.Success(revs)
		}
		return formatter.Success(revs[0])
	}

	if !opts.History {
		fmt.Fprintln(formatter.Writer, revs[0].CAML)
		return nil
	}
	for _, rev := range revs {
		fmt.Fprintf(formatter.Writer, "-- %s revision %d (%s) --\n%s\n",
			rev.Name, rev.Seq, shortFingerprint(rev.Fingerprint), rev.CAML)
	}
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func outputCatalogError(formatter *OutputFormatter, exitCode int, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}
