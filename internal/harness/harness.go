package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/camlkit/caml"
	"github.com/roach88/camlkit/internal/querydef"
)

// Harness renders scenario cases against a fixed set of definitions.
type Harness struct {
	defs   map[string]*querydef.Definition
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load every definition source (files, directories, inline maps)
// 2. Build and render each case's definition
// 3. Lint the built query and evaluate the case expectations
//
// An error is returned only when the definitions cannot be loaded. Case
// failures, including build failures, are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	defs, err := loadDefinitions(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}

	h := &Harness{
		defs:   defs,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		result.AddCase(h.runCase(c))
	}
	return result, nil
}

func (h *Harness) runCase(c Case) CaseResult {
	cr := CaseResult{Definition: c.Definition, Pass: true}
	fail := func(msg string) {
		cr.Errors = append(cr.Errors, msg)
		cr.Pass = false
	}

	def, ok := h.defs[c.Definition]
	if !ok {
		fail(fmt.Sprintf("unknown definition %q", c.Definition))
		return cr
	}

	cr.WhereOnly = def.WhereOnly
	if c.WhereOnly != nil {
		cr.WhereOnly = *c.WhereOnly
	}

	q, buildErr := querydef.Build(def)
	if buildErr != nil {
		cr.BuildError = buildErr.Error()
	}

	if c.Expect.Error != "" {
		if err := assertBuildError(buildErr, c.Expect.Error); err != nil {
			fail(err.Error())
		}
		h.logger.Debug("error case evaluated",
			"definition", c.Definition,
			"pass", cr.Pass,
		)
		return cr
	}
	if buildErr != nil {
		fail(fmt.Sprintf("build failed: %v", buildErr))
		return cr
	}

	cr.Fragment = q.Render(cr.WhereOnly)
	cr.Hash = querydef.FragmentHash(cr.Fragment)
	cr.Lint = caml.Lint(q).Warnings

	for _, msg := range EvaluateExpectation(cr.Fragment, cr.Lint, c.Expect) {
		fail(msg)
	}

	h.logger.Debug("case evaluated",
		"definition", c.Definition,
		"where_only", cr.WhereOnly,
		"hash", cr.Hash,
		"pass", cr.Pass,
	)
	return cr
}

// loadDefinitions resolves every source and indexes definitions by name.
// A name defined by two sources is an error.
func loadDefinitions(scenario *Scenario) (map[string]*querydef.Definition, error) {
	defs := make(map[string]*querydef.Definition)
	add := func(def *querydef.Definition) error {
		if prev, ok := defs[def.Name]; ok {
			return fmt.Errorf("definition %q defined in both %s and %s", def.Name, prev.Source, def.Source)
		}
		defs[def.Name] = def
		return nil
	}

	for i, src := range scenario.Definitions {
		if src.Path != "" {
			loaded, err := querydef.Load(scenario.resolve(src.Path))
			if err != nil {
				return nil, err
			}
			for _, def := range loaded {
				if err := add(def); err != nil {
					return nil, err
				}
			}
			continue
		}

		def, err := querydef.Decode(src.Inline)
		if err != nil {
			return nil, fmt.Errorf("definitions[%d]: %w", i, err)
		}
		def.Source = fmt.Sprintf("%s#definitions[%d]", scenario.Name, i)
		if err := add(def); err != nil {
			return nil, err
		}
	}
	return defs, nil
}
