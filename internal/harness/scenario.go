package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a rendering test scenario: a set of query definitions and
// cases that render them and check the output.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definitions lists definition sources. Paths are relative to the
	// scenario file.
	Definitions []DefinitionSource `yaml:"definitions"`

	// Cases render one definition each and check the result.
	Cases []Case `yaml:"cases"`

	// Dir is the directory relative paths resolve against. LoadScenario
	// sets it to the scenario file's directory.
	Dir string `yaml:"-"`
}

// DefinitionSource is either a path to a definition file or directory, or
// an inline definition in the same shape the YAML loader accepts.
type DefinitionSource struct {
	Path   string         `yaml:"path,omitempty"`
	Inline map[string]any `yaml:"inline,omitempty"`
}

// Case renders a single definition.
type Case struct {
	// Definition is the name of the definition to render.
	Definition string `yaml:"definition"`

	// WhereOnly overrides the definition's own where_only setting.
	WhereOnly *bool `yaml:"where_only,omitempty"`

	// Expect lists the checks to run. A case with no expectations only
	// requires the definition to build.
	Expect Expectation `yaml:"expect"`
}

// Expectation is evaluated against a rendered fragment.
type Expectation struct {
	// Equals requires the fragment to match exactly.
	Equals *string `yaml:"equals,omitempty"`

	// Contains lists substrings that must appear.
	Contains []string `yaml:"contains,omitempty"`

	// NotContains lists substrings that must not appear.
	NotContains []string `yaml:"not_contains,omitempty"`

	// Order lists element names that must open in this order. Other
	// elements may appear between them.
	Order []string `yaml:"order,omitempty"`

	// LintClean requires the lint pass to report (or not report) warnings.
	LintClean *bool `yaml:"lint_clean,omitempty"`

	// Error expects the definition to fail to build with a message
	// containing this text. No other expectation applies.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. dir is used to resolve definition
// paths.
func ParseScenario(data []byte, dir string) (*Scenario, error) {
	// Strict field validation catches typos like "case:" vs "cases:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.Dir = dir

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// resolve returns p relative to the scenario directory.
func (s *Scenario) resolve(p string) string {
	if filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Definitions) == 0 {
		return fmt.Errorf("definitions list is required and must be non-empty")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, src := range s.Definitions {
		switch {
		case src.Path != "" && src.Inline != nil:
			return fmt.Errorf("definitions[%d]: path and inline are mutually exclusive", i)
		case src.Path != "":
			resolved := s.resolve(src.Path)
			if _, err := os.Stat(resolved); os.IsNotExist(err) {
				return &DefinitionNotFoundError{
					Scenario:     s.Name,
					Path:         src.Path,
					ResolvedPath: resolved,
				}
			}
		case src.Inline != nil:
		default:
			return fmt.Errorf("definitions[%d]: path or inline is required", i)
		}
	}

	for i, c := range s.Cases {
		if c.Definition == "" {
			return fmt.Errorf("cases[%d]: definition is required", i)
		}
		if c.Expect.Error != "" && c.Expect.hasOutputChecks() {
			return fmt.Errorf("cases[%d].expect: error cannot be combined with other expectations", i)
		}
	}

	return nil
}

func (e Expectation) hasOutputChecks() bool {
	return e.Equals != nil || len(e.Contains) > 0 || len(e.NotContains) > 0 ||
		len(e.Order) > 0 || e.LintClean != nil
}
