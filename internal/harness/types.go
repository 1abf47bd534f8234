package harness

// CaseResult is the outcome of one case: the fragment it rendered and any
// failed expectations.
type CaseResult struct {
	Definition string   `json:"definition"`
	WhereOnly  bool     `json:"where_only"`
	Fragment   string   `json:"fragment,omitempty"`
	Hash       string   `json:"hash,omitempty"`
	Lint       []string `json:"lint,omitempty"`
	BuildError string   `json:"build_error,omitempty"`
	Pass       bool     `json:"pass"`
	Errors     []string `json:"errors,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every case passed.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in scenario order.
	Cases []CaseResult `json:"cases"`

	// Errors collects every case error, prefixed with the case index and
	// definition name. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase appends a case result, copying its errors into the scenario-level
// error list.
func (r *Result) AddCase(c CaseResult) {
	index := len(r.Cases)
	r.Cases = append(r.Cases, c)
	for _, e := range c.Errors {
		r.AddError(formatCaseError(index, c.Definition, e))
	}
}
