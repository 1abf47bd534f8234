package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/roach88/camlkit/internal/querydef"
)

// LoadResult contains the definitions loaded from a file or directory.
type LoadResult struct {
	Definitions []*querydef.Definition
	FileCount   int // number of definition files found
}

// LoadError represents an error that occurred while loading definitions.
type LoadError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Definition string `json:"definition,omitempty"`
	Field      string `json:"field,omitempty"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
}

func (e *LoadError) Error() string {
	var prefix string
	switch {
	case e.File != "" && e.Line > 0:
		prefix = fmt.Sprintf("%s:%d:%d: ", e.File, e.Line, e.Column)
	case e.File != "":
		prefix = e.File + ": "
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

// LoadDefinitions loads every definition under target, which may be a single
// .yaml/.yml/.cue file or a directory. Failures are returned as *LoadError.
func LoadDefinitions(target string) (*LoadResult, error) {
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", target)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}
	}

	fileCount := 1
	if info.IsDir() {
		yamlFiles, cueFiles, err := querydef.FindDefinitionFiles(target)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		fileCount = len(yamlFiles) + len(cueFiles)
		if fileCount == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no definition files found in %s", target)}
		}
	}

	defs, err := querydef.Load(target)
	if err != nil {
		return nil, convertLoadError(err)
	}
	if len(defs) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no definitions found in %s", target)}
	}

	return &LoadResult{Definitions: defs, FileCount: fileCount}, nil
}

// convertLoadError converts a querydef error to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var defErr *querydef.DefinitionError
	if errors.As(err, &defErr) {
		return fromDefinitionError(defErr, MapFieldToErrorCode(defErr.Field))
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// fromDefinitionError copies location details out of a DefinitionError.
func fromDefinitionError(defErr *querydef.DefinitionError, code string) *LoadError {
	loadErr := &LoadError{
		Code:       code,
		Message:    defErr.Message,
		Definition: defErr.Definition,
		Field:      defErr.Field,
		File:       defErr.File,
		Line:       defErr.Line,
		Column:     defErr.Column,
	}
	if defErr.Pos.IsValid() {
		loadErr.File = defErr.Pos.Filename()
		loadErr.Line = defErr.Pos.Line()
		loadErr.Column = defErr.Pos.Column()
	}
	if code == ErrCodeGeneric && strings.HasPrefix(defErr.Message, "duplicate definition name") {
		loadErr.Code = ErrCodeDuplicate
	}
	return loadErr
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No definition files found
	ErrCodeLoadFailed  = "E004" // File could not be read or parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Definition did not build into a query
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStoreFailed = "E008" // Catalog open/read/write error
	ErrCodeDuplicate   = "E009" // Definition name used twice

	// Definition errors, by the section they occur in
	ErrCodeInvalidName      = "E101" // Missing or malformed name
	ErrCodeInvalidOptions   = "E102" // Bad description or where_only
	ErrCodeInvalidWhere     = "E110" // Invalid where clause
	ErrCodeInvalidOrderBy   = "E111" // Invalid order_by entry
	ErrCodeInvalidGroupBy   = "E112" // Invalid group_by entry
	ErrCodeLintFailed       = "E120" // Lint warnings in strict mode
	ErrCodeTestFailed       = "E130" // One or more scenarios failed
	ErrCodeUnknownQueryName = "E140" // No catalog entry with that name
)

// MapFieldToErrorCode maps a definition error field path (e.g.
// "where.and[0].eq.field") to an error code by its top-level section. A
// leading "queries[N]." from multi-definition YAML files is ignored.
func MapFieldToErrorCode(field string) string {
	section := field
	if strings.HasPrefix(section, "queries[") {
		if i := strings.Index(section, "]."); i >= 0 {
			section = section[i+2:]
		}
	}
	if i := strings.IndexAny(section, ".["); i >= 0 {
		section = section[:i]
	}
	switch section {
	case "name":
		return ErrCodeInvalidName
	case "description", "where_only":
		return ErrCodeInvalidOptions
	case "where":
		return ErrCodeInvalidWhere
	case "order_by":
		return ErrCodeInvalidOrderBy
	case "group_by":
		return ErrCodeInvalidGroupBy
	default:
		return ErrCodeGeneric
	}
}
