// Package validation checks resolution requests before they reach the resolver
package validation

import (
	"fmt"
	"strings"

	"github.com/cratekit/cratekit/pkg/types"
)

// ValidationLevel represents error severity
type ValidationLevel string

const (
	ValidationLevelError   ValidationLevel = "error"
	ValidationLevelWarning ValidationLevel = "warning"
)

// ValidationError is one problem found in a request
type ValidationError struct {
	Flag    string
	Message string
	Level   ValidationLevel
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("--%s %s", e.Flag, e.Message)
}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// AddError adds an error to the validation result
func (r *ValidationResult) AddError(flag, message string, level ValidationLevel) {
	r.Errors = append(r.Errors, ValidationError{
		Flag:    flag,
		Message: message,
		Level:   level,
	})
	if level == ValidationLevelError {
		r.Valid = false
	}
}

// Err returns the first error-level problem, or nil
func (r *ValidationResult) Err() error {
	for i := range r.Errors {
		if r.Errors[i].Level == ValidationLevelError {
			return &r.Errors[i]
		}
	}
	return nil
}

// Warnings returns the warning-level problems
func (r *ValidationResult) Warnings() []ValidationError {
	var warnings []ValidationError
	for _, e := range r.Errors {
		if e.Level == ValidationLevelWarning {
			warnings = append(warnings, e)
		}
	}
	return warnings
}

// ValidateFilter checks a request for flag combinations cargo rejects and for
// values that cannot name anything
func ValidateFilter(f types.Filter) *ValidationResult {
	result := &ValidationResult{Valid: true}

	validateExclusive(f, result)
	validateNames("bin", f.Bins, result)
	validateNames("example", f.Examples, result)
	validateTarget(f.Target, result)
	validateProfile(f.Profile, result)

	if strings.ContainsAny(f.Package, " \t") {
		result.AddError("package", "cannot contain whitespace", ValidationLevelError)
	}

	return result
}

func validateExclusive(f types.Filter, result *ValidationResult) {
	if f.Release && f.Profile != "" {
		result.AddError("release", "cannot be used with --profile", ValidationLevelError)
	}
	if f.AllBins && len(f.Bins) > 0 {
		result.AddError("bins", "cannot be used with --bin", ValidationLevelError)
	}
	if f.AllExamples && len(f.Examples) > 0 {
		result.AddError("examples", "cannot be used with --example", ValidationLevelError)
	}
}

func validateNames(flag string, names []string, result *ValidationResult) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		switch {
		case strings.TrimSpace(name) == "":
			result.AddError(flag, "requires a name", ValidationLevelError)
		case strings.ContainsAny(name, " \t"):
			result.AddError(flag, fmt.Sprintf("%q cannot contain whitespace", name), ValidationLevelError)
		case seen[name]:
			result.AddError(flag, fmt.Sprintf("%q given more than once", name), ValidationLevelWarning)
		}
		seen[name] = true
	}
}

func validateTarget(target string, result *ValidationResult) {
	switch {
	case target == "":
	case strings.ContainsAny(target, " \t"):
		result.AddError("target", fmt.Sprintf("%q is not a target triple", target), ValidationLevelError)
	case strings.HasSuffix(target, ".json"):
		// custom target specification file
	case strings.ContainsAny(target, "/\\"):
		result.AddError("target", fmt.Sprintf("%q is not a target triple", target), ValidationLevelError)
	case !strings.Contains(target, "-"):
		result.AddError("target", fmt.Sprintf("%q does not look like a target triple", target), ValidationLevelWarning)
	}
}

func validateProfile(profile string, result *ValidationResult) {
	switch profile {
	case "":
	case "debug":
		result.AddError("profile", `"debug" is the output directory of the dev profile`, ValidationLevelWarning)
	default:
		if strings.ContainsAny(profile, " \t/\\") {
			result.AddError("profile", fmt.Sprintf("%q is not a valid profile name", profile), ValidationLevelError)
		}
	}
}
