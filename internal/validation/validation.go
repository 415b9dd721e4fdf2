// Package validation checks installed assets for the metadata the asset
// library relies on.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/klauern/workspace-architect/internal/catalog"
	"github.com/klauern/workspace-architect/internal/model"
)

// Error represents a validation failure with context.
type Error struct {
	// Field is the name of the field or component that failed validation
	Field string
	// Message describes the validation failure
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted validation error message.
func (ve *Error) Error() string {
	if ve.Err != nil {
		return fmt.Sprintf("validation failed for %q: %s: %v", ve.Field, ve.Message, ve.Err)
	}
	return fmt.Sprintf("validation failed for %q: %s", ve.Field, ve.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (ve *Error) Unwrap() error {
	return ve.Err
}

// Errors collects multiple validation errors.
type Errors []error

// Error returns a formatted error message for all validation failures.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(ve), errors.Join(ve...))
}

// Options configures validation behavior.
type Options struct {
	// StrictMode treats warnings as failures
	StrictMode bool
}

// Result contains the outcome of a validation check.
type Result struct {
	// Valid indicates whether all validations passed
	Valid bool
	// Warnings contains non-fatal validation issues
	Warnings []string
	// Errors contains validation failures
	Errors []error
}

// AddError adds an error to the validation result.
func (r *Result) AddError(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the validation result.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns the combined validation error message.
func (r *Result) Error() error {
	if !r.HasErrors() {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return Errors(r.Errors)
}

// Passed reports whether the result is acceptable under opts.
func (r *Result) Passed(opts Options) bool {
	if opts.StrictMode && len(r.Warnings) > 0 {
		return false
	}
	return r.Valid
}

// Summary returns a human-readable summary of the validation result.
func (r *Result) Summary() string {
	if r.Valid && len(r.Warnings) == 0 {
		return "All validations passed"
	}
	var msg string
	if r.Valid {
		msg = "Validation passed with warnings"
	} else {
		msg = "Validation failed"
	}
	if len(r.Warnings) > 0 {
		msg += fmt.Sprintf(" (%d warning(s))", len(r.Warnings))
	}
	return msg
}

// skillName matches the lowercase-and-hyphens names skills must use.
var skillName = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateAsset checks a single asset's metadata.
func ValidateAsset(a catalog.Asset) *Result {
	result := &Result{Valid: true}

	if a.ParseErr != nil {
		result.AddError(&Error{
			Field:   a.Type.Singular(),
			Message: "cannot read metadata",
			Err:     a.ParseErr,
		})
		return result
	}

	switch a.Type {
	case model.ResourceSkills:
		validateSkill(a, result)
	case model.ResourceCollections:
		validateCollection(a, result)
	default:
		validateDocument(a, result)
	}
	return result
}

func requireDescription(a catalog.Asset, result *Result) {
	if a.Doc.String("description") == "" {
		result.AddError(&Error{
			Field:   "description",
			Message: "missing required field",
		})
	}
}

func validateSkill(a catalog.Asset, result *Result) {
	name := a.Doc.String("name")
	switch {
	case name == "":
		result.AddError(&Error{Field: "name", Message: "missing required field"})
	case !skillName.MatchString(name):
		result.AddError(&Error{Field: "name", Message: "Skill name must be lowercase with hyphens only"})
	case name != a.Name:
		result.AddWarning(fmt.Sprintf("name %q does not match directory %q", name, a.Name))
	}

	requireDescription(a, result)

	if !a.Doc.Has("license") {
		result.AddWarning("missing recommended field: license")
	}
	if !a.Doc.Has("metadata.version") {
		result.AddWarning("missing recommended field: metadata.version")
	}
}

func validateCollection(a catalog.Asset, result *Result) {
	requireDescription(a, result)
	if !a.Doc.Has("items") {
		result.AddWarning("collection has no items")
	}
}

func validateDocument(a catalog.Asset, result *Result) {
	if !a.Doc.HasFrontmatter {
		result.AddWarning("no frontmatter header")
	}
	requireDescription(a, result)

	var recommended []string
	switch a.Type {
	case model.ResourceAgents:
		recommended = []string{"model", "tools"}
	case model.ResourcePrompts:
		recommended = []string{"agent", "tools"}
	case model.ResourceInstructions:
		recommended = []string{"applyTo"}
	}
	for _, field := range recommended {
		if !a.Doc.Has(field) {
			result.AddWarning("missing recommended field: " + field)
		}
	}
}

// Report pairs an asset with its validation result.
type Report struct {
	Asset  catalog.Asset
	Result *Result
}

// ValidateType validates every installed asset of type t.
func ValidateType(lib *catalog.Library, t model.ResourceType) ([]Report, error) {
	assets, err := lib.List(t)
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(assets))
	for _, a := range assets {
		reports = append(reports, Report{Asset: a, Result: ValidateAsset(a)})
	}
	return reports, nil
}

// ValidateAll validates every asset of each type in types, in order. A type
// whose directory cannot be listed is reported in the returned error and the
// rest continue.
func ValidateAll(lib *catalog.Library, types []model.ResourceType) ([]Report, error) {
	var (
		reports []Report
		errs    []error
	)
	for _, t := range types {
		r, err := ValidateType(lib, t)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		reports = append(reports, r...)
	}
	return reports, errors.Join(errs...)
}

// Failed returns the reports that did not pass under opts.
func Failed(reports []Report, opts Options) []Report {
	var failed []Report
	for _, r := range reports {
		if !r.Result.Passed(opts) {
			failed = append(failed, r)
		}
	}
	return failed
}
