// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Outlet and Article, along with
// their validation rules and domain-specific errors.
package entity

import (
	"errors"
	"fmt"
)

// Outlet represents a news source covering one or more geographic regions.
// Outlets are long-lived reference data owned by the registry; they are
// immutable for the duration of a harvest or metrics run.
type Outlet struct {
	ID          string
	Name        string
	HomepageURL string
	FeedURL     string
	Category    string
	Owner       string
	// Regions lists the region identifiers (e.g. county FIPS codes) this
	// outlet covers. An outlet with no regions contributes to no rollup.
	Regions []string
}

// Validate checks the Outlet's registry fields.
// An outlet needs an identifier and a name to be stored at all; whether it is
// harvestable (homepage or feed URL present) is decided by the harvester.
func (o *Outlet) Validate() error {
	if o.ID == "" {
		return &ValidationError{Field: "id", Message: "outlet id is required"}
	}
	if o.Name == "" {
		return &ValidationError{Field: "name", Message: "outlet name is required"}
	}
	return nil
}

// Resolvable reports whether the harvester has any location to work from.
// Outlets failing this check are skipped with a configuration warning.
func (o *Outlet) Resolvable() bool {
	return o.HomepageURL != "" || o.FeedURL != ""
}

// ErrUnresolvable indicates an outlet with neither a homepage nor a feed URL.
var ErrUnresolvable = errors.New("outlet has no homepage and no feed URL")

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
