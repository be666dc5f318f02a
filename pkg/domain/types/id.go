package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// DepartmentID represents a unique identifier for a department
type DepartmentID string

// Validate checks if the DepartmentID is valid
func (d DepartmentID) Validate() error {
	if d == "" {
		return goerr.New("department ID cannot be empty")
	}
	if !idPattern.MatchString(string(d)) {
		return goerr.New("department ID must be lowercase alphanumeric with hyphens", goerr.V("id", d))
	}
	return nil
}

// String returns the string representation of DepartmentID
func (d DepartmentID) String() string {
	return string(d)
}

// UserID represents a unique identifier for a user (the login name)
type UserID string

// Validate checks if the UserID is valid
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}
