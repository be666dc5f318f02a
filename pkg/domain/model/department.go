package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// Department represents an organizational unit that owns compliance tasks
type Department struct {
	ID   types.DepartmentID
	Name string
}

// Validate checks the department fields
func (d *Department) Validate() error {
	if err := d.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid department ID")
	}
	if d.Name == "" {
		return goerr.New("department name is required", goerr.V("id", d.ID))
	}
	return nil
}
