package config

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// OrgConfig is the organization seed loaded from TOML: departments, users
// and public holidays.
type OrgConfig struct {
	Departments []Department `toml:"department"`
	Users       []User       `toml:"user"`
	Holidays    []Holiday    `toml:"holiday"`
}

// Department represents a department configuration
type Department struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the Department is valid
func (d *Department) Validate() error {
	id := types.DepartmentID(d.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid department ID")
	}
	if d.Name == "" {
		return goerr.New("department name is required", goerr.V("id", d.ID))
	}
	return nil
}

// User represents a user configuration
type User struct {
	ID         string `toml:"id"`
	Role       string `toml:"role"`
	Department string `toml:"department"`
	Email      string `toml:"email"`
	APIToken   string `toml:"api_token"`
}

// Validate checks if the User is valid
func (u *User) Validate() error {
	user := u.toModel()
	if err := user.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user", goerr.V("id", u.ID))
	}
	return nil
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:           types.UserID(u.ID),
		Role:         types.Role(u.Role),
		DepartmentID: types.DepartmentID(u.Department),
		Email:        u.Email,
		APIToken:     u.APIToken,
		Active:       true,
	}
}

// Holiday represents a public holiday configuration
type Holiday struct {
	Date string `toml:"date"`
	Name string `toml:"name"`
}

// Validate checks if the Holiday is valid
func (h *Holiday) Validate() error {
	if _, err := time.Parse("2006-01-02", h.Date); err != nil {
		return goerr.Wrap(err, "invalid holiday date", goerr.V("date", h.Date))
	}
	if h.Name == "" {
		return goerr.New("holiday name is required", goerr.V("date", h.Date))
	}
	return nil
}

// Validate checks if the OrgConfig is valid
func (o *OrgConfig) Validate() error {
	deptIDs := make(map[string]bool)
	for _, d := range o.Departments {
		if err := d.Validate(); err != nil {
			return goerr.Wrap(err, "invalid department")
		}
		if deptIDs[d.ID] {
			return goerr.New("duplicate department ID", goerr.V("id", d.ID))
		}
		deptIDs[d.ID] = true
	}

	userIDs := make(map[string]bool)
	for _, u := range o.Users {
		if err := u.Validate(); err != nil {
			return err
		}
		if userIDs[u.ID] {
			return goerr.New("duplicate user ID", goerr.V("id", u.ID))
		}
		if u.Department != "" && !deptIDs[u.Department] {
			return goerr.New("user references unknown department",
				goerr.V("id", u.ID), goerr.V("department", u.Department))
		}
		userIDs[u.ID] = true
	}

	for _, h := range o.Holidays {
		if err := h.Validate(); err != nil {
			return goerr.Wrap(err, "invalid holiday")
		}
	}

	return nil
}

// LoadOrgConfig loads the organization seed from a TOML file
func LoadOrgConfig(path string) (*OrgConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read org config file", goerr.V("path", path))
	}

	var cfg OrgConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "org config validation failed", goerr.V("path", path))
	}

	return &cfg, nil
}

// Apply upserts the seed into the repository
func (o *OrgConfig) Apply(ctx context.Context, repo interfaces.Repository) error {
	for _, d := range o.Departments {
		dept := &model.Department{
			ID:   types.DepartmentID(d.ID),
			Name: d.Name,
		}
		if err := repo.Department().Put(ctx, dept); err != nil {
			return goerr.Wrap(err, "failed to seed department", goerr.V("id", d.ID))
		}
	}

	for _, u := range o.Users {
		if err := repo.User().Put(ctx, u.toModel()); err != nil {
			return goerr.Wrap(err, "failed to seed user", goerr.V("id", u.ID))
		}
	}

	for _, h := range o.Holidays {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			return goerr.Wrap(err, "invalid holiday date", goerr.V("date", h.Date))
		}
		holiday := &model.PublicHoliday{
			Date:  date,
			Label: h.Name,
		}
		if err := repo.Holiday().Put(ctx, holiday); err != nil {
			return goerr.Wrap(err, "failed to seed holiday", goerr.V("date", h.Date))
		}
	}

	return nil
}

// OrgFlag returns the shared flag for the organization seed file path
func OrgFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "org-config",
		Usage:       "Path to the organization seed TOML (departments, users, holidays)",
		Sources:     cli.EnvVars("THEMIS_ORG_CONFIG"),
		Destination: dst,
	}
}
