package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/regmon-lab/themis/pkg/cli/config"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/repository/memory"
)

func writeOrgConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "org.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadOrgConfig(t *testing.T) {
	path := writeOrgConfig(t, `
[[department]]
id = "credit"
name = "Credit Risk"

[[user]]
id = "alice"
role = "compliance_admin"
email = "alice@example.com"
api_token = "tok-alice"

[[user]]
id = "bob"
role = "department_user"
department = "credit"
email = "bob@example.com"
api_token = "tok-bob"

[[holiday]]
date = "2024-03-06"
name = "founding day"
`)

	cfg, err := config.LoadOrgConfig(path)
	gt.NoError(t, err).Required()

	gt.Array(t, cfg.Departments).Length(1)
	gt.Array(t, cfg.Users).Length(2)
	gt.Array(t, cfg.Holidays).Length(1)
	gt.Value(t, cfg.Users[1].Department).Equal("credit")
}

func TestLoadOrgConfig_Invalid(t *testing.T) {
	t.Run("unknown department reference", func(t *testing.T) {
		path := writeOrgConfig(t, `
[[user]]
id = "bob"
role = "department_user"
department = "ghost"
email = "bob@example.com"
`)
		_, err := config.LoadOrgConfig(path)
		gt.Error(t, err)
	})

	t.Run("duplicate department", func(t *testing.T) {
		path := writeOrgConfig(t, `
[[department]]
id = "credit"
name = "Credit Risk"

[[department]]
id = "credit"
name = "Credit Risk Again"
`)
		_, err := config.LoadOrgConfig(path)
		gt.Error(t, err)
	})

	t.Run("holiday without a name", func(t *testing.T) {
		path := writeOrgConfig(t, `
[[holiday]]
date = "2024-03-06"
`)
		_, err := config.LoadOrgConfig(path)
		gt.Error(t, err)
	})

	t.Run("malformed TOML", func(t *testing.T) {
		path := writeOrgConfig(t, `[[department]`)
		_, err := config.LoadOrgConfig(path)
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadOrgConfig(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err)
	})
}

func TestOrgConfig_Apply(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	path := writeOrgConfig(t, `
[[department]]
id = "credit"
name = "Credit Risk"

[[user]]
id = "bob"
role = "department_user"
department = "credit"
email = "bob@example.com"
api_token = "tok-bob"

[[holiday]]
date = "2024-03-06"
name = "founding day"
`)

	cfg, err := config.LoadOrgConfig(path)
	gt.NoError(t, err).Required()
	gt.NoError(t, cfg.Apply(ctx, repo)).Required()

	dept, err := repo.Department().Get(ctx, "credit")
	gt.NoError(t, err).Required()
	gt.Value(t, dept.Name).Equal("Credit Risk")

	user, err := repo.User().GetByToken(ctx, "tok-bob")
	gt.NoError(t, err).Required()
	gt.Value(t, user).NotNil().Required()
	gt.Value(t, user.ID).Equal(types.UserID("bob"))
	gt.True(t, user.Active)

	holidays, err := repo.Holiday().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, holidays).Length(1)
	gt.Value(t, holidays[0].Label).Equal("founding day")
}
