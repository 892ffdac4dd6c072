package kambam

// Command is a parsed CLI subcommand.
type Command interface {
	Name() string
}

// RunCommand starts the HTTP server and the realtime sync coordinator.
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }

// MigrateCommand applies schema migrations on every wired backend and exits.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// SeedCommand installs the default columns, roles, settings and the welcome
// task, then exits. Seeding is idempotent.
type SeedCommand struct{}

func (c *SeedCommand) Name() string { return "seed" }
