package kambam

import (
	"context"
	"fmt"
	"os"
)

// Main parses arguments, builds the application and dispatches the chosen
// subcommand. It is the whole program behind cmd/kambam.
func Main(ctx context.Context, args []string) error {
	config, cmd, err := Parse(args, os.Stderr)
	if err != nil {
		return err
	}

	app, err := New(ctx, config)
	if err != nil {
		return err
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *RunCommand:
		return app.Run(ctx, c)
	case *MigrateCommand:
		return app.Migrate(ctx, c)
	case *SeedCommand:
		return app.Seed(ctx, c)
	default:
		return fmt.Errorf("unhandled command %q", cmd.Name())
	}
}
