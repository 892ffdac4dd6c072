package kambam

import (
	"flag"
	"fmt"
	"io"
)

// Parse reads CLI arguments and the environment into a Config and the chosen
// subcommand. Flags win over environment variables, environment variables win
// over defaults.
func Parse(args []string, output io.Writer) (*Config, Command, error) {
	config := &Config{
		SQLitePath:    getEnv("KAMBAM_SQLITE", "kambam.db"),
		SurrealDBURL:  getEnv("SURREALDB_URL", ""),
		SurrealDBNS:   getEnv("SURREALDB_NS", "kambam"),
		SurrealDBDB:   getEnv("SURREALDB_DB", "kambam"),
		SurrealDBUser: getEnv("SURREALDB_USER", "root"),
		SurrealDBPass: getEnv("SURREALDB_PASS", "root"),
		ServerPort:    getEnv("PORT", "3001"),
	}

	flags := flag.NewFlagSet("kambam", flag.ContinueOnError)
	flags.SetOutput(output)
	flags.StringVar(&config.ServerPort, "port", config.ServerPort, "HTTP listen port")
	flags.StringVar(&config.SQLitePath, "sqlite", config.SQLitePath, "path to the SQLite database file")
	flags.StringVar(&config.SurrealDBURL, "surrealdb", config.SurrealDBURL, "SurrealDB WebSocket URL, empty for local-only mode")
	flags.BoolVar(&config.ReadOnly, "read-only", false, "reject all writes")
	flags.Usage = func() {
		fmt.Fprintf(output, "Usage: kambam [flags] <command>\n\nCommands:\n")
		fmt.Fprintf(output, "  run      start the HTTP server (default)\n")
		fmt.Fprintf(output, "  migrate  apply schema migrations and exit\n")
		fmt.Fprintf(output, "  seed     install default board data and exit\n\nFlags:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}

	var cmd Command
	switch name := flags.Arg(0); name {
	case "", "run":
		cmd = &RunCommand{}
	case "migrate":
		cmd = &MigrateCommand{}
	case "seed":
		cmd = &SeedCommand{}
	default:
		flags.Usage()
		return nil, nil, fmt.Errorf("unknown command %q", name)
	}

	return config, cmd, nil
}
