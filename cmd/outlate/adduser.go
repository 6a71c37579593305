package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"github.com/mmynk/outlate/internal/auth"
	"github.com/mmynk/outlate/internal/idgen"
	"github.com/mmynk/outlate/internal/storage/sqlite"
)

const defaultDBPath = "./data/outlate.db"

type addUserCmd struct {
	email    string
	name     string
	password string
	dbPath   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newAddUserCmd() *addUserCmd {
	return &addUserCmd{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

func (*addUserCmd) Name() string     { return "adduser" }
func (*addUserCmd) Synopsis() string { return "creates an account on the server database" }
func (*addUserCmd) Usage() string {
	return `outlate adduser -email <email> -name <display name> [-password <pw>] [-db <path>]

  Creates a user directly in the SQLite database. The password is prompted
  for when -password is omitted.

`
}

func (c *addUserCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email address to log in with.")
	f.StringVar(&c.name, "name", "", "Display name.")
	f.StringVar(&c.password, "password", "", "Password (optional, will prompt if omitted).")
	f.StringVar(&c.dbPath, "db", defaultDBPath, "Path to the database file.")
}

func (c *addUserCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.email == "" || c.name == "" {
		fmt.Fprintln(c.stderr, "Error: -email and -name are required.")
		return subcommands.ExitUsageError
	}
	if err := c.run(ctx); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *addUserCmd) run(ctx context.Context) error {
	password := c.password
	if password == "" {
		fmt.Fprint(c.stdout, "Password: ")
		var err error
		password, err = readPassword(c.stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(c.stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// DB_PATH overrides the default, but not an explicit -db.
	if path := os.Getenv("DB_PATH"); path != "" && c.dbPath == defaultDBPath {
		c.dbPath = path
	}

	store, err := sqlite.New(c.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	user, err := auth.NewPasswordAuthenticator(store, idgen.UUID{}).Register(ctx, c.email, c.name, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "User %s created with ID %s\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Not a terminal (tests, pipes): read one line.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
