package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk location of the migrations, relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

const (
	embeddedDir = "migrations"
	dialect     = "postgres"
)

//go:embed migrations/*.sql
var embedded embed.FS

var versionRe = regexp.MustCompile(`^\d{14}$`)

// Runner executes goose commands against one Postgres database. An empty Dir
// runs the migrations compiled into the binary.
type Runner struct {
	DB  *sql.DB
	Dir string
}

func (r Runner) prepare() (string, error) {
	if r.DB == nil {
		return "", errors.New("db is required")
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if r.Dir == "" {
		goose.SetBaseFS(embedded)
		return embeddedDir, nil
	}
	goose.SetBaseFS(nil)
	return r.Dir, nil
}

// Run executes a raw goose command such as up, down or status.
func (r Runner) Run(ctx context.Context, command string, args ...string) error {
	dir, err := r.prepare()
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, r.DB, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func (r Runner) Up(ctx context.Context) error {
	return r.Run(ctx, "up")
}

// To moves the schema up or down until it sits at target.
func (r Runner) To(ctx context.Context, target int64) error {
	dir, err := r.prepare()
	if err != nil {
		return err
	}
	current, err := goose.GetDBVersion(r.DB)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, r.DB, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, r.DB, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

// ParseVersion accepts a YYYYMMDDHHMMSS migration version.
func ParseVersion(raw string) (int64, error) {
	if !versionRe.MatchString(raw) {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	return strconv.ParseInt(raw, 10, 64)
}
