package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/internal/snapshot"
)

type backupService interface {
	Export(ctx context.Context, uid string) (*models.Snapshot, error)
	Import(ctx context.Context, uid string, r io.Reader, opts dto.RestoreOptions) (dto.RestoreReport, error)
	Validate(r io.Reader) (dto.BackupSummary, error)
}

type cloudService interface {
	Sync(ctx context.Context, uid string) (dto.CloudSyncResult, error)
	Restore(ctx context.Context, uid string, opts dto.RestoreOptions) (dto.RestoreReport, error)
	Clear(ctx context.Context, uid string) error
}

var errUserRequired = errors.New("-user is required")

// restoreFlags registers the flags shared by import and cloud-restore.
type restoreFlags struct {
	skip    *string
	noRemap *bool
}

func addRestoreFlags(fs *flag.FlagSet) restoreFlags {
	return restoreFlags{
		skip:    fs.String("skip", "", "comma separated steps to skip (accounts,goals,budget,categories,limits,transactions)"),
		noRemap: fs.Bool("no-remap", false, "send transaction account ids unchanged"),
	}
}

func (f restoreFlags) options() (dto.RestoreOptions, error) {
	opts := dto.DefaultRestoreOptions()
	opts.RemapAccounts = !*f.noRemap
	if *f.skip == "" {
		return opts, nil
	}
	for _, name := range strings.Split(*f.skip, ",") {
		step, err := dto.ParseRestoreStep(name)
		if err != nil {
			return opts, err
		}
		opts.Disable(step)
	}
	return opts, nil
}

func exportCommand() *command {
	c := &command{
		name:        "export",
		description: "Write a user's data to a backup file",
		usage:       "neko-backup export -user <id> [-out file|-]",
	}
	c.run = func(ctx context.Context, env *environment, args []string) error {
		fs := c.flagSet()
		uid := fs.String("user", "", "user id")
		out := fs.String("out", "", "output path, - for stdout (default neko-finance-backup-<date>.json)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *uid == "" {
			return errUserRequired
		}

		snap, err := env.backup.Export(ctx, *uid)
		if err != nil {
			return err
		}
		if *out == "-" {
			return snapshot.Encode(env.stdout, snap)
		}
		path := *out
		if path == "" {
			path = snapshot.FileName(time.Now())
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := snapshot.Encode(f, snap); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(env.stdout, path)
		return nil
	}
	return c
}

func importCommand() *command {
	c := &command{
		name:        "import",
		description: "Restore a backup file into a user's account",
		usage:       "neko-backup import -user <id> [-skip steps] [-no-remap] <file>",
	}
	c.run = func(ctx context.Context, env *environment, args []string) error {
		fs := c.flagSet()
		uid := fs.String("user", "", "user id")
		rf := addRestoreFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *uid == "" {
			return errUserRequired
		}
		if fs.NArg() < 1 {
			return errors.New("backup file path required")
		}
		opts, err := rf.options()
		if err != nil {
			return err
		}

		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()

		report, err := env.backup.Import(ctx, *uid, f, opts)
		if err != nil {
			return err
		}
		return writeReport(env, report)
	}
	return c
}

func validateCommand() *command {
	c := &command{
		name:        "validate",
		description: "Check a backup file without restoring it",
		usage:       "neko-backup validate <file>",
	}
	c.run = func(_ context.Context, env *environment, args []string) error {
		fs := c.flagSet()
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() < 1 {
			return errors.New("backup file path required")
		}
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()

		summary, err := env.backup.Validate(f)
		if err != nil {
			return err
		}
		return writeJSON(env.stdout, summary)
	}
	return c
}

func cloudSaveCommand() *command {
	c := &command{
		name:        "cloud-save",
		description: "Mirror a user's data into cloud storage",
		usage:       "neko-backup cloud-save -user <id>",
	}
	c.run = func(ctx context.Context, env *environment, args []string) error {
		fs := c.flagSet()
		uid := fs.String("user", "", "user id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *uid == "" {
			return errUserRequired
		}
		res, err := env.cloud.Sync(ctx, *uid)
		if err != nil {
			return err
		}
		return writeJSON(env.stdout, res)
	}
	return c
}

func cloudRestoreCommand() *command {
	c := &command{
		name:        "cloud-restore",
		description: "Restore a user's data from cloud storage",
		usage:       "neko-backup cloud-restore -user <id> [-skip steps] [-no-remap]",
	}
	c.run = func(ctx context.Context, env *environment, args []string) error {
		fs := c.flagSet()
		uid := fs.String("user", "", "user id")
		rf := addRestoreFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *uid == "" {
			return errUserRequired
		}
		opts, err := rf.options()
		if err != nil {
			return err
		}
		report, err := env.cloud.Restore(ctx, *uid, opts)
		if err != nil {
			return err
		}
		return writeReport(env, report)
	}
	return c
}

func cloudClearCommand() *command {
	c := &command{
		name:        "cloud-clear",
		description: "Remove a user's data from cloud storage",
		usage:       "neko-backup cloud-clear -user <id>",
	}
	c.run = func(ctx context.Context, env *environment, args []string) error {
		fs := c.flagSet()
		uid := fs.String("user", "", "user id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *uid == "" {
			return errUserRequired
		}
		return env.cloud.Clear(ctx, *uid)
	}
	return c
}

func writeReport(env *environment, report dto.RestoreReport) error {
	if !report.Complete {
		env.partial = true
	}
	return writeJSON(env.stdout, report)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
