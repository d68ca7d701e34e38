package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dzenfone819-debug/neko-finance/internal/bootstrap"
	"github.com/dzenfone819-debug/neko-finance/internal/cloud"
	"github.com/dzenfone819-debug/neko-finance/internal/config"
	"github.com/dzenfone819-debug/neko-finance/internal/services"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

// environment is the wiring every command shares.
type environment struct {
	backup backupService
	cloud  cloudService
	stdout io.Writer
	// partial is set when a restore finished with failures.
	partial bool
}

func main() {
	reg := newRegistry(
		exportCommand(),
		importCommand(),
		validateCommand(),
		cloudSaveCommand(),
		cloudRestoreCommand(),
		cloudClearCommand(),
	)

	if len(os.Args) < 2 {
		reg.printUsage()
		os.Exit(2)
	}
	cmd, ok := reg.lookup(os.Args[1])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		reg.printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.New()
	bs, err := bootstrap.Run(cfg, logger.NewConsoleHandler)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer bs.Close()
	ctx = logger.ToContext(ctx, bs.Log)

	backend, err := bs.Backend(ctx, cfg)
	if err != nil {
		bs.Log.Error("backend init failed", "error", err)
		os.Exit(1)
	}
	rserv := services.NewRestoreService(backend)
	bserv := services.NewBackupService(backend, rserv)
	env := &environment{
		backup: bserv,
		cloud:  services.NewCloudService(cloud.NewMirror(bs.CloudKV(cfg)), bserv, rserv),
		stdout: os.Stdout,
	}

	if err := cmd.run(ctx, env, os.Args[2:]); err != nil {
		bs.Log.Error(cmd.name+" failed", "error", err)
		os.Exit(1)
	}
	if env.partial {
		os.Exit(3)
	}
}
