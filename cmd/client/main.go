package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/gophauth/internal/client/api"
	"github.com/iudanet/gophauth/internal/client/auth"
	"github.com/iudanet/gophauth/internal/client/cli"
	"github.com/iudanet/gophauth/internal/client/iocli"
	"github.com/iudanet/gophauth/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "gophauth-client.db", "Path to local session database")

	flag.Parse()

	stdio := iocli.NewStdio()

	if *showVersion {
		printVersion(stdio)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		return errors.New("command is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)
	authService := auth.NewService(apiClient, boltStorage)

	err = cli.New(stdio, authService, apiClient).Run(ctx, args[0], args[1:])
	if errors.Is(err, cli.ErrUnknownCommand) {
		cli.PrintUsage(stdio)
	}
	return err
}

func printVersion(out iocli.IO) {
	out.Printf("gophauth client\n")
	out.Printf("Version:    %s\n", Version)
	out.Printf("Build Date: %s\n", BuildDate)
	out.Printf("Git Commit: %s\n", GitCommit)
}
