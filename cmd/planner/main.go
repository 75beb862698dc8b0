package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/planner/internal/cli"
	"github.com/alexanderramin/planner/internal/config"
	"github.com/alexanderramin/planner/internal/db"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/remote"
	"github.com/alexanderramin/planner/internal/repository"
	"github.com/alexanderramin/planner/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogUseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	uow := db.NewSQLiteUnitOfWork(database)
	plans := service.NewPlanService(repository.NewSQLitePlanRepo(database), uow, observer)
	events := service.NewEventService(repository.NewSQLiteEventRepo(database), uow, observer)

	// Edits go to the planning API when one is configured, the local
	// store otherwise.
	var backend editor.Backend = service.NewLocalBackend(plans, events)
	if cfg.Remote() {
		var apiObserver remote.Observer = remote.NoopObserver{}
		if cfg.LogAPICalls {
			apiObserver = remote.NewLogObserver(os.Stderr)
		}
		backend = remote.NewClient(remote.Config{
			BaseURL: cfg.APIURL,
			Token:   cfg.APIToken,
			Timeout: cfg.APITimeout,
		}, apiObserver)
	}

	app := &cli.App{
		Plans:   plans,
		Events:  events,
		Backend: backend,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
