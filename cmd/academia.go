package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/9rafa9-a/academia/internal/audio"
	"github.com/9rafa9-a/academia/internal/config"
	"github.com/9rafa9-a/academia/internal/haptic"
	"github.com/9rafa9-a/academia/internal/history"
	"github.com/9rafa9-a/academia/internal/logging"
	"github.com/9rafa9-a/academia/internal/plans"
	"github.com/9rafa9-a/academia/internal/trainer"
)

const uiLogBuffer = 256

func main() {
	// run returns before exiting so its deferred closers always execute
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	cfg, err := config.Load(config.NewFlagSet("academia"), args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	uiLogChan := make(chan string, uiLogBuffer)
	logger, logCloser := logging.Setup(logging.Params{
		LogFileName: cfg.LogFile,
		LogLevel:    cfg.LogLevel,
		UILines:     uiLogChan,
	})
	defer func() {
		if err != nil {
			logger.Errorf("Main: exited with errors: %v", err)
		}
		err = multierr.Append(err, logCloser.Close())
	}()

	catalog, err := plans.Seed()
	if err != nil {
		return fmt.Errorf("load built-in plans: %w", err)
	}
	if cfg.PlansFile != "" {
		extra, err := plans.LoadFile(cfg.PlansFile)
		if err != nil {
			return fmt.Errorf("load plans file: %w", err)
		}
		catalog = catalog.Merge(extra)
		logger.Infof("Main: plans merged from %s", cfg.PlansFile)
	}

	store := history.NewStore(logger, cfg.DataDir)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	app := tview.NewApplication().SetScreen(screen)

	sound := audio.NewFallbackDevice(audio.NewOtoDevice(audio.DefaultSampleRate), audio.NewTerminalDevice(screen))
	model := trainer.NewUIModel(logger, uiLogChan, cfg.DataDir)
	coach := trainer.NewCoach(trainer.NewCoachArgs{
		Model:         model,
		Synth:         audio.NewSynthesizer(sound, logger),
		Store:         store,
		Pulser:        haptic.LogPulser{Logger: logger},
		Logger:        logger,
		FrameInterval: cfg.FrameInterval(),
	})
	logger.Infof("Main: audio output %T", sound.Active())
	if cfg.Muted && !coach.State().Muted {
		coach.ToggleMute()
	}

	controller := trainer.NewUIController(model, coach, catalog, logger)
	if cfg.User != "" {
		controller.SelectUser(cfg.User)
	}

	view := trainer.NewCursesUIView(logger, app, model)
	base := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   view,
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})

	logger.Infof("Main: history at %s", store.Path())
	runErr := base.Run()

	base.Shutdown()
	shutdownErr := controller.Shutdown()
	model.Shutdown()

	if err := multierr.Append(runErr, shutdownErr); err != nil {
		return err
	}
	logger.Infof("Main: bye")
	return nil
}
