package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/pricewatch/pkg/capture"
	"github.com/umputun/pricewatch/pkg/config"
	"github.com/umputun/pricewatch/pkg/repository"
	"github.com/umputun/pricewatch/pkg/scheduler"
	"github.com/umputun/pricewatch/pkg/service"
	"github.com/umputun/pricewatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = opts.NoColor
	setupLog(opts.Debug)

	log.Printf("[INFO] starting pricewatch version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		cancel()
		os.Exit(1)
	}
	cancel()

	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repos, err := repository.NewRepositories(ctx, dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer func() {
		if e := repos.Close(); e != nil {
			log.Printf("[WARN] storage close failed: %v", e)
		}
	}()

	// claims orphaned by an unclean shutdown would block items forever
	if err := repos.Item.ResetInFlight(ctx); err != nil {
		return fmt.Errorf("reset in-flight claims: %w", err)
	}

	browserCfg := cfg.GetBrowserConfig()
	pool := capture.NewPool(capture.Config{
		RemoteURL:     browserCfg.RemoteURL,
		Size:          browserCfg.PoolSize,
		ScreenshotDir: browserCfg.ScreenshotDir,
	})
	if err := pool.Start(ctx); err != nil {
		// captures reconnect on demand, a browser that is down at startup
		// should not keep the API from coming up
		log.Printf("[WARN] browser not available yet: %v", err)
	}
	defer func() {
		if e := pool.Close(); e != nil {
			log.Printf("[WARN] browser pool close failed: %v", e)
		}
	}()

	sched := scheduler.NewScheduler(repos.Item, repos.History, repos.Profile, repos.Setting,
		pool, nil, nil, scheduler.Config{
			TickInterval: cfg.Schedule.TickInterval,
			MaxWorkers:   browserCfg.PoolSize,
		})
	sched.Start(ctx)
	defer sched.Stop()

	tracker := service.NewTrackerService(repos.Item, repos.History, repos.Profile, repos.Setting)

	srv := server.New(cfg, tracker, sched, revision, browserCfg.ScreenshotDir, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// dbConfig maps the file config's database section to the repository config,
// conn_max_lifetime is configured in seconds
func dbConfig(cfg *config.Config) repository.Config {
	return repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	}
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = append(logOpts, lgr.Debug)
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
