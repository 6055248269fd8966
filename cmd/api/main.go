package main

// @title           Notemarket API
// @version         1.0
// @description     Notes marketplace: purchases, payment reconciliation and seller payouts.

// @host      localhost:8888
// @BasePath  /

import (
	"context"
	"flag"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app"
)

func main() {
	configFile := flag.String("config", "", "path to a config file; overrides APP_CONFIG_FILE")
	flag.Parse()
	if *configFile != "" {
		_ = os.Setenv("APP_CONFIG_FILE", *configFile)
	}
	os.Exit(run())
}

// run starts the app, blocks until SIGINT/SIGTERM and returns the exit code.
func run() int {
	// The app logger may not exist yet if startup fails.
	fallback := zap.NewExample().Sugar()

	a := fx.New(app.Module)
	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		fallback.Errorw("notemarket failed to start", "err", err)
		return 1
	}

	sig := <-a.Wait()

	stopCtx, stop := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer stop()
	if err := a.Stop(stopCtx); err != nil {
		fallback.Errorw("notemarket failed to stop", "err", err)
		return 1
	}
	return sig.ExitCode
}
