package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/hlsrelay/cmd"
	"github.com/smazurov/hlsrelay/internal/config"
	"github.com/smazurov/hlsrelay/internal/logging"
)

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *config.Options) {
		// Load configuration automatically
		loadErr := config.LoadConfig(opts, cli.Root())

		logging.Initialize(opts.Logging())
		logger := logging.GetLogger("main")
		if loadErr != nil {
			logger.Warn("Failed to load config", "error", loadErr)
		}

		var running atomic.Pointer[application]

		hooks.OnStart(func() {
			app, err := newApplication(context.Background(), opts)
			if err != nil {
				logger.Error("Failed to initialize", "error", err)
				os.Exit(1)
			}
			running.Store(app)

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := app.server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				app.shutdown()
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if app := running.Load(); app != nil {
				app.shutdown()
			}
		})
	})

	cli.Root().Use = "hlsrelay"
	cli.Root().Short = "RTSP to HLS relay with overlay documents"

	cli.Root().AddCommand(cmd.CreateCommandCmd())
	cli.Root().AddCommand(cmd.CreateCheckCmd())

	cli.Run()
}
