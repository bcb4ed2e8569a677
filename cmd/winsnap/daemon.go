package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/dispatch"
	"github.com/1broseidon/winsnap/internal/hotkeys"
	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/platform"
	"github.com/1broseidon/winsnap/internal/runtimepath"
)

func runDaemon() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := newLogger(os.Stderr, cfg.LogFormat, level)
	slog.SetDefault(logger)

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer backend.Disconnect()

	dispatcher := dispatch.New(backend, logger)

	hotkeyHandler := hotkeys.NewHandler(backend, logger)
	bound := hotkeyHandler.RegisterLayouts(cfg.Bindings(), dispatcher)
	logger.Info("hotkeys registered", "bound", bound)

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		logger.Error("failed to resolve IPC socket path", "error", err)
		return 1
	}
	reloadChan := make(chan *config.Config, 1)
	ipcServer, err := ipc.NewServer(ipc.ServerOptions{
		SocketPath: socketPath,
		Config:     cfg,
		Placer:     dispatcher,
		Displays:   backend,
		ReloadChan: reloadChan,
		BoundKeys:  func() int { return len(hotkeyHandler.Bound()) },
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	// log_format is fixed for the daemon's lifetime; level and bindings follow reloads.
	applyConfig := func(newCfg *config.Config) {
		level.Set(newCfg.SlogLevel())
		hotkeyHandler.Reset()
		n := hotkeyHandler.RegisterLayouts(newCfg.Bindings(), dispatcher)
		logger.Info("config reloaded", "bound", n)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					newCfg, err := config.Load()
					if err != nil {
						logger.Warn("config reload failed", "error", err)
						continue
					}
					ipcServer.UpdateConfig(newCfg)
					applyConfig(newCfg)
					continue
				}
				logger.Info("shutting down winsnap daemon", "signal", sig.String())
				backend.StopEventLoop()
				return

			case newCfg := <-reloadChan:
				applyConfig(newCfg)
			}
		}
	}()

	logger.Info("winsnap daemon started", "socket", socketPath)
	backend.EventLoop()
	return 0
}
