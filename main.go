package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/castwave/internal/app"
	"github.com/llehouerou/castwave/internal/config"
	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/discovery"
	"github.com/llehouerou/castwave/internal/errmsg"
	"github.com/llehouerou/castwave/internal/icons"
	"github.com/llehouerou/castwave/internal/logging"
	"github.com/llehouerou/castwave/internal/mpris"
	"github.com/llehouerou/castwave/internal/notify"
	"github.com/llehouerou/castwave/internal/state"
	"github.com/llehouerou/castwave/internal/stderr"
	"github.com/llehouerou/castwave/internal/ui/styles"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return 1
	}
	icons.Init(cfg.Icons)

	logFile, err := logging.Init(logging.Config(cfg.GetLogConfig()))
	if err != nil {
		fmt.Printf("Error initializing logging: %v\n", err)
		return 1
	}
	defer logFile.Close()
	log := logging.Logger()

	if err := styles.SetAccent(cfg.Accent); err != nil {
		log.Warn().Err(err).Msg("ignoring accent color")
	}

	svc := discovery.New(discovery.Options{
		Timeout: cfg.DiscoveryTimeout(),
		Static:  cfg.Devices,
		Logger:  logging.WithComponent("discovery"),
	})

	fmt.Println("Scanning for Chromecast devices on the network...")
	handles, err := svc.Discover(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("discovery failed")
		fmt.Println(errmsg.Format(errmsg.OpDiscover, err))
	}
	if len(handles) == 0 {
		fmt.Println("No devices found")
		return 1
	}
	fmt.Printf("Found %d device(s)\n", len(handles))

	stateMgr, err := state.Open()
	if err != nil {
		fmt.Println(errmsg.Format(errmsg.OpStateLoad, err))
		closeAll(handles)
		return 1
	}

	notifier := notify.Disabled()
	if cfg.NotificationsEnabled() {
		if n, nerr := notify.New(); nerr != nil {
			log.Warn().Err(nerr).Msg("desktop notifications unavailable")
		} else {
			notifier = n
		}
	}

	capture, err := stderr.Start(logging.WithComponent("stderr"))
	if err != nil {
		log.Warn().Err(err).Msg("stderr capture unavailable")
	}
	defer capture.Restore()

	mirror := mpris.NewMirror()
	m := app.New(app.Deps{
		Config:   cfg,
		Service:  svc,
		Handles:  handles,
		StateMgr: stateMgr,
		Notifier: notifier,
		Mirror:   mirror,
		Stderr:   capture.Lines(),
		Log:      log,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())

	adapter, err := mpris.New(mirror, p.Send)
	switch {
	case errors.Is(err, mpris.ErrUnsupported):
	case err != nil:
		log.Warn().Err(err).Msg("MPRIS unavailable")
	default:
		defer adapter.Close()
	}

	if _, err := p.Run(); err != nil {
		capture.WriteOriginal(fmt.Sprintf("Error running program: %v\n", err))
		return 1
	}
	return 0
}

func closeAll(handles []device.Handle) {
	for _, h := range handles {
		_ = h.Close()
	}
}
