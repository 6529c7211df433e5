package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/announce"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	if cfg.StaticDir == "" {
		cfg.StaticDir = findWebDir()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info("Mudra - Hand Gesture Recognition")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, log); err != nil {
		log.WithError(err).Fatal("Mudra stopped")
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config, log *logrus.Logger) error {
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	hub := server.NewHub(log.WithField("component", "ws"))
	stream := server.NewStream()

	var (
		t          *tray.Tray
		announcers []announce.Announcer
	)
	if cfg.Tray {
		t = tray.New()
		announcers = append(announcers, t)
	}

	a, err := app.New(app.Options{
		Config:     cfg,
		Log:        log,
		Store:      st,
		Announcers: announcers,
		Sinks:      []app.Sink{hub, stream},
	})
	if err != nil {
		return err
	}

	if cfg.HTTPAddr != "" {
		srv := server.New(server.Config{
			StaticDir:  cfg.StaticDir,
			Store:      st,
			Classifier: a.Classifier(),
			Hub:        hub,
			Stream:     stream,
			SessionID:  a.SessionID(),
			Log:        log.WithField("component", "http"),
		})
		go func() {
			if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
				log.WithError(err).Error("HTTP server failed")
			}
		}()
	}

	if t == nil {
		return a.Run(ctx)
	}

	// The tray owns the main thread; recognition runs beside it.
	t.SetEnabled(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnQuit(stop)
	if cfg.HTTPAddr != "" {
		url := "http://" + cfg.HTTPAddr
		t.OnOpen(func() {
			if err := openBrowser(url); err != nil {
				log.WithError(err).Warn("failed to open dashboard")
			}
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
