// Package app wires the capture, recognition and announcement components
// into the Mudra run loop.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/announce"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// Options carries the collaborators of an App. Camera, Detector and
// Display override what the config would build; Store is optional.
type Options struct {
	Config *config.Config
	Log    *logrus.Logger
	Store  *store.Store

	Camera   capture.Camera
	Detector detector.Detector
	Display  overlay.Display

	// Announcers receive transitions after the log and journal. Their
	// failures are logged and ignored.
	Announcers []announce.Announcer
	Sinks      []Sink
}

// App is one recognition session.
type App struct {
	cfg       *config.Config
	log       *logrus.Logger
	store     *store.Store
	sessionID string

	classifier *gesture.Classifier
	detector   detector.Detector
	display    overlay.Display
	hooks      *plugin.Dispatcher
	pipeline   *Pipeline

	enabled bool
	mu      sync.RWMutex
}

// New builds an App from opts.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		store:     opts.Store,
		sessionID: uuid.NewString(),
		enabled:   true,
	}

	classifier, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}
	a.classifier = classifier

	a.detector = opts.Detector
	if a.detector == nil {
		a.detector = newDetector(cfg, log)
	}

	a.display = opts.Display
	if a.display == nil && cfg.Window {
		a.display = overlay.NewWindow(cfg.WindowTitle)
	}

	cam := opts.Camera
	if cam == nil {
		cam = capture.NewCamera(cfg.CameraSource())
	}

	a.hooks = a.newHooks()

	announcer, err := a.announcers(opts.Announcers)
	if err != nil {
		a.close()
		return nil, err
	}

	if a.store != nil {
		on, err := a.store.Settings().GetBool(store.SettingEnabled, true)
		if err != nil {
			log.WithError(err).Warn("failed to read enabled setting")
		}
		a.enabled = on
	}

	a.pipeline = &Pipeline{
		Camera:     cam,
		Detector:   a.detector,
		Classifier: classifier,
		Announcer:  announcer,
		Display:    a.display,
		Sinks:      opts.Sinks,
		Mirror:     cfg.Mirror,
		Log:        log.WithField("component", "pipeline"),
		Enabled:    a.IsEnabled,
	}

	return a, nil
}

// NewClassifier builds the classifier described by cfg.
func NewClassifier(cfg *config.Config) (*gesture.Classifier, error) {
	ext := gesture.Extractor{UseHandedness: cfg.UseHandedness}
	switch cfg.ThumbDirection {
	case "", "left":
		ext.Thumb = gesture.ThumbLeft
	case "right":
		ext.Thumb = gesture.ThumbRight
	default:
		return nil, fmt.Errorf("unknown thumb direction %q", cfg.ThumbDirection)
	}

	return gesture.NewClassifier(
		gesture.WithExtractor(ext),
		gesture.WithOKThreshold(cfg.OKThreshold),
	), nil
}

// newDetector starts with the MediaPipe service and falls back to a mock
// detector, which finds no hands, when the service is unavailable.
func newDetector(cfg *config.Config, log *logrus.Logger) detector.Detector {
	if cfg.MockDetector {
		log.Info("Using mock hand detection")
		return detector.NewMockDetector()
	}

	dc := detector.DefaultConfig()
	dc.MinConfidence = cfg.MinConfidence
	dc.MinTrackingConf = cfg.MinTrackingConf
	dc.ScriptPath = cfg.ScriptPath
	dc.PythonPath = cfg.PythonPath

	mp, err := detector.NewMediaPipeDetector(dc, log.WithField("component", "mediapipe"))
	if err != nil {
		log.WithError(err).Warn("MediaPipe not available, using mock detector")
		return detector.NewMockDetector()
	}
	log.Info("Using MediaPipe hand detection")
	return mp
}

// newHooks discovers gesture hooks in the plugin directory. It returns nil
// when there are none.
func (a *App) newHooks() *plugin.Dispatcher {
	m := plugin.NewManager(a.cfg.PluginPath(), a.log.WithField("component", "plugins"))
	m.SetRuleset(a.classifier.Ruleset())
	if err := m.Discover(); err != nil {
		a.log.WithError(err).Warn("failed to load plugins")
		return nil
	}
	plugins := m.List()
	if len(plugins) == 0 {
		return nil
	}
	for _, p := range plugins {
		a.log.WithFields(logrus.Fields{
			"plugin":  p.Manifest.Name,
			"version": p.Manifest.Version,
		}).Info("Loaded plugin")
	}
	return plugin.NewDispatcher(m, plugin.NewExecutor(a.cfg.PluginTimeout), a.sessionID, a.log)
}

// announcers builds the transition chain: log, journal, extra sinks,
// plugins and finally speech. Only speech failures reach the run loop.
func (a *App) announcers(extra []announce.Announcer) (announce.Announcer, error) {
	chain := announce.Multi{announce.Log{Logger: a.log.WithField("component", "announce")}}

	if a.store != nil && a.cfg.Journal {
		chain = append(chain, announce.BestEffort{Name: "journal", Next: a.store.NewJournal(a.sessionID), Log: a.log})
	}
	for i, e := range extra {
		chain = append(chain, announce.BestEffort{Name: fmt.Sprintf("sink-%d", i), Next: e, Log: a.log})
	}
	if a.hooks != nil {
		chain = append(chain, announce.BestEffort{Name: "plugins", Next: a.hooks, Log: a.log})
	}

	if a.cfg.Speech {
		sp := announce.NewSpeaker(a.cfg.SpeechCommand, a.cfg.SpeechTimeout)
		if err := sp.Check(); err != nil {
			return nil, err
		}
		chain = append(chain, sp)
	}
	return chain, nil
}

// Run records the session and runs the pipeline until it stops. Resources
// are released before Run returns.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.store != nil {
		sess := &store.Session{
			ID:             a.sessionID,
			Source:         a.cfg.Source,
			Mirror:         a.cfg.Mirror,
			ThumbDirection: a.cfg.ThumbDirection,
		}
		if err := a.store.Sessions().Create(sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		defer func() {
			if err := a.store.Sessions().End(a.sessionID, time.Now()); err != nil {
				a.log.WithError(err).Warn("failed to close session")
			}
		}()
	}

	a.log.WithFields(logrus.Fields{
		"session": a.sessionID,
		"source":  a.cfg.Source,
		"mirror":  a.cfg.Mirror,
	}).Info("Recognition started")

	if a.hooks != nil {
		a.hooks.Start(ctx)
	}

	err := a.pipeline.Run(ctx)

	a.log.WithField("frames", a.pipeline.Frames()).Info("Recognition stopped")
	return err
}

func (a *App) close() {
	if a.hooks != nil {
		a.hooks.Close()
	}
	if a.display != nil {
		if err := a.display.Close(); err != nil {
			a.log.WithError(err).Warn("Error closing display")
		}
	}
	if err := a.detector.Close(); err != nil {
		a.log.WithError(err).Warn("Error closing detector")
	}
}

// SetEnabled enables or disables gesture detection and remembers the
// choice in the store.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			a.log.WithError(err).Warn("failed to save enabled setting")
		}
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SessionID returns the journal session of this run.
func (a *App) SessionID() string {
	return a.sessionID
}

// Classifier returns the gesture classifier.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// Hooks returns the plugin dispatcher, or nil when no plugins were found.
func (a *App) Hooks() *plugin.Dispatcher {
	return a.hooks
}

// Pipeline returns the run loop.
func (a *App) Pipeline() *Pipeline {
	return a.pipeline
}
