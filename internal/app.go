package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kfiore/perfpulse/cache"
	"github.com/kfiore/perfpulse/config"
	"github.com/kfiore/perfpulse/logging"
	"github.com/kfiore/perfpulse/metrics"
	"github.com/kfiore/perfpulse/monitor"
	"github.com/kfiore/perfpulse/optimizer"
	"github.com/kfiore/perfpulse/ui"
)

// Application wires the stores, monitor, and optimizer together and owns
// their lifecycle.
type Application struct {
	config    *config.Config
	cache     *cache.Store
	metrics   *metrics.Recorder
	monitor   *monitor.Monitor
	optimizer *optimizer.Optimizer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *logging.Logger

	running bool
	mu      sync.Mutex
}

// NewApplication builds an application from configuration. The returned
// application owns the background janitor and pruner goroutines until
// Shutdown.
func NewApplication(cfg *config.Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	store := cache.NewStore(cache.Config{
		DefaultTTL:      cfg.Cache.DefaultTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})
	recorder := metrics.NewRecorder(metrics.Config{
		Retention:     cfg.Metrics.Retention,
		PruneInterval: cfg.Metrics.PruneInterval,
	})
	mon := monitor.New(monitor.Config{
		GoroutineBudget: cfg.Monitor.GoroutineBudget,
	})
	opt := optimizer.New(store, recorder, mon, optimizerConfig(cfg))

	return &Application{
		config:    cfg,
		cache:     store,
		metrics:   recorder,
		monitor:   mon,
		optimizer: opt,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logging.NewLogger(cfg.App.LogLevel, cfg.App.LogFile),
	}
}

func optimizerConfig(cfg *config.Config) optimizer.Config {
	return optimizer.Config{
		MemoryBudget:     cfg.Optimizer.MemoryBudget,
		TargetHitRate:    cfg.Optimizer.TargetHitRate,
		MinRequests:      cfg.Optimizer.MinRequests,
		BottleneckP95Ms:  cfg.Optimizer.BottleneckP95Ms,
		BottleneckMeanMs: cfg.Optimizer.BottleneckMeanMs,
		PruneThreshold:   cfg.Optimizer.PruneThreshold,
	}
}

// Cache returns the cache store.
func (a *Application) Cache() *cache.Store { return a.cache }

// Metrics returns the metrics recorder.
func (a *Application) Metrics() *metrics.Recorder { return a.metrics }

// Monitor returns the resource monitor.
func (a *Application) Monitor() *monitor.Monitor { return a.monitor }

// Optimizer returns the optimizer.
func (a *Application) Optimizer() *optimizer.Optimizer { return a.optimizer }

// ApplyConfig swaps in reloaded optimizer thresholds. Store lifecycles are
// not restarted; only advisory values change at runtime.
func (a *Application) ApplyConfig(cfg *config.Config) {
	a.optimizer.SetConfig(optimizerConfig(cfg))
	a.logger.Info("applied reloaded optimizer thresholds")
}

// Run starts the live dashboard and blocks until it exits or a signal
// arrives.
func (a *Application) Run() error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("application is already running")
	}
	a.running = true
	a.mu.Unlock()

	a.logger.Infof("starting %s", a.config.App.Name)

	if a.config.App.Demo {
		a.startLoadGenerator()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	model := ui.NewModel(a.optimizer, a.metrics, a.config.App.RefreshRate)
	program := tea.NewProgram(model, tea.WithAltScreen())

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		select {
		case sig := <-sigCh:
			a.logger.Infof("received signal %v, shutting down", sig)
			program.Quit()
		case <-a.ctx.Done():
		}
	}()

	_, err := program.Run()

	a.Shutdown()
	a.wg.Wait()

	a.logger.Info("stopped")
	return err
}

// Shutdown stops the background sweepers. Safe to call more than once.
func (a *Application) Shutdown() {
	a.cancel()
	a.cache.Stop()
	a.metrics.Stop()
}
