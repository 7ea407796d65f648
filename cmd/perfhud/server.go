package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/perfhud/internal/httpserver"
	"github.com/tinytelemetry/perfhud/internal/hud"
	"github.com/tinytelemetry/perfhud/internal/providers"
	"github.com/tinytelemetry/perfhud/internal/scale"
	"github.com/tinytelemetry/perfhud/internal/tui"
)

// run builds the engine from config and drives it, either through the
// terminal overlay or through a headless ticker when no TTY is wanted.
func run(cfg appConfig, headless bool) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	engine := hud.New()
	engine.SetLogger(log.Default())
	if cfg.SampleBudget > 0 {
		engine.SetSampleBudget(cfg.SampleBudget)
	}

	// Config metrics register first so built-in defaults yield to them.
	for _, mc := range cfg.Metrics {
		def, err := mc.toDefinition()
		if err != nil {
			return fmt.Errorf("invalid metric config: %w", err)
		}
		if err := engine.RegisterMetric(def); err != nil {
			return fmt.Errorf("registering metric %q: %w", def.ID, err)
		}
	}
	if cfg.BuiltinProbes {
		if err := providers.RegisterDefaults(engine); err != nil {
			return fmt.Errorf("registering built-in probes: %w", err)
		}
	}

	bars, graphs, scales, err := buildPanels(cfg)
	if err != nil {
		return err
	}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, engine, scales)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g, gctx := errgroup.WithContext(ctx)

	if headless {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.TickInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case now := <-ticker.C:
					engine.Tick(now)
				}
			}
		})
		g.Go(func() error {
			select {
			case <-sigCh:
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
		return g.Wait()
	}

	overlay := tui.NewModel(engine, tui.Options{
		Bars:         bars,
		Graphs:       graphs,
		TickInterval: cfg.TickInterval,
	})
	p := tea.NewProgram(overlay, tea.WithAltScreen())

	g.Go(func() error {
		select {
		case <-sigCh:
			p.Quit()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
				return fmt.Errorf("overlay requires a real terminal, use -headless otherwise")
			}
			return fmt.Errorf("error running overlay: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// buildPanels resolves the configured bars and graphs into overlay specs
// plus the scale map served by the HTTP API. Panels without config fall
// back to the built-in layout.
func buildPanels(cfg appConfig) (bars, graphs []tui.PanelSpec, scales map[string]scale.Config, err error) {
	scales = make(map[string]scale.Config)

	add := func(pc panelConfig) (tui.PanelSpec, error) {
		sc, err := pc.toScaleConfig()
		if err != nil {
			return tui.PanelSpec{}, err
		}
		if pc.Metric == "" {
			return tui.PanelSpec{}, fmt.Errorf("panel config missing metric id")
		}
		if _, exists := scales[pc.Metric]; !exists {
			scales[pc.Metric] = sc
		}
		return tui.PanelSpec{MetricID: pc.Metric, Scale: sc}, nil
	}

	for _, pc := range cfg.Bars {
		spec, err := add(pc)
		if err != nil {
			return nil, nil, nil, err
		}
		bars = append(bars, spec)
	}
	for _, pc := range cfg.Graphs {
		spec, err := add(pc)
		if err != nil {
			return nil, nil, nil, err
		}
		graphs = append(graphs, spec)
	}

	if len(bars) == 0 && len(graphs) == 0 && cfg.BuiltinProbes {
		bars, graphs = defaultLayout()
		for _, spec := range append(append([]tui.PanelSpec{}, bars...), graphs...) {
			if _, exists := scales[spec.MetricID]; !exists {
				scales[spec.MetricID] = spec.Scale
			}
		}
	}
	return bars, graphs, scales, nil
}

// defaultLayout shows the built-in probes: percentage bars on fixed
// scales, everything else on adaptive graphs.
func defaultLayout() (bars, graphs []tui.PanelSpec) {
	percent := scale.Fixed{Min: 0, Max: 100}
	auto := scale.Auto{
		Fallback:   scale.Range{Min: 0, Max: 100},
		Smoothing:  0.7,
		MarginFrac: 0.05,
		MinSpan:    1,
	}

	bars = []tui.PanelSpec{
		{MetricID: providers.SystemCPUID, Scale: percent},
		{MetricID: providers.SystemMemID, Scale: percent},
		{MetricID: providers.ProcessCPUID, Scale: percent},
	}
	graphs = []tui.PanelSpec{
		{MetricID: providers.GoroutinesID, Scale: auto},
		{MetricID: providers.HeapAllocID, Scale: auto},
		{MetricID: providers.ProcessMemID, Scale: auto},
	}
	return bars, graphs
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "perfhud")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "perfhud.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}
