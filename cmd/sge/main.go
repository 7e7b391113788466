package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sgengine/sge/internal/config"
	"github.com/sgengine/sge/internal/core/event"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/engine"
	"github.com/sgengine/sge/internal/input"
	"github.com/sgengine/sge/internal/persist"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/scripting"
	"github.com/sgengine/sge/internal/system"
	"github.com/sgengine/sge/internal/window"
)

const defaultConfigPath = "config/engine.toml"

func main() {
	if err := run(); err != nil {
		printFatal(err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(title, runID string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              SGE  v0.1.0                  \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        scheduled game engine runtime      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mWindow:\033[0m %s \033[90m(run %s)\033[0m\n\n", title, runID)
}

func printSection(title string) {
	lineLen := 46 - runewidth.StringWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - runewidth.StringWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// printFatal writes err to stderr inside a red box.
func printFatal(err error) {
	head := "fatal"
	var die *engine.DeviceInitError
	if errors.As(err, &die) {
		head = "window could not be created"
	}
	lines := append([]string{head}, strings.Split(err.Error(), "\n")...)
	width := 0
	for _, l := range lines {
		width = max(width, runewidth.StringWidth(l))
	}
	bar := strings.Repeat("─", width+2)
	fmt.Fprintf(os.Stderr, "\033[31;1m┌%s┐\033[0m\n", bar)
	for _, l := range lines {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(l))
		fmt.Fprintf(os.Stderr, "\033[31;1m│\033[0m %s%s \033[31;1m│\033[0m\n", l, pad)
	}
	fmt.Fprintf(os.Stderr, "\033[31;1m└%s┘\033[0m\n", bar)
}

// ── Main engine logic ─────────────────────────────────────────────

func run() (err error) {
	// 1. Load config
	cfgFlag := flag.String("config", "", "engine config file (default $SGE_CONFIG or "+defaultConfigPath+")")
	flag.Parse()
	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = os.Getenv("SGE_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	cfg, loadErr := config.Load(cfgPath)

	// 2. Logger. The terminal window owns the screen, so console logging is
	// only enabled headless.
	log, err := startupLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if err != nil {
			log.Error("engine failed", zap.Error(err))
		}
	}()
	if loadErr != nil {
		return loadErr
	}
	// Once the terminal owns the screen, stdout writes would corrupt it.
	console := cfg.Window.Headless

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	printBanner(cfg.Window.Title, runID)

	// 3. Scene descriptors
	printSection("Scene")
	snap, bindings, err := scene.LoadConfig(cfg.Scene.Entities, cfg.Scene.Systems)
	if err != nil {
		return err
	}
	printStat("entities", len(snap.Entities))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Window and input
	bus := event.NewBus()
	hub := input.NewHub(input.WithHold(cfg.Input.KeyHold))
	var win window.Window
	if cfg.Window.Headless {
		win = window.NewHeadless(cfg.Window.Width, cfg.Window.Height, bus)
		printOK("headless window")
	} else {
		t, err := window.NewTerminal(cfg.Window.Title, hub, bus, log.Named("window"))
		if err != nil {
			return err
		}
		win = t
	}

	eng := engine.New(engine.Deps{
		Config:   cfg.Engine,
		Window:   win,
		Scene:    snap,
		Bindings: bindings,
		Log:      log.Named("engine"),
	})

	// 5. Systems
	renderer := win.Renderer()
	regs := []registration{
		{system.NewEventDispatchSystem(bus, log.Named("events")), 0},
		{system.NewTimeAdvanceSystem(nil), 1},
		{system.NewCloseRequestSystem(hub), 1},
		{system.NewInputDrivenMovementSystem(hub), 4},
		{system.NewIntegratorSystem(), 5},
		{system.NewRenderSystem(renderer), 9},
		{system.NewStartupAssetLoadSystem(renderer, cfg.Scene.ModelsDir, cfg.Scene.AssetSentinel, log.Named("assets")), 0},
		{system.NewShutdownTeardownSystem(renderer, log.Named("teardown")), 1},
	}
	if bindings.Has(system.NameViewportCamera) {
		regs = append(regs, registration{system.NewViewportCameraSystem(), 6})
	}

	if cfg.Scripting.Enabled {
		lua, err := scripting.NewEngine(cfg.Scripting.Dir, eng.Store(), log.Named("lua"))
		if err != nil {
			_ = win.Close()
			return fmt.Errorf("init scripting: %w", err)
		}
		defer lua.Close()
		if lua.HasUpdate() {
			regs = append(regs, registration{system.NewScriptSystem(lua), 7})
		}
		if console {
			printOK("scripting enabled")
		}
	}

	var snapshots *persist.SnapshotRepo
	if cfg.Database.Enabled {
		db, err := persist.NewDB(ctx, cfg.Database, log.Named("db"))
		if err != nil {
			_ = win.Close()
			return err
		}
		defer db.Close()
		version, err := db.RunMigrations(ctx)
		if err != nil {
			_ = win.Close()
			return err
		}
		snapshots = persist.NewSnapshotRepo(db)
		regs = append(regs,
			registration{system.NewSnapshotRestoreSystem(snapshots, log.Named("snapshot")), 1},
			registration{system.NewSnapshotSaveSystem(snapshots, runID, eng.Ticks, log.Named("snapshot")), 0},
		)
		if console {
			printOK(fmt.Sprintf("database schema v%d", version))
		}
	}

	for _, r := range regs {
		if err := eng.Register(r.sys, r.priority); err != nil {
			return err
		}
	}
	if console {
		printStat("systems", len(regs))
		fmt.Println()
	}

	// 6. Boot, loop, shutdown
	if err := eng.Boot(ctx); err != nil {
		shutdown(eng, log)
		return err
	}
	log.Info("engine running",
		zap.Duration("tick_rate", cfg.Engine.TickRate),
		zap.Uint64("max_frames", cfg.Engine.MaxFrames))
	runErr := eng.Run(ctx)
	shutdown(eng, log)

	if snapshots != nil && cfg.Database.KeepSnapshots > 0 {
		if n, err := snapshots.Prune(context.Background(), cfg.Database.KeepSnapshots); err != nil {
			log.Warn("prune snapshots failed", zap.Error(err))
		} else if n > 0 {
			log.Info("old snapshots pruned", zap.Int64("count", n))
		}
	}
	if runErr != nil {
		return runErr
	}
	log.Info("engine stopped", zap.Uint64("ticks", eng.Ticks()))
	return nil
}

type registration struct {
	sys      system.Runnable
	priority coresys.Priority
}

// shutdown never fails the process: teardown problems are logged only.
func shutdown(eng *engine.Engine, log *zap.Logger) {
	if err := eng.Shutdown(context.Background()); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
}

// startupLogger builds the run logger from cfg. With no usable config it
// falls back to the default log file only, so a config error is still
// recorded somewhere besides the terminal.
func startupLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg == nil {
		return newLogger(config.Defaults().Logging, false)
	}
	return newLogger(cfg.Logging, cfg.Window.Headless)
}

// newLogger sends logs to stderr when console is set and to cfg.File when
// one is configured. With neither, logging is discarded.
func newLogger(cfg config.LoggingConfig, console bool) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
		if console && cfg.File == "" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	var outputs []string
	if console {
		outputs = append(outputs, "stderr")
	}
	if cfg.File != "" {
		outputs = append(outputs, cfg.File)
	}
	if len(outputs) == 0 {
		return zap.NewNop(), nil
	}
	zapCfg.OutputPaths = outputs
	zapCfg.ErrorOutputPaths = outputs
	return zapCfg.Build()
}
