package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/application/game"
	"github.com/younwookim/hollowhouse/internal/domain/world"
	"github.com/younwookim/hollowhouse/internal/infrastructure/bitcoin"
	"github.com/younwookim/hollowhouse/internal/infrastructure/config"
	"github.com/younwookim/hollowhouse/internal/infrastructure/logger"
	"github.com/younwookim/hollowhouse/internal/infrastructure/platform"
	"github.com/younwookim/hollowhouse/internal/infrastructure/storage"
	"github.com/younwookim/hollowhouse/internal/infrastructure/telemetry"
	"github.com/younwookim/hollowhouse/internal/infrastructure/watch"
)

//go:embed data
var dataFS embed.FS

var credits = []string{
	"HOLLOW HOUSE",
	"",
	"Design and code: the Hollow House team",
	"Built with Ebitengine",
	"",
	"Thanks for playing.",
}

type flags struct {
	configDir   string
	assetsDir   string
	watchDir    string
	metricsAddr string
}

func main() {
	var f flags
	flag.StringVar(&f.configDir, "config", ".", "Directory containing config.yaml")
	flag.StringVar(&f.assetsDir, "assets", "assets", "Directory with sounds/ and textures/")
	flag.StringVar(&f.watchDir, "watch", "", "Reload cutscenes.json from this directory when it changes")
	flag.StringVar(&f.metricsAddr, "metrics", "", "Serve prometheus metrics on this address (e.g. :9100)")
	flag.Parse()

	cfg, err := config.LoadAppConfig(f.configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Development, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, f, zl); err != nil {
		zl.Fatalw("game exited", "error", err)
	}
}

func run(cfg *config.AppConfig, f flags, log *zap.SugaredLogger) error {
	ctx := context.Background()

	fsys, err := fs.Sub(dataFS, "data")
	if err != nil {
		return err
	}
	data, warning, err := config.NewFSLoader(fsys, "data").LoadAll()
	if err != nil {
		return err
	}
	if warning != nil {
		log.Warnw("cutscenes unavailable, levels start directly", "error", warning)
	}

	reg := prometheus.NewRegistry()
	metrics := telemetry.New("hollowhouse", reg)
	if f.metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(f.metricsAddr, metrics.Handler()); err != nil {
				log.Warnw("metrics server stopped", "error", err)
			}
		}()
	}

	w, h := cfg.Display.ScreenWidth, cfg.Display.ScreenHeight
	keys := platform.Keyboard{}
	audio := platform.NewAudio(os.DirFS(filepath.Join(f.assetsDir, "sounds")), log)
	defer audio.Close()

	deps := game.Deps{
		Data:      data,
		Scheduler: platform.NewFrameScheduler(nil),
		Keys:      keys,
		Renderer:  platform.NewRenderer(w, h),
		Audio:     audio,
		Controls:  platform.NewControls(keys, log),
		UI:        platform.NewOverlay(w, h),
		Store:     storage.Open(cfg.Storage.AppName, log),
		World:     newWorld(data.Building, filepath.Join(f.assetsDir, "textures")),
		Metrics:   metrics,
		Log:       log,
	}
	if econ := newEconomy(cfg, metrics, log); econ != nil {
		deps.Economy = econ
	}

	if f.watchDir != "" {
		watcher, err := watch.New(f.watchDir)
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
		deps.Watch = watcher
		deps.ReloadCutscenes = config.NewLoader(f.watchDir).LoadCutscenes
		log.Infow("watching cutscene data", "dir", f.watchDir)
	}

	g := game.New(game.Options{
		ScreenWidth:   w,
		ScreenHeight:  h,
		Title:         cfg.Display.Title,
		Credits:       credits,
		MaxLevel:      cfg.Levels.MaxLevel,
		TimerDuration: cfg.Timer.DurationSeconds,
		TimerWarning:  cfg.Timer.WarningThreshold,
		PlayerID:      cfg.Economy.PlayerID,
	}, deps)

	audio.SetListener(func() (float64, float64) {
		if p := g.Session().Player; p != nil {
			return p.X, p.Y
		}
		return 0, 0
	})

	if err := g.Init(ctx); err != nil {
		return err
	}

	ebiten.SetWindowSize(w*cfg.Display.Scale, h*cfg.Display.Scale)
	ebiten.SetWindowTitle(cfg.Display.Title)

	err = ebiten.RunGame(g)
	g.CleanupEverything(ctx)
	return err
}

func newEconomy(cfg *config.AppConfig, metrics *telemetry.Metrics, log *zap.SugaredLogger) *economy.Economy {
	if !cfg.Economy.Enabled {
		return nil
	}
	chain := bitcoin.NewCoreClient(cfg.Proxy.URL, cfg.Economy.Timeout, log)
	ln := bitcoin.NewLightningClient(cfg.Proxy.URL, cfg.Economy.Timeout, log)

	e := economy.New(chain, ln, log)
	for item, sats := range cfg.Economy.Prices {
		e.SetPrice(item, sats)
	}
	for action, sats := range cfg.Economy.Rewards {
		e.SetReward(action, sats)
	}
	e.OnDegraded = metrics.Degraded
	return e
}

func newWorld(b *config.BuildingConfig, textureDir string) *world.World {
	var prefab world.Prefab
	if b != nil {
		prefab.Width, prefab.Height = b.Width, b.Height
		for _, r := range b.Walls {
			prefab.Walls = append(prefab.Walls, world.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H})
		}
		prefab.Assets = b.Assets
	}

	// Without a texture directory the building is drawn flat and nothing is cached
	if _, err := os.Stat(textureDir); err != nil {
		prefab.Assets = nil
		return world.New(prefab, nil)
	}
	textures := os.DirFS(textureDir)
	cache := world.NewAssetCache(func(_ context.Context, name string) ([]byte, error) {
		return fs.ReadFile(textures, name+".png")
	})
	return world.New(prefab, cache)
}
