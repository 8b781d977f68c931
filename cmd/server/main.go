package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"resume-builder/internal/adapter/cache"
	httpadapter "resume-builder/internal/adapter/http"
	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/config"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/pagination"
	"resume-builder/internal/preview"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	infra "resume-builder/pkg/infrastructure"
	"resume-builder/pkg/localpdf"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres and Redis are optional; without them exports are neither
	// recorded nor cached.
	pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Warn("export history disabled", "error", err)
		pool = nil
	}
	if pool != nil {
		defer pool.Close()
		if err := migration.RunMigrations(ctx, pool); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}
	rdb, err := infra.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("export cache disabled", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	fonts := localpdf.NewFontLoader(cfg.FontDir, cfg.FontTimeout)
	jobs := repository.NewExportsRepo(pool)
	exporter := usecase.NewExporter(
		infra.NewChromedpRenderer(cfg.ChromePath, cfg.ExportTimeout, cfg.FontTimeout),
		usecase.WithLocal(localpdf.NewExporter(fonts)),
		usecase.WithRepo(jobs),
		usecase.WithCache(cache.NewExportCache(rdb, cfg.CacheTTL)),
		usecase.WithTimeout(cfg.ExportTimeout),
		usecase.WithArtifactDir(cfg.ArtifactDir),
	)

	var surface pagination.MeasurementSurface = localpdf.NewSurface(fonts)
	if cfg.PreviewEngine == "chrome" {
		chrome := infra.NewChromedpSurface(cfg.ChromePath, cfg.FontTimeout)
		defer chrome.Close()
		surface = chrome
	}
	previews := preview.NewStore(surface, preview.Config{Debounce: cfg.PreviewDebounce})
	defer previews.Shutdown()

	assistant := ai.NewClient(cfg.AIServiceURL, cfg.AILanguage)
	h := httpadapter.NewHandler(httpadapter.Deps{
		Exports:      exporter,
		Jobs:         jobs,
		Previews:     previews,
		Summary:      assistant.NewSummaryRewriter(),
		Keywords:     assistant.NewKeywordAnalyzer(),
		Achievements: assistant.NewAchievementRewriter(),
		Labels: func(language string) httpadapter.LabelsFormatter {
			return assistant.NewLabelsFormatter(language)
		},
	})

	app := fiber.New(fiber.Config{
		AppName:   "resume-builder",
		BodyLimit: cfg.BodyLimitMB << 20,
	})
	app.Use(recover.New())
	h.Register(app)

	go func() {
		slog.Info("listening", "port", cfg.Port, "preview_engine", cfg.PreviewEngine)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
