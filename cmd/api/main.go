// @title        Almacen API
// @version      1.0
// @description  API de gestión de almacén: catálogo, solicitudes de
// @description  materiales, libro de inventario, conciliación y deudas.
// @BasePath     /api/v1
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Almacen-api/internal/application/catalog"
	"github.com/jhoicas/Almacen-api/internal/application/debt"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/application/request"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	redisnotifier "github.com/jhoicas/Almacen-api/internal/infrastructure/redis"
	httpiface "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistencia: PostgreSQL si hay configuración, store en memoria si no.
	var (
		repos    ports.Repos
		txRunner ports.TxRunner
	)
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("no se pudo conectar a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("no se pudo preparar el esquema")
		}
		repos = postgres.NewRepos(pool)
		txRunner = postgres.NewTxRunner(pool)
		log.Info().Msg("persistencia: PostgreSQL")
	} else {
		store := memory.NewStore()
		repos = store.Repos()
		txRunner = store
		log.Warn().Msg("persistencia: memoria (sin DB_HOST ni DATABASE_URL; los datos no sobreviven al reinicio)")
	}

	// Notificador: Redis pub/sub si hay REDIS_ADDR, en memoria si no.
	var notifier ports.Notifier
	if cfg.Redis.Addr != "" {
		rn, err := redisnotifier.NewNotifier(ctx, cfg.Redis, log.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("no se pudo conectar a Redis")
		}
		defer rn.Close()
		notifier = rn
		log.Info().Str("addr", cfg.Redis.Addr).Msg("notificador: Redis pub/sub")
	} else {
		notifier = memory.NewNotifier(log.Zerolog())
		log.Info().Msg("notificador: memoria")
	}

	// Casos de uso
	ledgerUC := ledger.NewUseCase(repos, txRunner, notifier, log.Zerolog())
	catalogUC := catalog.NewUseCase(repos, txRunner, ledgerUC, log.Zerolog())
	reconciler := request.NewReconciler(cfg.Recon.GraceDays, cfg.Recon.WeightTolerancePct)
	noteGen := pdf.NewDeliveryNoteGenerator(cfg.App.Name)
	requestUC := request.NewUseCase(repos, txRunner, ledgerUC, reconciler, notifier, noteGen, log.Zerolog())
	debtUC := debt.NewUseCase(repos, txRunner, notifier, log.Zerolog())

	// HTTP
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpiface.SetupRoutes(app, httpiface.RouterDeps{
		JWTSecret: cfg.JWT.Secret,
		Products:  httpiface.NewProductHandler(catalogUC, ledgerUC),
		Requests:  httpiface.NewRequestHandler(requestUC),
		Debts:     httpiface.NewDebtHandler(debtUC),
	})

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("el servidor HTTP terminó con error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("apagando…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado forzado del servidor HTTP")
	}
	log.Info().Msg("apagado completo")
}
