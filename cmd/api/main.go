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

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/reservation"
	"github.com/jhoicas/stock-ledger/internal/application/validation"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/notify"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacén: PostgreSQL en producción, memoria para demos/embebido.
	var ledgerTx ledger.TxRunner
	var reservationTx reservation.TxRunner
	var entryRepo repository.LedgerEntryRepository
	var balanceRepo repository.StockBalanceRepository
	var reservationRepo repository.StockReservationRepository

	if cfg.Ledger.StoreDriver == "memory" {
		store := memory.NewStore()
		ledgerTx = store
		reservationTx = store
		entryRepo = store.LedgerEntries()
		balanceRepo = store.StockBalances()
		reservationRepo = store.StockReservations()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		txRunner := postgres.NewTxRunner(pool)
		ledgerTx = txRunner
		reservationTx = txRunner
		entryRepo = postgres.NewLedgerEntryRepository(pool)
		balanceRepo = postgres.NewStockBalanceRepository(pool)
		reservationRepo = postgres.NewStockReservationRepository(pool)
	}

	// Eventos: el commit encola en un canal acotado (nunca se bloquea) y un
	// consumidor único escribe la línea de auditoría.
	events := notify.NewChannelNotifier(cfg.Ledger.EventBuffer, log)
	audit := notify.NewLogNotifier(log)
	go func() {
		for event := range events.Events() {
			audit.Notify(event)
		}
	}()

	guard := ledger.NewKeyGuard()
	recordUC := ledger.NewRecordTransactionUseCase(ledgerTx, events, guard, cfg.Ledger.AllowNegative)
	queryUC := ledger.NewQueryUseCase(entryRepo, balanceRepo)
	reservationUC := reservation.NewUseCase(reservationTx, reservationRepo, events, guard)
	validator := validation.NewStockValidator(queryUC)

	// Barrido periódico de reservas vencidas.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.Ledger.ReservationSweepSeconds > 0 {
		interval := time.Duration(cfg.Ledger.ReservationSweepSeconds) * time.Second
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case now := <-ticker.C:
					count, err := reservationUC.ExpireDue(sweepCtx, now)
					if err != nil {
						log.Error().Err(err).Msg("barrido de reservas vencidas")
						continue
					}
					if count > 0 {
						log.Info().Int("expired", count).Msg("reservas vencidas liberadas")
					}
				}
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	// El middleware hace panic si el archivo no existe; sin spec, la API
	// arranca igual y solo se deshabilita la UI de docs.
	if specPath := "./docs/swagger.json"; fileExists(specPath) {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: specPath,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("path", "./docs/swagger.json").Msg("swagger.json no encontrado, UI de docs deshabilitada")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RecordTransaction: recordUC,
		Query:             queryUC,
		Reservations:      reservationUC,
		Validator:         validator,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Con el servidor y el barrido detenidos ya no hay productores: cerrar el
	// canal para que el consumidor de auditoría termine.
	events.Close()

	log.Info().Msg("aplicación detenida")
}

// fileExists indica si path existe y es un archivo regular.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
