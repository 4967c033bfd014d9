package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"qms/internal/actions"
	"qms/internal/audit"
	"qms/internal/auth"
	"qms/internal/employees"
	"qms/internal/notify"
	"qms/internal/plantaudits"
	"qms/internal/platform/config"
	"qms/internal/platform/db"
	"qms/internal/platform/httpserver"
	"qms/internal/platform/logger"
	"qms/internal/platform/metrics"
	"qms/internal/platform/middleware"
	"qms/internal/recalls"
	"qms/internal/suppliers"
	"qms/internal/token"
	"qms/internal/transport"
	"qms/internal/uploads"
	"qms/internal/users"
	"qms/internal/weightcontrol"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	pools := db.NewManager(cfg, log)
	defer pools.Close()

	revocations, err := token.NewRevocationStore(cfg.RedisURL)
	if err != nil {
		return err
	}
	tokens := token.NewService(cfg.JWTSigningKey, "qms")

	saver, err := uploads.NewSaver(cfg.UploadDir)
	if err != nil {
		return err
	}

	recorder := audit.NewRecorder(audit.NewPostgresStore(pools), log, m)
	defer recorder.Wait()

	userService := users.NewService(users.NewPostgresStore(pools))
	actionStore := actions.NewPostgresStore(pools)

	handlers := transport.Handlers{
		Auth:          auth.NewHandler(userService, tokens, revoker(revocations), recorder, log, cfg.TokenTTL),
		Users:         users.NewHandler(userService, recorder, log),
		AuditLog:      audit.NewHandler(audit.NewPostgresStore(pools), log),
		PlantAudits:   plantaudits.NewHandler(plantaudits.NewService(plantaudits.NewPostgresStore(pools)), saver, recorder, m, log),
		Actions:       actions.NewHandler(actions.NewService(actionStore), recorder, m, log),
		WeightControl: weightcontrol.NewHandler(weightcontrol.NewService(weightcontrol.NewPostgresStore(pools)), recorder, m, log),
		Suppliers: suppliers.NewHandler(
			suppliers.NewService(suppliers.NewPostgresEvaluationStore(pools), suppliers.NewERPMasterStore(pools)),
			recorder, m, log),
		Recalls: recalls.NewHandler(
			recalls.NewService(recalls.NewPostgresStore(pools), recalls.NewERPShipmentDirectory(pools), log),
			saver, recorder, m, log),
		Employees: employees.NewHandler(employees.NewHRStore(pools), log),
	}

	router := transport.NewRouter(handlers, tokens, checker(revocations), saver, m, log)
	server := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.SMTP.Host != "" {
		sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Pass,
		})
		scheduler := notify.NewScheduler(actionStore, sender, log, m, cfg.ReminderHour)
		g.Go(func() error {
			scheduler.Run(ctx)
			return nil
		})
	}

	return g.Wait()
}

// revoker avoids wrapping a nil *RevocationStore in a non-nil interface.
func revoker(s *token.RevocationStore) auth.Revoker {
	if s == nil {
		return nil
	}
	return s
}

func checker(s *token.RevocationStore) middleware.RevocationChecker {
	if s == nil {
		return nil
	}
	return s
}
