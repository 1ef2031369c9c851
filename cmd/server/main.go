package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"quickpark/internal/api"
	"quickpark/internal/auth"
	"quickpark/internal/config"
	"quickpark/internal/metrics"
	"quickpark/internal/repository"
	"quickpark/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := cfg.NewLogger()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	garageRepo := repository.NewGarageRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	stripeSvc := service.NewStripeService(cfg.StripeSecretKey, cfg.PayoutCountry)
	payoutSvc := service.NewPayoutService(userRepo, stripeSvc, cfg.ClientURL, log)
	pricingSvc := service.NewPricingService(cfg.CommissionBPS)
	paymentSvc := service.NewPaymentService(garageRepo, stripeSvc, payoutSvc, pricingSvc, cfg.Currency, m, log)

	var email service.EmailSender
	if s := service.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, log); s != nil {
		email = s
	} else {
		log.Warn("SendGrid not configured, email notifications disabled")
	}
	var sms service.SMSSender
	if s := service.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, log); s != nil {
		sms = s
	} else {
		log.Warn("Twilio not configured, SMS notifications disabled")
	}
	notifySvc := service.NewNotifyService(userRepo, garageRepo, email, sms, log)

	reservationSvc := service.NewReservationService(reservationRepo, paymentSvc, notifySvc, m, log)
	garageSvc := service.NewGarageService(garageRepo, payoutSvc, log)
	availabilitySvc := service.NewAvailabilityService(garageRepo, log)
	jobSvc := service.NewJobService(jobRepo, m, log)

	router := api.NewRouter(api.Handlers{
		Garages:      api.NewGarageHandler(availabilitySvc, garageSvc, log),
		Stripe:       api.NewStripeHandler(paymentSvc, payoutSvc, cfg.StripeWebhookSecret, log),
		Reservations: api.NewReservationHandler(reservationSvc, log),
	}, auth.NewMiddleware(cfg.JWTSecret, userRepo, log), m, api.PrometheusHandler(), log)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.ClientURL}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-ID"}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(log), handlers.PrintRecoveryStack(true))

	c := cron.New()
	if _, err := jobSvc.Schedule(c, cfg.CompletionCron, time.Minute); err != nil {
		log.Fatalf("Failed to schedule completion job: %v", err)
	}
	c.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           recovery(corsHandler(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	<-c.Stop().Done()
}
