package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axellelanca/visitorpulse/cmd"
	"github.com/axellelanca/visitorpulse/internal/api"
	"github.com/axellelanca/visitorpulse/internal/database"
	"github.com/axellelanca/visitorpulse/internal/geo"
	"github.com/axellelanca/visitorpulse/internal/monitor"
	"github.com/axellelanca/visitorpulse/internal/repository"
	"github.com/axellelanca/visitorpulse/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the tracking API and the session expiry monitor.",
	Long: `This command migrates the database, builds the geolocation resolver,
starts the session expiry monitor and serves the HTTP API until SIGINT or SIGTERM.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.MustConfig()

		db, err := database.Open(cfg.Database.Name, cfg.Database.BusyTimeoutMs)
		if err != nil {
			log.Fatalf("Échec de la connexion à la base de données : %v", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			log.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		resolver, closeResolver, err := geo.New(cfg)
		if err != nil {
			log.Fatalf("Échec de l'initialisation de la géolocalisation : %v", err)
		}
		defer closeResolver()

		store := repository.NewStore(db)
		sessionRepo := repository.NewSessionRepository(db)
		log.Println("Repositories initialisés.")

		svc := api.Services{
			Heartbeat: services.NewHeartbeatService(store, services.NewVisitorService(resolver), services.NewSessionService()),
			Stats:     services.NewStatsService(repository.NewStatsRepository(db)),
			Query:     services.NewQueryService(repository.NewQueryRepository(db)),
		}
		log.Println("Services métiers initialisés.")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sessionTimeout := time.Duration(cfg.Sessions.TimeoutMinutes) * time.Minute
		checkInterval := time.Duration(cfg.Sessions.CheckIntervalSeconds) * time.Second
		sessionMonitor := monitor.NewSessionMonitor(sessionRepo, sessionTimeout, checkInterval)
		monitorDone := make(chan struct{})
		go func() {
			sessionMonitor.Start(ctx)
			close(monitorDone)
		}()

		gin.SetMode(cfg.Server.Mode)
		router := gin.Default()
		if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			log.Fatalf("Invalid trusted proxies: %v", err)
		}
		api.SetupRoutes(router, svc, api.CookieSettings{
			Name:   cfg.Cookie.Name,
			MaxAge: cfg.Cookie.MaxAgeSeconds,
			Secure: cfg.Cookie.Secure,
			Domain: cfg.Cookie.Domain,
		})
		log.Println("Routes API configurées.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:              serverAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Arrêt forcé du serveur : %v", err)
		}
		<-monitorDone

		log.Println("Serveur arrêté proprement.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
