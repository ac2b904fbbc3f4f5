package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/border-control-ticketing/internal/config"     // Internal config loader
	"github.com/iliyamo/border-control-ticketing/internal/database"   // MySQL connector
	"github.com/iliyamo/border-control-ticketing/internal/handler"    // HTTP handlers
	"github.com/iliyamo/border-control-ticketing/internal/queue"      // decision log consumer
	"github.com/iliyamo/border-control-ticketing/internal/repository" // DB repositories
	"github.com/iliyamo/border-control-ticketing/internal/router"     // Internal router setup
	"github.com/iliyamo/border-control-ticketing/internal/ticketing"  // ticket lifecycle core
)

func main() {
	_ = godotenv.Load() // best effort; real deployments set env directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables caching and rate limiting
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	tickets := repository.NewTicketRepo(db)
	forms := repository.NewPassengerFormRepo(db)
	decisions := repository.NewDecisionRepo(db)
	ports := repository.NewPortRepo(db)
	users := repository.NewUserRepo(db)
	txm := repository.NewTxManager(db)

	svc := ticketing.NewService(tickets, forms, decisions, ports, txm,
		ticketing.WithPrefix(cfg.TicketPrefix),
		ticketing.WithLeaseWindow(cfg.ScanLease),
	)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewTicketHandler(svc), rdb)
	router.RegisterAgent(e, handler.NewAgentHandler(svc, decisions), cfg.JWTSecret, rdb)
	router.RegisterAdmin(e, handler.NewAdminTicketHandler(svc), cfg.JWTSecret)

	// The consumer keeps its own reconnect loop and never brings the
	// server down with it.
	go func() {
		if err := queue.StartDecisionConsumer(); err != nil {
			log.Printf("decision consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, prefix=%c)", addr, cfg.Env, cfg.TicketPrefix)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
