package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"stablebin/adapters/api"
	"stablebin/adapters/memory"
	"stablebin/adapters/postgres"
	"stablebin/adapters/search"
	"stablebin/adapters/split"
	"stablebin/app"
	"stablebin/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[API] no .env file found, using environment")
	}

	ledger := buildLedger()
	binningService := app.NewBinningService(split.NewQuantile(), split.NewRateOrdered())
	searchService := app.NewSearchService(binningService, search.NewRandom(), ledger, search.NewSeededRNG())

	router := gin.Default()
	api.NewHandler(binningService, searchService, ledger).Register(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("[API] listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("[API] server failed: %v", err)
	}
}

// buildLedger uses Postgres when DATABASE_URL is set, otherwise an in-memory
// ledger (trial history then lives only for the process lifetime).
func buildLedger() ports.TrialLedgerPort {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("[API] DATABASE_URL not set, using in-memory trial ledger")
		return memory.NewTrialLedger()
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("[API] failed to connect to postgres: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("[API] failed to migrate schema: %v", err)
	}
	log.Println("[API] using postgres trial ledger")
	return postgres.NewTrialRepository(db)
}
