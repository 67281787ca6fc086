package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kofiasare/momo-sms-importer/pkg/lookup"
	"github.com/kofiasare/momo-sms-importer/pkg/repo"
)

func main() {
	_ = godotenv.Load()

	db, err := gorm.Open(postgres.Open(os.Getenv("POSTGRES_CONNECTION_STRING")), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	dataRepo := repo.NewPostgres(db)
	if err = dataRepo.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	index := lookup.NewIndex()

	transactions, err := dataRepo.ListTransactions(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to warm index")
	}
	index.Rebuild(transactions)

	users := parseUsers(os.Getenv("API_USERS"))
	if len(users) == 0 {
		log.Fatal().Msg("API_USERS is empty, refusing to start without credentials")
	}

	r := mux.NewRouter()
	r.Use(basicAuth(users))

	NewHandler(dataRepo, index).Register(r)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("LISTEN_PORT"); ok {
		listenAddr = ":" + val
	}

	log.Info().Str("addr", listenAddr).Int("indexed", index.Len()).Msg("starting api server")

	srv := &http.Server{
		Handler:      r,
		Addr:         listenAddr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}
