package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/storelane/catalog-api/internal/config"
	"github.com/storelane/catalog-api/internal/database"
	"github.com/storelane/catalog-api/internal/handler"
	"github.com/storelane/catalog-api/internal/queue"
	"github.com/storelane/catalog-api/internal/repository"
	"github.com/storelane/catalog-api/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)

	auth := handler.NewAuthHandler(cfg, users, tokens)
	cats := handler.NewCategoryHandler(categories)
	prods := handler.NewProductHandler(products)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg, rdb)
	router.RegisterCategories(e, cats, cfg, rdb)
	router.RegisterProducts(e, prods, cfg)

	// The consumer reconnects on its own; a broker outage never blocks the API.
	go func() {
		if err := queue.StartCatalogConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
