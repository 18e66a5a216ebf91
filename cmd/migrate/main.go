package main

import (
	"fmt"
	"log"

	"review-core/internal/model"
	"review-core/pkg/config"
	"review-core/pkg/database"
)

// Schema migration entry point for non-development environments, where
// the server itself never touches the schema.
func main() {
	config.Init()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)

	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migration done")
}
