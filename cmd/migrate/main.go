package main

import (
	"jacket_marketplace/internal/config" // Custom import path (Config)
	"jacket_marketplace/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())
}
