// Command migrate manages the database schema.
//
//	migrate up             apply pending migrations
//	migrate down           drop every table
//	migrate reset-reports  drop and recreate work_reports only
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"

	"github.com/poolforyou/poolforyou-api/internal/config"
	"github.com/poolforyou/poolforyou-api/internal/database"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate up|down|reset-reports")
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New("migrate")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	db, err := database.Open(context.Background(), database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		logger.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	cmd := flag.Arg(0)
	switch cmd {
	case "up":
		err = database.MigrateUp(db)
	case "down":
		err = database.MigrateDown(db)
	case "reset-reports":
		err = database.ResetReports(db)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%s: %v", cmd, err)
	}
	logger.Infof("%s: done", cmd)
}
