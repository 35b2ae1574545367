package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/baseapi-backend/internal/app"
	"github.com/yungbote/baseapi-backend/internal/data/db"
)

func main() {
	var skipIndexes bool
	flag.BoolVar(&skipIndexes, "skip-indexes", false, "only run AutoMigrate, skip the composite lookup indexes")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close(ctx)
	log := application.Log.With("cmd", "migrate", "driver", application.Cfg.DB.Driver)

	if err := db.AutoMigrateAll(application.DB); err != nil {
		log.Error("auto migration failed", "error", err)
		os.Exit(1)
	}
	if !skipIndexes {
		if err := db.EnsureAuditIndexes(application.DB); err != nil {
			log.Error("index creation failed", "error", err)
			os.Exit(1)
		}
	}
	log.Info("schema is up to date")
}
