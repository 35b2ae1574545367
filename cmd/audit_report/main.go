package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/baseapi-backend/internal/app"
	types "github.com/yungbote/baseapi-backend/internal/domain"
)

func main() {
	var table, entityID, userID string
	var limit int
	flag.StringVar(&table, "table", "", "audited table, e.g. products")
	flag.StringVar(&entityID, "id", "", "entity id whose trail to print (requires -table)")
	flag.StringVar(&userID, "user", "", "print the newest rows recorded for this user id instead")
	flag.IntVar(&limit, "limit", 100, "max rows for -user (0 = all)")
	flag.Parse()

	if (strings.TrimSpace(entityID) == "") == (strings.TrimSpace(userID) == "") {
		fmt.Println("exactly one of -id or -user is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close(ctx)

	u := application.UoWs.New()
	defer u.Close()

	var rows []*types.AuditLog
	if entityID != "" {
		rows, err = u.AuditTrail().ListByEntity(ctx, strings.TrimSpace(table), strings.TrimSpace(entityID))
	} else {
		rows, err = u.AuditTrail().ListByUser(ctx, strings.TrimSpace(userID), limit)
	}
	if err != nil {
		application.Log.Error("audit query failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			application.Log.Error("encode audit row failed", "error", err)
			os.Exit(1)
		}
	}
}
