package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/admin"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting cads")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	a, err := app.New(bootCtx, app.Options{
		Database: database.ConfigFromEnv(),
		Session:  admin.SessionConfigFromEnv(),
		NewID:    utilities.IDFuncFromEnv(),
		Logger:   sugar,
	})
	cancel()
	if err != nil {
		sugar.Fatalf("init: %v", err)
	}
	defer a.Close()

	if st, err := a.Dashboard.Stats(ctx); err == nil {
		sugar.Infow("dashboard", "total_accountants", st.TotalAccountants,
			"total_clients", st.TotalClients, "active_accountants", st.ActiveAccountants)
	}

	sugar.Info("cads is running; press Ctrl+C to stop")
	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancelDone := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDone()
	if err := a.DB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
}
