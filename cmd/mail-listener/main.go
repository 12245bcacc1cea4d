package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"prozon/internal/catalog"
	"prozon/internal/config"
	"prozon/internal/listener"
	"prozon/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cat, err := catalog.Load(cfg.CatalogXLSX)
	must(err)

	svc := listener.NewService(db, cat, cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
