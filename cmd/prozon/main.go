package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"prozon/internal"
	"prozon/internal/catalog"
	"prozon/internal/config"
	"prozon/internal/connectors"
	"prozon/internal/listener"
	"prozon/internal/pipeline"
	"prozon/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cat, err := catalog.Load(cfg.CatalogXLSX)
	must(err)
	fmt.Printf("catalog loaded: %d references from %s\n", cat.Len(), cfg.CatalogXLSX)

	cmd := os.Args[1]
	switch cmd {
	case "refs:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		code := fs.String("code", "", "supplier reference (ex: 12345-1)")
		ehs := fs.String("ehs", "", "internal EHS reference")
		name := fs.String("name", "", "product name")
		weight := fs.String("weight", "", "unit weight (kg)")
		price := fs.String("price", "", "unit price (optional)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*code) == "" || strings.TrimSpace(*weight) == "" {
			must(fmt.Errorf("--code and --weight are required"))
		}
		action, err := cat.UpsertRaw(*code, *ehs, *name, *weight, *price)
		must(err)
		fmt.Printf("reference %s: %s\n", *code, action)
	case "refs:list":
		for _, entry := range cat.Entries() {
			fmt.Printf("%-12s %-12s %-8s %-8s %s\n",
				entry.ProzonRef, entry.EHSRef, formatOpt(entry.Weight), formatOpt(entry.Price), entry.ProductName)
		}
	case "process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "pdf file or directory of pdfs")
		csvOut := fs.String("csv", "", "csv export path (optional)")
		xlsxOut := fs.String("xlsx", "", "xlsx export path (optional)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		processor := pipeline.NewProcessingService(db, cat, cfg)
		orders, err := processOrders(processor, *input)
		must(err)
		fmt.Printf("processed %d document(s)\n", len(orders))

		if *csvOut != "" {
			must(pipeline.ExportOrdersToCSV(orders, *csvOut))
			fmt.Printf("csv written to %s\n", *csvOut)
		}
		if *xlsxOut != "" {
			must(pipeline.ExportOrdersToXLSX(orders, *xlsxOut))
			fmt.Printf("xlsx written to %s\n", *xlsxOut)
		}
	case "process:pending":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cat, cfg)
		processed, err := processor.ProcessPending(*batch)
		must(err)
		fmt.Printf("processed %d pending document(s)\n", processed)
	case "export:csv", "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output path")
		status := fs.String("status", "processed", "document status to export")
		limit := fs.Int("limit", 200, "max documents")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		stored, err := db.ListOrdersByDocumentStatus(*status, *limit)
		must(err)
		if len(stored) == 0 {
			must(fmt.Errorf("no orders with document status %q", *status))
		}
		orders := make([]internal.Order, 0, len(stored))
		for _, entry := range stored {
			orders = append(orders, entry.Order)
		}
		if cmd == "export:csv" {
			must(pipeline.ExportOrdersToCSV(orders, *out))
		} else {
			must(pipeline.ExportOrdersToXLSX(orders, *out))
		}
		fmt.Printf("exported %d order(s) to %s\n", len(orders), *out)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.ListenerProvider, "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := listener.MakeConnector(cfg, *provider)
		must(err)
		intake := connectors.NewIntakeService(db, cfg.InboxDir, conn)
		result, err := intake.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d skipped=%d\n",
			*provider, result.Fetched, result.Stored, result.Skipped)
	case "mail:listen":
		svc := listener.NewService(db, cat, cfg)
		must(svc.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func processOrders(processor *pipeline.ProcessingService, input string) ([]internal.Order, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return processor.ProcessDir(input)
	}
	order, err := processor.ProcessDocument(input)
	if err != nil {
		return nil, err
	}
	return []internal.Order{order}, nil
}

func formatOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func usage() {
	fmt.Println("usage: prozon <command>")
	fmt.Println("commands:")
	fmt.Println("  refs:add --code=12345-1 --ehs=E-001 --name=... --weight=2,5 [--price=19,90]")
	fmt.Println("  refs:list")
	fmt.Println("  process --input=<pdf|dir> [--csv=out.csv] [--xlsx=out.xlsx]")
	fmt.Println("  process:pending [--batch=20]")
	fmt.Println("  export:csv --out=./out/commandes.csv [--status=processed]")
	fmt.Println("  export:xlsx --out=./out/commandes.xlsx [--status=processed]")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
