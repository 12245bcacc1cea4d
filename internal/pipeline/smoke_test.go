package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"prozon/internal"
	"prozon/internal/catalog"
	"prozon/internal/config"
	"prozon/internal/storage"
)

const smokeOrderText = `BON DE COMMANDE #LI70001
LIVRAISON 02/04/2024
Adresse de livraison
EHS Formation
Marie Leroy
8 avenue de la République
69002 Lyon
0472000000
France
Réf. de commande
REF2024
Référence Produit Qté
12345-1 Widget Bleu 3
99999-1 Produit inconnu 2
Le destinataire signera le bon.
`

func TestSmokeTextToExports(t *testing.T) {
	tmp := t.TempDir()

	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cat, err := catalog.Load(filepath.Join(tmp, "refs.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.Upsert("12345-1", "E-001", "Widget Bleu", 2.5, nil); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	svc := NewProcessingService(db, cat, cfg)

	order := svc.ProcessText(smokeOrderText)
	if order.Number != "LI70001" || order.Reference != "REF2024" {
		t.Fatalf("order=%+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items=%d", len(order.Items))
	}
	if order.Items[0].Status != internal.StatusOK || order.Items[1].Status != internal.StatusNotFound {
		t.Fatalf("statuses: %q %q", order.Items[0].Status, order.Items[1].Status)
	}

	doc, inserted, err := db.RegisterDocument(filepath.Join(tmp, "order.pdf"), "order.pdf", "file", "hash-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("expected a fresh document row")
	}
	if err := db.SaveOrder(doc.ID, order); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateDocumentStatus(doc.ID, "processed", ""); err != nil {
		t.Fatal(err)
	}

	stored, err := db.ListOrdersByDocumentStatus("processed", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Order.Number != "LI70001" {
		t.Fatalf("stored=%+v", stored)
	}

	csvOut := filepath.Join(tmp, "export.csv")
	if err := ExportOrdersToCSV([]internal.Order{stored[0].Order}, csvOut); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(csvOut); err != nil {
		t.Fatal(err)
	}

	xlsxOut := filepath.Join(tmp, "export.xlsx")
	if err := ExportOrdersToXLSX([]internal.Order{stored[0].Order}, xlsxOut); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(xlsxOut); err != nil {
		t.Fatal(err)
	}
}
