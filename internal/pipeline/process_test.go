package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"prozon/internal/catalog"
	"prozon/internal/config"
	"prozon/internal/storage"
)

func newTestService(t *testing.T) (*ProcessingService, *storage.DB, string) {
	t.Helper()
	tmp := t.TempDir()

	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cat, err := catalog.Load(filepath.Join(tmp, "refs.xlsx"))
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	return NewProcessingService(db, cat, cfg), db, tmp
}

func TestProcessDirSkipsFailingDocuments(t *testing.T) {
	svc, db, tmp := newTestService(t)

	docs := filepath.Join(tmp, "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, "broken.pdf"), []byte("pas un pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, "notes.txt"), []byte("ignoré"), 0o644); err != nil {
		t.Fatal(err)
	}

	orders, err := svc.ProcessDir(docs)
	if err != nil {
		t.Fatalf("a failing document must not abort the batch: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("orders=%d", len(orders))
	}

	failed, err := db.ListDocumentsByStatus("failed", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].Filename != "broken.pdf" {
		t.Fatalf("failed=%+v", failed)
	}
	if failed[0].Error == "" {
		t.Fatal("failure reason should be recorded")
	}
}

func TestProcessPendingMarksFailures(t *testing.T) {
	svc, db, tmp := newTestService(t)

	content := []byte("toujours pas un pdf")
	path := filepath.Join(tmp, "pending.pdf")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	// Intake registers by content hash; processing must land on this row.
	hash := sha256.Sum256(content)
	if _, _, err := db.RegisterDocument(path, "pending.pdf", "imap", hex.EncodeToString(hash[:]), ""); err != nil {
		t.Fatal(err)
	}

	processed, err := svc.ProcessPending(10)
	if err != nil {
		t.Fatal(err)
	}
	if processed != 0 {
		t.Fatalf("processed=%d", processed)
	}

	pending, err := db.ListDocumentsByStatus("fetched", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("document should have left the fetched state: %+v", pending)
	}
}
