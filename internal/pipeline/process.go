package pipeline

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"prozon/internal"
	"prozon/internal/catalog"
	"prozon/internal/config"
	"prozon/internal/extract"
	"prozon/internal/parse"
	"prozon/internal/storage"
)

type ProcessingService struct {
	db  *storage.DB
	cat *catalog.Catalog
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cat *catalog.Catalog, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cat: cat, cfg: cfg}
}

// ProcessText parses and enriches already-extracted document text.
func (s *ProcessingService) ProcessText(text string) internal.Order {
	return Enrich(parse.ParseOrder(text), s.cat)
}

// ProcessDocument runs the full pipeline on one PDF and records the result
// in the document registry. Extraction failures mark the document failed
// and are returned to the caller.
func (s *ProcessingService) ProcessDocument(path string) (internal.Order, error) {
	start := time.Now()

	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.Order{}, &extract.Error{Path: path, Err: err}
	}
	hashBytes := sha256.Sum256(blob)
	hash := hex.EncodeToString(hashBytes[:])

	doc, _, err := s.db.RegisterDocument(path, filepath.Base(path), "file", hash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return internal.Order{}, err
	}

	text, err := extract.Extract(path)
	if err != nil {
		_ = s.db.UpdateDocumentStatus(doc.ID, "failed", err.Error())
		return internal.Order{}, err
	}

	order := s.ProcessText(text)
	if err := s.db.SaveOrder(doc.ID, order); err != nil {
		return order, err
	}
	if err := s.db.UpdateDocumentStatus(doc.ID, "processed", ""); err != nil {
		return order, err
	}

	counts := statusCounts(order)
	counts["items"] = len(order.Items)
	_ = s.db.InsertRun(traceID(), doc.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, counts)

	return order, nil
}

// ProcessDir processes every PDF in dir sequentially. A failing document
// is logged and skipped; the batch always runs to the end.
func (s *ProcessingService) ProcessDir(dir string) ([]internal.Order, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	orders := make([]internal.Order, 0, len(names))
	for _, name := range names {
		order, err := s.ProcessDocument(filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("skip %s: %v\n", name, err)
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ProcessPending processes documents registered by the mail intake that
// have not been processed yet.
func (s *ProcessingService) ProcessPending(limit int) (int, error) {
	pending, err := s.db.ListDocumentsByStatus("fetched", limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, doc := range pending {
		if _, err := s.ProcessDocument(doc.Path); err != nil {
			fmt.Printf("skip %s: %v\n", doc.Filename, err)
			continue
		}
		processed++
	}
	return processed, nil
}

func statusCounts(order internal.Order) map[string]int {
	counts := map[string]int{"ok": 0, "missingWeight": 0, "notFound": 0}
	for _, item := range order.Items {
		switch item.Status {
		case internal.StatusOK:
			counts["ok"]++
		case internal.StatusMissingWeight:
			counts["missingWeight"]++
		case internal.StatusNotFound:
			counts["notFound"]++
		}
	}
	return counts
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
