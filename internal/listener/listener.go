package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"prozon/internal"
	"prozon/internal/catalog"
	"prozon/internal/config"
	"prozon/internal/connectors"
	gmailconnector "prozon/internal/connectors/gmail"
	imapconnector "prozon/internal/connectors/imap"
	"prozon/internal/pipeline"
	"prozon/internal/storage"
)

// Service runs the unattended intake loop: fetch supplier mail, process the
// new PDFs, export the results.
type Service struct {
	db  *storage.DB
	cat *catalog.Catalog
	cfg config.Config
}

func NewService(db *storage.DB, cat *catalog.Catalog, cfg config.Config) *Service {
	return &Service{db: db, cat: cat, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := MakeConnector(s.cfg, provider)
	if err != nil {
		return err
	}

	intake := connectors.NewIntakeService(s.db, s.cfg.InboxDir, mailConnector)
	fetchResult, err := intake.FetchAndStore(s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cat, s.cfg)
	processed, err := processor.ProcessPending(s.cfg.ListenerProcessBatch)
	if err != nil {
		return err
	}

	if s.cfg.ListenerAutoExport {
		if err := s.exportProcessed(); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d processed=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, processed)
	return nil
}

func (s *Service) exportProcessed() error {
	stored, err := s.db.ListOrdersByDocumentStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, entry := range stored {
		name := strings.TrimSuffix(entry.Filename, filepath.Ext(entry.Filename))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", fmt.Sprintf("%d_%s.csv", entry.DocumentID, name))
		if err := pipeline.ExportOrdersToCSV([]internal.Order{entry.Order}, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateDocumentStatus(entry.DocumentID, "exported", "")
	}
	return nil
}

// MakeConnector maps a provider name to its mail connector.
func MakeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
