package connectors

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"prozon/internal"
	"prozon/internal/storage"
)

// IntakeService pulls supplier mail and files every PDF attachment into the
// inbox directory, registering each one in the document registry. Content
// is addressed by hash so resending the same order is a no-op.
type IntakeService struct {
	db        *storage.DB
	inboxDir  string
	connector MailConnector
}

type IntakeResult struct {
	Fetched int
	Stored  int
	Skipped int
}

func NewIntakeService(db *storage.DB, inboxDir string, connector MailConnector) *IntakeService {
	return &IntakeService{db: db, inboxDir: inboxDir, connector: connector}
}

func (s *IntakeService) FetchAndStore(label string, max int) (IntakeResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return IntakeResult{}, err
	}

	result := IntakeResult{Fetched: len(messages)}
	for _, msg := range messages {
		stored, skipped, err := s.StoreAttachments(msg)
		if err != nil {
			return result, err
		}
		result.Stored += stored
		result.Skipped += skipped
	}
	return result, nil
}

// StoreAttachments saves the PDF attachments of one message. Non-PDF
// attachments are ignored; already-known documents count as skipped.
func (s *IntakeService) StoreAttachments(msg internal.FetchedMailMessage) (stored, skipped int, err error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(msg.Raw))
	if err != nil {
		return 0, 0, err
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
			continue
		}

		hashBytes := sha256.Sum256(att.Content)
		hash := hex.EncodeToString(hashBytes[:])

		if err := os.MkdirAll(s.inboxDir, 0o755); err != nil {
			return stored, skipped, err
		}
		path := filepath.Join(s.inboxDir, hash+".pdf")
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if err := os.WriteFile(path, att.Content, 0o644); err != nil {
				return stored, skipped, err
			}
		}

		_, inserted, err := s.db.RegisterDocument(path, filename, msg.Provider, hash, msg.ReceivedAt)
		if err != nil {
			return stored, skipped, err
		}
		if inserted {
			stored++
		} else {
			skipped++
		}
	}

	return stored, skipped, nil
}
