package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Error marks a document as unprocessable at the binary level. Batch
// callers skip the document and keep going.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var errNoTextLayer = errors.New("no extractable text layer")

// Extract returns the concatenated text of all pages, in page order and
// with no separator between pages.
func Extract(path string) (string, error) {
	if err := validateFile(path); err != nil {
		return "", &Error{Path: path, Err: err}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &Error{Path: path, Err: err}
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", &Error{Path: path, Err: errNoTextLayer}
	}
	return sb.String(), nil
}

// validateFile rejects unreadable and encrypted documents before the text
// pass. pdfcpu runs in relaxed mode so slightly malformed but usable files
// still go through.
func validateFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return fmt.Errorf("read pdf context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("page count: %w", err)
	}
	if ctx.Encrypt != nil {
		return errors.New("document is encrypted")
	}
	return nil
}
