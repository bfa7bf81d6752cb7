// Package pdf extracts per-page text from PDF documents with the
// pdftotext tool from poppler.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	toolName = "pdftotext"

	// maxTitleLen skips lines too long to be a heading.
	maxTitleLen = 200

	// pageBreak separates pages in pdftotext output.
	pageBreak = "\f"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner   CommandRunner
	checkBin bool
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}, checkBin: true}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return `PDF support requires pdftotext (part of poppler).

  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}

// SupportedKinds returns the source kinds this normaliser handles.
func (n *Normaliser) SupportedKinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceKindPDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page. Pages are separated by form
// feeds in the resulting content so the chunker can number them.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if n.checkBin {
		if err := CheckAvailable(); err != nil {
			return nil, fmt.Errorf("%w\n%s", err, InstallInstructions())
		}
	}

	tmp, err := os.CreateTemp("", "kassist-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw.Content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, toolName, "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	content := cleanOutput(string(out))

	doc := domain.Document{
		URI:     raw.URI,
		Title:   extractTitle(content, raw.URI),
		Kind:    domain.SourceKindPDF,
		Content: content,
	}
	if title, ok := raw.Metadata["title"].(string); ok && title != "" {
		doc.Title = title
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// cleanOutput normalises line endings and drops the form feed pdftotext
// writes after the last page.
func cleanOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimRight(s, "\n"+pageBreak)
}

// extractTitle uses the first short non-empty line, or the filename.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, pageBreak, ""))
		if line == "" || len(line) > maxTitleLen || !utf8.ValidString(line) {
			continue
		}
		return line
	}

	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
