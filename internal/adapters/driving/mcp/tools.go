package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kassist/internal/connectors/filesystem"
	"github.com/custodia-labs/kassist/internal/core/domain"
)

// AskInput is the input schema for the ask_question tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the knowledge base"`
}

// AskOutput is the output schema for the ask_question tool.
type AskOutput struct {
	Answer      string   `json:"answer"`
	Citations   []string `json:"citations"`
	NoKnowledge bool     `json:"no_knowledge,omitempty"`
}

// SubmitInput is the input schema for the submit_document tool.
type SubmitInput struct {
	Path    string `json:"path,omitempty" jsonschema:"absolute path of a pdf, markdown or text file to ingest"`
	Content string `json:"content,omitempty" jsonschema:"inline document text, used when path is empty"`
	Kind    string `json:"kind,omitempty" jsonschema:"kind of inline content: markdown or plaintext (default plaintext)"`
	Title   string `json:"title,omitempty" jsonschema:"optional title overriding the extracted one"`
}

// SubmitOutput is the output schema for the submit_document tool.
type SubmitOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Passages   int    `json:"passages"`
	Indexed    int    `json:"indexed"`
	Skipped    int    `json:"skipped"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single document.
type DocumentOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URI       string `json:"uri,omitempty"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
// Document tools are only offered when a document service is wired.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question using passages retrieved from the local knowledge base, with citations",
	}, s.handleAsk)

	if s.ports.Document == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_document",
		Description: "Add a document to the knowledge base from a file path or inline text",
	}, s.handleSubmit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List documents in the knowledge base, oldest first",
	}, s.handleListDocuments)
}

// handleAsk handles the ask_question tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	citations := answer.Citations
	if citations == nil {
		citations = []string{}
	}

	return nil, AskOutput{
		Answer:      answer.Text,
		Citations:   citations,
		NoKnowledge: answer.NoKnowledge,
	}, nil
}

// handleSubmit handles the submit_document tool invocation.
func (s *Server) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitInput,
) (*mcp.CallToolResult, SubmitOutput, error) {
	raw, err := rawFromInput(input)
	if err != nil {
		return nil, SubmitOutput{}, err
	}

	doc, report, err := s.ports.Document.Submit(ctx, raw)
	if err != nil {
		return nil, SubmitOutput{}, err
	}

	output := SubmitOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
	}
	if report != nil {
		output.Passages = report.Passages
		output.Indexed = report.Indexed
		output.Skipped = report.Skipped
	}
	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:        docs[i].ID,
			Title:     docs[i].Title,
			URI:       docs[i].URI,
			Kind:      docs[i].Kind.String(),
			CreatedAt: docs[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return nil, output, nil
}

// rawFromInput builds a raw document from either a file path or inline text.
func rawFromInput(input SubmitInput) (*domain.RawDocument, error) {
	if input.Path != "" {
		raw, err := filesystem.ReadFile(input.Path)
		if err != nil {
			return nil, err
		}
		if input.Title != "" {
			raw.Title = input.Title
		}
		return raw, nil
	}

	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrMissingDocumentInput
	}

	kind := domain.SourceKindPlaintext
	if input.Kind != "" {
		kind = domain.SourceKind(input.Kind)
	}
	// PDFs need their original bytes; inline text cannot carry them.
	if kind == domain.SourceKindPDF || !kind.IsValid() {
		return nil, fmt.Errorf("%w: inline kind %q", domain.ErrUnsupportedType, input.Kind)
	}

	title := input.Title
	if title == "" {
		title = "inline"
	}
	return &domain.RawDocument{
		Title:   title,
		Kind:    kind,
		Content: []byte(input.Content),
	}, nil
}

// isNotFound reports whether err means a requested document does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
