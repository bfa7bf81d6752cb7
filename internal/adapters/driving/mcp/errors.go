// Package mcp provides an MCP (Model Context Protocol) server adapter for kassist.
// It lets AI assistants ask questions against the local knowledge base and
// submit documents to it.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrMissingDocumentInput is returned when submit_document has neither a path nor content.
var ErrMissingDocumentInput = errors.New("mcp: either path or content is required")
