// Package tui provides an interactive terminal user interface for kassist.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Answer answers questions from the knowledge base.
	Answer driving.AnswerService

	// Document lists documents and their passages.
	Document driving.DocumentService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, document driving.DocumentService) *Ports {
	return &Ports{
		Answer:   answer,
		Document: document,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
