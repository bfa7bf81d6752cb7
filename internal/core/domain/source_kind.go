package domain

// SourceKind tags the format a document's text was extracted from.
type SourceKind string

// Supported source kinds.
const (
	// SourceKindPDF is a paginated PDF document.
	SourceKindPDF SourceKind = "pdf"

	// SourceKindMarkdown is a flat markdown document.
	SourceKindMarkdown SourceKind = "markdown"

	// SourceKindPlaintext is a flat plain text document.
	SourceKindPlaintext SourceKind = "plaintext"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindPDF, SourceKindMarkdown, SourceKindPlaintext:
		return true
	default:
		return false
	}
}

// IsPaginated returns true if passages are numbered by physical page.
func (k SourceKind) IsPaginated() bool {
	return k == SourceKindPDF
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// AllSourceKinds returns every supported source kind.
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceKindPDF, SourceKindMarkdown, SourceKindPlaintext}
}
