package domain

// RawDocument represents opaque bytes handed over by a document source.
// It is the source's output before normalisation.
type RawDocument struct {
	// URI is the original location (file path, URL, etc).
	URI string

	// Title overrides the title derived by the normaliser when set.
	Title string

	// Kind is the source kind tag (pdf, markdown, plaintext).
	Kind SourceKind

	// Content is the raw bytes.
	Content []byte

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}
