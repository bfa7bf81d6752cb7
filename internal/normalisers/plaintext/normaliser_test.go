package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedKinds(t *testing.T) {
	assert.Equal(t, []domain.SourceKind{domain.SourceKindPlaintext}, New().SupportedKinds())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		URI:     "/path/to/document.txt",
		Kind:    domain.SourceKindPlaintext,
		Content: []byte("This is plain text content."),
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "document", doc.Title)
	assert.Equal(t, domain.SourceKindPlaintext, doc.Kind)
	assert.Equal(t, "This is plain text content.", doc.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	raw := &domain.RawDocument{URI: "/path/to/empty.txt", Content: []byte("")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
}

func TestNormalise_LineEndings(t *testing.T) {
	raw := &domain.RawDocument{URI: "/a.txt", Content: []byte("one\r\n\r\ntwo\rthree")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo\nthree", result.Document.Content)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		metadata      map[string]any
		expectedTitle string
	}{
		{name: "simple filename", uri: "/path/to/document.txt", expectedTitle: "document"},
		{name: "underscores to spaces", uri: "/path/my_document_name.txt", expectedTitle: "my document name"},
		{name: "dashes to spaces", uri: "/path/my-document-name.txt", expectedTitle: "my document name"},
		{
			name:          "metadata title wins",
			uri:           "/path/x.txt",
			metadata:      map[string]any{"title": "Field Guide"},
			expectedTitle: "Field Guide",
		},
	}

	normaliser := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &domain.RawDocument{URI: tt.uri, Metadata: tt.metadata}
			result, err := normaliser.Normalise(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedTitle, result.Document.Title)
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
