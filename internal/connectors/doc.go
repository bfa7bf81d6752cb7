// Package connectors provides document sources. Each connector knows how
// to read documents from one kind of location and hand them over as
// RawDocuments for normalisation.
package connectors
