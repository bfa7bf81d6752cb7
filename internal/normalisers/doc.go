// Package normalisers provides implementations of the Normaliser interface
// for the supported source kinds. Each normaliser knows how to extract text
// content from one kind of document.
//
// Normalisers are registered with the Registry at startup.
package normalisers
