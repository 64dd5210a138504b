// Package embedding holds the text-to-vector providers and the helpers that
// drive them over a whole corpus.
package embedding

import "legalbot/internal/domain"

// Embedder converts free text into a numeric vector representation.
type Embedder = domain.Embedder
