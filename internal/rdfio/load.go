package rdfio

import (
	"errors"
	"fmt"
	"io"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
)

// Load reads all triples from source into graph.
// The source is opened and closed by Load.
//
// It returns the number of triples read, including duplicates.
func Load(source Source, graph *igraph.Graph) (count int, e error) {
	if err := source.Open(); err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			e = errors.Join(e, fmt.Errorf("failed to close source: %w", err))
		}
	}()

	for {
		tok := source.Next()
		switch {
		case errors.Is(tok.Err, io.EOF):
			return count, nil
		case tok.Err != nil:
			return count, fmt.Errorf("failed to read triple %d: %w", count+1, tok.Err)
		case tok.HasDatum:
			if _, err := graph.AddData(tok.Subject, tok.Predicate, tok.Datum); err != nil {
				return count, fmt.Errorf("failed to add triple %d: %w", count+1, err)
			}
		default:
			if _, err := graph.AddTriple(tok.Subject, tok.Predicate, tok.Object); err != nil {
				return count, fmt.Errorf("failed to add triple %d: %w", count+1, err)
			}
		}
		count++
	}
}
