package catalog

import (
	"fmt"

	"github.com/FAU-CDI/catalogproxy/internal/dcat"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
)

// AddDownloadURLs gives every distribution without a download url its access url as download url.
// Existing download urls are never changed.
//
// It returns the number of download urls added.
func AddDownloadURLs(graph *igraph.Graph) (int, error) {
	distributions, err := graph.Subjects(dcat.Type, dcat.Distribution)
	if err != nil {
		return 0, fmt.Errorf("failed to list distributions: %w", err)
	}

	var additions []igraph.Triple
	for _, distribution := range distributions {
		_, hasDownload, err := graph.Value(distribution, dcat.DownloadURL)
		if err != nil {
			return 0, err
		}
		if hasDownload {
			continue
		}

		access, hasAccess, err := graph.Value(distribution, dcat.AccessURL)
		if err != nil {
			return 0, err
		}
		if !hasAccess {
			continue
		}

		access.Predicate = dcat.DownloadURL
		additions = append(additions, access)
	}

	for _, addition := range additions {
		if _, err := graph.Add(addition); err != nil {
			return 0, fmt.Errorf("failed to add download url to %q: %w", addition.Subject, err)
		}
	}
	return len(additions), nil
}
