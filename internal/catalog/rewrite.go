package catalog

import (
	"fmt"
	"strings"

	"github.com/FAU-CDI/catalogproxy/internal/dcat"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

// Replace applies the first replacement whose prefix matches uri.
// If no replacement matches, returns uri unchanged and ok = false.
func (filter *Filter) Replace(uri string) (replaced string, ok bool) {
	for _, r := range filter.replacements {
		if rest, found := strings.CutPrefix(uri, r.From); found {
			return r.To + rest, true
		}
	}
	return uri, false
}

// ReplaceURLs rewrites the access and download urls of all distributions using the configured replacements.
//
// Only the first url-valued statement of each property is considered.
// When it is rewritten, all other values of the property are dropped.
func (filter *Filter) ReplaceURLs(graph *igraph.Graph) (int, error) {
	if len(filter.replacements) == 0 {
		return 0, nil
	}

	distributions, err := graph.Subjects(dcat.Type, dcat.Distribution)
	if err != nil {
		return 0, fmt.Errorf("failed to list distributions: %w", err)
	}

	replaced := 0
	for _, distribution := range distributions {
		for _, predicate := range []impl.Label{dcat.AccessURL, dcat.DownloadURL} {
			values, err := graph.Values(distribution, predicate)
			if err != nil {
				return replaced, err
			}

			url, ok := firstURL(values)
			if !ok {
				continue
			}
			target, ok := filter.Replace(string(url))
			if !ok {
				continue
			}

			if err := graph.RemoveAll(values); err != nil {
				return replaced, fmt.Errorf("failed to remove %q of %q: %w", predicate, distribution, err)
			}
			if _, err := graph.AddTriple(distribution, predicate, impl.Label(target)); err != nil {
				return replaced, fmt.Errorf("failed to add %q to %q: %w", predicate, distribution, err)
			}
			replaced++
		}
	}
	return replaced, nil
}

// firstURL returns the first value that is not a literal or a blank node.
func firstURL(values []igraph.Triple) (impl.Label, bool) {
	for _, value := range values {
		if !value.HasDatum() && !value.Object.IsBlank() {
			return value.Object, true
		}
	}
	return "", false
}

// RewriteHydraURLs points the pagination of the catalog to the base url.
//
// The original url is the part of the paged collection's uri before [dcat.CatalogResource].
// Every literal of the paged collection starting with the original url has it replaced by the base url,
// and the paged collection itself is renamed accordingly.
//
// When there is no paged collection, nothing is changed.
// It returns the number of rewritten literals and if the collection was renamed.
func (filter *Filter) RewriteHydraURLs(graph *igraph.Graph) (rewritten int, renamed bool, err error) {
	collections, err := graph.Subjects(dcat.Type, dcat.PagedCollection)
	if err != nil {
		return 0, false, fmt.Errorf("failed to list paged collections: %w", err)
	}

	var collection impl.Label
	for _, candidate := range collections {
		if !candidate.IsBlank() {
			collection = candidate
			break
		}
	}
	if collection == "" {
		return 0, false, nil
	}

	original, _, _ := strings.Cut(string(collection), dcat.CatalogResource)
	if original == "" {
		return 0, false, nil
	}

	properties, err := graph.Properties(collection)
	if err != nil {
		return 0, false, err
	}

	var links []igraph.Triple
	for _, property := range properties {
		if property.HasDatum() && strings.HasPrefix(property.Datum.Value, original) {
			links = append(links, property)
		}
	}

	for _, link := range links {
		if err := graph.Remove(link); err != nil {
			return rewritten, false, fmt.Errorf("failed to remove %q: %w", link.Predicate, err)
		}

		link.Datum.Value = filter.baseURL + strings.TrimPrefix(link.Datum.Value, original)
		if _, err := graph.Add(link); err != nil {
			return rewritten, false, fmt.Errorf("failed to add %q: %w", link.Predicate, err)
		}
		rewritten++
	}

	target := impl.Label(strings.Replace(string(collection), original, filter.baseURL, 1))
	if target == collection {
		return rewritten, false, nil
	}
	if err := graph.Rename(collection, target); err != nil {
		return rewritten, false, fmt.Errorf("failed to rename paged collection: %w", err)
	}
	return rewritten, true, nil
}
