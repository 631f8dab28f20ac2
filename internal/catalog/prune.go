package catalog

import (
	"fmt"

	"github.com/FAU-CDI/catalogproxy/internal/dcat"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

// Set is a set of nodes
type Set map[impl.Label]struct{}

// Has checks if label is contained in this set.
func (set Set) Has(label impl.Label) bool {
	_, ok := set[label]
	return ok
}

// IsCollection checks if dataset is marked as a collection of other datasets.
func IsCollection(graph *igraph.Graph, dataset impl.Label) (bool, error) {
	types, err := graph.Values(dataset, dcat.DatasetType)
	if err != nil {
		return false, err
	}
	for _, tp := range types {
		if !tp.HasDatum() && tp.Object == dcat.Collection {
			return true, nil
		}
	}
	return false, nil
}

// Distributions returns the distributions of dataset.
func Distributions(graph *igraph.Graph, dataset impl.Label) ([]impl.Label, error) {
	edges, err := graph.Values(dataset, dcat.DistributionOf)
	if err != nil {
		return nil, err
	}

	distributions := make([]impl.Label, 0, len(edges))
	for _, edge := range edges {
		if !edge.HasDatum() {
			distributions = append(distributions, edge.Object)
		}
	}
	return distributions, nil
}

// HasValidDistribution checks if dataset has at least one distribution with a format not in [dcat.UnwantedFormats].
// A distribution without a format counts as valid.
func HasValidDistribution(graph *igraph.Graph, dataset impl.Label) (bool, error) {
	distributions, err := Distributions(graph, dataset)
	if err != nil {
		return false, err
	}

	for _, distribution := range distributions {
		format, ok, err := graph.Value(distribution, dcat.Format)
		if err != nil {
			return false, err
		}
		if !ok || format.HasDatum() || !dcat.IsUnwantedFormat(format.Object) {
			return true, nil
		}
	}
	return false, nil
}

// PruneDatasets removes all datasets that are neither collections nor have a valid distribution.
// All statements about a removed dataset, and all statements referencing it, are removed.
//
// It returns the distributions of all kept datasets.
func PruneDatasets(graph *igraph.Graph) (retained Set, kept, removed int, err error) {
	datasets, err := graph.Subjects(dcat.Type, dcat.Dataset)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to list datasets: %w", err)
	}

	// decide on every dataset before modifying anything
	retained = make(Set)
	var rejected []impl.Label
	for _, dataset := range datasets {
		collection, err := IsCollection(graph, dataset)
		if err != nil {
			return nil, 0, 0, err
		}
		valid, err := HasValidDistribution(graph, dataset)
		if err != nil {
			return nil, 0, 0, err
		}

		if !(collection || valid) {
			rejected = append(rejected, dataset)
			continue
		}

		distributions, err := Distributions(graph, dataset)
		if err != nil {
			return nil, 0, 0, err
		}
		for _, distribution := range distributions {
			retained[distribution] = struct{}{}
		}
	}

	for _, dataset := range rejected {
		if err := removeNode(graph, dataset, true); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to remove dataset %q: %w", dataset, err)
		}
	}

	return retained, len(datasets) - len(rejected), len(rejected), nil
}

// RemoveUnusedDistributions removes all statements about distributions not contained in retained.
// It returns the number of distributions removed.
func RemoveUnusedDistributions(graph *igraph.Graph, retained Set) (int, error) {
	distributions, err := graph.Subjects(dcat.Type, dcat.Distribution)
	if err != nil {
		return 0, fmt.Errorf("failed to list distributions: %w", err)
	}

	removed := 0
	for _, distribution := range distributions {
		if retained.Has(distribution) {
			continue
		}
		if err := removeNode(graph, distribution, false); err != nil {
			return removed, fmt.Errorf("failed to remove distribution %q: %w", distribution, err)
		}
		removed++
	}
	return removed, nil
}

// RemoveAnonymousResources removes all statements about blank nodes that are not the object of any statement.
//
// Referencing objects are determined once, before anything is removed.
// Blank nodes that only become unreferenced by this removal are kept.
func RemoveAnonymousResources(graph *igraph.Graph) (int, error) {
	objects, err := graph.AllObjects()
	if err != nil {
		return 0, fmt.Errorf("failed to collect objects: %w", err)
	}
	subjects, err := graph.AllSubjects()
	if err != nil {
		return 0, fmt.Errorf("failed to collect subjects: %w", err)
	}

	var orphans []impl.Label
	for _, subject := range subjects {
		if _, referenced := objects[subject]; subject.IsBlank() && !referenced {
			orphans = append(orphans, subject)
		}
	}

	for _, orphan := range orphans {
		if err := removeNode(graph, orphan, false); err != nil {
			return 0, fmt.Errorf("failed to remove blank node %q: %w", orphan, err)
		}
	}
	return len(orphans), nil
}

// RemoveUnusedLocations removes all statements about locations that are not the object of any statement.
func RemoveUnusedLocations(graph *igraph.Graph) (int, error) {
	objects, err := graph.AllObjects()
	if err != nil {
		return 0, fmt.Errorf("failed to collect objects: %w", err)
	}
	locations, err := graph.Subjects(dcat.Type, dcat.Location)
	if err != nil {
		return 0, fmt.Errorf("failed to list locations: %w", err)
	}

	removed := 0
	for _, location := range locations {
		if _, referenced := objects[location]; referenced {
			continue
		}
		if err := removeNode(graph, location, false); err != nil {
			return removed, fmt.Errorf("failed to remove location %q: %w", location, err)
		}
		removed++
	}
	return removed, nil
}

// MinimizeLocations removes the geometry of all political geocoding locations.
// It returns the number of locations changed.
func MinimizeLocations(graph *igraph.Graph) (int, error) {
	locations, err := graph.Subjects(dcat.Type, dcat.Location)
	if err != nil {
		return 0, fmt.Errorf("failed to list locations: %w", err)
	}

	changed := 0
	for _, location := range locations {
		if !dcat.IsPoliticalGeocoding(location) {
			continue
		}

		geometries, err := graph.Values(location, dcat.Geometry)
		if err != nil {
			return changed, err
		}
		if len(geometries) == 0 {
			continue
		}

		if err := graph.RemoveAll(geometries); err != nil {
			return changed, fmt.Errorf("failed to remove geometry of %q: %w", location, err)
		}
		changed++
	}
	return changed, nil
}

// removeNode removes all statements with the given subject.
// If incoming is true, also removes all statements referencing node.
func removeNode(graph *igraph.Graph, node impl.Label, incoming bool) error {
	triples, err := graph.Properties(node)
	if err != nil {
		return err
	}
	if incoming {
		references, err := graph.Referencing(node)
		if err != nil {
			return err
		}
		triples = append(triples, references...)
	}
	return graph.RemoveAll(triples)
}
