package igraph_test

import (
	"testing"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
	"github.com/alecthomas/assert/v2"
	"github.com/anglo-korean/rdf"
)

func TestTriple_Triple(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		triple igraph.Triple
		want   string
	}{
		{
			name: "resource",
			triple: igraph.Triple{
				Subject:   "https://proxy.example/catalog.xml?page=2",
				Predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
				Object:    "http://www.w3.org/ns/hydra/core#PagedCollection",
				Role:      igraph.ResourceRole,
			},
			want: "<https://proxy.example/catalog.xml?page=2> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/ns/hydra/core#PagedCollection>",
		},
		{
			name: "blank",
			triple: igraph.Triple{
				Subject:   impl.BlankLabel("b0"),
				Predicate: "http://www.w3.org/ns/dcat#accessURL",
				Object:    impl.BlankLabel("b1"),
				Role:      igraph.ResourceRole,
			},
			want: "_:b0 <http://www.w3.org/ns/dcat#accessURL> _:b1",
		},
		{
			name: "language",
			triple: igraph.Triple{
				Subject:   "http://example.com/ds",
				Predicate: "http://purl.org/dc/terms/title",
				Datum:     impl.Datum{Value: "Bäume", Language: "de"},
				Role:      igraph.DataRole,
			},
			want: `<http://example.com/ds> <http://purl.org/dc/terms/title> "Bäume"@de`,
		},
		{
			name: "datatype",
			triple: igraph.Triple{
				Subject:   "http://example.com/ds",
				Predicate: "http://purl.org/dc/terms/issued",
				Datum:     impl.Datum{Value: "2012-01-01", Datatype: "http://www.w3.org/2001/XMLSchema#date"},
				Role:      igraph.DataRole,
			},
			want: `<http://example.com/ds> <http://purl.org/dc/terms/issued> "2012-01-01"^^<http://www.w3.org/2001/XMLSchema#date>`,
		},
		{
			name: "plain",
			triple: igraph.Triple{
				Subject:   impl.BlankLabel("b0"),
				Predicate: "http://purl.org/dc/terms/format",
				Datum:     impl.Datum{Value: "CSV"},
				Role:      igraph.DataRole,
			},
			want: `_:b0 <http://purl.org/dc/terms/format> "CSV"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spo, err := tt.triple.Triple()
			assert.NoError(t, err)

			got := spo.Subj.Serialize(rdf.NTriples) + " " + spo.Pred.Serialize(rdf.NTriples) + " " + spo.Obj.Serialize(rdf.NTriples)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTriple_Triple_invalid(t *testing.T) {
	t.Parallel()

	_, err := igraph.Triple{
		Subject:   impl.BlankLabel(" "),
		Predicate: "http://purl.org/dc/terms/format",
		Object:    "http://example.com/csv",
		Role:      igraph.ResourceRole,
	}.Triple()
	assert.Error(t, err)
}
