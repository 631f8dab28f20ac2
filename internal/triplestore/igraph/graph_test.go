package igraph_test

import (
	"fmt"
	"slices"
	"strconv"
	"testing"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

func ExampleGraph() {
	var graph igraph.Graph
	if err := graph.Reset(&igraph.MemoryEngine{}); err != nil {
		panic(err)
	}
	defer graph.Close()

	graph.AddTriple("http://example.com/catalog", "http://example.com/dataset", "http://example.com/ds")
	graph.AddData("http://example.com/ds", "http://example.com/title", impl.Datum{Value: "Trees", Language: "en"})
	graph.AddTriple("http://example.com/ds", "http://example.com/spatial", impl.BlankLabel("b0"))

	// adding twice has no effect
	added, _ := graph.AddTriple("http://example.com/catalog", "http://example.com/dataset", "http://example.com/ds")
	fmt.Println("added again:", added)

	// renamed triples are re-inserted, and hence move to the end
	graph.Rename("http://example.com/ds", "http://example.com/dataset/trees")

	triples, _ := graph.Triples()
	for _, triple := range triples {
		if triple.HasDatum() {
			fmt.Println(triple.Subject, triple.Predicate, triple.Datum.Value)
		} else {
			fmt.Println(triple.Subject, triple.Predicate, triple.Object)
		}
	}

	// Output: added again: false
	// http://example.com/dataset/trees http://example.com/title Trees
	// http://example.com/dataset/trees http://example.com/spatial _:b0
	// http://example.com/catalog http://example.com/dataset http://example.com/dataset/trees
}

func TestGraph_closed(t *testing.T) {
	t.Parallel()

	var graph igraph.Graph
	if _, err := graph.AddTriple("a", "b", "c"); err != igraph.ErrClosed {
		t.Errorf("AddTriple() on closed graph returned %v, want ErrClosed", err)
	}
	if _, err := graph.Triples(); err != igraph.ErrClosed {
		t.Errorf("Triples() on closed graph returned %v, want ErrClosed", err)
	}
	if err := graph.Close(); err != nil {
		t.Errorf("Close() on closed graph returned %v", err)
	}
}

func TestGraph_Rename(t *testing.T) {
	t.Parallel()

	var graph igraph.Graph
	if err := graph.Reset(&igraph.MemoryEngine{}); err != nil {
		t.Fatal(err)
	}
	defer graph.Close()

	mustAdd(t, &graph, igraph.Resource("self", "p", "self"))
	mustAdd(t, &graph, igraph.Resource("other", "p", "self"))
	mustAdd(t, &graph, igraph.Resource("self", "q", "target"))
	mustAdd(t, &graph, igraph.Resource("target", "r", "other"))
	mustAdd(t, &graph, igraph.Data("self", "title", impl.Datum{Value: "self"}))

	// merging into an existing node
	mustAdd(t, &graph, igraph.Resource("target", "q", "x"))

	if err := graph.Rename("self", "target"); err != nil {
		t.Fatal(err)
	}

	got := tripleStrings(t, &graph)
	want := []string{
		"other p target",
		"target q target",
		"target p target",
		"target r other",
		"target q x",
		"target title \"self\"",
	}
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Errorf("Rename() got triples %v, want %v", got, want)
	}

	if props, err := graph.Properties("self"); err != nil || len(props) != 0 {
		t.Errorf("Properties(old) = %v, %v, want no properties", props, err)
	}
	if stats := graph.Stats(); stats.RenamedNodes != 1 {
		t.Errorf("Stats().RenamedNodes = %d, want 1", stats.RenamedNodes)
	}
}

func TestGraph_Value(t *testing.T) {
	t.Parallel()

	var graph igraph.Graph
	if err := graph.Reset(&igraph.MemoryEngine{}); err != nil {
		t.Fatal(err)
	}
	defer graph.Close()

	mustAdd(t, &graph, igraph.Resource("s", "p", "first"))
	mustAdd(t, &graph, igraph.Resource("s", "p", "second"))

	value, ok, err := graph.Value("s", "p")
	if err != nil || !ok {
		t.Fatalf("Value() = %v, %v, %v", value, ok, err)
	}
	if value.Object != "first" {
		t.Errorf("Value() got object %q, want %q", value.Object, "first")
	}

	if _, ok, err := graph.Value("s", "missing"); err != nil || ok {
		t.Errorf("Value(missing) = _, %v, %v, want false, nil", ok, err)
	}
}

func mustAdd(t *testing.T, graph *igraph.Graph, triple igraph.Triple) {
	t.Helper()

	if _, err := graph.Add(triple); err != nil {
		t.Fatalf("Add(%v) returned error %s", triple, err)
	}
}

func tripleStrings(t *testing.T, graph *igraph.Graph) []string {
	t.Helper()

	triples, err := graph.Triples()
	if err != nil {
		t.Fatalf("Triples() returned error %s", err)
	}

	result := make([]string, len(triples))
	for i, triple := range triples {
		if triple.HasDatum() {
			result[i] = fmt.Sprintf("%s %s %q", triple.Subject, triple.Predicate, triple.Datum.Value)
		} else {
			result[i] = fmt.Sprintf("%s %s %s", triple.Subject, triple.Predicate, triple.Object)
		}
	}
	return result
}

// itol is like strconv.Itoa, but returns a label.
func itol(i int) impl.Label {
	return impl.Label(strconv.Itoa(i))
}

// graphTest performs an integration test for a graph with the given engine.
//
// It builds a chain 0 -> 1 -> ... -> n-1 with a literal on every node,
// removes every third edge, renames every even node and then checks the indexes.
func graphTest(t *testing.T, engine igraph.Engine, n int) {
	t.Helper()

	var graph igraph.Graph
	if err := graph.Reset(engine); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			t.Fatal(err)
		}
	}()

	const next, value = impl.Label("next"), impl.Label("value")

	for i := range n {
		if i+1 < n {
			if _, err := graph.AddTriple(itol(i), next, itol(i+1)); err != nil {
				t.Fatalf("AddTriple() returned error %s", err)
			}
		}
		if _, err := graph.AddData(itol(i), value, impl.Datum{Value: strconv.Itoa(i % 10)}); err != nil {
			t.Fatalf("AddData() returned error %s", err)
		}
	}

	// duplicates are ignored
	for i := 0; i+1 < n; i += 7 {
		added, err := graph.AddTriple(itol(i), next, itol(i+1))
		if err != nil {
			t.Fatalf("AddTriple() returned error %s", err)
		}
		if added {
			t.Errorf("AddTriple(%d) re-added an existing triple", i)
		}
	}

	// remove every third edge
	removed := 0
	for i := 0; i+1 < n; i += 3 {
		if err := graph.Remove(igraph.Resource(itol(i), next, itol(i+1))); err != nil {
			t.Fatalf("Remove() returned error %s", err)
		}
		removed++
	}

	// rename every even node
	renamed := func(i int) impl.Label {
		if i%2 == 0 {
			return impl.Label("r" + strconv.Itoa(i))
		}
		return itol(i)
	}
	for i := 0; i < n; i += 2 {
		if err := graph.Rename(itol(i), renamed(i)); err != nil {
			t.Fatalf("Rename() returned error %s", err)
		}
	}

	count, err := graph.Count()
	if err != nil {
		t.Fatalf("Count() returned error %s", err)
	}
	if want := uint64(n + (n - 1) - removed); count != want {
		t.Errorf("Count() = %d, want %d", count, want)
	}

	for i := range n {
		values, err := graph.Values(renamed(i), next)
		if err != nil {
			t.Fatalf("Values() returned error %s", err)
		}

		wantEdge := i+1 < n && i%3 != 0
		if wantEdge != (len(values) == 1) {
			t.Errorf("Values(%d, next) returned %d triples, want edge = %v", i, len(values), wantEdge)
		}
		if wantEdge && values[0].Object != renamed(i+1) {
			t.Errorf("Values(%d, next) got object %q, want %q", i, values[0].Object, renamed(i+1))
		}

		datum, ok, err := graph.Value(renamed(i), value)
		if err != nil || !ok {
			t.Fatalf("Value(%d, value) = %v, %v", i, ok, err)
		}
		if want := strconv.Itoa(i % 10); datum.Datum.Value != want {
			t.Errorf("Value(%d, value) = %q, want %q", i, datum.Datum.Value, want)
		}

		referencing, err := graph.Referencing(renamed(i))
		if err != nil {
			t.Fatalf("Referencing() returned error %s", err)
		}
		wantRef := i > 0 && (i-1)%3 != 0
		if wantRef != (len(referencing) == 1) {
			t.Errorf("Referencing(%d) returned %d triples, want reference = %v", i, len(referencing), wantRef)
		}

		if i%2 == 0 {
			if props, err := graph.Properties(itol(i)); err != nil || len(props) != 0 {
				t.Errorf("Properties(%d) = %d triples, %v after rename", i, len(props), err)
			}
		}
	}
}
