package igraph_test

import (
	"os"
	"testing"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/imap"
)

func TestDiskEngine(t *testing.T) {
	t.Parallel()

	graphTest(t, &igraph.DiskEngine{
		DiskMap: imap.DiskMap{
			Path: t.TempDir(),
		},
	}, 1_000)
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()

		engine, err := igraph.NewEngine("")
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := engine.(*igraph.MemoryEngine); !ok {
			t.Errorf("NewEngine(\"\") returned %T, want *MemoryEngine", engine)
		}
	})

	t.Run("disk", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		engine, err := igraph.NewEngine(dir)
		if err != nil {
			t.Fatal(err)
		}
		de, ok := engine.(*igraph.DiskEngine)
		if !ok {
			t.Fatalf("NewEngine(dir) returned %T, want *DiskEngine", engine)
		}

		var graph igraph.Graph
		if err := graph.Reset(engine); err != nil {
			t.Fatal(err)
		}
		if _, err := graph.AddTriple("a", "b", "c"); err != nil {
			t.Fatal(err)
		}
		if err := graph.Close(); err != nil {
			t.Fatal(err)
		}

		if _, err := os.Stat(de.Path); !os.IsNotExist(err) {
			t.Errorf("temporary directory %q still exists after Close()", de.Path)
		}
	})
}
