package perf_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/FAU-CDI/catalogproxy/pkg/perf"
)

func ExampleDiff() {
	// Diff holds both the amount of time an operation took,
	// the number of bytes consumed, and the total number of allocated objects.
	diff := perf.Diff{
		Time:    15 * time.Second,
		Bytes:   100,
		Objects: 1200,
	}
	fmt.Println(diff)
	// Output: 15s, 100 B, 1,200 objects
}

func TestDiff_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		diff perf.Diff
		want string
	}{
		{perf.Diff{}, "0s, 0 B, 0 objects"},
		{perf.Diff{Time: time.Millisecond, Bytes: -2000, Objects: 1}, "1ms, -2.0 kB, 1 object"},
		{perf.Diff{Time: time.Second, Bytes: 3_000_000, Objects: -1}, "1s, 3.0 MB, -1 object"},
	}
	for _, tt := range tests {
		if got := tt.diff.String(); got != tt.want {
			t.Errorf("Diff.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSince(t *testing.T) {
	t.Parallel()

	start := perf.Now()
	if start.Time.IsZero() || start.Bytes <= 0 {
		t.Fatalf("Now() returned implausible snapshot %v", start)
	}

	if diff := perf.Since(start); diff.Time < 0 {
		t.Errorf("Since() returned negative duration %s", diff.Time)
	}
}
