// Package perf captures timing and memory metrics of pipeline stages.
package perf

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// Snapshot holds metrics at a specific instance
type Snapshot struct {
	// Time the snapshot was captured
	Time time.Time

	// memory in use
	Bytes int64

	// number of objects on the heap
	Objects int64
}

// BytesString returns a human-readable string representing the bytes
func (snapshot Snapshot) BytesString() string {
	return human(snapshot.Bytes)
}

// ObjectsString returns a human-readable string representing the number of objects
func (snapshot Snapshot) ObjectsString() string {
	return objects(snapshot.Objects)
}

func (snapshot Snapshot) String() string {
	return fmt.Sprintf("%s (%s) used at %s", snapshot.BytesString(), snapshot.ObjectsString(), snapshot.Time.Format(time.Stamp))
}

// Sub subtracts the other snapshot from this snapshot.
func (snapshot Snapshot) Sub(other Snapshot) Diff {
	return Diff{
		Time:    snapshot.Time.Sub(other.Time),
		Bytes:   snapshot.Bytes - other.Bytes,
		Objects: snapshot.Objects - other.Objects,
	}
}

// Now returns a snapshot for the current time.
//
// It reads the current memory statistics once, and does not wait for the heap to settle.
// This makes it suitable for use while serving requests.
func Now() (s Snapshot) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	s.Time = time.Now()
	s.Bytes = int64(stats.HeapInuse + stats.StackInuse)
	s.Objects = int64(stats.HeapObjects)
	return
}

// Stable is like Now, but repeatedly runs the garbage collector until heap usage settles.
// It may block for up to a second.
func Stable() (s Snapshot) {
	s.Bytes, s.Objects = measureHeapCount()
	s.Time = time.Now()
	return
}

// Diff represents the difference between two snapshots
type Diff struct {
	Time    time.Duration
	Bytes   int64
	Objects int64
}

// BytesString returns a human-readable string representing the bytes
func (diff Diff) BytesString() string {
	return human(diff.Bytes)
}

// ObjectsString returns a human-readable string representing the number of objects
func (diff Diff) ObjectsString() string {
	return objects(diff.Objects)
}

func (diff Diff) String() string {
	return fmt.Sprintf("%s, %s, %s", diff.Time, diff.BytesString(), diff.ObjectsString())
}

func human(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.Bytes(uint64(-bytes))
	}
	return humanize.Bytes(uint64(bytes))
}

func objects(count int64) string {
	if count == 1 || count == -1 {
		return fmt.Sprintf("%d object", count)
	}
	return fmt.Sprintf("%s objects", humanize.Comma(count))
}

// Since computes the diff between now, and the previous point in time
func Since(start Snapshot) Diff {
	return Now().Sub(start)
}

const (
	measureHeapThreshold = 10 * 1024                           // number of bytes to be considered stable time
	measureHeapSleep     = 50 * time.Millisecond               // amount of time to sleep between measuring cycles
	measureMaxCycles     = int(time.Second / measureHeapSleep) // maximal cycles to run
)

// measureHeapCount measures the current use of the heap, waiting for it to become stable.
func measureHeapCount() (heapcount int64, objects int64) {
	var stats runtime.MemStats

	var prevHeapUse, currentHeapUse uint64
	var prevGCCount, currentGCCount uint32

	for range measureMaxCycles {
		runtime.ReadMemStats(&stats)
		currentGCCount = stats.NumGC
		currentHeapUse = stats.HeapInuse

		if prevGCCount != 0 && currentGCCount > prevGCCount && math.Abs(float64(currentHeapUse)-float64(prevHeapUse)) < measureHeapThreshold {
			break
		}

		prevHeapUse = currentHeapUse
		prevGCCount = currentGCCount

		time.Sleep(measureHeapSleep)
		runtime.GC()
	}

	return int64(currentHeapUse + stats.StackInuse), int64(stats.HeapObjects)
}
