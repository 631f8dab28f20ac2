package progress_test

import (
	"fmt"
	"io"
	"strings"

	"github.com/FAU-CDI/catalogproxy/pkg/progress"
)

func ExampleReader() {
	source := strings.NewReader("hello world")
	var builder strings.Builder

	reader := &progress.Reader{
		Reader: source,
		Total:  11,

		Rewritable: progress.Rewritable{
			FlushInterval: -1,
			Writer:        &builder,
		},
	}

	_, _ = reader.Read(make([]byte, 5))
	_, _ = reader.Read(make([]byte, 6))

	// replace all the '\r's with '\n's for testing
	fmt.Println(strings.ReplaceAll(builder.String(), "\r", "\n"))

	// Output: Read 5 B / 11 B
	// Read 11 B / 11 B
}

func ExampleWriter() {
	var builder strings.Builder

	writer := &progress.Writer{
		Writer: io.Discard,

		Rewritable: progress.Rewritable{
			FlushInterval: -1,
			Writer:        &builder,
		},
	}

	_, _ = writer.Write([]byte("hello"))
	_, _ = writer.Write([]byte(" world"))

	// replace all the '\r's with '\n's for testing
	fmt.Println(strings.ReplaceAll(builder.String(), "\r", "\n"))

	// Output: Wrote 5 B
	// Wrote 11 B
}
