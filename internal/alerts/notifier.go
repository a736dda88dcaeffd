package alerts

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// WriterNotifier prints messages instead of posting them.
type WriterNotifier struct {
	w io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Post(_ context.Context, text string) error {
	_, err := fmt.Fprintf(n.w, "%s\n%s\n", text, strings.Repeat("=", 80))
	return err
}
