package keyboard

import (
	"bytes"
	"io"
)

type crlfWriter struct {
	w io.Writer
}

// CRLFWriter returns a writer that turns "\n" into "\r\n".  Raw mode turns off output
// post-processing, so without this every log line would start where the last one ended.
func CRLFWriter(w io.Writer) io.Writer {
	return &crlfWriter{w: w}
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	if _, err := c.w.Write(converted); err != nil {
		return 0, err
	}
	return len(p), nil
}
