// Package fileutil opens the text streams the converters read and write.
// Input compression (gzip, xz) is detected from magic bytes; output
// compression follows the file extension. Non-UTF-8 charsets are transcoded
// so that converters always see UTF-8.
package fileutil

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"golang.org/x/text/transform"

	"github.com/FocuswithJustin/ttconv/core/encoding"
)

// Compression identifies a stream compression.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// Injectable functions for testing
var (
	osOpen        = os.Open
	osCreate      = os.Create
	osMkdirAll    = os.MkdirAll
	gzipNewReader = gzip.NewReader
	xzNewReader   = xz.NewReader
	xzNewWriter   = xz.NewWriter
)

// DetectCompression peeks at the stream head without consuming it.
func DetectCompression(r *bufio.Reader) (Compression, error) {
	head, err := r.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return CompressionNone, err
	}
	switch {
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ, nil
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip, nil
	}
	return CompressionNone, nil
}

// CompressionForPath picks the output compression from the file extension.
func CompressionForPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".xz":
		return CompressionXZ
	}
	return CompressionNone
}

// TrimCompressionExt strips a trailing .gz/.xz extension.
func TrimCompressionExt(path string) string {
	if CompressionForPath(path) == CompressionNone {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// NewTextReader wraps r with decompression and charset decoding.
func NewTextReader(r io.Reader, charset string) (io.Reader, error) {
	br := bufio.NewReader(r)
	comp, err := DetectCompression(br)
	if err != nil {
		return nil, err
	}

	var src io.Reader = br
	switch comp {
	case CompressionGzip:
		gz, err := gzipNewReader(br)
		if err != nil {
			return nil, err
		}
		src = gz
	case CompressionXZ:
		xr, err := xzNewReader(br)
		if err != nil {
			return nil, err
		}
		src = xr
	}

	if encoding.IsUTF8(charset) {
		return src, nil
	}
	enc, err := encoding.Charset(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(src), nil
}

// OpenText opens path for reading as UTF-8 text.
func OpenText(path, charset string) (io.ReadCloser, error) {
	f, err := osOpen(path)
	if err != nil {
		return nil, err
	}
	r, err := NewTextReader(f, charset)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readCloser{Reader: r, closer: f}, nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r *readCloser) Close() error {
	return r.closer.Close()
}

// NewTextWriter wraps w with charset encoding and the given compression.
// Closing the result flushes the encoder and compressor but does not close w.
func NewTextWriter(w io.Writer, charset string, comp Compression) (io.WriteCloser, error) {
	cw := &chainWriter{w: w}

	switch comp {
	case CompressionGzip:
		gz := gzip.NewWriter(cw.w)
		cw.push(gz, gz)
	case CompressionXZ:
		xw, err := xzNewWriter(cw.w)
		if err != nil {
			return nil, err
		}
		cw.push(xw, xw)
	}

	if !encoding.IsUTF8(charset) {
		enc, err := encoding.Charset(charset)
		if err != nil {
			return nil, err
		}
		tw := transform.NewWriter(cw.w, enc.NewEncoder())
		cw.push(tw, tw)
	}
	return cw, nil
}

// CreateText creates path (and its directory) for writing UTF-8 text in the
// given charset, compressed according to the extension.
func CreateText(path, charset string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := osMkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	f, err := osCreate(path)
	if err != nil {
		return nil, err
	}
	tw, err := NewTextWriter(f, charset, CompressionForPath(path))
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	cw := tw.(*chainWriter)
	cw.closers = append(cw.closers, f)
	return cw, nil
}

// chainWriter writes into the outermost layer and closes layers from the
// outside in.
type chainWriter struct {
	w       io.Writer
	closers []io.Closer
}

func (c *chainWriter) push(w io.Writer, closer io.Closer) {
	c.w = w
	c.closers = append([]io.Closer{closer}, c.closers...)
}

func (c *chainWriter) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

func (c *chainWriter) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
