package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const zstdSuffix = ".zst"

func isCompressed(path string, force bool) bool {
	return force || strings.HasSuffix(path, zstdSuffix)
}

// openInput opens path ("-" reads stdin), decompressing zstd streams.
func openInput(path string, stdin io.Reader, compressed bool) (io.ReadCloser, error) {
	var r io.ReadCloser
	if path == "-" {
		r = io.NopCloser(stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r = f
	}
	if !compressed {
		return r, nil
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		if closeErr := r.Close(); closeErr != nil {
			return nil, fmt.Errorf("zstd reader %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("zstd reader %s: %w", path, err)
	}
	return &zstdReadCloser{dec: dec, under: r}, nil
}

type zstdReadCloser struct {
	dec   *zstd.Decoder
	under io.Closer
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.under.Close()
}

// createOutput creates path (empty or "-" writes stdout), compressing with
// zstd when requested.
func createOutput(path string, stdout io.Writer, compressed bool) (io.WriteCloser, error) {
	var w io.WriteCloser
	if path == "" || path == "-" {
		w = nopWriteCloser{stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w = f
	}
	if !compressed {
		return w, nil
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		if closeErr := w.Close(); closeErr != nil {
			return nil, fmt.Errorf("zstd writer %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("zstd writer %s: %w", path, err)
	}
	return &zstdWriteCloser{enc: enc, under: w}, nil
}

type zstdWriteCloser struct {
	enc   *zstd.Encoder
	under io.Closer
}

func (z *zstdWriteCloser) Write(p []byte) (int, error) {
	return z.enc.Write(p)
}

func (z *zstdWriteCloser) Close() error {
	if err := z.enc.Close(); err != nil {
		if closeErr := z.under.Close(); closeErr != nil {
			return fmt.Errorf("close zstd stream: %w (close failed: %w)", err, closeErr)
		}
		return fmt.Errorf("close zstd stream: %w", err)
	}
	return z.under.Close()
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
