package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	atom "github.com/OData/odata.net-sub101"
	"github.com/OData/odata.net-sub101/pkg/model"
)

type command struct {
	cfg      config
	itemType *model.TypeRef
	logger   *slog.Logger
	diag     diagnostics
	stdin    io.Reader
	stdout   io.Writer
}

type decoded struct {
	items []model.Value
	err   error
}

// decode reads every path concurrently and prints one YAML document per
// file, in argument order.
func (c *command) decode(paths []string) int {
	results := make([]decoded, len(paths))
	limit := c.cfg.Concurrency
	if limit == 0 {
		limit = len(paths)
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			items, err := c.readPayload(path)
			results[i] = decoded{items: items, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = c.diag.usage("%v", err)
		return exitFailure
	}

	status := exitOK
	enc := yaml.NewEncoder(c.stdout)
	enc.SetIndent(2)
	for i, path := range paths {
		res := results[i]
		if res.err != nil {
			if err := c.diag.fault(path, res.err); err != nil {
				return exitFailure
			}
			status = exitFailure
			continue
		}
		node, err := itemsToYAML(res.items)
		if err != nil {
			_ = c.diag.fault(path, err)
			status = exitFailure
			continue
		}
		if len(paths) > 1 {
			node.HeadComment = path
		}
		if err := enc.Encode(node); err != nil {
			_ = c.diag.fault(path, err)
			return exitFailure
		}
	}
	if err := enc.Close(); err != nil {
		_ = c.diag.fault("stdout", err)
		return exitFailure
	}
	return status
}

// encode reads a YAML item list from path and writes it as a payload.
func (c *command) encode(path string) int {
	in, err := openInput(path, c.stdin, isCompressed(path, false))
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}
	data, err := io.ReadAll(in)
	if closeErr := in.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}
	items, err := itemsFromYAML(data, c.itemType)
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}

	outPath := c.cfg.Out
	out, err := createOutput(outPath, c.stdout, isCompressed(outPath, c.cfg.Zstd))
	if err != nil {
		_ = c.diag.fault(outPath, err)
		return exitFailure
	}
	err = atom.WriteAll(out, items, c.cfg.writerOptions(c.itemType, c.logger.With("file", path)))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}
	c.logger.Debug("encoded collection", "file", path, "items", len(items))
	return exitOK
}

// roundtrip decodes path, encodes the items and decodes them again,
// printing a diff of the two renderings when they differ.
func (c *command) roundtrip(path string) int {
	items, err := c.readPayload(path)
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}
	before, err := renderYAML(items)
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}

	var buf bytes.Buffer
	logger := c.logger.With("file", path, "pass", 2)
	if err := atom.WriteAll(&buf, items, c.cfg.writerOptions(c.itemType, logger)); err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}
	again, err := atom.ReadAll(&buf, c.cfg.readerOptions(c.itemType, logger))
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}
	after, err := renderYAML(again)
	if err != nil {
		_ = c.diag.fault(path, err)
		return exitFailure
	}

	differ, err := c.diag.diff(before, after)
	if err != nil {
		return exitFailure
	}
	if differ {
		_ = c.diag.usage("%s does not round-trip", path)
		return exitFailure
	}
	if err := writef(c.stdout, "%s round-trips (%d items)\n", path, len(items)); err != nil {
		return exitFailure
	}
	return exitOK
}

func (c *command) readPayload(path string) ([]model.Value, error) {
	in, err := openInput(path, c.stdin, isCompressed(path, c.cfg.Zstd))
	if err != nil {
		return nil, err
	}
	items, err := atom.ReadAll(in, c.cfg.readerOptions(c.itemType, c.logger.With("file", path)))
	if closeErr := in.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", path, closeErr)
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("decoded collection", "file", path, "items", len(items))
	return items, nil
}

func renderYAML(items []model.Value) (string, error) {
	node, err := itemsToYAML(items)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}
