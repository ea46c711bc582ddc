package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

//go:embed seed.json
var seedJSON []byte

// Source yields catalog records.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]ClientRecord, error)
}

// Decode parses a catalog document, rejecting unknown fields.
func Decode(data []byte) ([]ClientRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return doc.Clients, nil
}

// FileSource reads a catalog document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) ([]ClientRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data)
}

// EmbeddedSource serves the sample clients compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(context.Context) ([]ClientRecord, error) {
	return Decode(seedJSON)
}

// Load reads every source concurrently and returns their records in source
// order. The first failing source cancels the rest.
func Load(ctx context.Context, sources ...Source) ([]ClientRecord, error) {
	results := make([][]ClientRecord, len(sources))

	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			recs, err := src.Load(gCtx)
			if err != nil {
				return fmt.Errorf("catalog source %s: %w", src.Name(), err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []ClientRecord
	for _, recs := range results {
		all = append(all, recs...)
	}
	return all, nil
}
