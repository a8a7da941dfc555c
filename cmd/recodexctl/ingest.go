package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recodex"
)

const defaultIngestBatch = 500

func newIngestCmd(g *globalFlags) *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "ingest <file.json|file.jsonl>...",
		Short: "Load products from JSON arrays or JSON Lines files",
		Long: `Load products into the catalog. A .jsonl file holds one product per line;
any other file holds a JSON array of products. Products without an id get a
stable one derived from their URL or brand and title, so re-ingesting a feed
overwrites instead of duplicating.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()
			if _, err := c.EnsureIndex(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range args {
				products, err := readProductsFile(path)
				if err != nil {
					return err
				}
				stored, rejected, err := ingestBatches(ctx, c, products, batch)
				for _, r := range rejected {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, r)
				}
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(out, "%s: stored %d, rejected %d\n", path, stored, len(rejected))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", defaultIngestBatch, "products per pipelined write")
	return cmd
}

type ingester interface {
	Ingest(ctx context.Context, products []recodex.Product) (recodex.IngestResult, error)
}

func ingestBatches(ctx context.Context, c ingester, products []recodex.Product, size int) (int, []error, error) {
	if size <= 0 {
		size = defaultIngestBatch
	}
	stored := 0
	var rejected []error
	for start := 0; start < len(products); start += size {
		end := min(start+size, len(products))
		res, err := c.Ingest(ctx, products[start:end])
		for _, r := range res.Rejected {
			rejected = append(rejected, fmt.Errorf("offset %d: %w", start, r))
		}
		if err != nil {
			return stored, rejected, err
		}
		stored += res.Stored
	}
	return stored, rejected, nil
}

func readProductsFile(path string) ([]recodex.Product, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return readJSONLines(f)
	}
	var products []recodex.Product
	if err := json.NewDecoder(f).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return products, nil
}

func readJSONLines(r io.Reader) ([]recodex.Product, error) {
	var products []recodex.Product
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 4<<20)
	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		var p recodex.Product
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		products = append(products, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return products, nil
}
