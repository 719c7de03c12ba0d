// Command customer-import bulk-loads customers from gzip-compressed JSONL
// files, one JSON object per line with "name" and "email" fields. Files are
// scanned concurrently; a bloom filter drops duplicate emails cheaply before
// they reach the database.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-api/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	batchSize     = 1000
	progressEvery = 100_000
)

type customerRow struct {
	name  string
	email string
}

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing customer .jsonl.gz files")
	flag.StringVar(&pattern, "pattern", "customers*.jsonl.gz", "glob pattern of files to import")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL); err != nil {
		slog.Error("customer import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("customer import completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "glob data files")
	}
	if len(files) == 0 {
		return errors.Errorf("no files match %s in %s", pattern, dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Seen emails are tracked in a shared bloom filter. A false positive
	// only skips a row, and ON CONFLICT below catches what the filter
	// misses.
	var (
		mu   sync.Mutex
		seen = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	)

	rows := make(chan customerRow, batchSize)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeCustomers(ctx, pool, rows)
	})

	scanners, scanCtx := errgroup.WithContext(ctx)
	for _, f := range files {
		scanners.Go(scanFile(scanCtx, f, func(c customerRow) bool {
			mu.Lock()
			dup := seen.TestOrAddString(c.email)
			mu.Unlock()
			if dup {
				return false
			}
			select {
			case rows <- c:
				return true
			case <-scanCtx.Done():
				return false
			}
		}))
	}

	scanErr := scanners.Wait()
	close(rows)

	if err := g.Wait(); err != nil {
		return err
	}
	return scanErr
}

func scanFile(ctx context.Context, path string, emit func(customerRow) bool) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var total, kept uint64
		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			total++

			c, err := decodeCustomer(line)
			if err != nil {
				return errors.Wrapf(err, "decode line %d of %s", total, path)
			}
			if c.name == "" || !strings.Contains(c.email, "@") {
				continue
			}
			if emit(c) {
				kept++
			}

			if total%progressEvery == 0 {
				slog.Info("scan progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("lines", total),
					slog.Uint64("kept", kept),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("scan complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("lines", total),
			slog.Uint64("kept", kept),
		)
		return nil
	}
}

func decodeCustomer(line []byte) (customerRow, error) {
	var c customerRow
	d := jx.DecodeBytes(line)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			if err != nil {
				return err
			}
			c.name = v
			return nil
		case "email":
			v, err := d.Str()
			if err != nil {
				return err
			}
			c.email = strings.ToLower(v)
			return nil
		default:
			return d.Skip()
		}
	})
	return c, err
}

// writeCustomers drains the channel in batches. Duplicate emails already in
// the database are skipped.
func writeCustomers(ctx context.Context, pool *pgxpool.Pool, rows <-chan customerRow) error {
	batch := make([]customerRow, 0, batchSize)
	var written uint64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		names := make([]string, len(batch))
		emails := make([]string, len(batch))
		for i, c := range batch {
			names[i] = c.name
			emails[i] = c.email
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO customers (name, email)
			SELECT * FROM unnest($1::text[], $2::text[])
			ON CONFLICT (email) DO NOTHING`,
			names, emails,
		)
		if err != nil {
			return errors.Wrap(err, "insert customer batch")
		}
		written += uint64(len(batch))
		batch = batch[:0]
		if written%progressEvery < batchSize {
			slog.Info("write progress", slog.Uint64("written", written))
		}
		return nil
	}

	for c := range rows {
		batch = append(batch, c)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Info("write complete", slog.Uint64("written", written))
	return nil
}
