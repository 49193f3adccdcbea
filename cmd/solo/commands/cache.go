package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/subhaanfazeel/solo/internal/cachestore"
	"github.com/subhaanfazeel/solo/internal/config"
)

// CacheCmd groups the cache subcommands.
type CacheCmd struct {
	List  CacheListCmd  `cmd:"" help:"List cache generations"`
	Purge CachePurgeCmd `cmd:"" help:"Delete cache generations"`
}

// CacheListCmd implements 'cache list'.
type CacheListCmd struct{}

// CachePurgeCmd implements 'cache purge'.
type CachePurgeCmd struct {
	Names []string `arg:"" optional:"" help:"Generations to delete (default: all)"`
}

func openStore(ctx context.Context, cfg config.Config) (cachestore.Store, error) {
	return cachestore.Open(ctx, cachestore.Options{
		Driver: cachestore.Driver(cfg.Agent.CacheDriver),
		Path:   cfg.Agent.CachePathFor(),
	})
}

func (c *CacheListCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return listGenerations(ctx, os.Stdout, store)
}

func (c *CachePurgeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return purgeGenerations(ctx, os.Stdout, store, c.Names)
}

func listGenerations(ctx context.Context, out io.Writer, store cachestore.Store) error {
	names, err := store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list generations: %w", err)
	}
	if len(names) == 0 {
		_, _ = fmt.Fprintf(out, "no cache generations (%s)\n", store.Driver())
		return nil
	}
	for _, name := range names {
		c, err := store.Open(ctx, name)
		if err != nil {
			return err
		}
		keys, err := c.Keys(ctx)
		if err != nil {
			return fmt.Errorf("list entries of %s: %w", name, err)
		}
		_, _ = fmt.Fprintf(out, "%s\t%d entries\n", name, len(keys))
	}
	return nil
}

func purgeGenerations(ctx context.Context, out io.Writer, store cachestore.Store, names []string) error {
	if len(names) == 0 {
		all, err := store.Keys(ctx)
		if err != nil {
			return fmt.Errorf("list generations: %w", err)
		}
		names = all
	}
	for _, name := range names {
		deleted, err := store.Delete(ctx, name)
		if err != nil {
			return err
		}
		if deleted {
			_, _ = fmt.Fprintf(out, "deleted %s\n", name)
		} else {
			_, _ = fmt.Fprintf(out, "%s not found\n", name)
		}
	}
	return nil
}
