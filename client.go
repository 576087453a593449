package bookgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db"
	dbRedis "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db/redis"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
	authorrepo "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/repository/authors"
	bookrepo "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/repository/books"
	personrepo "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/repository/people"
	transportOpenAI "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/transport/openai"
	resolutionuc "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/usecase/resolution"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the bookgraph library entry point. It owns the database
// connection, the in-memory author roster and the resolution service.
type Client struct {
	store db.Store
	svc   *resolutionuc.Service
}

// New creates a bookgraph Client, connects to the database and loads the
// author roster and sidecar data files.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		bookIndex:     "idx:books",
		personIndex:   "idx:people",
		maxConcurrent: 8,
		timeout:       2 * time.Minute,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("bookgraph: database address required (use WithRedis)")
	}
	if cfg.rosterPath == "" {
		return nil, errors.New("bookgraph: author roster required (use WithRoster)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("bookgraph: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("bookgraph: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	roster, err := authorrepo.Load(cfg.rosterPath)
	if err != nil {
		return nil, fmt.Errorf("bookgraph: load roster: %w", err)
	}

	bookRepo := bookrepo.New(store, cfg.bookIndex)
	personRepo := personrepo.New(store, cfg.personIndex)
	if cfg.overridesPath != "" {
		overrides, err := personrepo.LoadOverrides(cfg.overridesPath)
		if err != nil {
			return nil, fmt.Errorf("bookgraph: load overrides: %w", err)
		}
		personRepo = personRepo.WithOverrides(overrides)
	}

	arbiter := pickArbiter(cfg)

	svc := resolutionuc.New(bookRepo, roster, personRepo, arbiter)
	if cfg.aliasesPath != "" {
		aliases, err := authorrepo.LoadAliases(cfg.aliasesPath)
		if err != nil {
			return nil, fmt.Errorf("bookgraph: load aliases: %w", err)
		}
		svc = svc.WithAliasTable(aliases)
	}
	if cfg.logger != nil {
		svc = svc.WithLogger(cfg.logger)
	}
	if cfg.timeout > 0 {
		svc = svc.WithTimeout(cfg.timeout)
	}
	if cfg.maxConcurrent > 0 {
		svc = svc.WithMaxConcurrent(cfg.maxConcurrent)
	}

	return &Client{store: store, svc: svc}, nil
}

// pickArbiter resolves the arbiter from options: a custom implementation
// wins, then the built-in OpenAI arbiter, then a noop that fails every call.
func pickArbiter(cfg *clientConfig) resolutionuc.Arbiter {
	if cfg.arbiter != nil {
		return &arbiterAdapter{inner: cfg.arbiter}
	}
	if cfg.openAIKey != "" {
		return transportOpenAI.NewArbiter(&transportOpenAI.Config{
			APIKey:  cfg.openAIKey,
			BaseURL: cfg.openAIBaseURL,
			Model:   cfg.openAIModel,
			Logger:  cfg.logger,
		})
	}
	return noopArbiter{}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// noopArbiter returns an error on Choose (used when no arbiter configured).
type noopArbiter struct{}

func (noopArbiter) Choose(_ context.Context, _ domain.Citation, _ []domain.Candidate) (int, string, error) {
	return -1, "", errors.New(
		"bookgraph: arbiter not configured (use WithArbiter or WithOpenAIArbiter)",
	)
}
