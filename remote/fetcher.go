// Package remote retrieves schema documents referenced over http(s) and
// caches them. Engines use a Fetcher to resolve references that are not
// registered locally.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single retrieval when no client is supplied.
const DefaultTimeout = 15 * time.Second

// maxDocumentSize caps the body read from a remote document.
const maxDocumentSize = 8 << 20

// Cache stores retrieved documents by URL. A miss is reported with ok=false
// and a nil error.
type Cache interface {
	Get(ctx context.Context, url string) (doc []byte, ok bool, err error)
	Set(ctx context.Context, url string, doc []byte) error
}

// ErrUnsupportedScheme is returned for URLs that are neither http nor https.
var ErrUnsupportedScheme = errors.New("remote: only http and https URLs can be fetched")

// Fetcher downloads schema documents over http(s), consulting Cache first.
type Fetcher struct {
	Client *http.Client
	Cache  Cache
	Log    *slog.Logger
}

// NewFetcher returns a Fetcher with a client bounded by timeout. A zero timeout
// means DefaultTimeout; cache may be nil.
func NewFetcher(timeout time.Duration, cache Cache) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		Client: &http.Client{Timeout: timeout},
		Cache:  cache,
		Log:    slog.Default(),
	}
}

// Fetch returns the document at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, url)
	}
	log := f.Log
	if log == nil {
		log = slog.Default()
	}
	if f.Cache != nil {
		doc, ok, err := f.Cache.Get(ctx, url)
		if err != nil {
			// A broken cache must not block retrieval.
			log.Warn("remote.cache.get_failed", slog.String("url", url), slog.String("err", err.Error()))
		} else if ok {
			log.Debug("remote.cache.hit", slog.String("url", url))
			return doc, nil
		}
	}

	doc, err := f.get(ctx, url)
	if err != nil {
		log.Warn("remote.fetch.fail", slog.String("url", url), slog.String("err", err.Error()))
		return nil, err
	}
	log.Debug("remote.fetch.ok", slog.String("url", url), slog.Int("bytes", len(doc)))

	if f.Cache != nil {
		if err := f.Cache.Set(ctx, url, doc); err != nil {
			log.Warn("remote.cache.set_failed", slog.String("url", url), slog.String("err", err.Error()))
		}
	}
	return doc, nil
}

// Close closes the cache when it holds a connection.
func (f *Fetcher) Close() error {
	if c, ok := f.Cache.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/schema+json, application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned status code %d", url, resp.StatusCode)
	}
	doc, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return doc, nil
}
