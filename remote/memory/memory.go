// Package memory provides an in-process LRU implementation of remote.Cache.
package memory

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when New is given a non-positive size.
const DefaultSize = 256

// Cache keeps the most recently used documents in memory.
type Cache struct {
	lru *lru.Cache[string, []byte]
}

// New creates a Cache holding at most size documents.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

func (c *Cache) Get(_ context.Context, url string) ([]byte, bool, error) {
	doc, ok := c.lru.Get(url)
	return doc, ok, nil
}

func (c *Cache) Set(_ context.Context, url string, doc []byte) error {
	c.lru.Add(url, doc)
	return nil
}

// Len reports the number of cached documents.
func (c *Cache) Len() int { return c.lru.Len() }
