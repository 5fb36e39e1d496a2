package langid

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedClassifier memoises successful detections. Failures are not cached
// so that a cancelled context does not poison later lookups.
type CachedClassifier struct {
	delegate Classifier
	cache    *lru.Cache[string, string]
}

// NewCachedClassifier wraps delegate with an LRU cache of the given size
func NewCachedClassifier(delegate Classifier, size int) (*CachedClassifier, error) {
	if delegate == nil {
		return nil, fmt.Errorf("delegate classifier is required")
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create language cache: %w", err)
	}
	return &CachedClassifier{delegate: delegate, cache: cache}, nil
}

// Detect returns the cached code for text or asks the delegate
func (c *CachedClassifier) Detect(ctx context.Context, text string) (string, error) {
	if code, ok := c.cache.Get(text); ok {
		return code, nil
	}

	code, err := c.delegate.Detect(ctx, text)
	if err != nil {
		return "", err
	}

	c.cache.Add(text, code)
	return code, nil
}

// Len returns the number of cached entries
func (c *CachedClassifier) Len() int {
	return c.cache.Len()
}
