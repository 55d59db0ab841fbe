// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
)

// PersistedQueries is the automatic persisted query cache (APQ).
//
// A client first sends only the sha256 of its document. On a miss it resends
// the full document together with the hash, which is then cached.
type PersistedQueries struct {
	cache *lru.LRU[string, string]
}

// NewPersistedQueries creates a cache of at most size documents, each kept
// for ttl after it was stored.
func NewPersistedQueries(size int, ttl time.Duration) *PersistedQueries {
	return &PersistedQueries{cache: lru.NewLRU[string, string](size, nil, ttl)}
}

// resolve fills request.Query from the cache, or stores it.
func (queries *PersistedQueries) resolve(request *Request) *apperr.AppError {
	hash, ok := persistedHash(request.Extensions)
	if !ok {
		return nil
	}

	if request.Query == "" {
		query, found := queries.cache.Get(hash)
		if !found {
			return apperr.PersistedQueryNotFound()
		}
		request.Query = query
		return nil
	}

	sum := sha256.Sum256([]byte(request.Query))
	if !strings.EqualFold(hex.EncodeToString(sum[:]), hash) {
		return apperr.ValidationError("provided sha does not match query")
	}
	queries.cache.Add(strings.ToLower(hash), request.Query)
	return nil
}

// persistedHash reads extensions.persistedQuery.sha256Hash (version 1).
func persistedHash(extensions map[string]interface{}) (string, bool) {
	persisted, ok := extensions["persistedQuery"].(map[string]interface{})
	if !ok {
		return "", false
	}
	if version, ok := persisted["version"].(float64); ok && version != 1 {
		return "", false
	}
	hash, ok := persisted["sha256Hash"].(string)
	if !ok || hash == "" {
		return "", false
	}
	return strings.ToLower(hash), true
}
