package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dunglas/httpsfv"

	"storefront/internal/catalog"
)

// CacheStatusHeader is the RFC 9211 response header describing cache use.
const CacheStatusHeader = "Cache-Status"

// cacheStatusPrefix namespaces this service's caches in Cache-Status entries,
// e.g. "storefront.categories".
const cacheStatusPrefix = "storefront."

// setCacheStatus writes the Cache-Status header for the lookups recorded in
// trace. Nothing is written when no cache was consulted.
func (h *Handler) setCacheStatus(w http.ResponseWriter, trace *catalog.CacheTrace) {
	lookups := trace.Lookups()
	if len(lookups) == 0 {
		return
	}
	value, err := cacheStatus(lookups)
	if err != nil {
		h.logger.Debug("cache status not serializable", slog.String("error", err.Error()))
		return
	}
	w.Header().Set(CacheStatusHeader, value)
}

// cacheStatus serializes one list member per cache. When a request consults
// the same cache more than once, the first lookup describes it: later ones
// only see what the first already fetched.
func cacheStatus(lookups []catalog.CacheLookup) (string, error) {
	seen := make(map[string]bool, len(lookups))
	list := make(httpsfv.List, 0, len(lookups))
	for _, l := range lookups {
		if seen[l.Cache] {
			continue
		}
		seen[l.Cache] = true

		item := httpsfv.NewItem(httpsfv.Token(cacheStatusPrefix + l.Cache))
		if l.Hit {
			item.Params.Add("hit", true)
		} else {
			item.Params.Add("fwd", httpsfv.Token("uri-miss"))
		}
		if ttl := int64(l.TTL / time.Second); ttl > 0 {
			item.Params.Add("ttl", ttl)
		}
		if l.Stored {
			item.Params.Add("stored", true)
		}
		if l.Collapsed {
			item.Params.Add("collapsed", true)
		}
		if l.Detail != "" {
			item.Params.Add("detail", httpsfv.Token(l.Detail))
		}
		list = append(list, item)
	}
	return httpsfv.Marshal(list)
}
