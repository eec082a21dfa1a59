package main

import (
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// cacheEntry is one member of a Cache-Status response header (RFC 9211).
type cacheEntry struct {
	Cache  string
	Hit    bool
	Fwd    string
	TTL    int64
	HasTTL bool
	Stored bool
	Detail string
}

// String renders the entry for terminal output.
func (e cacheEntry) String() string {
	var b strings.Builder
	b.WriteString(e.Cache)
	if e.Hit {
		b.WriteString(" hit")
	} else if e.Fwd != "" {
		b.WriteString(" " + e.Fwd)
	}
	if e.HasTTL {
		fmt.Fprintf(&b, " ttl=%ds", e.TTL)
	}
	if e.Stored {
		b.WriteString(" stored")
	}
	if e.Detail != "" {
		b.WriteString(" (" + e.Detail + ")")
	}
	return b.String()
}

// parseCacheStatus decodes Cache-Status header values. Members that are not
// items are skipped.
func parseCacheStatus(values []string) ([]cacheEntry, error) {
	if len(values) == 0 {
		return nil, nil
	}
	list, err := httpsfv.UnmarshalList(values)
	if err != nil {
		return nil, fmt.Errorf("parsing Cache-Status: %w", err)
	}

	entries := make([]cacheEntry, 0, len(list))
	for _, member := range list {
		item, ok := member.(httpsfv.Item)
		if !ok {
			continue
		}
		var e cacheEntry
		switch v := item.Value.(type) {
		case httpsfv.Token:
			e.Cache = string(v)
		case string:
			e.Cache = v
		default:
			continue
		}

		if v, ok := item.Params.Get("hit"); ok {
			e.Hit, _ = v.(bool)
		}
		if v, ok := item.Params.Get("fwd"); ok {
			if tok, ok := v.(httpsfv.Token); ok {
				e.Fwd = string(tok)
			}
		}
		if v, ok := item.Params.Get("ttl"); ok {
			e.TTL, e.HasTTL = v.(int64)
		}
		if v, ok := item.Params.Get("stored"); ok {
			e.Stored, _ = v.(bool)
		}
		if v, ok := item.Params.Get("detail"); ok {
			switch d := v.(type) {
			case httpsfv.Token:
				e.Detail = string(d)
			case string:
				e.Detail = d
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
