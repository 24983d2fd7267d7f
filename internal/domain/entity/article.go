package entity

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// AcquisitionMethod identifies which acquisition path supplied an article.
type AcquisitionMethod string

const (
	// MethodFeed marks articles acquired from a structured RSS/Atom feed.
	MethodFeed AcquisitionMethod = "feed"
	// MethodSitemap marks articles acquired from the sitemap fallback.
	MethodSitemap AcquisitionMethod = "sitemap"
)

// Article represents a harvested article metadata record.
// Articles are append-only: once persisted they are never mutated, and the
// pair (OutletID, URLHash) is unique so re-harvesting is idempotent.
type Article struct {
	ID       int64
	OutletID string
	URL      string
	Title    string
	// PublishedAt is the publish timestamp. When the source did not supply a
	// parseable timestamp this holds the retrieval time and TimestampApprox
	// is set; approximate articles count toward totals but never toward
	// freshness.
	PublishedAt     time.Time
	TimestampApprox bool
	Source          AcquisitionMethod
	RetrievedAt     time.Time
	URLHash         string
}

// NormalizeURL canonicalizes an article link for identity hashing: resolves
// it against base, lowercases scheme and host, trims whitespace, and strips
// the query string and fragment. Returns "" for unusable links.
func NormalizeURL(base, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if base != "" {
		if b, err := url.Parse(base); err == nil {
			u = b.ResolveReference(u)
		}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// HashURL returns the content-identity hash for a normalized URL.
func HashURL(normalized string) string {
	sum := sha1.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
