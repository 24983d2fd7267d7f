// Command diagnose_outlets probes every declared feed URL in an outlet
// registry file and prints a JSON report. Useful when onboarding a batch of
// outlets: it separates dead feeds from slow ones before the first harvest.
//
// Usage:
//
//	go run scripts/diagnose_outlets.go outlets.yaml
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mmcdole/gofeed"

	"news-cadence/internal/infra/registry"
)

// OutletDiagnostic is the probe result for one outlet's declared feed.
type OutletDiagnostic struct {
	OutletID     string `json:"outlet_id"`
	Name         string `json:"name"`
	FeedURL      string `json:"feed_url"`
	Status       string `json:"status"` // OK, NO_FEED, FETCH_ERROR, EMPTY
	ItemCount    int    `json:"item_count"`
	LatestDate   string `json:"latest_date,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func main() {
	path := "outlets.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	outlets, err := registry.Load(path)
	if err != nil {
		log.Fatalf("load registry: %v", err)
	}

	parser := gofeed.NewParser()
	parser.UserAgent = "news-cadence/1.0"

	results := make([]OutletDiagnostic, 0, len(outlets))
	for _, outlet := range outlets {
		diag := OutletDiagnostic{
			OutletID: outlet.ID,
			Name:     outlet.Name,
			FeedURL:  outlet.FeedURL,
		}

		if outlet.FeedURL == "" {
			diag.Status = "NO_FEED"
			results = append(results, diag)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		start := time.Now()
		parsed, err := parser.ParseURLWithContext(outlet.FeedURL, ctx)
		diag.ResponseTime = time.Since(start).Milliseconds()
		cancel()

		if err != nil {
			diag.Status = "FETCH_ERROR"
			diag.ErrorMessage = err.Error()
			results = append(results, diag)
			continue
		}

		diag.ItemCount = len(parsed.Items)
		if diag.ItemCount == 0 {
			diag.Status = "EMPTY"
		} else {
			diag.Status = "OK"
			var latest time.Time
			for _, item := range parsed.Items {
				if item.PublishedParsed != nil && item.PublishedParsed.After(latest) {
					latest = *item.PublishedParsed
				}
			}
			if !latest.IsZero() {
				diag.LatestDate = latest.Format(time.RFC3339)
			}
		}
		results = append(results, diag)
		fmt.Fprintf(os.Stderr, "%-20s %-12s %4d items %6dms\n",
			outlet.ID, diag.Status, diag.ItemCount, diag.ResponseTime)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}
