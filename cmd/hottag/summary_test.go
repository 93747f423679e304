package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/engine"
)

func TestPrintSummary(t *testing.T) {
	start := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	r := &engine.Report{
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Promotions: []engine.PromotionResult{
			{Slug: "wwe", Status: engine.StatusOK},
			{Slug: "aew", Status: engine.StatusFetchFailed, Error: "status 503"},
		},
		Totals: engine.Totals{
			Created: 2, Updated: 1, Unchanged: 4, Skipped: 1,
			Promotions: 2, PromotionsOK: 1, PromotionsFetchErr: 1,
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Import complete in 1.5s")
	assert.Contains(t, out, "2 created, 1 updated, 4 unchanged, 1 skipped")
	assert.Contains(t, out, "2 processed, 1 ok, 0 no titles, 1 fetch failed, 0 denied, 0 failed")
	assert.Contains(t, out, "! aew: fetch_failed (status 503)")
	assert.NotContains(t, out, "! wwe")
}

func TestPrintSummaryStoppedDryRun(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &engine.Report{Stopped: true, DryRun: true})
	assert.Contains(t, buf.String(), "Import stopped (dry run)")
}

func TestApplyCLIOverrides(t *testing.T) {
	defer func() { dryRun, parserName, fetcherType = false, "", "" }()
	dryRun, parserName, fetcherType = true, "XPath", "browser"

	cfg := config.DefaultConfig()
	applyCLIOverrides(cfg)

	assert.True(t, cfg.DryRun)
	assert.Equal(t, "xpath", cfg.Source.Parser)
	assert.Equal(t, "browser", cfg.Fetcher.Type)
}
