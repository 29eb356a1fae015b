// Package stats keeps the collection-size metrics fresh in the background.
package stats

import (
	"context"
	"log/slog"

	"github.com/crucial707/blog-platform/internal/metrics"
	"github.com/crucial707/blog-platform/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts a background job that refreshes the blog_posts_total gauge once
// a minute. It returns the cron so the caller can Stop it on shutdown.
func Run(postRepo *repo.PostRepo) *cron.Cron {
	refresh := func() {
		total, err := postRepo.Count(context.Background())
		if err != nil {
			slog.Error("stats: count posts", "error", err)
			return
		}
		metrics.SetPostsTotal(total)
	}

	c := cron.New()
	if _, err := c.AddFunc("@every 1m", refresh); err != nil {
		slog.Error("stats: add cron job", "error", err)
		return c
	}

	// Prime the gauge so /metrics is accurate before the first tick.
	refresh()
	c.Start()
	return c
}
