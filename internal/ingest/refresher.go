package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/camsettings-bot/internal/config"
	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/models"
	"github.com/camsettings-bot/internal/retry"
	"github.com/camsettings-bot/internal/storage"
)

// ProWriter is the store contract a refresh cycle needs.
type ProWriter interface {
	UpsertPro(ctx context.Context, record *models.PlayerSettings) error
}

// Refresher runs one ingestion cycle: fetch the source page, parse the
// settings table, upsert every record into the pro namespace, and drop the
// reply cache.
type Refresher struct {
	cfg        *config.IngestConfig
	store      ProWriter
	cache      *storage.ReplyCache
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *logging.Logger
}

// NewRefresher creates a refresher. cache may be nil.
func NewRefresher(cfg *config.IngestConfig, store ProWriter, cache *storage.ReplyCache, logger *logging.Logger) *Refresher {
	return &Refresher{
		cfg:        cfg,
		store:      store,
		cache:      cache,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
	}
}

// Refresh runs one full cycle. A cycle that parses zero records is treated
// as a fetch or format failure and leaves the stored pro namespace as it is.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()

	records, err := r.fetchAndParse(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("source page yielded no records, keeping previous data")
	}

	var failed int
	for _, rec := range records {
		if err := r.store.UpsertPro(ctx, rec); err != nil {
			failed++
			r.logger.WithError(err).WithField("player", rec.NormalizedName).Error("Failed to upsert pro record")
		}
	}
	if failed == len(records) {
		return fmt.Errorf("failed to upsert all %d records", failed)
	}

	if err := r.cache.InvalidateAll(ctx); err != nil {
		// Stale cached replies age out by TTL; the refresh itself succeeded.
		r.logger.WithError(err).Warn("Failed to invalidate reply cache after refresh")
	}

	r.logger.WithFields(map[string]interface{}{
		"records":  len(records),
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Info("Ingestion refresh completed")

	return nil
}

// fetchAndParse downloads the source page with retries and parses the
// settings table.
func (r *Refresher) fetchAndParse(ctx context.Context) ([]*models.PlayerSettings, error) {
	var records []*models.PlayerSettings

	err := retry.WithExponentialBackoff(ctx, r.retryCfg, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.SourceURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create source request: %w", err)
		}
		req.Header.Set("User-Agent", "camsettings-bot/1.0 ingestion")

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch source page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from source", resp.StatusCode)
		}

		records, err = ParseSettingsTable(resp.Body)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
