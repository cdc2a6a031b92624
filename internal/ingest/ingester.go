package ingest

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nswproperty/config"
	"nswproperty/internal/models"
	"nswproperty/internal/queue"
)

// Ingester runs the full ingestion pipeline: download the yearly archives,
// parse the DAT records they contain, and hand batches of sales to the
// queue for persistence.
type Ingester struct {
	downloader *Downloader
	queue      *queue.SaleQueue
	config     *config.Config
	logger     *logrus.Logger
}

func NewIngester(q *queue.SaleQueue, cfg *config.Config, logger *logrus.Logger) *Ingester {
	return &Ingester{
		downloader: NewDownloader(cfg.Ingest.URLBase, cfg.Ingest.DownloadDir, logger),
		queue:      q,
		config:     cfg,
		logger:     logger,
	}
}

// Run downloads and parses all configured years and pushes the resulting
// sales onto the queue in batches, blocking when the writers fall behind. It
// returns the number of sales ingested, after every queued batch has been
// handled by the writers, so callers can rebuild derived tables immediately.
func (i *Ingester) Run() (int, error) {
	startYear := i.config.Ingest.StartYear
	endYear := i.config.Ingest.EndYear
	if endYear == 0 {
		endYear = time.Now().Year()
	}

	i.logger.WithFields(logrus.Fields{
		"start_year": startYear,
		"end_year":   endYear,
	}).Info("Starting ingestion")

	archives, err := i.downloader.DownloadYears(startYear, endYear)
	if err != nil {
		return 0, fmt.Errorf("failed to download archives: %w", err)
	}
	if len(archives) == 0 {
		return 0, fmt.Errorf("no archives available for years %d-%d", startYear, endYear)
	}

	now := time.Now()
	total := 0
	batch := make([]*models.Sale, 0, i.config.Ingest.BatchSize)

	for _, archive := range archives {
		lines, err := ExtractDATLines(archive, i.logger)
		if err != nil {
			i.logger.WithFields(logrus.Fields{
				"archive": archive,
				"error":   err,
			}).Error("Failed to extract archive")
			continue
		}

		for _, line := range lines {
			sale := ParseRecord(line, now)
			if sale == nil {
				continue
			}
			batch = append(batch, sale)
			if len(batch) >= i.config.Ingest.BatchSize {
				if err := i.queue.PushWait(batch); err != nil {
					return total, fmt.Errorf("failed to queue batch: %w", err)
				}
				total += len(batch)
				batch = make([]*models.Sale, 0, i.config.Ingest.BatchSize)
			}
		}

		i.logger.WithField("archive", archive).Info("Archive parsed")
	}

	if len(batch) > 0 {
		if err := i.queue.PushWait(batch); err != nil {
			return total, fmt.Errorf("failed to queue batch: %w", err)
		}
		total += len(batch)
	}

	// Derived-table rebuilds read the sales table right after this returns,
	// so wait for the writers to commit everything queued above.
	i.queue.Wait()

	i.logger.WithField("sales", total).Info("Ingestion complete")
	return total, nil
}
