package analytics

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nswproperty/internal/models"
)

// Repository is the narrow persistence contract the analytics pipeline
// needs. Each Replace method wipes its table and inserts the given rows in a
// single transaction; the store chunks large batches internally. Keeping the
// contract this small makes the pipeline testable against an in-memory fake.
type Repository interface {
	FetchAllSales() ([]models.Sale, error)
	ReplacePropertyGrowth(rows []models.PropertyGrowth) error
	ReplaceStreetGrowth(rows []models.StreetGrowth) error
	ReplaceSuburbGrowth(rows []models.SuburbGrowth) error
	ReplaceStreetSummaries(rows []models.StreetSummary) error
	ReplaceSuburbSummaries(rows []models.SuburbSummary) error
}

// Analyzer runs the full growth rebuild: derive per-property growth, roll it
// up into per-year street/suburb aggregates, and compute all-time summaries
// with top-performer classification. A run recomputes every derived table
// from the current sale set; nothing carries over between runs.
//
// Runs are single-threaded and not safe to execute concurrently against the
// same store, since each stage deletes and repopulates a shared table. Callers
// serialize invocations (the API trigger and the scheduler share one mutex).
type Analyzer struct {
	repo      Repository
	logger    *logrus.Logger
	startYear int
	nowYear   func() int
}

// NewAnalyzer creates an analyzer aggregating years from startYear through
// the current calendar year.
func NewAnalyzer(repo Repository, startYear int, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{
		repo:      repo,
		logger:    logger,
		startYear: startYear,
		nowYear:   func() int { return time.Now().Year() },
	}
}

// Run executes one full rebuild. An empty sale set returns immediately
// without touching any derived table; zero derivable growth records still
// replace the property growth table but leave the aggregate and summary
// tables as they were. Stages are atomic per table, not across tables; a
// failed run is retried wholesale, never resumed.
func (a *Analyzer) Run() error {
	a.logger.Info("Starting growth calculation")

	sales, err := a.repo.FetchAllSales()
	if err != nil {
		return fmt.Errorf("failed to load sales: %w", err)
	}
	if len(sales) == 0 {
		a.logger.Warn("No sales data found, leaving derived tables untouched")
		return nil
	}

	growth := DerivePropertyGrowth(sales, a.logger)
	if err := a.repo.ReplacePropertyGrowth(growth); err != nil {
		return fmt.Errorf("failed to persist property growth: %w", err)
	}
	a.logger.Infof("Calculated growth for %d properties", len(growth))

	if len(growth) == 0 {
		a.logger.Info("No properties with repeat sales, skipping aggregation")
		return nil
	}

	streets, suburbs := AggregateGrowthByYear(growth, a.startYear, a.nowYear())
	if err := a.repo.ReplaceStreetGrowth(streets); err != nil {
		return fmt.Errorf("failed to persist street growth: %w", err)
	}
	if err := a.repo.ReplaceSuburbGrowth(suburbs); err != nil {
		return fmt.Errorf("failed to persist suburb growth: %w", err)
	}
	a.logger.Infof("Calculated %d street-year and %d suburb-year records", len(streets), len(suburbs))

	streetSummaries := BuildStreetSummaries(sales, growth)
	if err := a.repo.ReplaceStreetSummaries(streetSummaries); err != nil {
		return fmt.Errorf("failed to persist street summaries: %w", err)
	}
	suburbSummaries := BuildSuburbSummaries(sales, growth)
	if err := a.repo.ReplaceSuburbSummaries(suburbSummaries); err != nil {
		return fmt.Errorf("failed to persist suburb summaries: %w", err)
	}
	a.logger.Infof("Summarized %d streets and %d suburbs", len(streetSummaries), len(suburbSummaries))

	return nil
}
