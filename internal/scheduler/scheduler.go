package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nswproperty/internal/analytics"
	"nswproperty/internal/ingest"
)

// Scheduler runs the nightly ingestion and growth rebuild. The job mutex is
// shared with the API so manual and scheduled runs never overlap.
type Scheduler struct {
	ingester *ingest.Ingester
	analyzer *analytics.Analyzer
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex *sync.Mutex
	hour     int
	lastRun  time.Time
}

func NewScheduler(ingester *ingest.Ingester, analyzer *analytics.Analyzer, jobMutex *sync.Mutex, hour int, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		ingester: ingester,
		analyzer: analyzer,
		logger:   logger,
		stopChan: make(chan struct{}),
		jobMutex: jobMutex,
		hour:     hour,
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

func (s *Scheduler) executeScheduledJobs(t time.Time) {
	if t.Hour() != s.hour || t.Minute() != 0 {
		return
	}
	// The minute ticker can fire twice in the same minute
	if t.Sub(s.lastRun) < time.Hour {
		return
	}

	if !s.jobMutex.TryLock() {
		s.logger.Warn("Skipping scheduled run, another job is active")
		return
	}
	defer s.jobMutex.Unlock()

	s.lastRun = t
	s.runPipeline()
}

// RunNow executes the pipeline immediately, used for the startup run.
func (s *Scheduler) RunNow() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	s.runPipeline()
}

func (s *Scheduler) runPipeline() {
	s.logger.Info("Starting scheduled ingestion run")

	count, err := s.ingester.Run()
	if err != nil {
		s.logger.WithError(err).Error("Scheduled ingestion failed")
		return
	}
	s.logger.WithField("sales", count).Info("Scheduled ingestion completed")

	s.logger.Info("Starting scheduled growth rebuild")
	if err := s.analyzer.Run(); err != nil {
		s.logger.WithError(err).Error("Scheduled growth rebuild failed")
		return
	}
	s.logger.Info("Scheduled growth rebuild completed")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
