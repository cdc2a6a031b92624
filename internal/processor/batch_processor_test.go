package processor

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"nswproperty/config"
	"nswproperty/internal/models"
	"nswproperty/internal/queue"
)

// MockTxRunner mocks the transaction surface of *gorm.DB
type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error {
	args := m.Called(fc)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func TestNewBatchProcessor(t *testing.T) {
	mockDB := &MockTxRunner{}
	mockQueue := queue.NewSaleQueue(10, logrus.New())
	cfg := testConfig()
	logger := logrus.New()

	processor := NewBatchProcessor(mockDB, mockQueue, cfg, logger)

	assert.NotNil(t, processor)
	assert.Equal(t, mockDB, processor.db)
	assert.Equal(t, mockQueue, processor.queue)
	assert.Equal(t, cfg, processor.config)
	assert.Equal(t, logger, processor.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	mockDB := &MockTxRunner{}
	mockQueue := queue.NewSaleQueue(10, logrus.New())
	processor := NewBatchProcessor(mockDB, mockQueue, testConfig(), logrus.New())

	batch := []*models.Sale{
		{PropertyID: "P1"},
		{PropertyID: "P2"},
	}

	// Successful processing
	mockDB.On("Transaction", mock.Anything).Return(nil).Once()
	err := processor.processBatch(batch)
	assert.NoError(t, err)

	// Retry until attempts are exhausted
	mockDB.On("Transaction", mock.Anything).Return(errors.New("db error")).Times(4)
	err = processor.processBatch(batch)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch after 3 attempts")

	mockDB.AssertExpectations(t)
}

func TestBatchProcessor_AcksProcessedBatches(t *testing.T) {
	mockDB := &MockTxRunner{}
	mockQueue := queue.NewSaleQueue(10, logrus.New())
	processor := NewBatchProcessor(mockDB, mockQueue, testConfig(), logrus.New())

	mockDB.On("Transaction", mock.Anything).Return(nil).Once()
	assert.NoError(t, mockQueue.Push([]*models.Sale{{PropertyID: "P1"}}))

	processor.Start()
	defer processor.Stop()

	// Wait must unblock once the batch has been written and acked
	drained := make(chan struct{})
	go func() {
		mockQueue.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("queue never drained")
	}

	mockDB.AssertExpectations(t)
}

func TestBatchProcessor_StartStop(t *testing.T) {
	mockDB := &MockTxRunner{}
	mockQueue := queue.NewSaleQueue(10, logrus.New())
	processor := NewBatchProcessor(mockDB, mockQueue, testConfig(), logrus.New())

	processor.Start()
	time.Sleep(50 * time.Millisecond)
	processor.Stop()

	mockQueue.Close()
	assert.True(t, mockQueue.IsClosed())
}
