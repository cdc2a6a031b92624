package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nswproperty/internal/analytics"
	"nswproperty/internal/database"
	"nswproperty/internal/geo"
	"nswproperty/internal/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *database.Database, *sync.Mutex) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	analyzer := analytics.NewAnalyzer(db, 2001, logger)
	jobMutex := &sync.Mutex{}
	handler := NewHandler(db, analyzer, nil, nil, jobMutex, logger)

	router := gin.New()
	SetupRoutes(router, handler)
	return router, db, jobMutex
}

func insertSale(t *testing.T, db *database.Database, propertyID, street, suburb, contractDate string, price float64) {
	t.Helper()
	_, err := db.GetDB().Exec(`
		INSERT INTO sales (property_id, sale_counter, dealing_number, street_name, suburb, post_code, contract_date, purchase_price, primary_purpose)
		VALUES (?, ?, ?, ?, ?, 2000, ?, ?, 'Residence')`,
		propertyID, "1", propertyID+"-"+contractDate, street, suburb, contractDate, price)
	require.NoError(t, err)
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSales(t *testing.T) {
	router, db, _ := newTestRouter(t)
	insertSale(t, db, "PROP1", "George Street", "Sydney", "2020-01-15", 750000)
	insertSale(t, db, "PROP2", "Church Street", "Parramatta", "2021-06-01", 650000)

	w := doRequest(router, "GET", "/api/sales?suburb=sydney", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sales []models.SaleWithGrowth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, "PROP1", sales[0].PropertyID)
	assert.Nil(t, sales[0].CAGR)
}

func TestGetSalesMinGrowthIsPercentage(t *testing.T) {
	router, db, _ := newTestRouter(t)
	insertSale(t, db, "PROP1", "George Street", "Sydney", "2020-01-15", 750000)
	_, err := db.GetDB().Exec(`
		INSERT INTO property_growth (property_id, cagr, total_growth, years_held, first_sale_price, last_sale_price, last_sale_year, street_name, suburb, post_code)
		VALUES ('PROP1', 0.0845, 0.5, 5.0, 500000, 750000, 2020, 'George Street', 'Sydney', 2000)`)
	require.NoError(t, err)

	// 5 percent threshold, stored as 0.05
	w := doRequest(router, "GET", "/api/sales?min_growth=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sales []models.SaleWithGrowth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sales))
	require.Len(t, sales, 1)

	w = doRequest(router, "GET", "/api/sales?min_growth=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sales))
	assert.Empty(t, sales)
}

func TestGetSalesZeroLimitWithSkip(t *testing.T) {
	router, db, _ := newTestRouter(t)
	insertSale(t, db, "PROP1", "George Street", "Sydney", "2020-01-15", 750000)
	insertSale(t, db, "PROP2", "George Street", "Sydney", "2021-06-01", 650000)

	w := doRequest(router, "GET", "/api/sales?limit=0&skip=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sales []models.SaleWithGrowth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, "PROP1", sales[0].PropertyID)
}

func TestGetPropertyHistory(t *testing.T) {
	router, db, _ := newTestRouter(t)
	insertSale(t, db, "PROP1", "George Street", "Sydney", "2015-03-10", 500000)
	insertSale(t, db, "PROP1", "George Street", "Sydney", "2020-01-15", 750000)

	w := doRequest(router, "GET", "/api/property/PROP1/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	var history []models.SaleWithGrowth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.True(t, history[0].ContractDate.Before(*history[1].ContractDate))
}

func TestGetStreetGrowthRequiresParams(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, "GET", "/api/growth/streets?street_name=George+Street", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunAnalysis(t *testing.T) {
	router, db, jobMutex := newTestRouter(t)
	insertSale(t, db, "PROP1", "George Street", "Sydney", "2015-03-10", 500000)
	insertSale(t, db, "PROP1", "George Street", "Sydney", "2020-01-15", 750000)

	w := doRequest(router, "POST", "/api/analyze", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	// Wait for the background rebuild to release the lock
	require.Eventually(t, func() bool {
		if !jobMutex.TryLock() {
			return false
		}
		jobMutex.Unlock()
		return true
	}, 5*time.Second, 10*time.Millisecond)

	var count int
	require.NoError(t, db.GetDB().QueryRow("SELECT COUNT(*) FROM property_growth").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRunAnalysisConflict(t *testing.T) {
	router, _, jobMutex := newTestRouter(t)

	jobMutex.Lock()
	defer jobMutex.Unlock()

	w := doRequest(router, "POST", "/api/analyze", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func coord(v float64) *float64 { return &v }

func newStationIndex(t *testing.T, csvContent string) *geo.StationIndex {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	path := filepath.Join(t.TempDir(), "stations.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvContent), 0644))
	return geo.NewStationIndex(path, logger)
}

func TestAttachStations(t *testing.T) {
	idx := newStationIndex(t, `Station,Latitude,Longitude
Central,-33.8832,151.2071
`)
	h := &Handler{stations: idx}

	sales := []models.SaleWithGrowth{
		{Sale: models.Sale{PropertyID: "P1", Latitude: coord(-33.88), Longitude: coord(151.20)}},
		{Sale: models.Sale{PropertyID: "P2"}},
		{Sale: models.Sale{PropertyID: "P3", Latitude: coord(-33.89), Longitude: coord(151.21)}},
	}
	h.attachStations(sales)

	require.NotNil(t, sales[0].NearestStation)
	assert.Equal(t, "Central", *sales[0].NearestStation)
	assert.Nil(t, sales[1].NearestStation)
	require.NotNil(t, sales[2].NearestStation)
	assert.Equal(t, "Central", *sales[2].NearestStation)
}

func TestAttachStationsNoStationData(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	idx := geo.NewStationIndex(filepath.Join(t.TempDir(), "absent.csv"), logger)
	h := &Handler{stations: idx}

	sales := []models.SaleWithGrowth{
		{Sale: models.Sale{PropertyID: "P1", Latitude: coord(-33.88), Longitude: coord(151.20)}},
		{Sale: models.Sale{PropertyID: "P2", Latitude: coord(-33.89), Longitude: coord(151.21)}},
	}
	// A failing lookup skips the row and moves on
	h.attachStations(sales)

	assert.Nil(t, sales[0].NearestStation)
	assert.Nil(t, sales[1].NearestStation)
}

func TestGeocodeSalesBatchLimit(t *testing.T) {
	router, _, _ := newTestRouter(t)

	ids := make([]string, 21)
	for i := range ids {
		ids[i] = "1"
	}
	body := `{"sale_ids": [` + strings.Join(ids, ",") + `]}`

	w := doRequest(router, "POST", "/api/geocode", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeocodeSalesMissingBody(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, "POST", "/api/geocode", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
