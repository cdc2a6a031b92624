package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"nswproperty/internal/analytics"
	"nswproperty/internal/database"
	"nswproperty/internal/geo"
	"nswproperty/internal/geocoding"
	"nswproperty/internal/ingest"
	"nswproperty/internal/models"
)

// maxGeocodeBatch caps on-demand geocoding so a single request cannot hold
// the Nominatim rate limit for minutes.
const maxGeocodeBatch = 20

type Handler struct {
	db       *database.Database
	logger   *logrus.Logger
	geocoder *geocoding.Geocoder
	stations *geo.StationIndex
	analyzer *analytics.Analyzer
	ingester *ingest.Ingester
	jobMutex *sync.Mutex
}

type DateRange struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type GeocodeRequest struct {
	SaleIDs []int64 `json:"sale_ids" binding:"required"`
}

func NewHandler(db *database.Database, analyzer *analytics.Analyzer, ingester *ingest.Ingester, stations *geo.StationIndex, jobMutex *sync.Mutex, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	cacheDir := filepath.Join(os.TempDir(), "nswproperty", "geocode_cache")

	return &Handler{
		db:       db,
		logger:   logger,
		geocoder: geocoding.NewGeocoder(logger, cacheDir),
		stations: stations,
		analyzer: analyzer,
		ingester: ingester,
		jobMutex: jobMutex,
	}
}

func (h *Handler) GetSales(c *gin.Context) {
	filter := database.SaleFilter{
		Suburb:         c.Query("suburb"),
		PrimaryPurpose: c.Query("property_type"),
		MinArea:        floatQuery(c, "min_area"),
		MaxArea:        floatQuery(c, "max_area"),
		MinPrice:       floatQuery(c, "min_price"),
		MaxPrice:       floatQuery(c, "max_price"),
		StartDate:      c.Query("start_date"),
		EndDate:        c.Query("end_date"),
		Limit:          intQuery(c, "limit", 100),
		Offset:         intQuery(c, "skip", 0),
	}

	// min_growth arrives as a percentage, the growth table stores decimals
	if minGrowth := floatQuery(c, "min_growth"); minGrowth != nil {
		decimal := *minGrowth / 100.0
		filter.MinCAGR = &decimal
	}

	sales, err := h.db.GetSales(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get sales")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sales"})
		return
	}

	h.attachStations(sales)
	c.JSON(http.StatusOK, sales)
}

func (h *Handler) GetPropertyHistory(c *gin.Context) {
	propertyID := c.Param("property_id")

	history, err := h.db.GetPropertyHistory(propertyID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property history"})
		return
	}

	h.attachStations(history)
	c.JSON(http.StatusOK, history)
}

func (h *Handler) GetMonthlyStats(c *gin.Context) {
	var dateRange DateRange
	if err := c.ShouldBindQuery(&dateRange); err != nil {
		h.logger.WithError(err).Error("Failed to parse date range")
	}

	stats, err := h.db.GetMonthlyStats(dateRange.StartDate, dateRange.EndDate)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get monthly stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get monthly stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetTopSuburbs(c *gin.Context) {
	var dateRange DateRange
	if err := c.ShouldBindQuery(&dateRange); err != nil {
		h.logger.WithError(err).Error("Failed to parse date range")
	}

	suburbs, err := h.db.GetTopSuburbs(intQuery(c, "limit", 10), dateRange.StartDate, dateRange.EndDate)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get top suburbs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get top suburbs"})
		return
	}

	c.JSON(http.StatusOK, suburbs)
}

func (h *Handler) GetStreetGrowth(c *gin.Context) {
	streetName := c.Query("street_name")
	suburb := c.Query("suburb")
	if streetName == "" || suburb == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "street_name and suburb are required"})
		return
	}

	trend, err := h.db.GetStreetGrowth(streetName, suburb)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get street growth")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get street growth"})
		return
	}

	c.JSON(http.StatusOK, trend)
}

func (h *Handler) GetSuburbGrowth(c *gin.Context) {
	suburb := c.Query("suburb")
	if suburb == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suburb is required"})
		return
	}

	trend, err := h.db.GetSuburbGrowth(suburb)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get suburb growth")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get suburb growth"})
		return
	}

	c.JSON(http.StatusOK, trend)
}

func (h *Handler) GetStreetSummaries(c *gin.Context) {
	topOnly := c.Query("top_only") == "true"

	summaries, err := h.db.GetStreetSummaries(c.Query("suburb"), topOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get street summaries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get street summaries"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) GetSuburbSummaries(c *gin.Context) {
	topOnly := c.Query("top_only") == "true"

	summaries, err := h.db.GetSuburbSummaries(topOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get suburb summaries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get suburb summaries"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// RunAnalysis rebuilds all derived growth tables. Only one rebuild or
// ingestion runs at a time.
func (h *Handler) RunAnalysis(c *gin.Context) {
	if !h.jobMutex.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "A rebuild is already running"})
		return
	}

	go func() {
		defer h.jobMutex.Unlock()
		if err := h.analyzer.Run(); err != nil {
			h.logger.WithError(err).Error("Growth analysis failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Growth analysis started"})
}

// RunIngest downloads and ingests the configured year range, then rebuilds
// the growth tables.
func (h *Handler) RunIngest(c *gin.Context) {
	if !h.jobMutex.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "A rebuild is already running"})
		return
	}

	go func() {
		defer h.jobMutex.Unlock()
		count, err := h.ingester.Run()
		if err != nil {
			h.logger.WithError(err).Error("Ingestion failed")
			return
		}
		h.logger.WithField("sales", count).Info("Ingestion finished, rebuilding growth tables")
		if err := h.analyzer.Run(); err != nil {
			h.logger.WithError(err).Error("Growth analysis failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Ingestion started"})
}

func (h *Handler) GeocodeSales(c *gin.Context) {
	var req GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sale_ids is required"})
		return
	}
	if len(req.SaleIDs) > maxGeocodeBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Limit 20 sales per geocoding request"})
		return
	}

	count := 0
	for _, id := range req.SaleIDs {
		sale, err := h.db.GetSaleByID(id)
		if err != nil {
			h.logger.WithError(err).WithField("sale_id", id).Warn("Sale not found for geocoding")
			continue
		}
		lat, lon, err := h.geocoder.GeocodeAddress(sale.HouseNumber, sale.StreetName, sale.Suburb, sale.PostCode)
		if err != nil {
			h.logger.WithError(err).WithField("sale_id", id).Warn("Geocoding failed")
			continue
		}
		if err := h.db.UpdateSaleCoordinates(id, lat, lon); err != nil {
			h.logger.WithError(err).WithField("sale_id", id).Error("Failed to store coordinates")
			continue
		}
		count++
	}

	c.JSON(http.StatusOK, gin.H{"geocoded": count})
}

// attachStations fills in the nearest station for every sale that has
// coordinates.
func (h *Handler) attachStations(sales []models.SaleWithGrowth) {
	if h.stations == nil {
		return
	}
	for i := range sales {
		if sales[i].Latitude == nil || sales[i].Longitude == nil {
			continue
		}
		name, dist, err := h.stations.NearestStation(*sales[i].Latitude, *sales[i].Longitude)
		if err != nil {
			continue
		}
		sales[i].NearestStation = &name
		sales[i].DistanceToStation = &dist
	}
}

func floatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
