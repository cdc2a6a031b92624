package geo

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"
)

// Station is one train station with its location.
type Station struct {
	Name  string
	Point orb.Point
}

// StationIndex answers nearest-station queries against the train station
// list. The CSV is loaded lazily on first use.
type StationIndex struct {
	csvPath  string
	logger   *logrus.Logger
	loadOnce sync.Once
	stations []Station
}

func NewStationIndex(csvPath string, logger *logrus.Logger) *StationIndex {
	return &StationIndex{
		csvPath: csvPath,
		logger:  logger,
	}
}

func (s *StationIndex) load() {
	file, err := os.Open(s.csvPath)
	if err != nil {
		s.logger.WithField("path", s.csvPath).Warn("Stations CSV not found")
		return
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		s.logger.WithError(err).Error("Failed to read stations CSV")
		return
	}

	// Columns are Station, Latitude, Longitude with a header row
	for i, record := range records {
		if i == 0 || len(record) < 3 {
			continue
		}
		lat, latErr := strconv.ParseFloat(record[1], 64)
		lon, lonErr := strconv.ParseFloat(record[2], 64)
		if latErr != nil || lonErr != nil {
			s.logger.WithField("row", i).Warn("Skipping station row with bad coordinates")
			continue
		}
		s.stations = append(s.stations, Station{
			Name:  record[0],
			Point: orb.Point{lon, lat},
		})
	}

	s.logger.Infof("Loaded %d stations", len(s.stations))
}

// NearestStation returns the closest station to the given coordinate and
// the distance to it in kilometres.
func (s *StationIndex) NearestStation(lat, lon float64) (string, float64, error) {
	s.loadOnce.Do(s.load)
	if len(s.stations) == 0 {
		return "", 0, fmt.Errorf("no stations loaded")
	}

	point := orb.Point{lon, lat}
	var nearest string
	minDist := -1.0
	for _, station := range s.stations {
		dist := orbgeo.Distance(point, station.Point) / 1000
		if minDist < 0 || dist < minDist {
			minDist = dist
			nearest = station.Name
		}
	}
	return nearest, minDist, nil
}
