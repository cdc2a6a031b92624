package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		Port string `env:"SERVER_PORT" envDefault:"5250"`
	}

	Database struct {
		// Path to the SQLite database file
		Path string `env:"DB_PATH" envDefault:"database/sales.db"`

		// Rows per insert batch when derived tables are replaced
		ChunkSize int `env:"DB_CHUNK_SIZE" envDefault:"10000"`
	}

	Analysis struct {
		// First year of the per-year growth aggregation window
		StartYear int `env:"ANALYSIS_START_YEAR" envDefault:"2001"`
	}

	Ingest struct {
		// Base URL of the Valuer General yearly archives
		URLBase string `env:"INGEST_URL_BASE" envDefault:"https://www.valuergeneral.nsw.gov.au/__psi/yearly/"`

		// Year range of archives to download; 0 for EndYear means the
		// current year
		StartYear int `env:"INGEST_START_YEAR" envDefault:"2001"`
		EndYear   int `env:"INGEST_END_YEAR" envDefault:"0"`

		// Directory yearly ZIPs are downloaded into
		DownloadDir string `env:"INGEST_DOWNLOAD_DIR" envDefault:"data"`

		// Parsed sales per batch pushed onto the queue
		BatchSize int `env:"INGEST_BATCH_SIZE" envDefault:"500"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		// Queue buffer size in batches
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`
	}

	Scheduler struct {
		// Run the nightly ingest + rebuild job
		Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`

		// Hour of day (local time) the nightly job starts
		Hour int `env:"SCHEDULER_HOUR" envDefault:"2"`
	}

	Stations struct {
		// CSV of train station names and coordinates
		CSVPath string `env:"STATIONS_CSV" envDefault:"data/stations.csv"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
