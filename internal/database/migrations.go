package database

import "fmt"

// RunMigrations creates the sales table and the five derived tables. All
// statements are idempotent so the server can run them on every start.
func (d *Database) RunMigrations() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			district_code TEXT,
			property_id TEXT,
			sale_counter TEXT,
			download_datetime TEXT,
			property_name TEXT,
			unit_number TEXT,
			house_number TEXT,
			street_name TEXT,
			suburb TEXT,
			post_code INTEGER,
			area REAL,
			area_type TEXT,
			contract_date DATE,
			settlement_date DATE,
			purchase_price REAL,
			zoning TEXT,
			nature_of_property TEXT,
			primary_purpose TEXT,
			strata_lot_number TEXT,
			dealing_number TEXT,
			latitude REAL,
			longitude REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_property_id ON sales(property_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_suburb ON sales(suburb);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_contract_date ON sales(contract_date);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_purchase_price ON sales(purchase_price);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_dedupe
			ON sales(property_id, sale_counter, dealing_number);`,

		`CREATE TABLE IF NOT EXISTS property_growth (
			property_id TEXT PRIMARY KEY,
			cagr REAL,
			total_growth REAL,
			years_held REAL,
			first_sale_price REAL,
			last_sale_price REAL,
			last_sale_year INTEGER,
			street_name TEXT,
			suburb TEXT,
			post_code INTEGER
		);`,

		`CREATE TABLE IF NOT EXISTS street_growth (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			street_name TEXT,
			suburb TEXT,
			post_code INTEGER,
			year INTEGER,
			avg_cagr REAL,
			property_count INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_street_growth_street ON street_growth(street_name, suburb);`,
		`CREATE INDEX IF NOT EXISTS idx_street_growth_year ON street_growth(year);`,

		`CREATE TABLE IF NOT EXISTS suburb_growth (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			suburb TEXT,
			year INTEGER,
			avg_cagr REAL,
			property_count INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_suburb_growth_suburb ON suburb_growth(suburb);`,
		`CREATE INDEX IF NOT EXISTS idx_suburb_growth_year ON suburb_growth(year);`,

		`CREATE TABLE IF NOT EXISTS street_summary (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			street_name TEXT,
			suburb TEXT,
			post_code INTEGER,
			unique_properties INTEGER,
			total_sales INTEGER,
			avg_cagr REAL,
			is_top_performer INTEGER DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_street_summary_suburb ON street_summary(suburb);`,

		`CREATE TABLE IF NOT EXISTS suburb_summary (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			suburb TEXT,
			unique_properties INTEGER,
			total_sales INTEGER,
			avg_cagr REAL,
			is_top_performer INTEGER DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_suburb_summary_suburb ON suburb_summary(suburb);`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
