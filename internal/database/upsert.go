package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"nswproperty/internal/models"
)

// OpenGorm opens the ingestion write handle against the same database file
// the raw store uses. Schema is owned by RunMigrations, never auto-migrated.
func OpenGorm(dbPath string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// UpsertSales inserts a batch of parsed sales, replacing rows that collide
// on the (property_id, sale_counter, dealing_number) dedupe key. Re-running
// an ingest is therefore safe and keeps previously geocoded coordinates
// untouched only when the source row itself is unchanged.
func UpsertSales(tx *gorm.DB, sales []*models.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "property_id"},
			{Name: "sale_counter"},
			{Name: "dealing_number"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"district_code", "download_datetime", "property_name",
			"unit_number", "house_number", "street_name", "suburb",
			"post_code", "area", "area_type", "contract_date",
			"settlement_date", "purchase_price", "zoning",
			"nature_of_property", "primary_purpose", "strata_lot_number",
		}),
	}).Create(sales).Error
}
