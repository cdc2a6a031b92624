package database

import (
	"database/sql"
	"fmt"
	"strings"

	"nswproperty/internal/models"
)

// bulkReplace wipes a table and reinserts rows inside one transaction, so a
// stage either lands completely or not at all. Rows are grouped into
// multi-row inserts of at most chunkSize rows, further capped by SQLite's
// bound-parameter limit.
func (d *Database) bulkReplace(table string, columns []string, rows [][]interface{}) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	if len(rows) > 0 {
		rowsPerStmt := d.chunkSize
		if limit := maxBoundParams / len(columns); limit < rowsPerStmt {
			rowsPerStmt = limit
		}

		placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
		prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

		for start := 0; start < len(rows); start += rowsPerStmt {
			end := start + rowsPerStmt
			if end > len(rows) {
				end = len(rows)
			}
			chunk := rows[start:end]

			placeholders := make([]string, len(chunk))
			args := make([]interface{}, 0, len(chunk)*len(columns))
			for i, row := range chunk {
				placeholders[i] = placeholder
				args = append(args, row...)
			}

			if _, err := tx.Exec(prefix+strings.Join(placeholders, ","), args...); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s replace: %w", table, err)
	}
	return nil
}

func (d *Database) ReplacePropertyGrowth(records []models.PropertyGrowth) error {
	columns := []string{
		"property_id", "cagr", "total_growth", "years_held",
		"first_sale_price", "last_sale_price", "last_sale_year",
		"street_name", "suburb", "post_code",
	}
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{
			r.PropertyID, r.CAGR, r.TotalGrowth, r.YearsHeld,
			r.FirstSalePrice, r.LastSalePrice, r.LastSaleYear,
			r.StreetName, r.Suburb, r.PostCode,
		}
	}
	return d.bulkReplace("property_growth", columns, rows)
}

func (d *Database) ReplaceStreetGrowth(records []models.StreetGrowth) error {
	columns := []string{"street_name", "suburb", "post_code", "year", "avg_cagr", "property_count"}
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{r.StreetName, r.Suburb, r.PostCode, r.Year, r.AvgCAGR, r.PropertyCount}
	}
	return d.bulkReplace("street_growth", columns, rows)
}

func (d *Database) ReplaceSuburbGrowth(records []models.SuburbGrowth) error {
	columns := []string{"suburb", "year", "avg_cagr", "property_count"}
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{r.Suburb, r.Year, r.AvgCAGR, r.PropertyCount}
	}
	return d.bulkReplace("suburb_growth", columns, rows)
}

func (d *Database) ReplaceStreetSummaries(records []models.StreetSummary) error {
	columns := []string{
		"street_name", "suburb", "post_code",
		"unique_properties", "total_sales", "avg_cagr", "is_top_performer",
	}
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{
			r.StreetName, r.Suburb, r.PostCode,
			r.UniqueProperties, r.TotalSales, nullableFloat(r.AvgCAGR), r.IsTopPerformer,
		}
	}
	return d.bulkReplace("street_summary", columns, rows)
}

func (d *Database) ReplaceSuburbSummaries(records []models.SuburbSummary) error {
	columns := []string{"suburb", "unique_properties", "total_sales", "avg_cagr", "is_top_performer"}
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{
			r.Suburb, r.UniqueProperties, r.TotalSales, nullableFloat(r.AvgCAGR), r.IsTopPerformer,
		}
	}
	return d.bulkReplace("suburb_summary", columns, rows)
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// GetStreetGrowth returns the per-year growth rows for one street, oldest
// year first.
func (d *Database) GetStreetGrowth(streetName, suburb string) ([]models.StreetGrowth, error) {
	rows, err := d.db.Query(`
		SELECT street_name, suburb, post_code, year, avg_cagr, property_count
		FROM street_growth
		WHERE LOWER(street_name) = LOWER(?) AND (? = '' OR LOWER(suburb) = LOWER(?))
		ORDER BY year
	`, streetName, suburb, suburb)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.StreetGrowth{}
	for rows.Next() {
		var g models.StreetGrowth
		if err := rows.Scan(&g.StreetName, &g.Suburb, &g.PostCode, &g.Year, &g.AvgCAGR, &g.PropertyCount); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// GetSuburbGrowth returns the per-year growth rows for one suburb.
func (d *Database) GetSuburbGrowth(suburb string) ([]models.SuburbGrowth, error) {
	rows, err := d.db.Query(`
		SELECT suburb, year, avg_cagr, property_count
		FROM suburb_growth
		WHERE LOWER(suburb) = LOWER(?)
		ORDER BY year
	`, suburb)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.SuburbGrowth{}
	for rows.Next() {
		var g models.SuburbGrowth
		if err := rows.Scan(&g.Suburb, &g.Year, &g.AvgCAGR, &g.PropertyCount); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// GetStreetSummaries lists all-time street summaries, best average first.
func (d *Database) GetStreetSummaries(suburb string, topOnly bool) ([]models.StreetSummary, error) {
	query := `
		SELECT street_name, suburb, post_code, unique_properties, total_sales,
			avg_cagr, is_top_performer
		FROM street_summary
		WHERE (? = '' OR LOWER(suburb) = LOWER(?))
	`
	args := []interface{}{suburb, suburb}
	if topOnly {
		query += " AND is_top_performer = 1"
	}
	query += " ORDER BY avg_cagr DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.StreetSummary{}
	for rows.Next() {
		var s models.StreetSummary
		var avgCAGR sql.NullFloat64
		if err := rows.Scan(&s.StreetName, &s.Suburb, &s.PostCode, &s.UniqueProperties,
			&s.TotalSales, &avgCAGR, &s.IsTopPerformer); err != nil {
			return nil, err
		}
		if avgCAGR.Valid {
			v := avgCAGR.Float64
			s.AvgCAGR = &v
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// GetSuburbSummaries lists all-time suburb summaries, best average first.
func (d *Database) GetSuburbSummaries(topOnly bool) ([]models.SuburbSummary, error) {
	query := `
		SELECT suburb, unique_properties, total_sales, avg_cagr, is_top_performer
		FROM suburb_summary
	`
	if topOnly {
		query += " WHERE is_top_performer = 1"
	}
	query += " ORDER BY avg_cagr DESC"

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.SuburbSummary{}
	for rows.Next() {
		var s models.SuburbSummary
		var avgCAGR sql.NullFloat64
		if err := rows.Scan(&s.Suburb, &s.UniqueProperties, &s.TotalSales, &avgCAGR, &s.IsTopPerformer); err != nil {
			return nil, err
		}
		if avgCAGR.Valid {
			v := avgCAGR.Float64
			s.AvgCAGR = &v
		}
		results = append(results, s)
	}
	return results, rows.Err()
}
