package database

import (
	"database/sql"

	"nswproperty/internal/models"
)

const saleColumns = `
	id, district_code, property_id, sale_counter, download_datetime,
	property_name, unit_number, house_number, street_name, suburb, post_code,
	area, area_type, contract_date, settlement_date, purchase_price,
	zoning, nature_of_property, primary_purpose, strata_lot_number,
	dealing_number, latitude, longitude`

func scanSale(rows *sql.Rows) (models.Sale, error) {
	var s models.Sale
	var districtCode, saleCounter, downloadDatetime sql.NullString
	var propertyName, unitNumber, houseNumber, streetName, suburb sql.NullString
	var areaType, zoning, natureOfProperty, primaryPurpose sql.NullString
	var strataLotNumber, dealingNumber sql.NullString
	var postCode sql.NullInt64
	var area, purchasePrice, latitude, longitude sql.NullFloat64
	var contractDate, settlementDate sql.NullTime

	err := rows.Scan(
		&s.ID,
		&districtCode,
		&s.PropertyID,
		&saleCounter,
		&downloadDatetime,
		&propertyName,
		&unitNumber,
		&houseNumber,
		&streetName,
		&suburb,
		&postCode,
		&area,
		&areaType,
		&contractDate,
		&settlementDate,
		&purchasePrice,
		&zoning,
		&natureOfProperty,
		&primaryPurpose,
		&strataLotNumber,
		&dealingNumber,
		&latitude,
		&longitude,
	)
	if err != nil {
		return s, err
	}

	s.DistrictCode = districtCode.String
	s.SaleCounter = saleCounter.String
	s.DownloadDatetime = downloadDatetime.String
	s.PropertyName = propertyName.String
	s.UnitNumber = unitNumber.String
	s.HouseNumber = houseNumber.String
	s.StreetName = streetName.String
	s.Suburb = suburb.String
	s.AreaType = areaType.String
	s.Zoning = zoning.String
	s.NatureOfProperty = natureOfProperty.String
	s.PrimaryPurpose = primaryPurpose.String
	s.StrataLotNumber = strataLotNumber.String
	s.DealingNumber = dealingNumber.String

	if postCode.Valid {
		s.PostCode = int(postCode.Int64)
	}
	if area.Valid {
		v := area.Float64
		s.Area = &v
	}
	if purchasePrice.Valid {
		v := purchasePrice.Float64
		s.PurchasePrice = &v
	}
	if latitude.Valid {
		v := latitude.Float64
		s.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		s.Longitude = &v
	}
	if contractDate.Valid {
		t := contractDate.Time
		s.ContractDate = &t
	}
	if settlementDate.Valid {
		t := settlementDate.Time
		s.SettlementDate = &t
	}

	return s, nil
}

// FetchAllSales streams the entire sales table into memory for a rebuild.
// Ordering is left to the analytics layer.
func (d *Database) FetchAllSales() ([]models.Sale, error) {
	rows, err := d.db.Query("SELECT " + saleColumns + " FROM sales")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// SaleFilter narrows the /api/sales listing.
type SaleFilter struct {
	Suburb         string
	PrimaryPurpose string
	MinArea        *float64
	MaxArea        *float64
	MinPrice       *float64
	MaxPrice       *float64
	MinCAGR        *float64
	StartDate      string
	EndDate        string
	Limit          int
	Offset         int
}

// GetSales returns sales joined with their property's growth record, newest
// contract date first.
func (d *Database) GetSales(filter SaleFilter) ([]models.SaleWithGrowth, error) {
	query := `
		SELECT ` + qualifySaleColumns("s") + `,
			pg.cagr, pg.total_growth, pg.years_held
		FROM sales s
		LEFT JOIN property_growth pg ON s.property_id = pg.property_id
		WHERE 1=1
	`
	var args []interface{}

	if filter.Suburb != "" {
		query += " AND LOWER(s.suburb) LIKE '%' || LOWER(?) || '%'"
		args = append(args, filter.Suburb)
	}
	if filter.PrimaryPurpose != "" {
		query += " AND s.primary_purpose = ?"
		args = append(args, filter.PrimaryPurpose)
	}
	if filter.MinArea != nil {
		query += " AND s.area >= ?"
		args = append(args, *filter.MinArea)
	}
	if filter.MaxArea != nil {
		query += " AND s.area <= ?"
		args = append(args, *filter.MaxArea)
	}
	if filter.MinPrice != nil {
		query += " AND s.purchase_price >= ?"
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += " AND s.purchase_price <= ?"
		args = append(args, *filter.MaxPrice)
	}
	if filter.MinCAGR != nil {
		query += " AND pg.cagr >= ?"
		args = append(args, *filter.MinCAGR)
	}
	if filter.StartDate != "" {
		query += " AND date(s.contract_date) >= ?"
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += " AND date(s.contract_date) <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY s.contract_date DESC"
	// SQLite accepts OFFSET only after LIMIT; -1 means no limit
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return d.querySalesWithGrowth(query, args...)
}

// GetPropertyHistory returns every sale of a property in chronological
// order, with growth metrics attached.
func (d *Database) GetPropertyHistory(propertyID string) ([]models.SaleWithGrowth, error) {
	query := `
		SELECT ` + qualifySaleColumns("s") + `,
			pg.cagr, pg.total_growth, pg.years_held
		FROM sales s
		LEFT JOIN property_growth pg ON s.property_id = pg.property_id
		WHERE s.property_id = ?
		ORDER BY s.contract_date ASC
	`
	return d.querySalesWithGrowth(query, propertyID)
}

func (d *Database) querySalesWithGrowth(query string, args ...interface{}) ([]models.SaleWithGrowth, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.SaleWithGrowth{}
	for rows.Next() {
		var s models.SaleWithGrowth
		var districtCode, saleCounter, downloadDatetime sql.NullString
		var propertyName, unitNumber, houseNumber, streetName, suburb sql.NullString
		var areaType, zoning, natureOfProperty, primaryPurpose sql.NullString
		var strataLotNumber, dealingNumber sql.NullString
		var postCode sql.NullInt64
		var area, purchasePrice, latitude, longitude sql.NullFloat64
		var contractDate, settlementDate sql.NullTime
		var cagr, totalGrowth, yearsHeld sql.NullFloat64

		err := rows.Scan(
			&s.ID,
			&districtCode,
			&s.PropertyID,
			&saleCounter,
			&downloadDatetime,
			&propertyName,
			&unitNumber,
			&houseNumber,
			&streetName,
			&suburb,
			&postCode,
			&area,
			&areaType,
			&contractDate,
			&settlementDate,
			&purchasePrice,
			&zoning,
			&natureOfProperty,
			&primaryPurpose,
			&strataLotNumber,
			&dealingNumber,
			&latitude,
			&longitude,
			&cagr,
			&totalGrowth,
			&yearsHeld,
		)
		if err != nil {
			return nil, err
		}

		s.DistrictCode = districtCode.String
		s.SaleCounter = saleCounter.String
		s.DownloadDatetime = downloadDatetime.String
		s.PropertyName = propertyName.String
		s.UnitNumber = unitNumber.String
		s.HouseNumber = houseNumber.String
		s.StreetName = streetName.String
		s.Suburb = suburb.String
		s.AreaType = areaType.String
		s.Zoning = zoning.String
		s.NatureOfProperty = natureOfProperty.String
		s.PrimaryPurpose = primaryPurpose.String
		s.StrataLotNumber = strataLotNumber.String
		s.DealingNumber = dealingNumber.String

		if postCode.Valid {
			s.PostCode = int(postCode.Int64)
		}
		if area.Valid {
			v := area.Float64
			s.Area = &v
		}
		if purchasePrice.Valid {
			v := purchasePrice.Float64
			s.PurchasePrice = &v
		}
		if latitude.Valid {
			v := latitude.Float64
			s.Latitude = &v
		}
		if longitude.Valid {
			v := longitude.Float64
			s.Longitude = &v
		}
		if contractDate.Valid {
			t := contractDate.Time
			s.ContractDate = &t
		}
		if settlementDate.Valid {
			t := settlementDate.Time
			s.SettlementDate = &t
		}
		if cagr.Valid {
			v := cagr.Float64
			s.CAGR = &v
		}
		if totalGrowth.Valid {
			v := totalGrowth.Float64
			s.TotalGrowth = &v
		}
		if yearsHeld.Valid {
			v := yearsHeld.Float64
			s.YearsHeld = &v
		}

		results = append(results, s)
	}
	return results, rows.Err()
}

// GetSaleByID returns a single sale row, or nil when no row matches.
func (d *Database) GetSaleByID(id int64) (*models.Sale, error) {
	rows, err := d.db.Query("SELECT "+saleColumns+" FROM sales WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanSale(rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSaleCoordinates stores geocoded coordinates for one sale.
func (d *Database) UpdateSaleCoordinates(id int64, lat, lon float64) error {
	_, err := d.db.Exec("UPDATE sales SET latitude = ?, longitude = ? WHERE id = ?", lat, lon, id)
	return err
}

// GetMonthlyStats returns average sale price per calendar month. SQLite has
// no cheap median, so the monthly figure is a mean, as it always has been.
func (d *Database) GetMonthlyStats(startDate, endDate string) ([]models.MonthlyStat, error) {
	query := `
		SELECT strftime('%Y-%m', contract_date) AS month,
			AVG(purchase_price) AS avg_price,
			COUNT(id) AS cnt
		FROM sales
		WHERE contract_date IS NOT NULL AND purchase_price IS NOT NULL
	`
	var args []interface{}
	if startDate != "" {
		query += " AND date(contract_date) >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND date(contract_date) <= ?"
		args = append(args, endDate)
	}
	query += " GROUP BY month ORDER BY month"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.MonthlyStat{}
	for rows.Next() {
		var m models.MonthlyStat
		var month sql.NullString
		var avgPrice sql.NullFloat64
		if err := rows.Scan(&month, &avgPrice, &m.Count); err != nil {
			return nil, err
		}
		if !month.Valid {
			continue
		}
		m.Month = month.String
		m.AvgPrice = avgPrice.Float64
		stats = append(stats, m)
	}
	return stats, rows.Err()
}

// GetTopSuburbs ranks suburbs by transaction volume.
func (d *Database) GetTopSuburbs(limit int, startDate, endDate string) ([]models.SuburbVolume, error) {
	query := `
		SELECT suburb, COUNT(id) AS cnt, AVG(purchase_price) AS avg_price
		FROM sales
		WHERE suburb != ''
	`
	var args []interface{}
	if startDate != "" {
		query += " AND date(contract_date) >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND date(contract_date) <= ?"
		args = append(args, endDate)
	}
	query += " GROUP BY suburb ORDER BY cnt DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suburbs := []models.SuburbVolume{}
	for rows.Next() {
		var v models.SuburbVolume
		var avgPrice sql.NullFloat64
		if err := rows.Scan(&v.Suburb, &v.Count, &avgPrice); err != nil {
			return nil, err
		}
		v.AvgPrice = avgPrice.Float64
		suburbs = append(suburbs, v)
	}
	return suburbs, rows.Err()
}

func qualifySaleColumns(alias string) string {
	return alias + `.id, ` + alias + `.district_code, ` + alias + `.property_id, ` +
		alias + `.sale_counter, ` + alias + `.download_datetime, ` + alias + `.property_name, ` +
		alias + `.unit_number, ` + alias + `.house_number, ` + alias + `.street_name, ` +
		alias + `.suburb, ` + alias + `.post_code, ` + alias + `.area, ` + alias + `.area_type, ` +
		alias + `.contract_date, ` + alias + `.settlement_date, ` + alias + `.purchase_price, ` +
		alias + `.zoning, ` + alias + `.nature_of_property, ` + alias + `.primary_purpose, ` +
		alias + `.strata_lot_number, ` + alias + `.dealing_number, ` + alias + `.latitude, ` +
		alias + `.longitude`
}
