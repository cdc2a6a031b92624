package models

import "time"

// Sale is one NSW Valuer General property sale transaction.
type Sale struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	DistrictCode     string     `json:"district_code"`
	PropertyID       string     `json:"property_id"`
	SaleCounter      string     `json:"sale_counter"`
	DownloadDatetime string     `json:"download_datetime"`
	PropertyName     string     `json:"property_name"`
	UnitNumber       string     `json:"unit_number"`
	HouseNumber      string     `json:"house_number"`
	StreetName       string     `json:"street_name"`
	Suburb           string     `json:"suburb"`
	PostCode         int        `json:"post_code"`
	Area             *float64   `json:"area"`
	AreaType         string     `json:"area_type"`
	ContractDate     *time.Time `json:"contract_date"`
	SettlementDate   *time.Time `json:"settlement_date"`
	PurchasePrice    *float64   `json:"purchase_price"`
	Zoning           string     `json:"zoning"`
	NatureOfProperty string     `json:"nature_of_property"`
	PrimaryPurpose   string     `json:"primary_purpose"`
	StrataLotNumber  string     `json:"strata_lot_number"`
	DealingNumber    string     `json:"dealing_number"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
}

// TableName keeps gorm writes aligned with the hand-written migrations.
func (Sale) TableName() string {
	return "sales"
}

// SaleWithGrowth is a sale joined with its property's growth record, plus the
// nearest-station lookup when coordinates are available.
type SaleWithGrowth struct {
	Sale
	CAGR              *float64 `json:"cagr"`
	TotalGrowth       *float64 `json:"total_growth"`
	YearsHeld         *float64 `json:"years_held"`
	NearestStation    *string  `json:"nearest_station"`
	DistanceToStation *float64 `json:"distance_to_station"`
}
