package models

// PropertyGrowth is the derived growth record for a property with at least
// two priced sales. The street fields are denormalized from the earliest sale.
type PropertyGrowth struct {
	PropertyID     string  `json:"property_id"`
	CAGR           float64 `json:"cagr"`
	TotalGrowth    float64 `json:"total_growth"`
	YearsHeld      float64 `json:"years_held"`
	FirstSalePrice float64 `json:"first_sale_price"`
	LastSalePrice  float64 `json:"last_sale_price"`
	LastSaleYear   int     `json:"last_sale_year"`
	StreetName     string  `json:"street_name"`
	Suburb         string  `json:"suburb"`
	PostCode       int     `json:"post_code"`
}

// StreetGrowth is the per-year aggregate for a street.
type StreetGrowth struct {
	StreetName    string  `json:"street_name"`
	Suburb        string  `json:"suburb"`
	PostCode      int     `json:"post_code"`
	Year          int     `json:"year"`
	AvgCAGR       float64 `json:"avg_cagr"`
	PropertyCount int     `json:"property_count"`
}

// SuburbGrowth is the per-year aggregate for a suburb.
type SuburbGrowth struct {
	Suburb        string  `json:"suburb"`
	Year          int     `json:"year"`
	AvgCAGR       float64 `json:"avg_cagr"`
	PropertyCount int     `json:"property_count"`
}

// StreetSummary is the all-time summary for a street. AvgCAGR is nil when no
// property on the street has a growth record.
type StreetSummary struct {
	StreetName       string   `json:"street_name"`
	Suburb           string   `json:"suburb"`
	PostCode         int      `json:"post_code"`
	UniqueProperties int      `json:"unique_properties"`
	TotalSales       int      `json:"total_sales"`
	AvgCAGR          *float64 `json:"avg_cagr"`
	IsTopPerformer   int      `json:"is_top_performer"`
}

// SuburbSummary is the all-time summary for a suburb.
type SuburbSummary struct {
	Suburb           string   `json:"suburb"`
	UniqueProperties int      `json:"unique_properties"`
	TotalSales       int      `json:"total_sales"`
	AvgCAGR          *float64 `json:"avg_cagr"`
	IsTopPerformer   int      `json:"is_top_performer"`
}

// MonthlyStat is one month's average sale price.
type MonthlyStat struct {
	Month    string  `json:"month"`
	AvgPrice float64 `json:"avg_price"`
	Count    int     `json:"count"`
}

// SuburbVolume is a suburb ranked by transaction volume.
type SuburbVolume struct {
	Suburb   string  `json:"suburb"`
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avg_price"`
}
