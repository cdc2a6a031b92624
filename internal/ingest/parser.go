package ingest

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nswproperty/internal/models"
)

// Sale records in the Valuer General DAT files carry a "B" record type
// marker and at least 25 semicolon separated fields.
const (
	saleRecordPrefix = "B;"
	minRecordFields  = 25
	datDateLayout    = "20060102"
)

// A cases.Caser is stateful, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// ParseRecord parses one DAT line into a Sale. It returns nil for lines that
// are not sale records, are truncated, or carry a contract date in the
// future.
func ParseRecord(line string, now time.Time) *models.Sale {
	if !strings.HasPrefix(line, saleRecordPrefix) {
		return nil
	}
	parts := strings.Split(line, ";")
	if len(parts) < minRecordFields {
		return nil
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	contractDate := parseDate(parts[13])
	if contractDate != nil && contractDate.After(now) {
		return nil
	}

	return &models.Sale{
		DistrictCode:     parts[1],
		PropertyID:       parts[2],
		SaleCounter:      parts[3],
		DownloadDatetime: parts[4],
		PropertyName:     titleCase(parts[5]),
		UnitNumber:       parts[6],
		HouseNumber:      parts[7],
		StreetName:       titleCase(parts[8]),
		Suburb:           titleCase(parts[9]),
		PostCode:         parseInt(parts[10]),
		Area:             parseFloat(parts[11]),
		AreaType:         parts[12],
		ContractDate:     contractDate,
		SettlementDate:   parseDate(parts[14]),
		PurchasePrice:    parseFloat(parts[15]),
		Zoning:           parts[16],
		NatureOfProperty: parts[17],
		PrimaryPurpose:   titleCase(parts[18]),
		StrataLotNumber:  parts[19],
		DealingNumber:    parts[23],
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(datDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if r == '-' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
