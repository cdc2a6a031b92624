package analytics

import (
	"sort"

	"github.com/sirupsen/logrus"

	"nswproperty/internal/models"
)

// daysPerYear is a fixed average-year divisor. Holding periods are not
// calendar-exact and are not meant to be.
const daysPerYear = 365.25

// filterSales drops rows whose price or contract date failed to parse. Both
// the growth deriver and the all-time summaries work from this filtered set.
func filterSales(sales []models.Sale) []models.Sale {
	valid := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if s.PurchasePrice == nil || s.ContractDate == nil {
			continue
		}
		valid = append(valid, s)
	}
	return valid
}

// DerivePropertyGrowth produces one growth record per property with at least
// two priced, dated sales. Sales within a property are ordered by contract
// date with original row order breaking ties, so reruns over the same input
// produce identical output.
func DerivePropertyGrowth(sales []models.Sale, logger *logrus.Logger) []models.PropertyGrowth {
	valid := filterSales(sales)

	groups := make(map[string][]models.Sale)
	var order []string
	for _, s := range valid {
		if _, ok := groups[s.PropertyID]; !ok {
			order = append(order, s.PropertyID)
		}
		groups[s.PropertyID] = append(groups[s.PropertyID], s)
	}

	var growth []models.PropertyGrowth
	for _, pid := range order {
		group := groups[pid]
		if len(group) < 2 {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ContractDate.Before(*group[j].ContractDate)
		})

		first := group[0]
		last := group[len(group)-1]

		firstPrice := *first.PurchasePrice
		lastPrice := *last.PurchasePrice

		days := last.ContractDate.Sub(*first.ContractDate).Hours() / 24
		years := days / daysPerYear

		if firstPrice <= 0 || lastPrice <= 0 {
			logger.WithFields(logrus.Fields{
				"property_id": pid,
				"first_price": firstPrice,
				"last_price":  lastPrice,
			}).Warn("Degenerate sale prices, CAGR falls back to zero")
		}

		cagr, totalGrowth := ComputeGrowth(firstPrice, lastPrice, years)

		growth = append(growth, models.PropertyGrowth{
			PropertyID:     pid,
			CAGR:           cagr,
			TotalGrowth:    totalGrowth,
			YearsHeld:      years,
			FirstSalePrice: firstPrice,
			LastSalePrice:  lastPrice,
			LastSaleYear:   last.ContractDate.Year(),
			StreetName:     first.StreetName,
			Suburb:         first.Suburb,
			PostCode:       first.PostCode,
		})
	}

	return growth
}
