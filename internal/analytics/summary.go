package analytics

import (
	"sort"

	"nswproperty/internal/models"
)

// topPerformerQuantile marks the top decile of streets/suburbs by all-time
// average CAGR.
const topPerformerQuantile = 0.9

type saleCounts struct {
	properties map[string]struct{}
	totalSales int
}

// BuildStreetSummaries produces one all-time row per street. Property and
// sale counts come from the raw sale set, so single-sale properties are
// counted; the average CAGR comes from the growth set and is nil for streets
// with no qualifying property. A street is a top performer when its non-nil
// average is at or above the 90th percentile of its peers.
func BuildStreetSummaries(sales []models.Sale, growth []models.PropertyGrowth) []models.StreetSummary {
	valid := filterSales(sales)

	counts := make(map[streetKey]*saleCounts)
	var order []streetKey
	for _, s := range valid {
		k := streetKey{StreetName: s.StreetName, Suburb: s.Suburb, PostCode: s.PostCode}
		if counts[k] == nil {
			counts[k] = &saleCounts{properties: make(map[string]struct{})}
			order = append(order, k)
		}
		counts[k].properties[s.PropertyID] = struct{}{}
		counts[k].totalSales++
	}

	cagrs := make(map[streetKey]*cagrAgg)
	for _, g := range growth {
		k := streetKey{StreetName: g.StreetName, Suburb: g.Suburb, PostCode: g.PostCode}
		if cagrs[k] == nil {
			cagrs[k] = &cagrAgg{}
		}
		cagrs[k].sum += g.CAGR
		cagrs[k].count++
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.StreetName != b.StreetName {
			return a.StreetName < b.StreetName
		}
		if a.Suburb != b.Suburb {
			return a.Suburb < b.Suburb
		}
		return a.PostCode < b.PostCode
	})

	summaries := make([]models.StreetSummary, 0, len(order))
	var averages []float64
	for _, k := range order {
		c := counts[k]
		summary := models.StreetSummary{
			StreetName:       k.StreetName,
			Suburb:           k.Suburb,
			PostCode:         k.PostCode,
			UniqueProperties: len(c.properties),
			TotalSales:       c.totalSales,
		}
		if agg, ok := cagrs[k]; ok {
			avg := mean(agg.sum, agg.count)
			summary.AvgCAGR = &avg
			averages = append(averages, avg)
		}
		summaries = append(summaries, summary)
	}

	flagTopPerformers(summaries, averages)
	return summaries
}

// BuildSuburbSummaries is the suburb-level counterpart of
// BuildStreetSummaries, with its own independent percentile threshold.
func BuildSuburbSummaries(sales []models.Sale, growth []models.PropertyGrowth) []models.SuburbSummary {
	valid := filterSales(sales)

	counts := make(map[string]*saleCounts)
	var order []string
	for _, s := range valid {
		if counts[s.Suburb] == nil {
			counts[s.Suburb] = &saleCounts{properties: make(map[string]struct{})}
			order = append(order, s.Suburb)
		}
		counts[s.Suburb].properties[s.PropertyID] = struct{}{}
		counts[s.Suburb].totalSales++
	}

	cagrs := make(map[string]*cagrAgg)
	for _, g := range growth {
		if cagrs[g.Suburb] == nil {
			cagrs[g.Suburb] = &cagrAgg{}
		}
		cagrs[g.Suburb].sum += g.CAGR
		cagrs[g.Suburb].count++
	}

	sort.Strings(order)

	summaries := make([]models.SuburbSummary, 0, len(order))
	var averages []float64
	for _, suburb := range order {
		c := counts[suburb]
		summary := models.SuburbSummary{
			Suburb:           suburb,
			UniqueProperties: len(c.properties),
			TotalSales:       c.totalSales,
		}
		if agg, ok := cagrs[suburb]; ok {
			avg := mean(agg.sum, agg.count)
			summary.AvgCAGR = &avg
			averages = append(averages, avg)
		}
		summaries = append(summaries, summary)
	}

	for i := range summaries {
		summaries[i].IsTopPerformer = topPerformerFlag(summaries[i].AvgCAGR, averages)
	}
	return summaries
}

func flagTopPerformers(summaries []models.StreetSummary, averages []float64) {
	for i := range summaries {
		summaries[i].IsTopPerformer = topPerformerFlag(summaries[i].AvgCAGR, averages)
	}
}

// topPerformerFlag compares a group's average against the 90th percentile of
// all non-nil averages at the same granularity. With no non-nil averages the
// threshold defaults to 0, and a nil average never qualifies.
func topPerformerFlag(avg *float64, averages []float64) int {
	if avg == nil {
		return 0
	}
	threshold := 0.0
	if len(averages) > 0 {
		threshold = Percentile(averages, topPerformerQuantile)
	}
	if *avg >= threshold {
		return 1
	}
	return 0
}
