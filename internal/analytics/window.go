package analytics

import (
	"sort"

	"nswproperty/internal/models"
)

type streetKey struct {
	StreetName string
	Suburb     string
	PostCode   int
}

type cagrAgg struct {
	sum   float64
	count int
}

// AggregateGrowthByYear rolls per-property growth up to street-year and
// suburb-year aggregates for every year in [startYear, endYear].
//
// A property is included in year Y iff its last sale year is >= Y: a
// property's lifetime CAGR is replicated into every year up to and including
// the year it last sold, so a street is judged by the most current growth
// trajectory of every property still live as of Y, retroactively for earlier
// years too. The eligible set for Y+1 is therefore always a subset of the
// set for Y. This is a verified business rule, not a filtering accident;
// do not tighten it to "sold in year Y".
//
// Years with no eligible property emit no rows. Output is sorted by grouping
// keys then year so repeated runs over the same input are byte-identical.
func AggregateGrowthByYear(growth []models.PropertyGrowth, startYear, endYear int) ([]models.StreetGrowth, []models.SuburbGrowth) {
	var streets []models.StreetGrowth
	var suburbs []models.SuburbGrowth

	for year := startYear; year <= endYear; year++ {
		streetAgg := make(map[streetKey]*cagrAgg)
		suburbAgg := make(map[string]*cagrAgg)

		for _, g := range growth {
			if g.LastSaleYear < year {
				continue
			}

			sk := streetKey{StreetName: g.StreetName, Suburb: g.Suburb, PostCode: g.PostCode}
			if streetAgg[sk] == nil {
				streetAgg[sk] = &cagrAgg{}
			}
			streetAgg[sk].sum += g.CAGR
			streetAgg[sk].count++

			if suburbAgg[g.Suburb] == nil {
				suburbAgg[g.Suburb] = &cagrAgg{}
			}
			suburbAgg[g.Suburb].sum += g.CAGR
			suburbAgg[g.Suburb].count++
		}

		if len(streetAgg) == 0 {
			continue
		}

		streetKeys := make([]streetKey, 0, len(streetAgg))
		for k := range streetAgg {
			streetKeys = append(streetKeys, k)
		}
		sort.Slice(streetKeys, func(i, j int) bool {
			a, b := streetKeys[i], streetKeys[j]
			if a.StreetName != b.StreetName {
				return a.StreetName < b.StreetName
			}
			if a.Suburb != b.Suburb {
				return a.Suburb < b.Suburb
			}
			return a.PostCode < b.PostCode
		})
		for _, k := range streetKeys {
			agg := streetAgg[k]
			streets = append(streets, models.StreetGrowth{
				StreetName:    k.StreetName,
				Suburb:        k.Suburb,
				PostCode:      k.PostCode,
				Year:          year,
				AvgCAGR:       mean(agg.sum, agg.count),
				PropertyCount: agg.count,
			})
		}

		suburbKeys := make([]string, 0, len(suburbAgg))
		for k := range suburbAgg {
			suburbKeys = append(suburbKeys, k)
		}
		sort.Strings(suburbKeys)
		for _, k := range suburbKeys {
			agg := suburbAgg[k]
			suburbs = append(suburbs, models.SuburbGrowth{
				Suburb:        k,
				Year:          year,
				AvgCAGR:       mean(agg.sum, agg.count),
				PropertyCount: agg.count,
			})
		}
	}

	return streets, suburbs
}
