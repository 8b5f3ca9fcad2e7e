package property

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// citiesShown is how many distinct cities a summary names.
const citiesShown = 3

// Summary describes a result list.
type Summary struct {
	Total        int      `json:"total"`
	AveragePrice float64  `json:"averagePrice"`
	MinPrice     float64  `json:"minPrice"`
	MaxPrice     float64  `json:"maxPrice"`
	PriceRange   string   `json:"priceRange"`
	Cities       []string `json:"cities"`
	MoreCities   int      `json:"moreCities"`
}

// Summarize computes result statistics. The average counts every record;
// the minimum only counts positive prices, so unpriced transfers do not
// drag the range to zero.
func Summarize(props []Property) Summary {
	s := Summary{Total: len(props), Cities: []string{}}
	if len(props) == 0 {
		return s
	}

	sum := decimal.Zero
	minPrice, maxPrice := decimal.Zero, decimal.Zero
	seen := map[string]struct{}{}
	var cities []string

	for i, p := range props {
		price := decimal.NewFromFloat(p.SalePrice)
		sum = sum.Add(price)
		if i == 0 || price.GreaterThan(maxPrice) {
			maxPrice = price
		}
		if price.IsPositive() && (minPrice.IsZero() || price.LessThan(minPrice)) {
			minPrice = price
		}
		if c := Str(p.PropertyCity); c != "" {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				cities = append(cities, c)
			}
		}
	}

	s.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(props)))).Round(2).InexactFloat64()
	s.MinPrice = minPrice.InexactFloat64()
	s.MaxPrice = maxPrice.InexactFloat64()
	s.PriceRange = FormatPrice(s.MinPrice) + " - " + FormatPrice(s.MaxPrice)

	if len(cities) > citiesShown {
		s.MoreCities = len(cities) - citiesShown
		cities = cities[:citiesShown]
	}
	s.Cities = cities
	return s
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders a dollar amount with thousands separators, e.g.
// "$1,250,000". Cents are shown only when present.
func FormatPrice(v float64) string {
	if v == math.Trunc(v) {
		return printer.Sprintf("$%d", int64(v))
	}
	return printer.Sprintf("$%.2f", v)
}
