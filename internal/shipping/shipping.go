// Package shipping estimates delivery cost for a single 5kg parcel by
// destination country. Figures are rough and exclude import duties.
package shipping

import (
	"math"
	"strings"
)

// Other is the row used for any country without its own rate.
const Other = "Other"

type Rate struct {
	VATPercent float64
	Shipping   float64 // EUR
}

var rates = map[string]Rate{
	"Germany":              {VATPercent: 19, Shipping: 32},
	"France":               {VATPercent: 20, Shipping: 34},
	"Italy":                {VATPercent: 22, Shipping: 30},
	"Spain":                {VATPercent: 21, Shipping: 35},
	"Netherlands":          {VATPercent: 21, Shipping: 33},
	"Belgium":              {VATPercent: 21, Shipping: 33},
	"Poland":               {VATPercent: 23, Shipping: 38},
	"Sweden":               {VATPercent: 25, Shipping: 40},
	"Austria":              {VATPercent: 20, Shipping: 31},
	"Denmark":              {VATPercent: 25, Shipping: 42},
	"United Kingdom":       {VATPercent: 20, Shipping: 36},
	"Ireland":              {VATPercent: 23, Shipping: 35},
	"Scotland":             {VATPercent: 20, Shipping: 36},
	"Wales":                {VATPercent: 20, Shipping: 36},
	"United States":        {VATPercent: 0, Shipping: 45},
	"Canada":               {VATPercent: 5, Shipping: 48},
	"Australia":            {VATPercent: 10, Shipping: 50},
	"Japan":                {VATPercent: 10, Shipping: 42},
	"United Arab Emirates": {VATPercent: 5, Shipping: 40},
	"Saudi Arabia":         {VATPercent: 15, Shipping: 40},
	"Qatar":                {VATPercent: 5, Shipping: 40},
	"Kuwait":               {VATPercent: 5, Shipping: 40},
	"Bahrain":              {VATPercent: 5, Shipping: 40},
	"Oman":                 {VATPercent: 5, Shipping: 40},
	Other:                  {VATPercent: 0, Shipping: 60},
}

// Countries lists the destinations shown in the calculator's picker, with
// Other last.
var Countries = []string{
	"Germany", "France", "Italy", "Spain", "Netherlands", "Belgium", "Poland",
	"Sweden", "Austria", "Denmark", "United Kingdom", "Ireland", "Scotland",
	"Wales", "United States", "Canada", "Australia", "Japan",
	"United Arab Emirates", "Saudi Arabia", "Qatar", "Kuwait", "Bahrain", "Oman",
	Other,
}

type Estimate struct {
	Country    string // Row actually used, Other when the country is unknown
	VATPercent float64
	Shipping   float64
	VAT        float64 // Charged on shipping only
	Delivery   float64 // Shipping + VAT
	Subtotal   float64
	Total      float64 // Subtotal + Delivery
}

// Lookup finds the rate row for country, matching case-insensitively.
func Lookup(country string) (string, Rate, bool) {
	name := strings.TrimSpace(country)
	if rate, ok := rates[name]; ok {
		return name, rate, true
	}
	for known, rate := range rates {
		if strings.EqualFold(known, name) {
			return known, rate, true
		}
	}
	return Other, rates[Other], false
}

// Calculate prices delivery of an order with the given goods subtotal to
// country. Unknown countries fall back to the Other row.
func Calculate(country string, subtotal float64) Estimate {
	name, rate, _ := Lookup(country)

	vat := round2(rate.Shipping * rate.VATPercent / 100)
	delivery := round2(rate.Shipping + vat)

	return Estimate{
		Country:    name,
		VATPercent: rate.VATPercent,
		Shipping:   rate.Shipping,
		VAT:        vat,
		Delivery:   delivery,
		Subtotal:   subtotal,
		Total:      round2(subtotal + delivery),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
