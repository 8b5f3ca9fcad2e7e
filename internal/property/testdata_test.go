package property

import "fmt"

func ptr(s string) *string { return &s }

// sample builds a record with the fields searches care about.
func sample(parID, muni, use, city, saleDate string, price, lotArea float64) Property {
	p := Property{
		ParID:     parID,
		SalePrice: price,
		LotArea:   lotArea,
	}
	if muni != "" {
		p.MuniDesc = ptr(muni)
	}
	if use != "" {
		p.UseDesc = ptr(use)
	}
	if city != "" {
		p.PropertyCity = ptr(city)
	}
	if saleDate != "" {
		p.SaleDate = ptr(saleDate)
	}
	p.PropertyAddress = ptr(fmt.Sprintf("%s MAIN ST", parID))
	p.SchoolDesc = ptr("Pittsburgh")
	return p
}

func fixtures() []Property {
	a := sample("0001A00001000000", "Mt. Lebanon", "SINGLE FAMILY", "PITTSBURGH", "2021-03-15", 100000, 43560)
	a.Grantor = ptr("Smith John")
	a.Grantee = ptr("Doe Jane")
	b := sample("0001A00002000000", "Sewickley", "SINGLE FAMILY", "SEWICKLEY", "2022-07-01", 200000, 21780)
	c := sample("0001A00003000000", "Mt. Lebanon", "CONDOMINIUM", "PITTSBURGH", "2023-01-20", 300000, 87120)
	d := sample("0001A00004000000", "Bethel Park", "VACANT LAND", "BETHEL PARK", "", 0, 10000)
	return []Property{a, b, c, d}
}

func parIDs(props []Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ParID
	}
	return out
}
