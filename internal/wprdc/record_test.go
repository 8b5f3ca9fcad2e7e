package wprdc

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/stretchr/testify/assert"
)

func TestMapRecord(t *testing.T) {
	p := MapRecord(Record{
		"PARID":           " 0001A00001000000 ",
		"PROPERTYADDRESS": "100 MAIN ST",
		"PROPERTYCITY":    "PITTSBURGH",
		"MUNIDESC":        "Mt. Lebanon",
		"USEDESC":         "SINGLE FAMILY",
		"SCHOOLDESC":      "",
		"SALEDATE":        "03-15-2021",
		"SALEPRICE":       json.Number("250000"),
		"LOTAREA":         "garbage",
		"YEARBLT":         json.Number("1925"),
		"GRANTOR":         "SMITH JOHN",
		"asofdate":        "2024-01-02",
	})

	assert.Equal(t, "0001A00001000000", p.ParID)
	assert.Equal(t, "100 MAIN ST", property.Str(p.PropertyAddress))
	assert.Equal(t, "Mt. Lebanon", property.Str(p.MuniDesc))
	assert.Nil(t, p.SchoolDesc)
	assert.Nil(t, p.PropertyZip)
	assert.Equal(t, "2021-03-15", property.Str(p.SaleDate))
	assert.Equal(t, 250000.0, p.SalePrice)
	assert.Equal(t, 0.0, p.LotArea)
	assert.Equal(t, 1925.0, p.YearBuilt)
	assert.Equal(t, "SMITH JOHN", property.Str(p.Grantor))
	assert.Equal(t, "2024-01-02", property.Str(p.AsOfDate))
}

func TestMapRecord_NonNumericNeverNaN(t *testing.T) {
	p := MapRecord(Record{"PARID": "X", "SALEPRICE": "NaN", "FAIRMARKETTOTAL": math.Inf(1)})
	assert.Equal(t, 0.0, p.SalePrice)
	assert.Equal(t, 0.0, p.FairMarketTotal)
}

func TestMapRecord_MissingParcelID(t *testing.T) {
	p := MapRecord(Record{"PROPERTYCITY": "PITTSBURGH"})
	assert.Empty(t, p.ParID)
}
