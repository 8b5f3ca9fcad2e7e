package wprdc

import (
	"strings"

	"github.com/alleghenyre/propsearch/internal/property"
)

// Record is one raw datastore row keyed by upper-case column name.
type Record map[string]any

func (r Record) get(key string) any {
	if v, ok := r[key]; ok {
		return v
	}
	return r[strings.ToLower(key)]
}

func (r Record) text(key string) *string   { return property.Text(r.get(key)) }
func (r Record) number(key string) float64 { return property.Number(r.get(key)) }
func (r Record) date(key string) *string   { return property.Date(r.get(key)) }

// MapRecord converts a source row into a property. Records with no parcel ID
// map to a property with an empty ParID, which stores skip.
func MapRecord(r Record) property.Property {
	return property.Property{
		ParID:            property.Str(r.text("PARID")),
		PropertyFraction: r.text("PROPERTYFRACTION"),
		PropertyAddress:  r.text("PROPERTYADDRESS"),
		PropertyCity:     r.text("PROPERTYCITY"),
		PropertyState:    r.text("PROPERTYSTATE"),
		PropertyUnit:     r.text("PROPERTYUNIT"),
		PropertyZip:      r.text("PROPERTYZIP"),
		MuniCode:         r.text("MUNICODE"),
		MuniDesc:         r.text("MUNIDESC"),
		SchoolCode:       r.text("SCHOOLCODE"),
		SchoolDesc:       r.text("SCHOOLDESC"),
		Legal1:           r.text("LEGAL1"),
		Legal2:           r.text("LEGAL2"),
		Legal3:           r.text("LEGAL3"),
		NeighCode:        r.text("NEIGHCODE"),
		NeighDesc:        r.text("NEIGHDESC"),
		TaxCode:          r.text("TAXCODE"),
		TaxDesc:          r.text("TAXDESC"),
		TaxSubcode:       r.text("TAXSUBCODE"),
		TaxSubcodeDesc:   r.text("TAXSUBCODE_DESC"),
		OwnerCode:        r.text("OWNERCODE"),
		OwnerDesc:        r.text("OWNERDESC"),
		Class:            r.text("CLASS"),
		ClassDesc:        r.text("CLASSDESC"),
		UseCode:          r.text("USECODE"),
		UseDesc:          r.text("USEDESC"),
		LotArea:          r.number("LOTAREA"),
		HomesteadFlag:    r.text("HOMESTEADFLAG"),
		CleanGreen:       r.text("CLEANGREEN"),
		FarmsteadFlag:    r.text("FARMSTEADFLAG"),
		AbatementFlag:    r.text("ABATEMENTFLAG"),
		RecordDate:       r.date("RECORDDATE"),
		SaleDate:         r.date("SALEDATE"),
		SalePrice:        r.number("SALEPRICE"),
		SaleCode:         r.text("SALECODE"),
		SaleDesc:         r.text("SALEDESC"),
		DeedBook:         r.text("DEEDBOOK"),
		DeedPage:         r.text("DEEDPAGE"),
		PrevSaleDate:     r.date("PREVSALEDATE"),
		PrevSalePrice:    r.number("PREVSALEPRICE"),
		PrevSaleDate2:    r.date("PREVSALEDATE2"),
		PrevSalePrice2:   r.number("PREVSALEPRICE2"),

		ChangeNoticeAddress1: r.text("CHANGENOTICEADDRESS1"),
		ChangeNoticeAddress2: r.text("CHANGENOTICEADDRESS2"),
		ChangeNoticeAddress3: r.text("CHANGENOTICEADDRESS3"),
		ChangeNoticeAddress4: r.text("CHANGENOTICEADDRESS4"),

		CountyBuilding:     r.number("COUNTYBUILDING"),
		CountyLand:         r.number("COUNTYLAND"),
		CountyTotal:        r.number("COUNTYTOTAL"),
		CountyExemptBldg:   r.number("COUNTYEXEMPTBLDG"),
		LocalBuilding:      r.number("LOCALBUILDING"),
		LocalLand:          r.number("LOCALLAND"),
		LocalTotal:         r.number("LOCALTOTAL"),
		FairMarketBuilding: r.number("FAIRMARKETBUILDING"),
		FairMarketLand:     r.number("FAIRMARKETLAND"),
		FairMarketTotal:    r.number("FAIRMARKETTOTAL"),

		Style:              r.text("STYLE"),
		StyleDesc:          r.text("STYLEDESC"),
		Stories:            r.number("STORIES"),
		YearBuilt:          r.number("YEARBLT"),
		ExteriorFinish:     r.text("EXTERIORFINISH"),
		ExtFinishDesc:      r.text("EXTFINISH_DESC"),
		Roof:               r.text("ROOF"),
		RoofDesc:           r.text("ROOFDESC"),
		Basement:           r.text("BASEMENT"),
		BasementDesc:       r.text("BASEMENTDESC"),
		Grade:              r.text("GRADE"),
		GradeDesc:          r.text("GRADEDESC"),
		Condition:          r.text("CONDITION"),
		ConditionDesc:      r.text("CONDITIONDESC"),
		CDU:                r.text("CDU"),
		CDUDesc:            r.text("CDUDESC"),
		TotalRooms:         r.number("TOTALROOMS"),
		Bedrooms:           r.number("BEDROOMS"),
		FullBaths:          r.number("FULLBATHS"),
		HalfBaths:          r.number("HALFBATHS"),
		HeatingCooling:     r.text("HEATINGCOOLING"),
		HeatingCoolingDesc: r.text("HEATINGCOOLINGDESC"),
		Fireplaces:         r.number("FIREPLACES"),
		BsmGarage:          r.number("BSMGARAGE"),
		FinishedLivingArea: r.number("FINISHEDLIVINGAREA"),
		CardNumber:         r.number("CARDNUMBER"),
		AltID:              r.text("ALT_ID"),
		TaxYear:            r.number("TAXYEAR"),
		AsOfDate:           r.date("ASOFDATE"),

		Grantor: r.text("GRANTOR"),
		Grantee: r.text("GRANTEE"),
	}
}

// MapRecords converts a page of source rows.
func MapRecords(records []Record) []property.Property {
	out := make([]property.Property, len(records))
	for i, r := range records {
		out[i] = MapRecord(r)
	}
	return out
}
