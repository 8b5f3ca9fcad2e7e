package property

import "time"

// SqFtPerAcre converts lot area (square feet) to acres.
const SqFtPerAcre = 43560

// Property is one county assessor record. Column names follow the source
// dataset so the table can be queried with the dataset's vocabulary.
//
// Text fields are nil when the source had no value. Numeric fields hold 0
// when the source value was missing or not a number.
type Property struct {
	ParID            string  `gorm:"column:parid;primaryKey" json:"parid"`
	PropertyFraction *string `gorm:"column:propertyfraction" json:"propertyfraction"`
	PropertyAddress  *string `gorm:"column:propertyaddress" json:"propertyaddress"`
	PropertyCity     *string `gorm:"column:propertycity" json:"propertycity"`
	PropertyState    *string `gorm:"column:propertystate" json:"propertystate"`
	PropertyUnit     *string `gorm:"column:propertyunit" json:"propertyunit"`
	PropertyZip      *string `gorm:"column:propertyzip" json:"propertyzip"`
	MuniCode         *string `gorm:"column:municode" json:"municode"`
	MuniDesc         *string `gorm:"column:munidesc;index" json:"munidesc"`
	SchoolCode       *string `gorm:"column:schoolcode" json:"schoolcode"`
	SchoolDesc       *string `gorm:"column:schooldesc" json:"schooldesc"`
	Legal1           *string `gorm:"column:legal1" json:"legal1"`
	Legal2           *string `gorm:"column:legal2" json:"legal2"`
	Legal3           *string `gorm:"column:legal3" json:"legal3"`
	NeighCode        *string `gorm:"column:neighcode" json:"neighcode"`
	NeighDesc        *string `gorm:"column:neighdesc" json:"neighdesc"`
	TaxCode          *string `gorm:"column:taxcode" json:"taxcode"`
	TaxDesc          *string `gorm:"column:taxdesc" json:"taxdesc"`
	TaxSubcode       *string `gorm:"column:taxsubcode" json:"taxsubcode"`
	TaxSubcodeDesc   *string `gorm:"column:taxsubcode_desc" json:"taxsubcode_desc"`
	OwnerCode        *string `gorm:"column:ownercode" json:"ownercode"`
	OwnerDesc        *string `gorm:"column:ownerdesc" json:"ownerdesc"`
	Class            *string `gorm:"column:class" json:"class"`
	ClassDesc        *string `gorm:"column:classdesc" json:"classdesc"`
	UseCode          *string `gorm:"column:usecode" json:"usecode"`
	UseDesc          *string `gorm:"column:usedesc;index" json:"usedesc"`
	LotArea          float64 `gorm:"column:lotarea" json:"lotarea"`
	HomesteadFlag    *string `gorm:"column:homesteadflag" json:"homesteadflag"`
	CleanGreen       *string `gorm:"column:cleangreen" json:"cleangreen"`
	FarmsteadFlag    *string `gorm:"column:farmsteadflag" json:"farmsteadflag"`
	AbatementFlag    *string `gorm:"column:abatementflag" json:"abatementflag"`
	RecordDate       *string `gorm:"column:recorddate" json:"recorddate"`
	SaleDate         *string `gorm:"column:saledate;index" json:"saledate"`
	SalePrice        float64 `gorm:"column:saleprice" json:"saleprice"`
	SaleCode         *string `gorm:"column:salecode" json:"salecode"`
	SaleDesc         *string `gorm:"column:saledesc" json:"saledesc"`
	DeedBook         *string `gorm:"column:deedbook" json:"deedbook"`
	DeedPage         *string `gorm:"column:deedpage" json:"deedpage"`
	PrevSaleDate     *string `gorm:"column:prevsaledate" json:"prevsaledate"`
	PrevSalePrice    float64 `gorm:"column:prevsaleprice" json:"prevsaleprice"`
	PrevSaleDate2    *string `gorm:"column:prevsaledate2" json:"prevsaledate2"`
	PrevSalePrice2   float64 `gorm:"column:prevsaleprice2" json:"prevsaleprice2"`

	ChangeNoticeAddress1 *string `gorm:"column:changenoticeaddress1" json:"changenoticeaddress1"`
	ChangeNoticeAddress2 *string `gorm:"column:changenoticeaddress2" json:"changenoticeaddress2"`
	ChangeNoticeAddress3 *string `gorm:"column:changenoticeaddress3" json:"changenoticeaddress3"`
	ChangeNoticeAddress4 *string `gorm:"column:changenoticeaddress4" json:"changenoticeaddress4"`

	CountyBuilding     float64 `gorm:"column:countybuilding" json:"countybuilding"`
	CountyLand         float64 `gorm:"column:countyland" json:"countyland"`
	CountyTotal        float64 `gorm:"column:countytotal" json:"countytotal"`
	CountyExemptBldg   float64 `gorm:"column:countyexemptbldg" json:"countyexemptbldg"`
	LocalBuilding      float64 `gorm:"column:localbuilding" json:"localbuilding"`
	LocalLand          float64 `gorm:"column:localland" json:"localland"`
	LocalTotal         float64 `gorm:"column:localtotal" json:"localtotal"`
	FairMarketBuilding float64 `gorm:"column:fairmarketbuilding" json:"fairmarketbuilding"`
	FairMarketLand     float64 `gorm:"column:fairmarketland" json:"fairmarketland"`
	FairMarketTotal    float64 `gorm:"column:fairmarkettotal" json:"fairmarkettotal"`

	Style              *string `gorm:"column:style" json:"style"`
	StyleDesc          *string `gorm:"column:styledesc" json:"styledesc"`
	Stories            float64 `gorm:"column:stories" json:"stories"`
	YearBuilt          float64 `gorm:"column:yearblt" json:"yearblt"`
	ExteriorFinish     *string `gorm:"column:exteriorfinish" json:"exteriorfinish"`
	ExtFinishDesc      *string `gorm:"column:extfinish_desc" json:"extfinish_desc"`
	Roof               *string `gorm:"column:roof" json:"roof"`
	RoofDesc           *string `gorm:"column:roofdesc" json:"roofdesc"`
	Basement           *string `gorm:"column:basement" json:"basement"`
	BasementDesc       *string `gorm:"column:basementdesc" json:"basementdesc"`
	Grade              *string `gorm:"column:grade" json:"grade"`
	GradeDesc          *string `gorm:"column:gradedesc" json:"gradedesc"`
	Condition          *string `gorm:"column:condition" json:"condition"`
	ConditionDesc      *string `gorm:"column:conditiondesc" json:"conditiondesc"`
	CDU                *string `gorm:"column:cdu" json:"cdu"`
	CDUDesc            *string `gorm:"column:cdudesc" json:"cdudesc"`
	TotalRooms         float64 `gorm:"column:totalrooms" json:"totalrooms"`
	Bedrooms           float64 `gorm:"column:bedrooms" json:"bedrooms"`
	FullBaths          float64 `gorm:"column:fullbaths" json:"fullbaths"`
	HalfBaths          float64 `gorm:"column:halfbaths" json:"halfbaths"`
	HeatingCooling     *string `gorm:"column:heatingcooling" json:"heatingcooling"`
	HeatingCoolingDesc *string `gorm:"column:heatingcoolingdesc" json:"heatingcoolingdesc"`
	Fireplaces         float64 `gorm:"column:fireplaces" json:"fireplaces"`
	BsmGarage          float64 `gorm:"column:bsmgarage" json:"bsmgarage"`
	FinishedLivingArea float64 `gorm:"column:finishedlivingarea" json:"finishedlivingarea"`
	CardNumber         float64 `gorm:"column:cardnumber" json:"cardnumber"`
	AltID              *string `gorm:"column:alt_id" json:"alt_id"`
	TaxYear            float64 `gorm:"column:taxyear" json:"taxyear"`
	AsOfDate           *string `gorm:"column:asofdate" json:"asofdate"`

	// Deed parties. Not every dataset release carries them.
	Grantor *string `gorm:"column:grantor" json:"grantor"`
	Grantee *string `gorm:"column:grantee" json:"grantee"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

// Acres returns the lot area in acres.
func (p Property) Acres() float64 {
	return p.LotArea / SqFtPerAcre
}

// Str dereferences an optional text field.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
