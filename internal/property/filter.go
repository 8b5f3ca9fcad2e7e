package property

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	AllMunicipalities = "All Municipalities"
	AllPropertyTypes  = "All Property Types"

	// MaxResults caps a single search.
	MaxResults = 2000
)

var validate = validator.New()

// Filter is the search form. Zero values mean "no constraint"; price and
// acreage bounds only apply when positive.
type Filter struct {
	SalesDateFrom  string   `json:"salesDateFrom" validate:"omitempty,datetime=2006-01-02"`
	SalesDateTo    string   `json:"salesDateTo" validate:"omitempty,datetime=2006-01-02"`
	MinPrice       float64  `json:"minPrice" validate:"gte=0"`
	MaxPrice       float64  `json:"maxPrice" validate:"gte=0"`
	MinAcreage     float64  `json:"minAcreage" validate:"gte=0"`
	MaxAcreage     float64  `json:"maxAcreage" validate:"gte=0"`
	Municipalities []string `json:"municipalities"`
	PropertyTypes  []string `json:"propertyTypes"`
	Grantor        string   `json:"grantor" validate:"max=255"`
	Grantee        string   `json:"grantee" validate:"max=255"`
	SchoolDistrict string   `json:"schoolDistrict" validate:"max=255"`
	ParcelIDs      []string `json:"parids" validate:"max=2000"`
	Limit          int      `json:"limit" validate:"gte=0,lte=2000"`
}

// DefaultFilter is what the search form starts with.
func DefaultFilter() Filter {
	return Filter{
		SalesDateFrom:  "2020-01-01",
		SalesDateTo:    "2025-12-31",
		Municipalities: []string{AllMunicipalities},
		PropertyTypes:  []string{AllPropertyTypes},
	}
}

// Validate checks field formats. An empty result is never a validation error.
func (f Filter) Validate() error {
	return validate.Struct(f)
}

// municipalities returns the selected set, or nil when the selection means
// "all".
func (f Filter) municipalities() []string {
	return selection(f.Municipalities, AllMunicipalities)
}

func (f Filter) propertyTypes() []string {
	return selection(f.PropertyTypes, AllPropertyTypes)
}

func selection(values []string, all string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == all {
			return nil
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (f Filter) limit(max int) int {
	if max <= 0 || max > MaxResults {
		max = MaxResults
	}
	if f.Limit <= 0 || f.Limit > max {
		return max
	}
	return f.Limit
}

// Scope translates the filter into query predicates on the properties table.
func (f Filter) Scope(tx *gorm.DB) *gorm.DB {
	if f.SalesDateFrom != "" {
		tx = tx.Where("saledate >= ?", f.SalesDateFrom)
	}
	if f.SalesDateTo != "" {
		tx = tx.Where("saledate <= ?", f.SalesDateTo)
	}
	if f.MinPrice > 0 {
		tx = tx.Where("saleprice >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		tx = tx.Where("saleprice <= ?", f.MaxPrice)
	}
	if f.MinAcreage > 0 {
		tx = tx.Where("lotarea >= ?", f.MinAcreage*SqFtPerAcre)
	}
	if f.MaxAcreage > 0 {
		tx = tx.Where("lotarea <= ?", f.MaxAcreage*SqFtPerAcre)
	}
	if m := f.municipalities(); len(m) > 0 {
		tx = tx.Where("munidesc IN ?", m)
	}
	if t := f.propertyTypes(); len(t) > 0 {
		tx = tx.Where("usedesc IN ?", t)
	}
	if f.Grantor != "" {
		tx = tx.Where(`LOWER(grantor) LIKE ? ESCAPE '\'`, likePattern(f.Grantor))
	}
	if f.Grantee != "" {
		tx = tx.Where(`LOWER(grantee) LIKE ? ESCAPE '\'`, likePattern(f.Grantee))
	}
	if f.SchoolDistrict != "" {
		tx = tx.Where(`LOWER(schooldesc) LIKE ? ESCAPE '\'`, likePattern(f.SchoolDistrict))
	}
	if len(f.ParcelIDs) > 0 {
		tx = tx.Where("parid IN ?", f.ParcelIDs)
	}
	return tx
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// Match applies the same predicates as Scope to an in-memory record.
func (f Filter) Match(p Property) bool {
	if f.SalesDateFrom != "" && (p.SaleDate == nil || *p.SaleDate < f.SalesDateFrom) {
		return false
	}
	if f.SalesDateTo != "" && (p.SaleDate == nil || *p.SaleDate > f.SalesDateTo) {
		return false
	}
	if f.MinPrice > 0 && p.SalePrice < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.SalePrice > f.MaxPrice {
		return false
	}
	if f.MinAcreage > 0 && p.LotArea < f.MinAcreage*SqFtPerAcre {
		return false
	}
	if f.MaxAcreage > 0 && p.LotArea > f.MaxAcreage*SqFtPerAcre {
		return false
	}
	if m := f.municipalities(); len(m) > 0 && !contains(m, p.MuniDesc) {
		return false
	}
	if t := f.propertyTypes(); len(t) > 0 && !contains(t, p.UseDesc) {
		return false
	}
	if f.Grantor != "" && !containsFold(p.Grantor, f.Grantor) {
		return false
	}
	if f.Grantee != "" && !containsFold(p.Grantee, f.Grantee) {
		return false
	}
	if f.SchoolDistrict != "" && !containsFold(p.SchoolDesc, f.SchoolDistrict) {
		return false
	}
	if len(f.ParcelIDs) > 0 && !contains(f.ParcelIDs, &p.ParID) {
		return false
	}
	return true
}

func contains(set []string, v *string) bool {
	if v == nil {
		return false
	}
	for _, s := range set {
		if s == *v {
			return true
		}
	}
	return false
}

func containsFold(v *string, sub string) bool {
	if v == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*v), strings.ToLower(strings.TrimSpace(sub)))
}

// sortBySaleDate orders newest sales first, undated records last.
func sortBySaleDate(props []Property) {
	sort.SliceStable(props, func(i, j int) bool {
		a, b := props[i].SaleDate, props[j].SaleDate
		switch {
		case a == nil && b == nil:
			return props[i].ParID < props[j].ParID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return props[i].ParID < props[j].ParID
		}
	})
}

// optionList builds a selector list: the "all" entry followed by the sorted,
// trimmed, distinct values.
func optionList(all string, values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return append([]string{all}, out...)
}
