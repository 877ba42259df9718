package enums

import "fmt"

// ProductCategory represents the catalog departments shown in the store menu.
type ProductCategory string

const (
	ProductCategoryWomen       ProductCategory = "mujer"
	ProductCategoryMen         ProductCategory = "hombre"
	ProductCategoryKids        ProductCategory = "ninos"
	ProductCategoryFootwear    ProductCategory = "calzado"
	ProductCategoryUnderwear   ProductCategory = "ropa-interior"
	ProductCategoryAccessories ProductCategory = "accesorios"
	ProductCategoryOther       ProductCategory = "otros"
)

var validProductCategories = []ProductCategory{
	ProductCategoryWomen,
	ProductCategoryMen,
	ProductCategoryKids,
	ProductCategoryFootwear,
	ProductCategoryUnderwear,
	ProductCategoryAccessories,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
