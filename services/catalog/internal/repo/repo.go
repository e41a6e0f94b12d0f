package repo

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID      *uint
	Search          string
	IDs             []uint
	IncludeDisabled bool
	Offset          int
	Limit           int
}
