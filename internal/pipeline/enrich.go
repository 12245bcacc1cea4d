package pipeline

import (
	"prozon/internal"
	"prozon/internal/util"
)

// Catalog is the lookup side of the reference table.
type Catalog interface {
	Lookup(code string) []internal.CatalogEntry
}

// Enrich joins parsed line items against the catalog. A code with several
// catalog rows fans out into one enriched item per row, kept contiguous and
// in catalog order; original item order is preserved.
func Enrich(order internal.Order, cat Catalog) internal.Order {
	expanded := make([]internal.LineItem, 0, len(order.Items))

	for _, item := range order.Items {
		matches := cat.Lookup(item.ProzonRef)
		if len(matches) == 0 {
			missing := item
			missing.Status = internal.StatusNotFound
			expanded = append(expanded, missing)
			continue
		}

		for _, match := range matches {
			enriched := item
			enriched.EHSRef = util.StringPtr(match.EHSRef)
			enriched.EHSName = util.StringPtr(match.ProductName)
			enriched.UnitWeight = match.Weight
			enriched.UnitPrice = match.Price
			if match.Weight != nil {
				enriched.TotalWeight = util.FloatPtr(*match.Weight * float64(item.Quantity))
				enriched.Status = internal.StatusOK
			} else {
				enriched.Status = internal.StatusMissingWeight
			}
			expanded = append(expanded, enriched)
		}
	}

	order.Items = expanded
	return order
}
