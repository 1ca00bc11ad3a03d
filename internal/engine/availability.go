package engine

import "cartsync/internal/domain"

// availability recomputes whether a requested quantity of a variant can be
// fulfilled, from the latest product snapshot only. A nil snapshot means the
// product was deleted. With attributes selected, the matching variant's
// stock decides; without, the base product stock does.
func availability(qty int, attrs []domain.Attribute, p *domain.ProductSnapshot) (bool, domain.UnavailableReason) {
	if p == nil {
		return false, domain.UnavailableProductDeleted
	}
	if len(attrs) > 0 {
		v := p.FindVariant(attrs)
		if v == nil {
			return false, domain.UnavailableVariantGone
		}
		if v.Stock < qty {
			return false, domain.UnavailableOutOfStock
		}
		return true, ""
	}
	if p.Stock < qty {
		return false, domain.UnavailableOutOfStock
	}
	return true, ""
}
