package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cartsync/internal/domain"
	"cartsync/internal/pricing"
)

type pricingQuoteRequest struct {
	UnitPriceCents  int64                `json:"unitPriceCents"`
	Quantity        int                  `json:"qty"`
	Sale            *domain.SaleInfo     `json:"sale,omitempty"`
	Tiers           []domain.PricingTier `json:"pricingTiers,omitempty"`
	ActiveAttribute *domain.Attribute    `json:"activeAttribute,omitempty"`
}

type pricingQuoteResponse struct {
	HasActiveSale        bool                 `json:"hasActiveSale"`
	DiscountedPriceCents int64                `json:"discountedPriceCents"`
	PercentOff           int                  `json:"percentOff,omitempty"`
	AmountOffCents       int64                `json:"amountOffCents,omitempty"`
	RuleIndex            int                  `json:"ruleIndex"`
	Tier                 *domain.TierSnapshot `json:"tier,omitempty"`
	NextTier             *nextTierView        `json:"nextTier,omitempty"`
}

type nextTierView struct {
	MinQty              int   `json:"minQty"`
	QtyDelta            int   `json:"qtyDelta"`
	PerUnitSavingsCents int64 `json:"perUnitSavingsCents"`
}

// pricingQuoteHandler labels product and cart UI: best sale price, matching
// bulk tier, and the "buy N more to save" prompt. Stateless, no session
// needed.
func pricingQuoteHandler(c *gin.Context) {
	var req pricingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.UnitPriceCents < 0 || req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price and quantity must not be negative"})
		return
	}

	res := pricing.Resolve(req.UnitPriceCents, req.Sale, req.ActiveAttribute)
	out := pricingQuoteResponse{
		HasActiveSale:        res.HasActiveSale,
		DiscountedPriceCents: res.DiscountedPriceCents,
		PercentOff:           res.PercentOff,
		AmountOffCents:       res.AmountOffCents,
		RuleIndex:            res.RuleIndex,
	}
	if tier, ok := pricing.MatchTier(req.Tiers, req.Quantity); ok {
		out.Tier = pricing.Snapshot(req.UnitPriceCents, tier)
	}
	if next, ok := pricing.NextTierSavings(req.UnitPriceCents, req.Tiers, req.Quantity); ok {
		out.NextTier = &nextTierView{
			MinQty:              next.Tier.MinQty,
			QtyDelta:            next.QtyDelta,
			PerUnitSavingsCents: next.PerUnitSavingsCents,
		}
	}
	c.JSON(http.StatusOK, out)
}
