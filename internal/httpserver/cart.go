package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cartsync/internal/domain"
	"cartsync/internal/pricing"
	"cartsync/internal/store"
)

type cartView struct {
	Items         []domain.LineItem `json:"items"`
	LastUpdated   time.Time         `json:"lastUpdated"`
	TotalCents    int64             `json:"totalCents"`
	TotalQuantity int               `json:"totalQuantity"`
}

func toCartView(cart domain.Cart) cartView {
	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return cartView{
		Items:         items,
		LastUpdated:   cart.LastUpdated,
		TotalCents:    cart.TotalCents(),
		TotalQuantity: cart.TotalQuantity(),
	}
}

func getCartHandler(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, toCartView(sess.Engine.Cart(c.Request.Context())))
}

type addItemRequest struct {
	ProductID       string               `json:"productId"`
	Quantity        int                  `json:"qty"`
	Attributes      []domain.Attribute   `json:"attributes,omitempty"`
	UnitPriceCents  int64                `json:"unitPriceCents"`
	Sale            *domain.SaleInfo     `json:"sale,omitempty"`
	Tiers           []domain.PricingTier `json:"pricingTiers,omitempty"`
	ActiveAttribute *domain.Attribute    `json:"activeAttribute,omitempty"`
}

func addItemHandler(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}
	if req.UnitPriceCents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unitPriceCents must not be negative"})
		return
	}

	sess := currentSession(c)
	item := sess.Engine.Add(c.Request.Context(), req.ProductID, req.Quantity, req.Attributes, snapshotFromRequest(req))
	c.JSON(http.StatusCreated, item)
}

// snapshotFromRequest resolves the displayed price for the add: the best
// sale rule first, then the bulk tier for the quantity when it beats the
// sale price. The result is a display snapshot only; server reconciliation
// overwrites it for authenticated sessions.
func snapshotFromRequest(req addItemRequest) store.PriceSnapshot {
	res := pricing.Resolve(req.UnitPriceCents, req.Sale, req.ActiveAttribute)
	snap := store.PriceSnapshot{
		UnitPriceCents:      res.DiscountedPriceCents,
		OnSale:              res.HasActiveSale,
		SaleRuleIndex:       res.RuleIndex,
		DiscountPercent:     res.PercentOff,
		DiscountAmountCents: res.AmountOffCents,
	}
	if tier, ok := pricing.MatchTier(req.Tiers, req.Quantity); ok {
		ts := pricing.Snapshot(req.UnitPriceCents, tier)
		snap.Tier = ts
		if ts.AppliedPriceCents < snap.UnitPriceCents {
			snap.UnitPriceCents = ts.AppliedPriceCents
		}
	}
	return snap
}

type setQuantityRequest struct {
	Quantity int `json:"qty"`
}

func setQuantityHandler(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}

	sess := currentSession(c)
	item := sess.Engine.SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity)
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func removeItemHandler(c *gin.Context) {
	sess := currentSession(c)
	if !sess.Engine.Remove(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func clearCartHandler(c *gin.Context) {
	sess := currentSession(c)
	sess.Engine.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func loginHandler(c *gin.Context) {
	sess := currentSession(c)
	sess.Engine.Login(c.Request.Context())
	c.JSON(http.StatusOK, toCartView(sess.Engine.Cart(c.Request.Context())))
}

func logoutHandler(c *gin.Context) {
	sess := currentSession(c)
	sess.Engine.Logout()
	c.Status(http.StatusNoContent)
}
