package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cartsync/internal/domain"
	"cartsync/internal/gateway"
)

// submitCheckoutHandler forwards the checkout to the platform. Success and
// correction both come back as 200 with needsUpdate telling them apart,
// mirroring the platform contract. A pending unaccepted correction refuses
// the submission outright.
func submitCheckoutHandler(c *gin.Context) {
	var req gateway.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	sess := currentSession(c)
	result, err := sess.Checkout.Submit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrCorrectionPending) {
			c.JSON(http.StatusConflict, gin.H{
				"error":      "checkout correction pending",
				"correction": sess.Checkout.Pending(),
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func getCorrectionHandler(c *gin.Context) {
	sess := currentSession(c)
	pending := sess.Checkout.Pending()
	if pending == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no correction pending"})
		return
	}
	c.JSON(http.StatusOK, pending)
}

func acceptCorrectionHandler(c *gin.Context) {
	sess := currentSession(c)
	if err := sess.Checkout.Accept(c.Request.Context()); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no correction pending"})
		return
	}
	c.JSON(http.StatusOK, toCartView(sess.Engine.Cart(c.Request.Context())))
}
