package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"cartsync/internal/domain"
)

// Client talks to the remote platform cart API, the price and stock
// authority for authenticated visitors. Calls share a fixed timeout and a
// circuit breaker; an open breaker or a timeout is reported as a plain
// error, which callers absorb like any other network fault. No retries.
type Client struct {
	baseURL   string
	authToken string
	httpc     *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	logger    *log.Logger
}

func New(baseURL, authToken string, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "platform-cart",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpc:     &http.Client{Timeout: timeout},
		breaker:   breaker,
		logger:    logger,
	}
}

type addItemRequest struct {
	ProductID  string             `json:"productId"`
	Qty        int                `json:"qty"`
	Attributes []domain.Attribute `json:"attributes,omitempty"`
}

type updateItemRequest struct {
	Qty                *int               `json:"qty,omitempty"`
	SelectedAttributes []domain.Attribute `json:"selectedAttributes,omitempty"`
}

// CheckoutRequest is the checkout submission body.
type CheckoutRequest struct {
	DeliveryType  string   `json:"deliveryType,omitempty"`
	CouponCodes   []string `json:"couponCodes,omitempty"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
	AddressID     string   `json:"addressId,omitempty"`
}

// Get fetches the current server cart.
func (c *Client) Get(ctx context.Context) (*domain.ServerCart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

// AddItem appends an item to the server cart and returns the updated cart.
func (c *Client) AddItem(ctx context.Context, productID string, qty int, attrs []domain.Attribute) (*domain.ServerCart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/items", addItemRequest{ProductID: productID, Qty: qty, Attributes: attrs})
}

// UpdateItem changes quantity or attributes of a server item by its id.
func (c *Client) UpdateItem(ctx context.Context, serverItemID string, qty int) (*domain.ServerCart, error) {
	return c.cartCall(ctx, http.MethodPut, "/cart/items/"+serverItemID, updateItemRequest{Qty: &qty})
}

// RemoveItem deletes a server item by its id.
func (c *Client) RemoveItem(ctx context.Context, serverItemID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart/items/"+serverItemID, nil)
	return err
}

// Clear empties the server cart.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart", nil)
	return err
}

// SubmitCheckout submits the cart for checkout. Success and correction both
// arrive as 200-class bodies; NeedsUpdate tells them apart.
func (c *Client) SubmitCheckout(ctx context.Context, req CheckoutRequest) (*domain.CheckoutResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/checkout", req)
	if err != nil {
		return nil, err
	}
	var result domain.CheckoutResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode checkout result: %w", err)
	}
	return &result, nil
}

func (c *Client) cartCall(ctx context.Context, method, path string, payload any) (*domain.ServerCart, error) {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	var cart domain.ServerCart
	if err := json.Unmarshal(body, &cart); err != nil {
		return nil, fmt.Errorf("decode server cart: %w", err)
	}
	return &cart, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			reqBody = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.authToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.authToken)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("platform cart api: %s %s: status %d", method, path, resp.StatusCode)
		}
		return body, nil
	})
}
