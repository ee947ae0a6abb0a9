package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Aminu222/tradelink-sub001/internal/domain"
)

var nowFunc = time.Now

// Client issues authenticated calls against the marketplace REST API. It
// owns no state, only request/response mapping.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(baseURL string) *Client {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "marketplace-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
	}
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type addWishlistItemRequest struct {
	ProductID int64 `json:"product_id"`
}

// FetchCart returns the authenticated shopper's cart items.
func (c *Client) FetchCart(ctx context.Context, token string) ([]domain.RemoteCartItem, error) {
	resp, err := c.do(ctx, token, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var items []domain.RemoteCartItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode cart response: %w", err)
	}
	return items, nil
}

// AddCartItem adds quantity of productID to the remote cart. The server
// merges by product id, summing quantities on duplicates.
func (c *Client) AddCartItem(ctx context.Context, token string, productID int64, quantity int) error {
	body := addCartItemRequest{ProductID: productID, Quantity: quantity}
	resp, err := c.do(ctx, token, http.MethodPost, "/cart", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.checkStatus(resp, http.StatusCreated, http.StatusOK)
}

// UpdateCartItem overwrites the quantity of one remote cart item.
func (c *Client) UpdateCartItem(ctx context.Context, token string, cartItemID int64, quantity int) error {
	body := updateCartItemRequest{Quantity: quantity}
	resp, err := c.do(ctx, token, http.MethodPut, fmt.Sprintf("/cart/%d", cartItemID), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.checkStatus(resp, http.StatusOK)
}

// RemoveCartItem deletes one remote cart item. A 404 is tolerated as
// already-removed.
func (c *Client) RemoveCartItem(ctx context.Context, token string, cartItemID int64) error {
	resp, err := c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/cart/%d", cartItemID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return c.checkStatus(resp, http.StatusOK, http.StatusNoContent)
}

// FetchWishlist returns the authenticated shopper's wishlist.
func (c *Client) FetchWishlist(ctx context.Context, token string) ([]domain.WishlistItem, error) {
	resp, err := c.do(ctx, token, http.MethodGet, "/wishlist", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var items []domain.WishlistItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist response: %w", err)
	}
	return items, nil
}

// AddWishlistItem adds productID to the remote wishlist. A 409 is tolerated
// as already-present.
func (c *Client) AddWishlistItem(ctx context.Context, token string, productID int64) error {
	body := addWishlistItemRequest{ProductID: productID}
	resp, err := c.do(ctx, token, http.MethodPost, "/wishlist", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	return c.checkStatus(resp, http.StatusCreated, http.StatusOK)
}

// RemoveWishlistItem deletes one wishlist entry. A 404 is tolerated.
func (c *Client) RemoveWishlistItem(ctx context.Context, token string, wishlistItemID int64) error {
	resp, err := c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/wishlist/%d", wishlistItemID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return c.checkStatus(resp, http.StatusOK, http.StatusNoContent)
}

// do builds and sends one authenticated request. Only transport-level
// failures pass through the breaker as failures; HTTP status mapping happens
// afterwards so a 4xx cannot trip it.
func (c *Client) do(ctx context.Context, token, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) checkStatus(resp *http.Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthentication
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
