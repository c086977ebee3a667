package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rentiva/models"
)

// restClient is the shared plumbing for every collaborator implementation.
type restClient struct {
	baseURL string
	http    *http.Client
}

func newRESTClient(baseURL string) restClient {
	return restClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// doJSON performs one request and decodes the response body into out. A 4xx
// answer becomes a BusinessError carrying the collaborator's message; any
// transport failure or 5xx becomes a NetworkError.
func (c restClient) doJSON(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &NetworkError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		var rejection struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&rejection); err == nil {
			if rejection.Message != "" {
				return &BusinessError{Op: op, Message: rejection.Message}
			}
			if rejection.Error != "" {
				return &BusinessError{Op: op, Message: rejection.Error}
			}
		}
		return &BusinessError{Op: op, Message: fmt.Sprintf("request rejected with status %d", resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// --- Inventory ---

type restInventoryClient struct {
	restClient
}

// NewInventoryClient returns an InventoryClient against the inventory service.
func NewInventoryClient(baseURL string) InventoryClient {
	return &restInventoryClient{newRESTClient(baseURL)}
}

func (c *restInventoryClient) CartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	var out struct {
		Items []models.CartItem `json:"items"`
	}
	if err := c.doJSON(ctx, "inventory.CartItems", http.MethodGet, "/api/cart/"+userID, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *restInventoryClient) Availability(ctx context.Context, items []models.CartItem) (*models.StockReport, error) {
	req := struct {
		Items []models.CartItem `json:"items"`
	}{Items: items}
	var out models.StockReport
	if err := c.doJSON(ctx, "inventory.Availability", http.MethodPost, "/api/stock/check", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Profile ---

type restProfileClient struct {
	restClient
}

// NewProfileClient returns a ProfileClient against the profile service.
func NewProfileClient(baseURL string) ProfileClient {
	return &restProfileClient{newRESTClient(baseURL)}
}

func (c *restProfileClient) AddressComplete(ctx context.Context, userID string) (bool, error) {
	var out struct {
		Complete bool `json:"complete"`
	}
	if err := c.doJSON(ctx, "profile.AddressComplete", http.MethodGet, "/api/profile/"+userID+"/address-complete", nil, &out); err != nil {
		return false, err
	}
	return out.Complete, nil
}

// --- Reservation ---

type restReservationClient struct {
	restClient
}

// NewReservationClient returns a ReservationClient against the reservation service.
func NewReservationClient(baseURL string) ReservationClient {
	return &restReservationClient{newRESTClient(baseURL)}
}

func (c *restReservationClient) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	var out IntentResponse
	if err := c.doJSON(ctx, "reservation.CreateIntent", http.MethodPost, "/api/intents", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restReservationClient) ReleaseIntent(ctx context.Context, intentID string) error {
	return c.doJSON(ctx, "reservation.ReleaseIntent", http.MethodDelete, "/api/intents/"+intentID, nil, nil)
}

// --- Payment ---

type restPaymentClient struct {
	restClient
}

// NewPaymentClient returns a PaymentClient against the payment service.
func NewPaymentClient(baseURL string) PaymentClient {
	return &restPaymentClient{newRESTClient(baseURL)}
}

func (c *restPaymentClient) Status(ctx context.Context, referenceNumber string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, "payment.Status", http.MethodGet, "/api/payments/"+referenceNumber+"/status", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *restPaymentClient) Verify(ctx context.Context, referenceNumber string, amount float64) (string, error) {
	req := struct {
		ReferenceNumber string  `json:"referenceNumber"`
		Amount          float64 `json:"amount"`
	}{ReferenceNumber: referenceNumber, Amount: amount}
	var out struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, "payment.Verify", http.MethodPost, "/api/payments/verify", req, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
