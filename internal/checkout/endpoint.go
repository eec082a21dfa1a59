package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"storefront/internal/model"
)

// EndpointGateway posts order submissions to an order-creation endpoint
// speaking the {success, order, message} contract, such as another
// storefront's POST /api/orders.
type EndpointGateway struct {
	url        string
	httpClient *http.Client
}

// NewEndpointGateway creates a gateway for the endpoint at url. A nil
// httpClient uses http.DefaultClient.
func NewEndpointGateway(url string, httpClient *http.Client) *EndpointGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EndpointGateway{url: url, httpClient: httpClient}
}

// CreateOrder posts sub and returns the confirmed order.
func (g *EndpointGateway) CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshaling order submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sub.Reference != "" {
		req.Header.Set("Idempotency-Key", sub.Reference)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, model.NewTimeoutError("order endpoint")
		}
		return nil, model.NewUpstreamError("order endpoint", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, model.NewUpstreamError("order endpoint", err)
	}

	var out model.OrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, model.NewPlatformError("order endpoint", resp.StatusCode, "")
	}
	if !out.Success || out.Order == nil {
		msg := out.Message
		if msg == "" {
			msg = "order was not accepted"
		}
		return nil, model.NewPlatformError("order endpoint", resp.StatusCode, msg)
	}
	return out.Order, nil
}
