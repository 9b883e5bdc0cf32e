package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// Converter looks up exchange rates for display enrichment of expenses.
// A failed lookup yields a nil amount, never an error that would block the
// approval workflow.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) *float64
}

type ConverterImpl struct {
	baseURL string
	client  *http.Client
}

func NewConverter(baseURL string, timeout time.Duration) Converter {
	return &ConverterImpl{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (c *ConverterImpl) Convert(ctx context.Context, amount float64, from, to string) *float64 {
	if from == to {
		return &amount
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, from)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Error("Failed to build rate request", "from", from, "error", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("Exchange rate lookup failed", "from", from, "to", to, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Exchange rate lookup returned non-200", "from", from, "status", resp.StatusCode)
		return nil
	}

	var rates ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		slog.Warn("Failed to decode exchange rate response", "from", from, "error", err)
		return nil
	}

	rate, ok := rates.Rates[to]
	if !ok {
		return nil
	}

	converted := math.Round(amount*rate*100) / 100
	return &converted
}
