package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// StockAlertHandler returns a consumer that logs stock.low events and ignores
// every other type.
func StockAlertHandler(log *slog.Logger) func(eventType string, body []byte) error {
	return func(eventType string, body []byte) error {
		if eventType != EventStockLow {
			return nil
		}
		var event ProductEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("decode %s event: %w", eventType, err)
		}
		log.Warn("low stock",
			"product_id", event.ProductID,
			"sku", event.SKU,
			"name", event.Name,
			"quantity", event.Quantity,
		)
		return nil
	}
}
