package services

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockAlertHandler(t *testing.T) {
	var buf bytes.Buffer
	handle := StockAlertHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	assert.NoError(t, handle(EventProductCreated, []byte(`not json`)))
	assert.Empty(t, buf.String())

	assert.NoError(t, handle(EventStockLow, []byte(`{"type":"stock.low","productId":"p1","sku":"ELE-1","quantity":3}`)))
	assert.Contains(t, buf.String(), "low stock")
	assert.Contains(t, buf.String(), "sku=ELE-1")
	assert.Contains(t, buf.String(), "quantity=3")

	assert.Error(t, handle(EventStockLow, []byte(`{`)))
}
