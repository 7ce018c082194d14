package rabbitmq

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type recordingAck struct {
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (r *recordingAck) Ack(tag uint64, _ bool) error {
	r.acked = append(r.acked, tag)
	return nil
}

func (r *recordingAck) Nack(tag uint64, _ bool, requeue bool) error {
	r.nacked = append(r.nacked, tag)
	r.requeue = append(r.requeue, requeue)
	return nil
}

func (r *recordingAck) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func TestDispatch(t *testing.T) {
	c := &Client{queue: DefaultQueue, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ack := &recordingAck{}

	var seen []string
	handler := func(eventType string, body []byte) error {
		seen = append(seen, eventType+":"+string(body))
		if eventType == "broken" {
			return errors.New("cannot handle")
		}
		return nil
	}

	c.dispatch(amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Type: "stock.low", Body: []byte(`{}`)}, handler)
	c.dispatch(amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Type: "broken"}, handler)
	c.dispatch(amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Type: "broken", Redelivered: true}, handler)

	assert.Equal(t, []string{"stock.low:{}", "broken:", "broken:"}, seen)
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2, 3}, ack.nacked)
	assert.Equal(t, []bool{true, false}, ack.requeue)
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{queue: DefaultQueue, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	assert.Error(t, c.Publish("product.created", []byte(`{}`)))
}
