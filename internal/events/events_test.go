package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-storefront/internal/events"
)

func TestEmitterRoutesByName(t *testing.T) {
	bus := events.NewEmitter()
	orders := &events.CaptureHook{}
	all := &events.CaptureHook{}
	bus.Subscribe(events.OrderStatusChanged, orders)
	bus.Subscribe("", all)

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, events.Event{Name: events.OrderStatusChanged, ObjectType: "order", ObjectID: "1"}))
	require.NoError(t, bus.Emit(ctx, events.Event{Name: events.PaymentStatusChanged, ObjectType: "payment", ObjectID: "2"}))

	assert.Len(t, orders.Events(), 1)
	assert.Len(t, all.Events(), 2)
	assert.False(t, all.Events()[0].OccurredAt.IsZero())
}

func TestEmitterJoinsErrors(t *testing.T) {
	bus := events.NewEmitter()
	first := errors.New("first")
	second := errors.New("second")
	ok := &events.CaptureHook{}

	bus.Subscribe(events.OrderPlaced, &events.CaptureHook{Err: first})
	bus.Subscribe(events.OrderPlaced, ok)
	bus.Subscribe(events.OrderPlaced, events.HookFunc(func(context.Context, events.Event) error { return second }))

	err := bus.Emit(context.Background(), events.Event{Name: events.OrderPlaced, ObjectID: "9"})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Len(t, ok.Events(), 1)
}

func TestEmitterSkipsIncompleteEvents(t *testing.T) {
	bus := events.NewEmitter()
	hook := &events.CaptureHook{}
	bus.Subscribe("", hook)

	require.NoError(t, bus.Emit(context.Background(), events.Event{Name: events.OrderPlaced}))
	assert.Empty(t, hook.Events())

	var nilBus *events.Emitter
	assert.NoError(t, nilBus.Emit(context.Background(), events.Event{Name: events.OrderPlaced, ObjectID: "1"}))
}

func TestKafkaHookPublishesJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got events.Event
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Name != events.OrderPlaced || got.Meta("order_code") != "000000000042" {
			return errors.New("unexpected payload")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	hook := events.NewKafkaHook(producer, "storefront.orders")
	ctx := context.Background()

	event := events.Event{
		Name:       events.OrderPlaced,
		ObjectType: "order",
		ObjectID:   "42",
		Metadata:   map[string]any{"order_code": "000000000042"},
	}
	require.NoError(t, hook.Notify(ctx, event))
	assert.ErrorIs(t, hook.Notify(ctx, event), sarama.ErrOutOfBrokers)
	require.NoError(t, hook.Close())
}
