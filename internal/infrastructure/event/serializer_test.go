package event

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/order"
)

func TestEventSerializer_WrapUnwrap(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	original := &order.PaymentFailedEvent{}
	original.BaseDomainEvent.ID = uuid.New()
	original.BaseDomainEvent.Type = order.EventTypePaymentFailed
	original.BaseDomainEvent.AggType = order.AggregateTypeOrder
	original.BaseDomainEvent.AggID = uuid.New()

	data, err := serializer.Wrap(original)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, order.EventTypePaymentFailed, env.EventType)
	assert.Equal(t, original.AggID, env.AggregateID)
	assert.Equal(t, order.AggregateTypeOrder, env.AggregateType)

	decoded, err := serializer.Unwrap(data)
	require.NoError(t, err)
	require.IsType(t, &order.PaymentFailedEvent{}, decoded)
	assert.Equal(t, original.ID, decoded.EventID())
}

func TestEventSerializer_Deserialize(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterType[testEvent](serializer, "TestEvent")

	event := newTestEvent("TestEvent")
	data, err := serializer.Serialize(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":"test data"`)

	decoded, err := serializer.Deserialize("TestEvent", data)
	require.NoError(t, err)
	assert.Equal(t, "test data", decoded.(*testEvent).Data)

	_, err = serializer.Deserialize("Unknown", data)
	assert.ErrorContains(t, err, "unknown event type")

	_, err = serializer.Deserialize("TestEvent", []byte("{"))
	assert.Error(t, err)
}

func TestRegisterAllEvents_CoversIntegrationTypes(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)
	for _, eventType := range IntegrationEventTypes {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}
}
