package event

import (
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
)

// IntegrationEventTypes are the event types published outside the process.
// Cart updates and password changes stay in-process.
var IntegrationEventTypes = []string{
	order.EventTypeOrderPlaced,
	order.EventTypeOrderPaid,
	order.EventTypeOrderStatusChanged,
	order.EventTypePaymentFailed,
	discount.EventTypeDiscountCreated,
	discount.EventTypeDiscountStatusChanged,
	discount.EventTypeDiscountRedeemed,
	catalog.EventTypeProductCreated,
	catalog.EventTypeProductStatusChanged,
	catalog.EventTypeVariantStockChanged,
	identity.EventTypeUserRegistered,
}

// IntegrationRoutes subscribes the broker forwarder to IntegrationEventTypes,
// taking whole aggregates where every event of the aggregate is forwarded
var IntegrationRoutes = []string{
	AggregateRoute(order.AggregateTypeOrder),
	AggregateRoute(discount.AggregateTypeDiscount),
	AggregateRoute(catalog.AggregateTypeProduct),
	identity.EventTypeUserRegistered,
}

// RegisterAllEvents makes every domain event decodable
func RegisterAllEvents(serializer *EventSerializer) {
	RegisterType[cart.UpdatedEvent](serializer, cart.EventTypeCartUpdated)

	RegisterType[order.PlacedEvent](serializer, order.EventTypeOrderPlaced)
	RegisterType[order.PaidEvent](serializer, order.EventTypeOrderPaid)
	RegisterType[order.StatusChangedEvent](serializer, order.EventTypeOrderStatusChanged)
	RegisterType[order.PaymentFailedEvent](serializer, order.EventTypePaymentFailed)

	RegisterType[discount.CreatedEvent](serializer, discount.EventTypeDiscountCreated)
	RegisterType[discount.StatusChangedEvent](serializer, discount.EventTypeDiscountStatusChanged)
	RegisterType[discount.RedeemedEvent](serializer, discount.EventTypeDiscountRedeemed)

	RegisterType[catalog.ProductCreatedEvent](serializer, catalog.EventTypeProductCreated)
	RegisterType[catalog.ProductStatusChangedEvent](serializer, catalog.EventTypeProductStatusChanged)
	RegisterType[catalog.VariantStockChangedEvent](serializer, catalog.EventTypeVariantStockChanged)

	RegisterType[identity.UserRegisteredEvent](serializer, identity.EventTypeUserRegistered)
	RegisterType[identity.UserPasswordChangedEvent](serializer, identity.EventTypeUserPasswordChanged)
}
