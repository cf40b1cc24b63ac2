package enums

// OutboxEventType enumerates the domain events written to the outbox table.
type OutboxEventType string

const (
	EventOrderCreated   OutboxEventType = "order.created"
	EventOrderConfirmed OutboxEventType = "order.confirmed"
	EventOrderCanceled  OutboxEventType = "order.canceled"
	EventOrderStatus    OutboxEventType = "order.status_changed"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
)
