package models

import "strings"

// DeliveryStatus is the closed set of delivery workflow statuses.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusInTransit DeliveryStatus = "INTRANSIT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled DeliveryStatus = "CANCELLED"
	DeliveryStatusReturned  DeliveryStatus = "RETURNED"

	// DeliveryStatusUnknown is never a workflow state. It only names the
	// bucket for records whose status is missing or unrecognised.
	DeliveryStatusUnknown DeliveryStatus = "UNKNOWN"
)

// DeliveryStatuses in display order.
var DeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
	DeliveryStatusReturned,
}

func (s DeliveryStatus) String() string { return string(s) }

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusInTransit, DeliveryStatusDelivered,
		DeliveryStatusCancelled, DeliveryStatusReturned:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryStatusCancelled || s == DeliveryStatusReturned
}

// Active reports whether the delivery still needs periodic refresh.
func (s DeliveryStatus) Active() bool {
	return s == DeliveryStatusPending || s == DeliveryStatusInTransit
}

// ParseDeliveryStatus is case-insensitive and tolerates "IN_TRANSIT"/"in-transit".
func ParseDeliveryStatus(raw string) (DeliveryStatus, bool) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	norm = strings.NewReplacer("_", "", "-", "", " ", "").Replace(norm)
	s := DeliveryStatus(norm)
	return s, s.Valid()
}

// OrderStatus is the separate, wider order taxonomy.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
	OrderStatusReturned,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// EventLabel is the free-text status of a TrackingEvent. It is deliberately
// a separate type from DeliveryStatus.
type EventLabel string
