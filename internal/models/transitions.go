package models

var transitions = map[DeliveryStatus]map[DeliveryStatus]struct{}{
	DeliveryStatusPending: {
		DeliveryStatusInTransit: {},
		DeliveryStatusCancelled: {},
	},
	DeliveryStatusInTransit: {
		DeliveryStatusDelivered: {},
		DeliveryStatusReturned:  {},
		DeliveryStatusCancelled: {},
	},
	DeliveryStatusDelivered: {
		DeliveryStatusReturned: {},
	},
}

// CanTransition returns true when a delivery may move from current to next.
// Staying in the same state is always allowed; CANCELLED and RETURNED are terminal.
func CanTransition(current, next DeliveryStatus) bool {
	if !next.Valid() {
		return false
	}
	if current == next {
		return true
	}
	allowed, ok := transitions[current]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// NextStatuses lists the states reachable from current, in display order.
func NextStatuses(current DeliveryStatus) []DeliveryStatus {
	out := make([]DeliveryStatus, 0, 3)
	for _, s := range DeliveryStatuses {
		if s == current {
			continue
		}
		if _, ok := transitions[current][s]; ok {
			out = append(out, s)
		}
	}
	return out
}
