package lifecycle

// Order lifecycle statuses.
const (
	StatusPending        = "pending"
	StatusAccepted       = "accepted"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCanceled       = "canceled"
)

var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusAccepted: {},
		StatusCanceled: {},
	},
	StatusAccepted: {
		StatusPreparing:      {},
		StatusOutForDelivery: {},
		StatusCanceled:       {},
	},
	StatusPreparing: {
		StatusOutForDelivery: {},
		StatusCanceled:       {},
	},
	StatusOutForDelivery: {
		StatusDelivered: {},
		StatusCanceled:  {},
	},
	StatusDelivered: {},
	StatusCanceled:  {},
}

// CanTransition returns true when the lifecycle allows moving from current to next status.
func CanTransition(current, next string) bool {
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

// Cancelable reports whether an order in the given status may still be canceled.
func Cancelable(status string) bool {
	if status == StatusCanceled {
		return false
	}
	return CanTransition(status, StatusCanceled)
}
