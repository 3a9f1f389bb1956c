// AngelaMos | 2026
// state.go

package fulfillment

// Status tracks an order through payment and delivery.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusEntitled       Status = "ENTITLED"
	StatusDownloaded     Status = "DOWNLOADED"
	StatusExpired        Status = "EXPIRED"
)

var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPaid},
	StatusPaid:           {StatusEntitled},
	StatusEntitled:       {StatusDownloaded, StatusExpired},
	StatusDownloaded:     {},
	StatusExpired:        {},
}

// CanTransition reports whether moving from one status to another is a
// legal step in the order lifecycle.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}
