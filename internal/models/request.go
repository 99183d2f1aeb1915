package models

// RequestStatus is the lifecycle state of a money request.
type RequestStatus string

const (
	// StatusPending is the initial state of every request.
	StatusPending RequestStatus = "pending"

	// StatusApproved means the requestee funded the request and the
	// transfer settled on the rail.
	StatusApproved RequestStatus = "approved"

	// StatusDeclined means the requestee refused the request.
	StatusDeclined RequestStatus = "declined"

	// StatusCancelled means the requester withdrew their own request.
	StatusCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined || s == StatusCancelled
}

// Request is a money request between two users: the requester asks the
// requestee to send them funds. RequesterID and RequesteeID always differ.
type Request struct {
	// ID is the unique identifier for the request (UUID format),
	// assigned by the store on creation.
	ID string

	// RequesterID is the user asking for money.
	RequesterID string

	// RequesteeID is the user being asked to pay.
	RequesteeID string

	// Amount is the requested amount in currency-of-record units.
	Amount float64

	// Status is the current lifecycle state.
	Status RequestStatus

	// CreatedAt is the Unix timestamp when the request was created.
	// Immutable after creation.
	CreatedAt int64
}
