package db

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// ActiveStatuses are the statuses that hold a car's time slot.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed}

var validNext = map[BookingStatus]map[BookingStatus]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
	StatusCancelled: {},
	StatusCompleted: {},
}

func CanTransition(from, to BookingStatus) bool {
	return validNext[from][to]
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(validNext[s]) == 0 && s.Valid()
}
