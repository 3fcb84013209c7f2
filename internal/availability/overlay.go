package availability

import "github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"

type bookingKey struct {
	workerID string
	date     domain.Date
}

// an empty clientID marks a booking released relative to the base
type Overlay struct {
	base  Lookup
	delta map[bookingKey]string
}

func NewOverlay(base Lookup) *Overlay {
	return &Overlay{base: base, delta: make(map[bookingKey]string)}
}

func (o *Overlay) Booking(workerID string, date domain.Date) (string, bool) {
	if clientID, ok := o.delta[bookingKey{workerID, date}]; ok {
		return clientID, clientID != ""
	}
	return o.base.Booking(workerID, date)
}

func (o *Overlay) Book(workerID string, date domain.Date, clientID string) {
	o.delta[bookingKey{workerID, date}] = clientID
}

func (o *Overlay) Release(workerID string, date domain.Date) {
	o.delta[bookingKey{workerID, date}] = ""
}

// Clone copies the delta; the base is shared since it is never written through an Overlay.
func (o *Overlay) Clone() *Overlay {
	delta := make(map[bookingKey]string, len(o.delta))
	for k, v := range o.delta {
		delta[k] = v
	}
	return &Overlay{base: o.base, delta: delta}
}
