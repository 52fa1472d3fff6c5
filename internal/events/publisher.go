package events

import (
	"sync"

	"github.com/clubeapp/points-engine/pkg/logger"
)

// Event names consumed by the notification layer.
const (
	EventBalanceChanged   = "balance.changed"
	EventCheckinConfirmed = "checkin.confirmed"
	EventCheckoutPaid     = "checkout.paid"
	EventCheckoutExpired  = "checkout.expired"
)

// Event is one domain notification. TargetUserIDs tells the fan-out layer
// which users' connections to deliver to; empty means broadcast.
type Event struct {
	Name          string
	Payload       map[string]interface{}
	TargetUserIDs []int64
}

// Publisher is the capability the engine depends on. The WebSocket/push
// fan-out implements Sink and registers with the dispatcher; the engine
// never sees a connection registry.
type Publisher interface {
	Publish(event Event)
}

// Sink receives dispatched events.
type Sink interface {
	Deliver(event Event)
}

// Dispatcher is a buffered async publisher. Publish never blocks the
// request path; when the buffer is full the event is dropped with a warning
// (notifications are best-effort, the ledger is the source of truth).
type Dispatcher struct {
	ch    chan Event
	sinks []Sink
	mu    sync.RWMutex
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		ch: make(chan Event, buffer),
	}
}

// Register adds a sink. Safe to call before or after Start.
func (d *Dispatcher) Register(sink Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, sink)
}

// Start launches the drain goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for event := range d.ch {
			d.mu.RLock()
			sinks := d.sinks
			d.mu.RUnlock()
			for _, sink := range sinks {
				sink.Deliver(event)
			}
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.ch)
	})
	d.wg.Wait()
}

func (d *Dispatcher) Publish(event Event) {
	select {
	case d.ch <- event:
	default:
		logger.Warn("Event queue full, dropping event", "event", event.Name)
	}
}

// LogSink logs every event; useful in development and as a delivery audit.
type LogSink struct{}

func (LogSink) Deliver(event Event) {
	logger.Info("Domain event", "event", event.Name, "payload", event.Payload, "targets", event.TargetUserIDs)
}

// BalanceChanged builds the balance.changed event for one user.
func BalanceChanged(userID, newBalance int64) Event {
	return Event{
		Name: EventBalanceChanged,
		Payload: map[string]interface{}{
			"userId":     userID,
			"newBalance": newBalance,
		},
		TargetUserIDs: []int64{userID},
	}
}

// CheckinConfirmed builds the checkin.confirmed event, consumed by the live
// venue display and the user's app.
func CheckinConfirmed(eventID int64, checkinNumber int, userID int64) Event {
	return Event{
		Name: EventCheckinConfirmed,
		Payload: map[string]interface{}{
			"eventId":       eventID,
			"checkinNumber": checkinNumber,
			"userId":        userID,
		},
		TargetUserIDs: []int64{userID},
	}
}

// CheckoutPaid builds the checkout.paid event.
func CheckoutPaid(code, orderID string, userID int64) Event {
	return Event{
		Name: EventCheckoutPaid,
		Payload: map[string]interface{}{
			"code":    code,
			"orderId": orderID,
		},
		TargetUserIDs: []int64{userID},
	}
}

// CheckoutExpired builds the checkout.expired event. Broadcast so the PDV
// terminal that owns the code can release its display.
func CheckoutExpired(code string) Event {
	return Event{
		Name: EventCheckoutExpired,
		Payload: map[string]interface{}{
			"code": code,
		},
	}
}
