package state

import (
	"sync"
	"time"

	"github.com/adamkadaban/kea-tui/internal/route"
)

// Store guards shared application state needed by multiple Bubble Tea models.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[int]*Subscription
	nextSub  int
	now      func() time.Time
}

// Subscription delivers notifications when the store mutates.
type Subscription struct {
	id     int
	store  *Store
	events chan struct{}
}

// NewStore creates a state store seeded with the given route.
func NewStore(r route.Route) *Store {
	return &Store{
		snapshot: Snapshot{Route: r},
		subs:     make(map[int]*Subscription),
		now:      time.Now,
	}
}

// Snapshot returns a copy of the current application state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copySnap := s.snapshot
	copySnap.AppTab = s.snapshot.AppTab.Clone()
	return copySnap
}

// Route returns the current route snapshot.
func (s *Store) Route() route.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot.Route
}

// SetRoute replaces the current route.
func (s *Store) SetRoute(r route.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Route = r
	s.notifyLocked()
}

// SetAppTab stores a freshly fetched app tab and clears the refreshing flag
// and any previous error.
func (s *Store) SetAppTab(tab AppTab) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.AppTab = tab.Clone()
	s.snapshot.Refreshing = false
	s.snapshot.LastError = ""
	s.snapshot.UpdatedAt = s.now()
	s.notifyLocked()
}

// SetRefreshing flags an in-flight refresh.
func (s *Store) SetRefreshing(refreshing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Refreshing = refreshing
	s.notifyLocked()
}

// SetError records a user-visible error message. It also ends any refresh.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = msg
	s.snapshot.Refreshing = false
	s.notifyLocked()
}

// Subscribe returns a subscription that receives a signal whenever the store mutates.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{
		id:     s.nextSub,
		store:  s,
		events: make(chan struct{}, 1),
	}
	s.nextSub++
	s.subs[sub.id] = sub
	return sub
}

func (s *Store) notifyLocked() {
	for _, sub := range s.subs {
		select {
		case sub.events <- struct{}{}:
		default:
		}
	}
}

func (s *Store) removeSubscription(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(sub.events)
	}
}

// Events returns a channel that receives a signal for each store mutation.
func (sub *Subscription) Events() <-chan struct{} {
	if sub == nil {
		return nil
	}
	return sub.events
}

// Close stops the subscription and releases associated resources.
func (sub *Subscription) Close() {
	if sub == nil || sub.store == nil {
		return
	}
	sub.store.removeSubscription(sub.id)
	sub.store = nil
}
