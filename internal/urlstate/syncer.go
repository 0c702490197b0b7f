package urlstate

import (
	"sync"

	"go.uber.org/zap"

	"github.com/steemit/postsmanager/pkg/logging"
)

// StateWriter receives filter state parsed from an address change
type StateWriter interface {
	Filters() FilterState
	SetFilters(FilterState)
}

// Navigator receives the address produced by a filter state change
type Navigator interface {
	Navigate(query string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(query string)

// Navigate calls f(query)
func (f NavigatorFunc) Navigate(query string) { f(query) }

// Syncer binds the filter state to the address in both directions. Each
// direction writes only when the target differs, so a change bounces back
// at most once and then settles.
type Syncer struct {
	mu       sync.Mutex
	location string
	state    StateWriter
	nav      Navigator
	logger   *zap.Logger
}

// NewSyncer creates a Syncer starting at the encoding of the current state
func NewSyncer(state StateWriter, nav Navigator) *Syncer {
	return &Syncer{
		location: state.Filters().Encode(),
		state:    state,
		nav:      nav,
		logger:   logging.WithComponent("urlstate"),
	}
}

// Location returns the current canonical query string
func (s *Syncer) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// AddressChanged applies a new address to the filter state. It reports
// whether the state was written.
func (s *Syncer) AddressChanged(raw string) bool {
	parsed := Parse(raw)

	s.mu.Lock()
	s.location = parsed.Encode()
	s.mu.Unlock()

	if parsed == s.state.Filters().Normalize() {
		return false
	}
	s.logger.Debug("address changed", zap.String("location", parsed.Encode()))
	s.state.SetFilters(parsed)
	return true
}

// StateChanged pushes the filter state to the address. It reports whether
// navigation happened.
func (s *Syncer) StateChanged(state FilterState) bool {
	encoded := state.Encode()

	s.mu.Lock()
	if encoded == s.location {
		s.mu.Unlock()
		return false
	}
	s.location = encoded
	s.mu.Unlock()

	s.logger.Debug("navigating", zap.String("location", encoded))
	if s.nav != nil {
		s.nav.Navigate(encoded)
	}
	return true
}
