package urlstate

import (
	"testing"

	"github.com/steemit/postsmanager/internal/view"
)

type memState struct {
	filters FilterState
	writes  int
}

func (m *memState) Filters() FilterState { return m.filters }

func (m *memState) SetFilters(f FilterState) {
	m.filters = f
	m.writes++
}

func TestSyncer_Converges(t *testing.T) {
	state := &memState{filters: Default()}
	var navigations []string
	var syncer *Syncer
	syncer = NewSyncer(state, NavigatorFunc(func(q string) {
		navigations = append(navigations, q)
		// the address change bounces back into the state
		syncer.AddressChanged(q)
	}))

	next := FilterState{Search: "cat", SortBy: view.SortID, SortOrder: view.Desc, Limit: 10}
	state.SetFilters(next)
	if !syncer.StateChanged(next) {
		t.Fatal("expected navigation for a changed state")
	}
	if len(navigations) != 1 {
		t.Fatalf("expected one navigation, got %d", len(navigations))
	}
	if state.writes != 1 {
		t.Errorf("address echo must not rewrite an equal state, writes = %d", state.writes)
	}
	if syncer.StateChanged(next) {
		t.Error("unchanged state must not navigate")
	}
	if syncer.Location() != "search=cat&sortBy=id&sortOrder=desc" {
		t.Errorf("Location() = %q", syncer.Location())
	}
}

func TestSyncer_AddressChanged(t *testing.T) {
	state := &memState{filters: Default()}
	syncer := NewSyncer(state, nil)

	if syncer.AddressChanged("") {
		t.Error("empty address equals the default state")
	}
	if !syncer.AddressChanged("?tag=crime&skip=10") {
		t.Fatal("expected state write")
	}
	if state.filters.Tag != "crime" || state.filters.Skip != 10 {
		t.Errorf("unexpected filters %+v", state.filters)
	}
	if syncer.AddressChanged("skip=10&tag=crime") {
		t.Error("reordered equal address must not write")
	}
	if syncer.StateChanged(state.filters) {
		t.Error("state already matches the address")
	}
}
