package track

import "github.com/brawler/framegraph/hal"

// SubresourceState holds the tracked D3D12 resource state for a single
// subresource. Read states may accumulate (a subresource can be
// SRV-read by two passes in the same zone without a barrier between
// them); any write state is always exclusive.
type SubresourceState struct {
	state hal.ResourceState
}

// State returns the currently tracked state.
func (s SubresourceState) State() hal.ResourceState { return s.state }

// Tracker tracks the GPU resource state of every subresource the device
// currently owns, indexed by TrackerIndex. It is the device-global
// counterpart to a per-pass UsageScope: UsageScope.Merge folds a pass's
// declared states into the tracker and returns the PendingTransitions that
// require a barrier.
type Tracker struct {
	states   []SubresourceState
	metadata ResourceMetadata
}

// NewTracker creates an empty device-global state tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states:   make([]SubresourceState, 0, 256),
		metadata: NewResourceMetadata(),
	}
}

// InsertSingle begins tracking index with an initial state, without
// producing a transition - used the first time a subresource is referenced.
func (t *Tracker) InsertSingle(index TrackerIndex, state hal.ResourceState) {
	t.ensureSize(int(index) + 1)
	t.states[index] = SubresourceState{state: state}
	t.metadata.SetOwned(index, true)
}

// Remove stops tracking index, e.g. when its owning resource is destroyed
// or - for a transient resource - when the alias tracker reclaims its heap
// range for a different resource.
func (t *Tracker) Remove(index TrackerIndex) {
	if int(index) < len(t.states) {
		t.states[index] = SubresourceState{}
		t.metadata.SetOwned(index, false)
	}
}

// GetState returns the currently tracked state, or StateCommon if index is
// not tracked.
func (t *Tracker) GetState(index TrackerIndex) hal.ResourceState {
	if int(index) < len(t.states) && t.metadata.IsOwned(index) {
		return t.states[index].state
	}
	return hal.StateCommon
}

// IsTracked reports whether index currently has tracked state.
func (t *Tracker) IsTracked(index TrackerIndex) bool {
	return int(index) < len(t.states) && t.metadata.IsOwned(index)
}

// Size returns the number of subresources currently tracked.
func (t *Tracker) Size() int { return t.metadata.Count() }

func (t *Tracker) ensureSize(size int) {
	for len(t.states) < size {
		t.states = append(t.states, SubresourceState{})
	}
}

// Merge folds the per-pass states recorded in scope into this device-global
// tracker, returning the PendingTransitions needed to make each
// subresource's hardware state match what scope requires. Called once per
// execution module, after bundle compilation has fixed pass order, and
// again at frame boundaries to fold back any state passes decayed to
// implicitly (implicit state promotion and decay).
func (t *Tracker) Merge(scope *UsageScope) []PendingTransition {
	var transitions []PendingTransition

	for i := range scope.states {
		index := TrackerIndex(i)
		if !scope.metadata.IsOwned(index) {
			continue
		}

		newState := scope.states[i].state
		oldState := t.GetState(index)

		if !t.IsTracked(index) {
			t.InsertSingle(index, newState)
			continue
		}

		if oldState == newState {
			continue
		}
		transitions = append(transitions, PendingTransition{
			Index:      index,
			Transition: StateTransition{From: oldState, To: newState},
		})
		t.states[index].state = newState
	}

	return transitions
}

// UsageScope accumulates the subresource states a single render-pass
// bundle (or group of bundles analyzed together) requires, before they are
// merged into the device-global Tracker. Two passes in the same scope
// requesting compatible read-only states are combined rather than
// conflicting; a write state conflicting with anything else in the same
// scope is reported via UsageConflictError so the FrameGraph builder can
// reject the invalid bundle instead of producing a wrong barrier.
type UsageScope struct {
	states   []SubresourceState
	metadata ResourceMetadata
}

// NewUsageScope creates an empty per-pass usage scope.
func NewUsageScope() *UsageScope {
	return &UsageScope{
		states:   make([]SubresourceState, 0, 64),
		metadata: NewResourceMetadata(),
	}
}

// SetState records that index is used in state within this scope. Read
// states accumulate with any prior read state already recorded for index;
// a write state, or a read state following an already-recorded write,
// returns UsageConflictError.
func (s *UsageScope) SetState(index TrackerIndex, state hal.ResourceState) error {
	s.ensureSize(int(index) + 1)

	if s.metadata.IsOwned(index) {
		existing := s.states[index].state
		if existing == state {
			return nil
		}
		if !existing.IsCompatible(state) {
			return &UsageConflictError{Index: index, Existing: existing, New: state}
		}
		s.states[index].state = existing | state
	} else {
		s.states[index] = SubresourceState{state: state}
		s.metadata.SetOwned(index, true)
	}
	return nil
}

// GetState returns the state currently recorded for index in this scope.
func (s *UsageScope) GetState(index TrackerIndex) hal.ResourceState {
	if int(index) < len(s.states) && s.metadata.IsOwned(index) {
		return s.states[index].state
	}
	return hal.StateCommon
}

// IsUsed reports whether index has any state recorded in this scope.
func (s *UsageScope) IsUsed(index TrackerIndex) bool {
	return int(index) < len(s.states) && s.metadata.IsOwned(index)
}

// Clear resets the scope so it can be reused for the next bundle without
// reallocating its backing slices.
func (s *UsageScope) Clear() {
	s.states = s.states[:0]
	s.metadata.Clear()
}

func (s *UsageScope) ensureSize(size int) {
	for len(s.states) < size {
		s.states = append(s.states, SubresourceState{})
	}
}

// PendingTransition is a state change the BarrierMerger must turn into one
// or more hal.Barrier values.
type PendingTransition struct {
	Index      TrackerIndex
	Transition StateTransition
}

// StateTransition is a from -> to hardware state change for one subresource.
type StateTransition struct {
	From hal.ResourceState
	To   hal.ResourceState
}

// NeedsBarrier reports whether this transition requires a GPU barrier. No
// barrier is needed for a no-op transition, or when both states are
// read-only (the hardware itself requires no synchronization between two
// compatible read states - this is the read-combine optimization the
// compiler's usage-scope merge already applies at a coarser grain, kept
// here as a second, cheap check against states computed any other way).
func (t StateTransition) NeedsBarrier() bool {
	if t.From == t.To {
		return false
	}
	return !t.From.IsCompatible(t.To)
}

// UsageConflictError reports two incompatible states requested for the
// same subresource within a single scope - most commonly a pass declaring
// both a read and an unsynchronized write on one resource, which the
// FrameGraph builder must reject rather than silently resolve.
type UsageConflictError struct {
	Index    TrackerIndex
	Existing hal.ResourceState
	New      hal.ResourceState
}

func (e *UsageConflictError) Error() string {
	return "track: usage conflict: incompatible resource states requested in the same scope"
}

// ResourceMetadata tracks which TrackerIndex values currently have valid
// state, so GetState/IsTracked don't need a sentinel state value to mean
// "absent".
type ResourceMetadata struct {
	owned []bool
	count int
}

// NewResourceMetadata creates empty metadata.
func NewResourceMetadata() ResourceMetadata {
	return ResourceMetadata{owned: make([]bool, 0, 256)}
}

// SetOwned marks index as owned or not owned, maintaining Count().
func (m *ResourceMetadata) SetOwned(index TrackerIndex, owned bool) {
	for int(index) >= len(m.owned) {
		m.owned = append(m.owned, false)
	}
	wasOwned := m.owned[index]
	m.owned[index] = owned
	if owned && !wasOwned {
		m.count++
	} else if !owned && wasOwned {
		m.count--
	}
}

// IsOwned reports whether index is currently marked owned.
func (m *ResourceMetadata) IsOwned(index TrackerIndex) bool {
	if int(index) >= len(m.owned) {
		return false
	}
	return m.owned[index]
}

// Count returns the number of indices currently marked owned.
func (m *ResourceMetadata) Count() int { return m.count }

// Clear resets every index to not-owned.
func (m *ResourceMetadata) Clear() {
	for i := range m.owned {
		m.owned[i] = false
	}
	m.count = 0
}
