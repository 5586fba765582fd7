// Package arena provides the generational-index identifier and storage
// primitives the FrameGraph core uses for every handle it hands out:
// bundle IDs, pass handles, resource handles, heap handles. Every resource
// has exactly one owner - the Arena that allocated its slot - and every
// outside reference to it is one of these generation-checked indices, never
// a second live pointer. That single-owner discipline is what lets the
// compiler, the alias tracker, and the residency manager all refer to the
// same resource concurrently without needing a shared mutex per resource.
package arena

import "fmt"

// Index is the slot component of an identifier.
type Index = uint32

// Epoch is the generation component: it increments each time a slot is
// reused, invalidating any ID captured before the reuse.
type Epoch = uint32

// RawID is the 64-bit packed form of an Index/Epoch pair.
type RawID uint64

// Zip packs an index and epoch into a RawID.
func Zip(index Index, epoch Epoch) RawID {
	return RawID(index) | (RawID(epoch) << 32)
}

// Unzip extracts the index and epoch from a RawID.
func (id RawID) Unzip() (Index, Epoch) {
	return Index(id & 0xFFFFFFFF), Epoch(id >> 32)
}

// Index returns the index component.
func (id RawID) Index() Index { return Index(id & 0xFFFFFFFF) }

// Epoch returns the epoch component.
func (id RawID) Epoch() Epoch { return Epoch(id >> 32) }

// IsZero reports whether both components are zero.
func (id RawID) IsZero() bool { return id == 0 }

func (id RawID) String() string {
	index, epoch := id.Unzip()
	return fmt.Sprintf("RawID(%d,%d)", index, epoch)
}

// Marker distinguishes ID[T] instantiations at compile time so a BundleID
// can never be passed where a ResourceID is expected, even though both are
// ID[T] specialized over an empty struct.
type Marker interface {
	marker()
}

// ID is a type-safe, generation-checked identifier parameterized by a
// marker type.
type ID[T Marker] struct {
	raw RawID
}

// NewID packs index and epoch into an ID.
func NewID[T Marker](index Index, epoch Epoch) ID[T] {
	return ID[T]{raw: Zip(index, epoch)}
}

// FromRaw wraps an already-packed RawID. The caller is responsible for the
// type parameter matching the value's origin - this is the one place type
// safety is asserted rather than enforced, needed at the boundary where IDs
// cross an opaque hal.ResourceHandle.
func FromRaw[T Marker](raw RawID) ID[T] { return ID[T]{raw: raw} }

// Raw returns the packed representation.
func (id ID[T]) Raw() RawID { return id.raw }

// Unzip extracts the index and epoch.
func (id ID[T]) Unzip() (Index, Epoch) { return id.raw.Unzip() }

// Index returns the index component.
func (id ID[T]) Index() Index { return id.raw.Index() }

// Epoch returns the epoch component.
func (id ID[T]) Epoch() Epoch { return id.raw.Epoch() }

// IsZero reports whether this is the zero-value (invalid) ID.
func (id ID[T]) IsZero() bool { return id.raw.IsZero() }

func (id ID[T]) String() string {
	index, epoch := id.Unzip()
	return fmt.Sprintf("ID(%d,%d)", index, epoch)
}

// Marker types for each handle kind the FrameGraph core hands out.

type bundleMarker struct{}

func (bundleMarker) marker() {}

type passMarker struct{}

func (passMarker) marker() {}

type resourceMarker struct{}

func (resourceMarker) marker() {}

type heapMarker struct{}

func (heapMarker) marker() {}

type aliasGroupMarker struct{}

func (aliasGroupMarker) marker() {}

type executionModuleMarker struct{}

func (executionModuleMarker) marker() {}

// BundleID identifies a render-pass bundle within a frame.
type BundleID = ID[bundleMarker]

// PassID identifies a single render pass within a bundle.
type PassID = ID[passMarker]

// ResourceID identifies a buffer or texture the core tracks state for.
type ResourceID = ID[resourceMarker]

// HeapID identifies a heap the alias tracker or residency manager owns.
type HeapID = ID[heapMarker]

// AliasGroupID identifies a group of transient resources packed into an
// overlapping heap range by the alias tracker.
type AliasGroupID = ID[aliasGroupMarker]

// ExecutionModuleID identifies one ExecuteCommandLists-sized unit of work
// produced by bundle packing.
type ExecutionModuleID = ID[executionModuleMarker]

// Constructors below let other packages build IDs of a given kind without
// needing access to the unexported marker type that parameterizes it.

// NewBundleID packs index and epoch into a BundleID.
func NewBundleID(index Index, epoch Epoch) BundleID { return NewID[bundleMarker](index, epoch) }

// NewPassID packs index and epoch into a PassID.
func NewPassID(index Index, epoch Epoch) PassID { return NewID[passMarker](index, epoch) }

// NewResourceID packs index and epoch into a ResourceID.
func NewResourceID(index Index, epoch Epoch) ResourceID { return NewID[resourceMarker](index, epoch) }

// NewHeapID packs index and epoch into a HeapID.
func NewHeapID(index Index, epoch Epoch) HeapID { return NewID[heapMarker](index, epoch) }

// NewAliasGroupID packs index and epoch into an AliasGroupID.
func NewAliasGroupID(index Index, epoch Epoch) AliasGroupID {
	return NewID[aliasGroupMarker](index, epoch)
}

// NewExecutionModuleID packs index and epoch into an ExecutionModuleID.
func NewExecutionModuleID(index Index, epoch Epoch) ExecutionModuleID {
	return NewID[executionModuleMarker](index, epoch)
}
