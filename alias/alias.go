// Package alias computes lifetime intervals for transient resources and
// packs them into overlapping heap allocations when their lifetimes do not
// intersect - the FrameGraph's transient alias tracker.
package alias

import (
	"sort"

	"github.com/brawler/framegraph/core/arena"
	"github.com/brawler/framegraph/hal"
)

// HeapTierClass groups resources by what a heap tier permits to share a
// heap: on a tier-1 device, buffers, RT/DS textures, and non-RT/DS
// textures must each live in their own heap; tier-2 and above allow all
// three to mix freely.
type HeapTierClass uint8

const (
	ClassBuffer HeapTierClass = iota
	ClassRTDSTexture
	ClassNonRTDSTexture
)

// TransientResource is one frame-scoped resource the alias tracker may pack
// into a shared heap allocation with others whose lifetimes don't overlap.
type TransientResource struct {
	Resource    arena.ResourceID
	FirstBundle uint32
	LastBundle  uint32
	SizeBytes   uint64
	Class       HeapTierClass

	// CannotAliasBeforeGPUUse forbids any group-mate from having an
	// earlier FirstBundle than this resource - set for resources whose
	// initial contents must not be clobbered by an earlier-starting
	// group-mate sharing the same heap bytes.
	CannotAliasBeforeGPUUse bool
	// CannotAliasAfterGPUUse is the symmetric rule for group-mates with a
	// later LastBundle.
	CannotAliasAfterGPUUse bool

	// UploadHeap/ReadbackHeap additionally restrict aliasing: upload-heap
	// resources may not alias before their own use, readback-heap
	// resources may not alias after it.
	UploadHeap   bool
	ReadbackHeap bool
}

// AliasableResourceGroup is a set of transient resources the tracker has
// determined may share overlapping heap bytes because their lifetimes are
// pairwise disjoint.
type AliasableResourceGroup struct {
	ID      arena.AliasGroupID
	Members []TransientResource
	// HeapSizeBytes is the largest member's size - the heap backing this
	// group need only be as large as its biggest simultaneous occupant.
	HeapSizeBytes uint64
}

// HeapTier describes which classes a device's heap tier allows to mix in
// one heap. Tier1 requires HeapTierClass values to match exactly within a
// group; Tier2 (and above) allows any mix.
type HeapTier uint8

const (
	Tier1 HeapTier = iota
	Tier2
)

func classesCompatible(tier HeapTier, a, b HeapTierClass) bool {
	if tier != Tier1 {
		return true
	}
	return a == b
}

// lifetimeOverlaps reports whether two resources' [first,last] bundle-ID
// intervals intersect.
func lifetimeOverlaps(a, b TransientResource) bool {
	return a.FirstBundle <= b.LastBundle && b.FirstBundle <= a.LastBundle
}

// violatesAliasConstraint checks the cannot-alias-before/after rules (and
// the upload/readback heap restrictions, which are special cases of the
// same rule: an upload resource "cannot alias before its own use" and a
// readback resource "cannot alias after") between a candidate and every
// resource already accepted into the group.
func violatesAliasConstraint(candidate TransientResource, group []TransientResource) bool {
	for _, g := range group {
		if candidate.CannotAliasBeforeGPUUse && g.FirstBundle < candidate.FirstBundle {
			return true
		}
		if candidate.CannotAliasAfterGPUUse && g.LastBundle > candidate.LastBundle {
			return true
		}
		if candidate.UploadHeap && g.FirstBundle < candidate.FirstBundle {
			return true
		}
		if candidate.ReadbackHeap && g.LastBundle > candidate.LastBundle {
			return true
		}
		// Symmetric: the already-accepted member's own constraints must
		// also not be violated by the candidate joining.
		if g.CannotAliasBeforeGPUUse && candidate.FirstBundle < g.FirstBundle {
			return true
		}
		if g.CannotAliasAfterGPUUse && candidate.LastBundle > g.LastBundle {
			return true
		}
		if g.UploadHeap && candidate.FirstBundle < g.FirstBundle {
			return true
		}
		if g.ReadbackHeap && candidate.LastBundle > g.LastBundle {
			return true
		}
	}
	return false
}

// Pack implements the greedy size-descending grouping algorithm: sort
// resources by size descending, repeatedly pop the
// largest unassigned resource and absorb every other unassigned resource
// whose lifetime does not overlap any group member, whose heap-tier class
// is compatible, and whose alias constraints aren't violated.
//
// This is a heuristic, not an exact packing - no known polynomial exact
// algorithm exists for the problem, and sort-by-size-descending produces
// good results in practice.
func Pack(resources []TransientResource, tier HeapTier, nextGroupIndex uint32) []AliasableResourceGroup {
	sorted := make([]TransientResource, len(resources))
	copy(sorted, resources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SizeBytes > sorted[j].SizeBytes
	})

	assigned := make([]bool, len(sorted))
	var groups []AliasableResourceGroup

	for i := range sorted {
		if assigned[i] {
			continue
		}
		group := []TransientResource{sorted[i]}
		assigned[i] = true
		maxSize := sorted[i].SizeBytes

		for j := i + 1; j < len(sorted); j++ {
			if assigned[j] {
				continue
			}
			candidate := sorted[j]
			if !classesCompatible(tier, group[0].Class, candidate.Class) {
				continue
			}
			overlapsAny := false
			for _, g := range group {
				if lifetimeOverlaps(g, candidate) {
					overlapsAny = true
					break
				}
			}
			if overlapsAny {
				continue
			}
			if violatesAliasConstraint(candidate, group) {
				continue
			}
			group = append(group, candidate)
			assigned[j] = true
			if candidate.SizeBytes > maxSize {
				maxSize = candidate.SizeBytes
			}
		}

		groups = append(groups, AliasableResourceGroup{
			ID:            arena.NewAliasGroupID(nextGroupIndex, 0),
			Members:       group,
			HeapSizeBytes: maxSize,
		})
		nextGroupIndex++
	}

	return groups
}

// AliasingBarrier builds the hal.Barrier that must precede the first use of
// `after` once it begins occupying the heap bytes `before` previously
// occupied (zero ResourceHandle for `before` means "any resource", matching
// D3D12's ALIASING barrier semantics when the prior occupant is unknown or
// this is the group's first member).
func AliasingBarrier(before, after hal.ResourceHandle) hal.Barrier {
	return hal.Barrier{
		Kind:          hal.BarrierAliasing,
		Resource:      after,
		AliasedBefore: before,
		Subresource:   0xffffffff,
	}
}
