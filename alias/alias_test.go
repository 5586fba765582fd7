package alias

import "testing"

func TestPack_DisjointLifetimesGroupTogether(t *testing.T) {
	// X (8MiB, [0,2]) and Y (4MiB, [3,5]) should
	// group; Z (4MiB, [1,4]) overlaps both and must be its own group.
	resources := []TransientResource{
		{FirstBundle: 0, LastBundle: 2, SizeBytes: 8 << 20},
		{FirstBundle: 3, LastBundle: 5, SizeBytes: 4 << 20},
		{FirstBundle: 1, LastBundle: 4, SizeBytes: 4 << 20},
	}
	groups := Pack(resources, Tier2, 0)

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	// X (index 0, largest) is popped first and should absorb Y (index 1,
	// disjoint); Z (index 2) overlaps X so it is left in its own group.
	if len(groups[0].Members) != 2 {
		t.Errorf("first group has %d members, want 2 (X and Y)", len(groups[0].Members))
	}
	if len(groups[1].Members) != 1 {
		t.Errorf("second group has %d members, want 1 (Z)", len(groups[1].Members))
	}
}

func TestPack_DisjointnessInvariant(t *testing.T) {
	resources := []TransientResource{
		{FirstBundle: 0, LastBundle: 1, SizeBytes: 100},
		{FirstBundle: 2, LastBundle: 3, SizeBytes: 90},
		{FirstBundle: 4, LastBundle: 5, SizeBytes: 80},
	}
	groups := Pack(resources, Tier2, 0)
	for _, g := range groups {
		for i := range g.Members {
			for j := range g.Members {
				if i == j {
					continue
				}
				if lifetimeOverlaps(g.Members[i], g.Members[j]) {
					t.Errorf("group %v contains overlapping lifetimes: %+v and %+v", g.ID, g.Members[i], g.Members[j])
				}
			}
		}
	}
}

func TestPack_Tier1SeparatesClasses(t *testing.T) {
	resources := []TransientResource{
		{FirstBundle: 0, LastBundle: 1, SizeBytes: 100, Class: ClassBuffer},
		{FirstBundle: 2, LastBundle: 3, SizeBytes: 90, Class: ClassNonRTDSTexture},
	}
	groups := Pack(resources, Tier1, 0)
	if len(groups) != 2 {
		t.Fatalf("tier-1 device merged incompatible classes: got %d groups, want 2", len(groups))
	}
}

func TestPack_CannotAliasBeforeGPUUseRespected(t *testing.T) {
	resources := []TransientResource{
		{FirstBundle: 5, LastBundle: 6, SizeBytes: 100, CannotAliasBeforeGPUUse: true},
		{FirstBundle: 0, LastBundle: 1, SizeBytes: 90},
	}
	groups := Pack(resources, Tier2, 0)
	for _, g := range groups {
		if len(g.Members) > 1 {
			t.Fatalf("group wrongly merged a resource with an earlier first_bundle_id than a cannot_alias_before_gpu_use member: %+v", g.Members)
		}
	}
}

func TestAliasingBarrier_CarriesBothHandles(t *testing.T) {
	b := AliasingBarrier(1, 2)
	if b.AliasedBefore != 1 || b.Resource != 2 {
		t.Errorf("AliasingBarrier(1, 2) = %+v, want AliasedBefore=1 Resource=2", b)
	}
}
