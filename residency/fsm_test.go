package residency

import (
	"context"
	"testing"

	"github.com/brawler/framegraph/hal"
)

type fakePageable struct {
	resident bool
	size     uint64
}

func (p *fakePageable) IsResident() bool        { return p.resident }
func (p *fakePageable) ApproximateSize() uint64 { return p.size }

// fakeDevice's MakeResident fails until evicted bytes bring usage under
// budget - it doesn't track state itself, it just asks the registry.
type fakeDevice struct {
	reg         *Registry
	budgetBytes uint64
	evictCalls  int
}

func (d *fakeDevice) MakeResident(ctx context.Context, objects []hal.Pageable) error {
	if d.reg.CurrentUsageBytes() > d.budgetBytes {
		return hal.ErrDeviceOutOfMemory
	}
	return nil
}

func (d *fakeDevice) Evict(objects []hal.Pageable) error {
	d.evictCalls++
	return nil
}

func TestResidency_EvictBeforeDelete(t *testing.T) {
	reg := NewRegistry()
	const budget = 100

	// Two resident, evictable objects at usage 0.2 and 0.8, sized so evicting
	// just the low-usage one brings total under budget.
	lowUsage := &fakePageable{resident: true, size: 60}
	highUsage := &fakePageable{resident: true, size: 60}
	lowID := reg.Register(lowUsage, false)
	highID := reg.Register(highUsage, false)
	reg.objects[lowID].UsageMetric = 0.2
	reg.objects[highID].UsageMetric = 0.8

	// A deletable object that should never be touched if eviction alone
	// meets budget.
	deletable := &fakePageable{resident: true, size: 10}
	delID := reg.Register(deletable, true)
	reg.objects[delID].UsageMetric = 0.5

	// Usage currently 130, over the 100-byte budget.
	if got := reg.CurrentUsageBytes(); got != 130 {
		t.Fatalf("CurrentUsageBytes = %d, want 130", got)
	}

	dev := &fakeDevice{reg: reg, budgetBytes: budget}
	if err := RunFreeResidencyFSM(reg, dev, Budget{BytesLimit: budget, PreferEviction: true}); err != nil {
		t.Fatalf("RunFreeResidencyFSM: %v", err)
	}

	if reg.objects[lowID].IsResident {
		t.Errorf("low-usage object should have been evicted")
	}
	if !reg.objects[highID].IsResident {
		t.Errorf("high-usage object should not have been evicted")
	}
	if obj, ok := reg.objects[delID]; !ok || !obj.IsResident {
		t.Errorf("deletable object should not have been touched: eviction alone met budget")
	}
	if reg.CurrentUsageBytes() > budget {
		t.Errorf("CurrentUsageBytes = %d, want <= %d", reg.CurrentUsageBytes(), budget)
	}
}

func TestResidency_DeleteFallbackWhenEvictExhausted(t *testing.T) {
	reg := NewRegistry()
	const budget = 10

	// No evictable objects at all (everything already non-resident or
	// needed this frame) - only a deletion-safe object remains.
	deletable := &fakePageable{resident: true, size: 50}
	id := reg.Register(deletable, true)
	reg.objects[id].UsageMetric = 0.5

	dev := &fakeDevice{reg: reg, budgetBytes: budget}
	if err := RunFreeResidencyFSM(reg, dev, Budget{BytesLimit: budget, PreferEviction: true}); err != nil {
		t.Fatalf("RunFreeResidencyFSM: %v", err)
	}
	if dev.evictCalls == 0 {
		t.Fatalf("expected the delete state to still call Evict for the deletion-safe object")
	}
}

func TestResidency_BudgetExceededWhenNothingToFree(t *testing.T) {
	reg := NewRegistry()
	p := &fakePageable{resident: true, size: 1000}
	id := reg.Register(p, false) // not deletion-safe, so Delete has nothing either
	reg.objects[id].UsageMetric = 0.5
	reg.objects[id].NeedsResidencyThisFrame = true // not evictable: needed this frame

	dev := &fakeDevice{reg: reg, budgetBytes: 10}
	err := RunFreeResidencyFSM(reg, dev, Budget{BytesLimit: 10, PreferEviction: true})
	if err != ErrBudgetExceeded {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}
}
