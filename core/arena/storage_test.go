package arena

import "testing"

type resourceRecord struct {
	name string
}

func TestStorage_InsertGet(t *testing.T) {
	s := NewStorage[resourceRecord, resourceMarker](0)
	id := NewID[resourceMarker](0, 1)
	s.Insert(id, resourceRecord{name: "vertex-buffer"})

	got, ok := s.Get(id)
	if !ok {
		t.Fatal("Get() = false, want true")
	}
	if got.name != "vertex-buffer" {
		t.Errorf("got.name = %q, want %q", got.name, "vertex-buffer")
	}
}

func TestStorage_GetStaleEpochFails(t *testing.T) {
	s := NewStorage[resourceRecord, resourceMarker](0)
	first := NewID[resourceMarker](0, 1)
	s.Insert(first, resourceRecord{name: "first"})
	s.Remove(first)

	second := NewID[resourceMarker](0, 2)
	s.Insert(second, resourceRecord{name: "second"})

	if _, ok := s.Get(first); ok {
		t.Error("Get() with stale epoch succeeded, want false")
	}
	got, ok := s.Get(second)
	if !ok || got.name != "second" {
		t.Errorf("Get(second) = %+v, %v, want second, true", got, ok)
	}
}

func TestStorage_RemoveThenContains(t *testing.T) {
	s := NewStorage[resourceRecord, resourceMarker](0)
	id := NewID[resourceMarker](2, 1)
	s.Insert(id, resourceRecord{name: "heap-backed"})

	if !s.Contains(id) {
		t.Fatal("Contains() = false before Remove")
	}
	if _, ok := s.Remove(id); !ok {
		t.Fatal("Remove() = false, want true")
	}
	if s.Contains(id) {
		t.Error("Contains() = true after Remove")
	}
}

func TestStorage_GetMutMutatesInPlace(t *testing.T) {
	s := NewStorage[resourceRecord, resourceMarker](0)
	id := NewID[resourceMarker](0, 1)
	s.Insert(id, resourceRecord{name: "before"})

	ok := s.GetMut(id, func(r *resourceRecord) { r.name = "after" })
	if !ok {
		t.Fatal("GetMut() = false, want true")
	}
	got, _ := s.Get(id)
	if got.name != "after" {
		t.Errorf("got.name = %q, want %q", got.name, "after")
	}
}

func TestStorage_LenAndForEach(t *testing.T) {
	s := NewStorage[resourceRecord, resourceMarker](0)
	for i := 0; i < 5; i++ {
		s.Insert(NewID[resourceMarker](Index(i), 1), resourceRecord{name: "r"})
	}
	s.Remove(NewID[resourceMarker](2, 1))

	if got := s.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}

	count := 0
	s.ForEach(func(id ID[resourceMarker], r resourceRecord) bool {
		count++
		return true
	})
	if count != 4 {
		t.Errorf("ForEach visited %d items, want 4", count)
	}
}

func TestStorage_ForEachStopsEarly(t *testing.T) {
	s := NewStorage[resourceRecord, resourceMarker](0)
	for i := 0; i < 3; i++ {
		s.Insert(NewID[resourceMarker](Index(i), 1), resourceRecord{name: "r"})
	}

	visited := 0
	s.ForEach(func(id ID[resourceMarker], r resourceRecord) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Errorf("visited = %d, want 2", visited)
	}
}

func TestStorage_ClearResetsLenNotCapacity(t *testing.T) {
	s := NewStorage[resourceRecord, resourceMarker](0)
	for i := 0; i < 3; i++ {
		s.Insert(NewID[resourceMarker](Index(i), 1), resourceRecord{name: "r"})
	}
	cap := s.Capacity()
	s.Clear()

	if got := s.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	if s.Capacity() != cap {
		t.Errorf("Capacity() changed across Clear: got %d, want %d", s.Capacity(), cap)
	}
}

func TestRawID_ZipUnzipRoundTrip(t *testing.T) {
	raw := Zip(42, 7)
	index, epoch := raw.Unzip()
	if index != 42 || epoch != 7 {
		t.Errorf("Unzip() = (%d, %d), want (42, 7)", index, epoch)
	}
	if raw.IsZero() {
		t.Error("IsZero() = true for non-zero RawID")
	}
	if !(RawID(0)).IsZero() {
		t.Error("IsZero() = false for zero RawID")
	}
}
