package pagination

import "testing"

func TestToStoreQuery(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 10, 20, 10},
		{"page floored at one", 0, 10, 0, 10},
		{"negative page", -4, 25, 0, 25},
		{"limit clamped to max", 2, 500, 100, 100},
		{"zero limit raised to one", 5, 0, 4, 1},
		{"negative limit raised to one", 1, -3, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ToStoreQuery(tt.page, tt.limit)
			if q.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", q.Offset, tt.wantOffset)
			}
			if q.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", q.Limit, tt.wantLimit)
			}
		})
	}
}

func TestParams_Query(t *testing.T) {
	q := Params{Page: 2, Limit: 5}.Query()
	if q.Offset != 5 || q.Limit != 5 {
		t.Errorf("Query() = %+v, want {Offset:5 Limit:5}", q)
	}
}

func TestToResponse(t *testing.T) {
	t.Run("last page of three", func(t *testing.T) {
		items := []int{21, 22, 23, 24, 25}
		p := ToResponse(items, 25, 3, 10)

		if p.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", p.TotalPages)
		}
		if p.HasNext {
			t.Error("HasNext = true, want false")
		}
		if !p.HasPrevious {
			t.Error("HasPrevious = false, want true")
		}
		if len(p.Items) != 5 {
			t.Errorf("len(Items) = %d, want 5", len(p.Items))
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		p := ToResponse([]string(nil), 0, 1, 10)

		if p.TotalPages != 0 {
			t.Errorf("TotalPages = %d, want 0", p.TotalPages)
		}
		if p.HasNext || p.HasPrevious {
			t.Errorf("HasNext=%v HasPrevious=%v, want both false", p.HasNext, p.HasPrevious)
		}
		if p.Items == nil {
			t.Error("Items should be an empty slice, not nil")
		}
	})

	t.Run("middle page", func(t *testing.T) {
		p := ToResponse([]int{1}, 31, 2, 10)
		if p.TotalPages != 4 {
			t.Errorf("TotalPages = %d, want 4", p.TotalPages)
		}
		if !p.HasNext || !p.HasPrevious {
			t.Errorf("HasNext=%v HasPrevious=%v, want both true", p.HasNext, p.HasPrevious)
		}
	})

	t.Run("out of range limit is clamped", func(t *testing.T) {
		p := ToResponse([]int{}, 250, 1, 1000)
		if p.Limit != MaxLimit {
			t.Errorf("Limit = %d, want %d", p.Limit, MaxLimit)
		}
		if p.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", p.TotalPages)
		}
	})
}

func TestUnpaged(t *testing.T) {
	p := Unpaged([]int{1, 2, 3}, 3)
	if p.Page != 1 || p.Limit != 3 || p.TotalPages != 1 {
		t.Errorf("Unpaged() = %+v", p)
	}
	if p.HasNext || p.HasPrevious {
		t.Error("Unpaged() should have no neighbours")
	}

	empty := Unpaged[int](nil, 0)
	if empty.TotalPages != 0 || empty.Items == nil {
		t.Errorf("Unpaged(empty) = %+v", empty)
	}
}
