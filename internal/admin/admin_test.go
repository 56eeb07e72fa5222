package admin

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"testing/quick"
)

type row struct {
	ID     string
	Status string
}

func (r row) StatusValue() string { return r.Status }

var statuses = []string{"open", "investigating", "resolved_buyer", "cancelled"}

func rowsFrom(seed []uint8) []row {
	out := make([]row, len(seed))
	for i, b := range seed {
		out[i] = row{ID: string(rune('a' + i%26)), Status: statuses[int(b)%len(statuses)]}
	}
	return out
}

func TestFilterByStatusOnlyReturnsMatches(t *testing.T) {
	prop := func(seed []uint8, pick uint8) bool {
		items := rowsFrom(seed)
		want := statuses[int(pick)%len(statuses)]
		got := FilterByStatus(items, want)
		n := 0
		for _, it := range items {
			if it.Status == want {
				n++
			}
		}
		if len(got) != n {
			return false
		}
		for _, it := range got {
			if it.Status != want {
				return false
			}
		}
		return true
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}

func TestFilterByStatusEmptyKeepsAll(t *testing.T) {
	items := rowsFrom([]uint8{0, 1, 2, 3})
	if got := FilterByStatus(items, ""); len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
}

func TestToggleTwiceRestoresSelection(t *testing.T) {
	prop := func(initial []string, id string) bool {
		s := NewSelection(initial...)
		before := s.IDs()
		s.Toggle(id)
		s.Toggle(id)
		return reflect.DeepEqual(before, s.IDs())
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}

func TestToggleAll(t *testing.T) {
	s := NewSelection("a")
	s.ToggleAll([]string{"a", "b", "c"})
	if s.Len() != 3 {
		t.Fatalf("expected all selected, got %v", s.IDs())
	}
	s.ToggleAll([]string{"a", "b", "c"})
	if s.Len() != 0 {
		t.Fatalf("expected cleared selection, got %v", s.IDs())
	}
}

func TestApplyBulkCallsOncePerIDAndClears(t *testing.T) {
	prop := func(ids []string) bool {
		sel := NewSelection(ids...)
		n := sel.Len()
		calls := map[string]int{}
		res, err := ApplyBulk(context.Background(), "approve", sel, func(_ context.Context, id string) error {
			calls[id]++
			return nil
		})
		if n == 0 {
			return errors.Is(err, ErrEmptySelection)
		}
		if err != nil || len(calls) != n || res.Requested != n || len(res.Succeeded) != n {
			return false
		}
		for _, c := range calls {
			if c != 1 {
				return false
			}
		}
		return sel.Len() == 0
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}

func TestApplyBulkCollectsFailures(t *testing.T) {
	sel := NewSelection("l1", "l2", "l3")
	res, err := ApplyBulk(context.Background(), "remove", sel, func(_ context.Context, id string) error {
		if id == "l2" {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.Succeeded, []string{"l1", "l3"}) {
		t.Errorf("succeeded = %v", res.Succeeded)
	}
	if res.Failed["l2"] != "boom" {
		t.Errorf("failed = %v", res.Failed)
	}
	if sel.Len() != 0 {
		t.Errorf("selection not cleared")
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	p := Paginate(items, 2, 2)
	if !reflect.DeepEqual(p.Items, []int{3, 4}) || p.Total != 5 {
		t.Fatalf("unexpected page %+v", p)
	}
	p = Paginate(items, 9, 2)
	if len(p.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", p)
	}
	p = Paginate(items, 0, 0)
	if p.Page != 1 || p.PerPage != DefaultPerPage || len(p.Items) != 5 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	p = Paginate(items, 3, 2)
	if !reflect.DeepEqual(p.Items, []int{5}) {
		t.Fatalf("last partial page %+v", p)
	}
	// (page-1)*perPage would overflow int here.
	p = Paginate([]int{1, 2, 3}, 922337203685477581, 20)
	if len(p.Items) != 0 || p.Total != 3 {
		t.Fatalf("huge page %+v", p)
	}
}
