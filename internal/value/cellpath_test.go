package value_test

import (
	"testing"

	"github.com/cwbudde/quill/internal/value"
)

func TestFollowRecordColumn(t *testing.T) {
	rec := value.NewRecord([]string{"a", "b"}, []value.Value{
		value.NewInt(1, value.Unknown),
		value.NewInt(2, value.Unknown),
	}, value.Unknown)

	got, err := value.Follow(rec, []value.PathMember{{Name: "b", IsName: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(value.Int).Val != 2 {
		t.Fatalf("got %v, want Int(2)", got)
	}
}

func TestFollowMissingColumnErrors(t *testing.T) {
	rec := value.NewRecord([]string{"a"}, []value.Value{value.NewInt(1, value.Unknown)}, value.Unknown)
	_, err := value.Follow(rec, []value.PathMember{{Name: "missing", IsName: true}})
	if err == nil {
		t.Fatal("expected a PathError, got nil")
	}
	if _, ok := err.(*value.PathError); !ok {
		t.Fatalf("got %T, want *value.PathError", err)
	}
}

func TestFollowOptionalMissingYieldsNothing(t *testing.T) {
	rec := value.NewRecord([]string{"a"}, []value.Value{value.NewInt(1, value.Unknown)}, value.Unknown)
	got, err := value.Follow(rec, []value.PathMember{{Name: "missing", IsName: true, Optional: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != value.KindNothing {
		t.Fatalf("got %v, want Nothing", got)
	}
}

func TestFollowListBroadcastColumn(t *testing.T) {
	row := func(n int64) value.Value {
		return value.NewRecord([]string{"x"}, []value.Value{value.NewInt(n, value.Unknown)}, value.Unknown)
	}
	table := value.NewList([]value.Value{row(1), row(2)}, value.Unknown)

	got, err := value.Follow(table, []value.PathMember{{Name: "x", IsName: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := got.(value.List)
	if !ok || len(list.Items) != 2 {
		t.Fatalf("got %v, want a 2-item list", got)
	}
	if list.Items[0].(value.Int).Val != 1 || list.Items[1].(value.Int).Val != 2 {
		t.Fatalf("items = %v, want [1 2]", list.Items)
	}
}

func TestUpsertRecordOverwritesExistingColumn(t *testing.T) {
	rec := value.NewRecord([]string{"a"}, []value.Value{value.NewInt(1, value.Unknown)}, value.Unknown)
	got, err := value.Upsert(rec, []value.PathMember{{Name: "a", IsName: true}}, value.NewInt(9, value.Unknown))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated := got.(value.Record)
	v, _ := updated.Get("a")
	if v.(value.Int).Val != 9 {
		t.Fatalf("a = %v, want 9", v)
	}
}

func TestUpsertCreatesMissingPathFromNothing(t *testing.T) {
	got, err := value.Upsert(value.NewNothing(value.Unknown), []value.PathMember{{Name: "a", IsName: true}}, value.NewInt(5, value.Unknown))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, ok := got.(value.Record)
	if !ok {
		t.Fatalf("got %T, want Record", got)
	}
	v, ok := rec.Get("a")
	if !ok || v.(value.Int).Val != 5 {
		t.Fatalf("a = %v, want 5", v)
	}
}

func TestUpsertListGrowsOnIndexWrite(t *testing.T) {
	list := value.NewList(nil, value.Unknown)
	got, err := value.Upsert(list, []value.PathMember{{Index: 2}}, value.NewInt(7, value.Unknown))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := got.(value.List)
	if len(l.Items) != 3 {
		t.Fatalf("len = %d, want 3", len(l.Items))
	}
	if l.Items[2].(value.Int).Val != 7 {
		t.Fatalf("items[2] = %v, want 7", l.Items[2])
	}
	if l.Items[0].Kind() != value.KindNothing {
		t.Fatalf("items[0] = %v, want Nothing", l.Items[0])
	}
}
