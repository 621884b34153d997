package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOrderedMap_SetKeepsPosition(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	if got, want := m.Keys(), []string{"b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Errorf("Get(b) = %v, want 3", v)
	}

	m.Delete("b")
	if m.Len() != 1 {
		t.Errorf("Len() = %d after delete, want 1", m.Len())
	}
	if _, ok := m.Get("b"); ok {
		t.Error("b should be gone")
	}
}

func TestOrderedMap_UnmarshalJSON(t *testing.T) {
	var m OrderedMap
	data := `{"zeta":"z","alpha":1,"mid":{"y":true,"x":null},"list":[1,2.5,"s"],"alpha":7}`
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got, want := m.Keys(), []string{"zeta", "alpha", "mid", "list"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := m.Get("alpha"); v != int64(7) {
		t.Errorf("alpha = %#v, want int64(7)", v)
	}

	mid, _ := m.Get("mid")
	nested, ok := mid.(*OrderedMap)
	if !ok {
		t.Fatalf("mid = %T, want *OrderedMap", mid)
	}
	if got, want := nested.Keys(), []string{"y", "x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nested Keys() = %v, want %v", got, want)
	}

	list, _ := m.Get("list")
	if want := []any{int64(1), 2.5, "s"}; !reflect.DeepEqual(list, want) {
		t.Errorf("list = %#v, want %#v", list, want)
	}
}

func TestOrderedMap_UnmarshalJSONRejectsNonObject(t *testing.T) {
	var m OrderedMap
	for _, data := range []string{`[1,2]`, `"text"`, `{"a":1} {"b":2}`} {
		if err := m.UnmarshalJSON([]byte(data)); err == nil {
			t.Errorf("UnmarshalJSON(%s) expected error", data)
		}
	}
}

func TestOrderedMap_MarshalJSON(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", 1)
	m.Set("a", "x")
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"z":1,"a":"x"}` {
		t.Errorf("Marshal() = %s", out)
	}
}
