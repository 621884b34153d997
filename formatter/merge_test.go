package formatter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/philipp01105/jsonlog/core"
)

func TestParseMergePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want MergePolicy
	}{
		{"", MergeTail},
		{"tail", MergeTail},
		{"HEAD", MergeHead},
		{"none", MergeNone},
		{"mix", MergeMix},
	}
	for _, tt := range tests {
		got, err := ParseMergePolicy(tt.in)
		if err != nil {
			t.Fatalf("ParseMergePolicy(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMergePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseMergePolicy("middle"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("ParseMergePolicy(middle) error = %v, want ConfigurationError", err)
	}
	if MergeMix.String() != "mix" || MergePolicy(9).String() != "unknown" {
		t.Error("String() returned unexpected names")
	}
}

func keysOf(ms []member) []string {
	keys := make([]string, len(ms))
	for i, m := range ms {
		keys[i] = m.key
	}
	return keys
}

func TestCollectExtras(t *testing.T) {
	spec := mustSpec(t, `{"user":"message"}`)
	e := &core.Event{Extras: []core.Field{
		core.FieldOf("b", 1),
		core.FieldOf("user", "declared"),
		core.FieldOf("levelname", "reserved"),
		core.FieldOf("a", "x"),
		core.FieldOf("b", 2),
	}}

	got := collectExtras(e, spec)
	want := []member{{"b", 2}, {"a", "x"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectExtras() = %+v, want %+v", got, want)
	}
	if len(e.Extras) != 5 {
		t.Error("collectExtras() must not modify the event")
	}
}

func TestMergePolicy_Merge(t *testing.T) {
	declared := func() []member { return []member{{"zzz", 1}, {"mmm", 2}} }
	extras := func() []member { return []member{{"bbb", 3}, {"aaa", 4}} }

	tests := []struct {
		policy MergePolicy
		want   []string
	}{
		{MergeNone, []string{"zzz", "mmm"}},
		{MergeHead, []string{"bbb", "aaa", "zzz", "mmm"}},
		{MergeTail, []string{"zzz", "mmm", "bbb", "aaa"}},
		{MergeMix, []string{"aaa", "bbb", "mmm", "zzz"}},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			if got := keysOf(tt.policy.merge(declared(), extras())); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("merge() keys = %v, want %v", got, tt.want)
			}
		})
	}

	if got := keysOf(MergeMix.merge(declared(), nil)); !reflect.DeepEqual(got, []string{"mmm", "zzz"}) {
		t.Errorf("mix without extras = %v", got)
	}
}
