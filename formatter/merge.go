package formatter

import (
	"sort"
	"strings"

	"github.com/philipp01105/jsonlog/core"
)

// MergePolicy decides where extras that the format specification does
// not declare end up in the output object.
type MergePolicy uint8

const (
	// MergeNone drops undeclared extras.
	MergeNone MergePolicy = iota
	// MergeHead places extras before the declared fields.
	MergeHead
	// MergeTail places extras after the declared fields.
	MergeTail
	// MergeMix sorts declared fields and extras together by key.
	MergeMix
)

// String returns the policy name.
func (p MergePolicy) String() string {
	switch p {
	case MergeNone:
		return "none"
	case MergeHead:
		return "head"
	case MergeTail:
		return "tail"
	case MergeMix:
		return "mix"
	default:
		return "unknown"
	}
}

// ParseMergePolicy parses none, head, tail or mix. The empty string is
// tail.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tail":
		return MergeTail, nil
	case "none":
		return MergeNone, nil
	case "head":
		return MergeHead, nil
	case "mix":
		return MergeMix, nil
	default:
		return MergeNone, configErr("MixExtraPosition", "unknown position %q, must be one of none, head, tail, mix", s)
	}
}

// member is one key/value pair of the output object.
type member struct {
	key string
	val any
}

// collectExtras returns the event extras that are neither reserved nor
// declared, in first-seen order with the last value for repeated keys.
func collectExtras(e *core.Event, spec *FormatSpec) []member {
	if len(e.Extras) == 0 {
		return nil
	}
	out := make([]member, 0, len(e.Extras))
	var pos map[string]int
	for _, f := range e.Extras {
		if core.IsReserved(f.Key) || spec.Has(f.Key) {
			continue
		}
		if i, ok := pos[f.Key]; ok {
			out[i].val = f.Value()
			continue
		}
		if pos == nil {
			pos = make(map[string]int, len(e.Extras))
		}
		pos[f.Key] = len(out)
		out = append(out, member{key: f.Key, val: f.Value()})
	}
	return out
}

// merge combines the declared members with extras.
func (p MergePolicy) merge(declared, extras []member) []member {
	if len(extras) == 0 {
		if p == MergeMix {
			sortMembers(declared)
		}
		return declared
	}
	switch p {
	case MergeHead:
		return append(extras, declared...)
	case MergeTail:
		return append(declared, extras...)
	case MergeMix:
		all := append(declared, extras...)
		sortMembers(all)
		return all
	default:
		return declared
	}
}

func sortMembers(ms []member) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].key < ms[j].key })
}
