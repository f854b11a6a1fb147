package component

import "testing"

func TestTagsMatch(t *testing.T) {
	tags := NewTags("enemy", "flying")

	cases := []struct {
		name  string
		query [][]string
		want  bool
	}{
		{"empty_query_matches", nil, true},
		{"single_present", [][]string{{"enemy"}}, true},
		{"single_absent", [][]string{{"player"}}, false},
		{"and_both_present", [][]string{{"enemy", "flying"}}, true},
		{"and_one_absent", [][]string{{"enemy", "boss"}}, false},
		{"or_second_term", [][]string{{"boss"}, {"flying"}}, true},
		{"or_none", [][]string{{"boss"}, {"player"}}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := tags.Match(c.query); got != c.want {
				t.Fatalf("Match(%v) = %v, want %v", c.query, got, c.want)
			}
		})
	}
}

func TestTagsAddRemove(t *testing.T) {
	tags := NewTags()
	tags.Add("a", "", "b")
	if tags.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (empty labels ignored)", tags.Len())
	}
	if !tags.Has("a", "x") {
		t.Fatalf("Has should match any-of")
	}
	tags.Remove("a")
	if tags.Has("a") {
		t.Fatalf("removed label still present")
	}
}

func TestTagsNilReceiver(t *testing.T) {
	var tags *Tags
	tags.Add("a")
	tags.Remove("a")
	if tags.Has("a") || tags.Len() != 0 {
		t.Fatalf("nil tags should be empty")
	}
	if tags.Match([][]string{{"a"}}) {
		t.Fatalf("nil tags should not match a non-empty query")
	}
	if !tags.Match(nil) {
		t.Fatalf("empty query matches even nil tags")
	}
}
