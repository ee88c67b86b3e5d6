package handlers

import (
	"reflect"
	"testing"

	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/settings"
)

func TestParseGenerate(t *testing.T) {
	tests := []struct {
		args      string
		wantCount int
		wantID    string
		wantErr   bool
	}{
		{"", 5, "", false},
		{"3", 3, "", false},
		{"hospital", 5, "hospital", false},
		{"hotel 7", 7, "hotel", false},
		{"0", 0, "", true},
		{"51", 0, "", true},
		{"a b", 0, "", true},
	}
	for _, tc := range tests {
		count, id, err := parseGenerate(tc.args, 5)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseGenerate(%q) err = %v", tc.args, err)
		}
		if err == nil && (count != tc.wantCount || id != tc.wantID) {
			t.Fatalf("parseGenerate(%q) = %d %q, want %d %q", tc.args, count, id, tc.wantCount, tc.wantID)
		}
	}
}

func TestParseFilter(t *testing.T) {
	in, err := parseFilter("Colors navy,  white ,")
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	sel := in.apply(promptgen.Selection{Industries: []string{"Medical"}})
	want := promptgen.Selection{Industries: []string{"Medical"}, Colors: []string{"navy", "white"}}
	if !reflect.DeepEqual(sel, want) {
		t.Fatalf("selection = %+v, want %+v", sel, want)
	}

	in, _ = parseFilter("gender Female")
	if got := in.apply(promptgen.Selection{}).Genders; len(got) != 1 || got[0] != "female" {
		t.Fatalf("genders = %q", got)
	}

	in, _ = parseFilter("industry")
	if got := in.apply(sel).Industries; len(got) != 0 {
		t.Fatalf("field without values should clear it, got %q", got)
	}

	in, _ = parseFilter("clear")
	if !in.apply(sel).Empty() {
		t.Fatalf("clear kept filters")
	}

	for _, bad := range []string{"", "shoes red"} {
		if _, err := parseFilter(bad); err == nil {
			t.Fatalf("parseFilter(%q) should fail", bad)
		}
	}
}

func TestParseRateAndCaption(t *testing.T) {
	id, rating, err := parseRate("#12 4")
	if err != nil || id != 12 || rating != 4 {
		t.Fatalf("parseRate = %d %d %v", id, rating, err)
	}
	if _, _, err := parseRate("12"); err == nil {
		t.Fatalf("parseRate without rating should fail")
	}

	if id, ok := captionPromptID(" #99 looks good"); !ok || id != 99 {
		t.Fatalf("captionPromptID = %d %v", id, ok)
	}
	if _, ok := captionPromptID("nice photo"); ok {
		t.Fatalf("plain caption should not name a prompt")
	}
}

func TestApplySettingsAction(t *testing.T) {
	s := settings.Defaults()

	next, changed := applySettingsAction(s, "next", []string{"ar"})
	if !changed || next.AspectRatio != "--ar 16:9" {
		t.Fatalf("next ar = %q", next.AspectRatio)
	}
	next, _ = applySettingsAction(s, "toggle", []string{"jp"})
	if !next.UseJapaneseModel {
		t.Fatalf("toggle jp did not flip")
	}

	s.PromptCount = settings.MaxPromptCount
	if _, changed := applySettingsAction(s, "count", []string{"+"}); changed {
		t.Fatalf("count above max should be a no-op")
	}
	if _, changed := applySettingsAction(s, "done", nil); changed {
		t.Fatalf("done should not change settings")
	}
	if got, _ := applySettingsAction(s, "reset", nil); got != settings.Defaults() {
		t.Fatalf("reset = %+v", got)
	}
}

func TestFormatList(t *testing.T) {
	list := []promptgen.Prompt{
		{ID: 1, FullPrompt: "a", IsFavorite: true, Rating: 2},
		{ID: 2, FullPrompt: "b"},
	}
	got := formatList("History", list, 1)
	want := "History (1 of 2):\n\n#1 ❤️ ⭐⭐\na"
	if got != want {
		t.Fatalf("formatList = %q, want %q", got, want)
	}
	if got := formatList("Favorites", nil, 10); got != "Favorites: empty" {
		t.Fatalf("empty list = %q", got)
	}
}
