package promptgen

import (
	"testing"

	"uniform-prompt-studio/internal/catalog"
)

func gender(g catalog.Gender) *catalog.Gender { return &g }

func filterFixture() []catalog.Uniform {
	return []catalog.Uniform{
		{ID: "nurse", Name: "Nurse", Industries: []string{"Healthcare"}, StyleKeywords: []string{"Clean"}, Materials: []string{"Cotton blend"}, ColorPalette: []string{"Light Blue"}, Gender: gender(catalog.GenderFemale)},
		{ID: "chef", Name: "Chef", Industries: []string{"Food Service"}, StyleKeywords: []string{"traditional"}, Materials: []string{"cotton"}, ColorPalette: []string{"white"}},
		{ID: "guard", Name: "Guard", Industries: []string{"Security"}, StyleKeywords: []string{"authoritative"}, Materials: []string{"polyester"}, ColorPalette: []string{"black"}, Gender: gender(catalog.GenderMale)},
	}
}

func ids(records []catalog.Uniform) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"empty selection keeps order", Selection{}, []string{"nurse", "chef", "guard"}},
		{"uniform id exact", Selection{UniformIDs: []string{"chef"}}, []string{"chef"}},
		{"uniform id is not substring", Selection{UniformIDs: []string{"che"}}, []string{}},
		{"industry substring any case", Selection{Industries: []string{"health"}}, []string{"nurse"}},
		{"or within field", Selection{Industries: []string{"health", "SECURITY"}}, []string{"nurse", "guard"}},
		{"and across fields", Selection{Materials: []string{"cotton"}, Colors: []string{"white"}}, []string{"chef"}},
		{"style", Selection{Styles: []string{"AUTHOR"}}, []string{"guard"}},
		{"untagged record passes gender", Selection{Genders: []string{"female"}}, []string{"nurse", "chef"}},
		{"gender is normalized", Selection{Genders: []string{" Male "}}, []string{"chef", "guard"}},
		{"no match", Selection{Colors: []string{"purple"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(filterFixture(), tt.sel.Normalize()))
			if len(got) != len(tt.want) {
				t.Fatalf("Filter = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Filter = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSelectionNormalizeDropsBlanks(t *testing.T) {
	sel := Selection{Industries: []string{" ", ""}, Colors: []string{" red "}}.Normalize()
	if sel.Industries != nil {
		t.Fatalf("Industries = %v, want nil", sel.Industries)
	}
	if len(sel.Colors) != 1 || sel.Colors[0] != "red" {
		t.Fatalf("Colors = %v", sel.Colors)
	}
	if (Selection{Industries: []string{" "}}).Normalize().Empty() != true {
		t.Fatalf("blank-only selection should be empty")
	}
}
