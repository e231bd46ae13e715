package catalog

import (
	"encoding/json"
	"slices"
	"testing"
)

func testCatalog() *Catalog {
	return New(
		[]Record{
			{ID: "4151", Name: "Abyssal whip", ImagePath: "Abyssal whip.png"},
			{ID: "1333", Name: "Rune scimitar", ImagePath: "Rune scimitar.png"},
			{ID: "", Name: "No id"},
			{ID: "4151", Name: "Duplicate whip"},
			{ID: "995", Name: "Coins", ImagePath: "Coins.png"},
		},
		[]Placeholder{
			{PlaceholderID: "14032", ID: "4151"},
			{PlaceholderID: "1", ID: "404"},
		},
	)
}

func TestNew(t *testing.T) {
	c := testCatalog()

	if c.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", c.Len())
	}
	var ids []int
	for _, def := range c.Items() {
		ids = append(ids, def.InternalID)
	}
	if want := []int{0, 1, 3, 4}; !slices.Equal(ids, want) {
		t.Errorf("Items() internal ids = %v, want %v", ids, want)
	}
	whip, _ := c.ByExternal("4151")
	if whip.InternalID != 0 || whip.Name != "Abyssal whip" {
		t.Errorf("duplicate id should resolve to the first definition, got %+v", whip)
	}
	if dup, ok := c.ByInternal(3); !ok || dup.Name != "Duplicate whip" {
		t.Errorf("ByInternal(3) = %+v, %v; duplicate should keep its slot", dup, ok)
	}
	if whip.PlaceholderID != "14032" {
		t.Errorf("PlaceholderID = %q, want 14032", whip.PlaceholderID)
	}
	if _, ok := c.ByPlaceholder("1"); ok {
		t.Error("placeholder for unknown item should be ignored")
	}
}

func TestNewKeepsSourcePositions(t *testing.T) {
	var recs []Record
	if err := json.Unmarshal([]byte(`[{"id":null,"name":"gap"},{"id":"","name":"blank"},{"id":995,"name":"Coins"}]`), &recs); err != nil {
		t.Fatal(err)
	}
	c := New(recs, nil)

	coins, ok := c.ByExternal("995")
	if !ok || coins.InternalID != 2 {
		t.Fatalf("ByExternal(995) = %+v, %v; want internal id 2", coins, ok)
	}
	for _, hole := range []int{0, 1} {
		if _, ok := c.ByInternal(hole); ok {
			t.Errorf("ByInternal(%d) should miss for a record without an id", hole)
		}
		if _, ok := c.ExternalID(hole); ok {
			t.Errorf("ExternalID(%d) should miss", hole)
		}
	}
	if got := c.Search("", 0); len(got) != 1 {
		t.Errorf("Search() = %+v, want only Coins", got)
	}
}

func TestLookups(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name   string
		lookup func() (ItemDefinition, bool)
		wantOK bool
		wantID int
	}{
		{"internal hit", func() (ItemDefinition, bool) { return c.ByInternal(1) }, true, 1},
		{"internal negative", func() (ItemDefinition, bool) { return c.ByInternal(-1) }, false, 0},
		{"internal hole", func() (ItemDefinition, bool) { return c.ByInternal(2) }, false, 0},
		{"internal duplicate", func() (ItemDefinition, bool) { return c.ByInternal(3) }, true, 3},
		{"internal past end", func() (ItemDefinition, bool) { return c.ByInternal(5) }, false, 0},
		{"external hit", func() (ItemDefinition, bool) { return c.ByExternal("995") }, true, 4},
		{"external trims", func() (ItemDefinition, bool) { return c.ByExternal(" 1333 ") }, true, 1},
		{"external miss", func() (ItemDefinition, bool) { return c.ByExternal("99999") }, false, 0},
		{"placeholder hit", func() (ItemDefinition, bool) { return c.ByPlaceholder("14032") }, true, 0},
		{"placeholder miss", func() (ItemDefinition, bool) { return c.ByPlaceholder("4151") }, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := tt.lookup()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && def.InternalID != tt.wantID {
				t.Errorf("InternalID = %d, want %d", def.InternalID, tt.wantID)
			}
		})
	}
}

func TestExternalIDAndName(t *testing.T) {
	c := testCatalog()

	if ext, ok := c.ExternalID(1); !ok || ext != "1333" {
		t.Errorf("ExternalID(1) = %q, %v", ext, ok)
	}
	if _, ok := c.ExternalID(42); ok {
		t.Error("ExternalID(42) should miss")
	}
	if got := c.Name(4); got != "Coins" {
		t.Errorf("Name(4) = %q", got)
	}
	if got := c.Name(2); got != "#2" {
		t.Errorf("Name(2) = %q, want #2 for a hole", got)
	}
	if got := c.Name(42); got != "#42" {
		t.Errorf("Name(42) = %q, want #42", got)
	}
}

func TestSearch(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		query string
		limit int
		want  int
	}{
		{"", 0, 4},
		{"", 2, 2},
		{"WHIP", 0, 2},
		{"  s ", 0, 3},
		{"dragon", 0, 0},
	}
	for _, tt := range tests {
		if got := c.Search(tt.query, tt.limit); len(got) != tt.want {
			t.Errorf("Search(%q, %d) = %d items, want %d", tt.query, tt.limit, len(got), tt.want)
		}
	}
}

func TestEmpty(t *testing.T) {
	c := Empty()
	if c.Len() != 0 {
		t.Errorf("Empty().Len() = %d", c.Len())
	}
	if _, ok := c.ByExternal("1"); ok {
		t.Error("empty catalog lookup should miss")
	}
}

func TestFlexIDUnmarshal(t *testing.T) {
	var recs []Record
	data := `[{"id":4151,"name":"a"},{"id":"995","name":"b"},{"id":null,"name":"c"}]`
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	want := []FlexID{"4151", "995", ""}
	for i, w := range want {
		if recs[i].ID != w {
			t.Errorf("recs[%d].ID = %q, want %q", i, recs[i].ID, w)
		}
	}

	var bad Record
	if err := json.Unmarshal([]byte(`{"id":true}`), &bad); err == nil {
		t.Error("boolean id should fail")
	}
}

func TestFlexIDMarshal(t *testing.T) {
	out, err := json.Marshal([]FlexID{"4151", "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `[4151,"abc"]` {
		t.Errorf("Marshal() = %s", out)
	}
}
