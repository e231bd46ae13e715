package banktags

import (
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
)

// testCatalog maps internal ids 0..7 to external ids; 3 <-> 100 and
// 7 <-> 200 as in the round-trip example.
func testCatalog() *catalog.Catalog {
	ext := []string{"10", "11", "12", "100", "14", "15", "16", "200"}
	recs := make([]catalog.Record, len(ext))
	for i, e := range ext {
		recs[i] = catalog.Record{ID: catalog.FlexID(e), Name: "item " + e}
	}
	return catalog.New(recs, []catalog.Placeholder{{PlaceholderID: "300", ID: "200"}})
}

type triple struct{ x, y, id int }

func triples(items []grid.PlacedItem) []triple {
	out := make([]triple, len(items))
	for i, it := range items {
		out[i] = triple{it.X, it.Y, it.ItemID}
	}
	slices.SortFunc(out, func(a, b triple) int {
		if a.y != b.y {
			return a.y - b.y
		}
		return a.x - b.x
	})
	return out
}

func TestRoundTrip(t *testing.T) {
	cat := testCatalog()
	l := grid.New(1, "Test")
	l.Place(0, 0, 3, 1)
	l.Place(1, 0, 7, 1)

	text := Encode(l, cat)
	if text != "banktags,1,Test,20594,layout,0,100,1,200" {
		t.Errorf("Encode() = %q", text)
	}

	tag, err := Decode(text, catalog.DefaultChain(cat))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if tag.Name != "Test" {
		t.Errorf("Name = %q, want Test", tag.Name)
	}
	items, skipped := tag.ToPlaced()
	if skipped != 0 {
		t.Errorf("skipped = %d", skipped)
	}
	if got, want := triples(items), triples(l.Items); !slices.Equal(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
	if len(tag.Warnings) != 0 {
		t.Errorf("warnings = %v", tag.Warnings)
	}
}

func TestRoundTripLargerLayout(t *testing.T) {
	cat := testCatalog()
	l := grid.New(2, "Big")
	l.InsertRowBelow(7)
	l.InsertRowBelow(8)
	l.Place(7, 9, 5, 1)
	l.Place(3, 4, 0, 1)
	l.Place(0, 8, 7, 1)

	tag, err := Decode(Encode(l, cat), cat2resolver(cat))
	if err != nil {
		t.Fatal(err)
	}
	items, _ := tag.ToPlaced()
	if got, want := triples(items), triples(l.Items); !slices.Equal(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}

func cat2resolver(c *catalog.Catalog) Resolver { return catalog.DefaultChain(c) }

func TestDecodeHeaderExample(t *testing.T) {
	tag, err := Decode("banktags,1,MyTag,952,layout,5,6585", nil)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if tag.Name != "MyTag" || tag.IconExternalID != "952" {
		t.Errorf("header = %q/%q", tag.Name, tag.IconExternalID)
	}
	if len(tag.Items) != 1 {
		t.Fatalf("items = %+v", tag.Items)
	}
	want := Item{X: 5, Y: 0, ItemID: 6585, Quantity: 1}
	if tag.Items[0] != want {
		t.Errorf("item = %+v, want %+v", tag.Items[0], want)
	}
}

func TestDecodeUnresolvedFallsBackToNumeric(t *testing.T) {
	tag, err := Decode("banktags,1,X,100,layout,9,99999", catalog.DefaultChain(testCatalog()))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if tag.Items[0].ItemID != 99999 || tag.Items[0].X != 1 || tag.Items[0].Y != 1 {
		t.Errorf("item = %+v", tag.Items[0])
	}
	want := []UnresolvedIDWarning{{Cell: 9, ExternalID: "99999", Fallback: "numeric"}}
	if !slices.Equal(tag.Warnings, want) {
		t.Errorf("warnings = %v, want %v", tag.Warnings, want)
	}
}

func TestDecodeResolution(t *testing.T) {
	tag, err := Decode("banktags,1,X,100,layout,0,100,1,300,2,abc,3,14", catalog.DefaultChain(testCatalog()))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(tag.Items) != 4 {
		t.Fatalf("items = %+v", tag.Items)
	}
	if tag.Items[0].ItemID != 3 {
		t.Errorf("reverse map: id = %d, want 3", tag.Items[0].ItemID)
	}
	if tag.Items[1].ItemID != 7 {
		t.Errorf("placeholder map: id = %d, want 7", tag.Items[1].ItemID)
	}
	if tag.Items[2].Opaque != "abc" {
		t.Errorf("opaque: %+v", tag.Items[2])
	}
	if tag.Items[3].ItemID != 4 {
		t.Errorf("reverse map: id = %d, want 4", tag.Items[3].ItemID)
	}
	if len(tag.Warnings) != 1 || tag.Warnings[0].Fallback != "opaque" {
		t.Errorf("warnings = %v", tag.Warnings)
	}

	items, skipped := tag.ToPlaced()
	if len(items) != 3 || skipped != 1 {
		t.Errorf("ToPlaced() = %d items, %d skipped", len(items), skipped)
	}
}

func TestDecodeSkipsBadPairs(t *testing.T) {
	tag, err := Decode("banktags,1,X,1,layout,a,5,-1,6,2,,3,7,4", nil)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(tag.Items) != 1 || tag.Items[0].X != 3 || tag.Items[0].ItemID != 7 {
		t.Errorf("items = %+v, want only cell 3", tag.Items)
	}
}

func TestDecodeSkipsCellsPastLastRow(t *testing.T) {
	last := strconv.Itoa(grid.MaxCells - 1)
	text := "banktags,1,X,1,layout,9223372036854775807,5," + strconv.Itoa(grid.MaxCells) + ",6," + last + ",7"
	tag, err := Decode(text, nil)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(tag.Items) != 1 {
		t.Fatalf("items = %+v, want only the last cell", tag.Items)
	}
	if it := tag.Items[0]; it.X != grid.Columns-1 || it.Y != grid.MaxHeight-1 || it.ItemID != 7 {
		t.Errorf("item = %+v", it)
	}
}

func TestDecodeLenient(t *testing.T) {
	text := "\n\n  BankTags, 1 , Spaced , 5 , extra, layout , 8 , 12 \nsecond line is ignored"
	tag, err := Decode(text, nil)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if tag.Name != "Spaced" {
		t.Errorf("Name = %q", tag.Name)
	}
	if len(tag.Items) != 1 || tag.Items[0].Y != 1 || tag.Items[0].ItemID != 12 {
		t.Errorf("items = %+v", tag.Items)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"empty", "", errors.ErrCodeEmptyInput},
		{"whitespace", "  \n\t\n ", errors.ErrCodeEmptyInput},
		{"not banktags", "hello world", errors.ErrCodeInvalidFormat},
		{"prefix only", "banktagsx,1,a,b,layout,1,2", errors.ErrCodeInvalidFormat},
		{"too few fields", "banktags,1,MyTag,952,layout,5", errors.ErrCodeInvalidFormat},
		{"no layout token", "banktags,1,MyTag,952,5,6585,7", errors.ErrCodeInvalidFormat},
		{"token as name", "banktags,1,layout,952,5,6585,7", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := Decode(tt.input, nil)
			if tag != nil {
				t.Errorf("Decode() tag = %+v, want nil", tag)
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDecodeShapeInMessage(t *testing.T) {
	_, err := Decode("banktags,1,a", nil)
	if err == nil || !strings.Contains(errors.UserMessage(err), Shape) {
		t.Errorf("error %v should describe the expected shape", err)
	}
}

func TestEncode(t *testing.T) {
	cat := testCatalog()

	t.Run("commas in name", func(t *testing.T) {
		l := grid.New(1, "a,b,c")
		l.Place(0, 0, 1, 1)
		if got := Encode(l, cat); !strings.HasPrefix(got, "banktags,1,a b c,") {
			t.Errorf("Encode() = %q", got)
		}
	})

	t.Run("thumbnail through forward map", func(t *testing.T) {
		l := grid.New(1, "x")
		l.SetThumbnail(7, "img.png")
		if got := Encode(l, cat); got != "banktags,1,x,200,layout" {
			t.Errorf("Encode() = %q", got)
		}
	})

	t.Run("unknown ids fall back to internal id", func(t *testing.T) {
		l := grid.New(1, "x")
		l.SetThumbnail(42, "")
		l.Place(2, 1, 55, 1)
		if got := Encode(l, cat); got != "banktags,1,x,42,layout,10,55" {
			t.Errorf("Encode() = %q", got)
		}
	})

	t.Run("pairs sorted by cell", func(t *testing.T) {
		l := grid.New(1, "x")
		l.Place(0, 2, 0, 1)
		l.Place(5, 0, 1, 1)
		l.Place(1, 1, 2, 1)
		if got := Encode(l, nil); got != "banktags,1,x,20594,layout,5,1,9,2,16,0" {
			t.Errorf("Encode() = %q", got)
		}
	})

	t.Run("single line", func(t *testing.T) {
		l := grid.New(1, "multi\nline")
		l.Place(0, 0, 0, 1)
		if got := Encode(l, cat); strings.ContainsAny(got, "\r\n") {
			t.Errorf("Encode() = %q contains a line break", got)
		}
	})
}
