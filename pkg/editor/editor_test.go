package editor

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
)

type fakeGate bool

func (g fakeGate) Ready() bool { return bool(g) }

type countingSaver struct {
	calls int
	err   error
}

func (s *countingSaver) Save(context.Context) error {
	s.calls++
	return s.err
}

func newTestEditor(t *testing.T, ready bool) (*Editor, *countingSaver) {
	t.Helper()
	cat := catalog.New([]catalog.Record{
		{ID: "100", Name: "a"}, {ID: "200", Name: "b"}, {ID: "300", Name: "c"},
	}, nil)
	saver := &countingSaver{}
	e := New(Options{Gate: fakeGate(ready), Codec: codec{cat}, Saver: saver})
	e.SetLayout(grid.New(1, "Test"))
	return e, saver
}

// codec adapts a static catalog to the Codec interface.
type codec struct{ c *catalog.Catalog }

func (c codec) Resolve(ext string) catalog.Resolution { return catalog.DefaultChain(c.c).Resolve(ext) }
func (c codec) ExternalID(id int) (string, bool)      { return c.c.ExternalID(id) }

var ctx = context.Background()

func p(x, y int) grid.Pos { return grid.Pos{X: x, Y: y} }

func TestSelectPaletteThenClickPlaces(t *testing.T) {
	e, saver := newTestEditor(t, true)

	if err := e.SelectPalette(2); err != nil {
		t.Fatal(err)
	}
	if got := e.Selection(); got != Palette(2) {
		t.Fatalf("selection = %v, want palette 2", got)
	}
	res, err := e.ClickCell(ctx, p(3, 4))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Error("place should change layout")
	}
	if it, ok := e.Layout().At(p(3, 4)); !ok || it.ItemID != 2 || it.Quantity != 1 {
		t.Errorf("At(3,4) = %+v, %v", it, ok)
	}
	if !e.Selection().IsNone() {
		t.Errorf("selection = %v, want none", e.Selection())
	}
	if saver.calls != 1 {
		t.Errorf("saves = %d, want 1", saver.calls)
	}
}

func TestPaletteClickReplacesOccupant(t *testing.T) {
	e, _ := newTestEditor(t, true)
	e.Layout().Place(0, 0, 1, 1)

	e.SelectPalette(2)
	e.ClickCell(ctx, p(0, 0))

	if len(e.Layout().Items) != 1 {
		t.Fatalf("items = %+v", e.Layout().Items)
	}
	if it, _ := e.Layout().At(p(0, 0)); it.ItemID != 2 {
		t.Errorf("occupant = %d, want 2", it.ItemID)
	}
}

func TestPaletteClickOutOfBoundsIsIgnored(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.SelectPalette(2)

	res, err := e.ClickCell(ctx, p(9, 0))
	if err != nil {
		t.Fatalf("out of bounds should not error: %v", err)
	}
	if res.Changed || len(e.Layout().Items) != 0 || saver.calls != 0 {
		t.Errorf("changed=%v items=%d saves=%d", res.Changed, len(e.Layout().Items), saver.calls)
	}
	if !e.Selection().IsNone() {
		t.Errorf("selection = %v, want none after click", e.Selection())
	}
}

func TestIdleClicks(t *testing.T) {
	e, _ := newTestEditor(t, true)
	e.Layout().Place(1, 1, 7, 1)

	e.ClickCell(ctx, p(0, 0))
	if !e.Selection().IsNone() {
		t.Errorf("click on empty cell selected %v", e.Selection())
	}
	e.ClickCell(ctx, p(1, 1))
	if got := e.Selection(); got != Placed(p(1, 1), 7) {
		t.Errorf("selection = %v, want placed item 7 at (1,1)", got)
	}
}

func TestPlacedSelectedClickEmptyMoves(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(1, 1, 7, 1)

	e.ClickCell(ctx, p(1, 1))
	res, err := e.ClickCell(ctx, p(5, 6))
	if err != nil || !res.Changed {
		t.Fatalf("move: %+v, %v", res, err)
	}
	if e.Layout().Occupied(p(1, 1)) || !e.Layout().Occupied(p(5, 6)) {
		t.Errorf("items = %+v", e.Layout().Items)
	}
	if !e.Selection().IsNone() || saver.calls != 1 {
		t.Errorf("selection=%v saves=%d", e.Selection(), saver.calls)
	}
}

func TestPlacedSelectedClickOccupiedReselects(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(0, 0, 1, 1)
	e.Layout().Place(1, 0, 2, 1)
	before := e.Layout().Clone()

	e.ClickCell(ctx, p(0, 0))
	e.ClickCell(ctx, p(1, 0))
	if got := e.Selection(); got != Placed(p(1, 0), 2) {
		t.Errorf("selection = %v", got)
	}
	e.ClickCell(ctx, p(1, 0))
	if got := e.Selection(); got != Placed(p(1, 0), 2) {
		t.Errorf("same cell: selection = %v", got)
	}
	if !reflect.DeepEqual(before.Items, e.Layout().Items) || saver.calls != 0 {
		t.Error("reselecting must not move anything")
	}
}

func TestDragPlacedSwaps(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(0, 0, 1, 1)
	e.Layout().Place(2, 2, 2, 1)
	e.Restore(Placed(p(0, 0), 1))

	res, err := e.DragPlaced(ctx, p(0, 0), p(2, 2))
	if err != nil || !res.Changed {
		t.Fatalf("drag: %+v, %v", res, err)
	}
	a, _ := e.Layout().At(p(2, 2))
	b, _ := e.Layout().At(p(0, 0))
	if a.ItemID != 1 || b.ItemID != 2 || len(e.Layout().Items) != 2 {
		t.Errorf("items = %+v", e.Layout().Items)
	}
	if !e.Selection().IsNone() || saver.calls != 1 {
		t.Errorf("selection=%v saves=%d", e.Selection(), saver.calls)
	}
}

func TestDragPlacedFromEmptyIsNoop(t *testing.T) {
	e, saver := newTestEditor(t, true)
	res, err := e.DragPlaced(ctx, p(0, 0), p(1, 1))
	if err != nil || res.Changed || saver.calls != 0 {
		t.Errorf("res=%+v err=%v saves=%d", res, err, saver.calls)
	}
}

func TestDragPaletteReplaces(t *testing.T) {
	e, _ := newTestEditor(t, true)
	e.Layout().Place(4, 4, 1, 1)

	if _, err := e.DragPalette(ctx, 9, p(4, 4)); err != nil {
		t.Fatal(err)
	}
	if it, _ := e.Layout().At(p(4, 4)); it.ItemID != 9 || len(e.Layout().Items) != 1 {
		t.Errorf("items = %+v", e.Layout().Items)
	}
}

func TestDoubleClickPaletteFillsFirstEmpty(t *testing.T) {
	e, _ := newTestEditor(t, true)
	e.Layout().Place(0, 0, 1, 1)
	e.Layout().Place(1, 0, 1, 1)

	e.DoubleClickPalette(ctx, 5)
	if it, ok := e.Layout().At(p(2, 0)); !ok || it.ItemID != 5 {
		t.Errorf("At(2,0) = %+v, %v", it, ok)
	}
}

func TestDoubleClickPaletteFullLayout(t *testing.T) {
	e, saver := newTestEditor(t, true)
	for y := range grid.MinHeight {
		for x := range grid.Columns {
			e.Layout().Place(x, y, 1, 1)
		}
	}
	res, err := e.DoubleClickPalette(ctx, 5)
	if err != nil || res.Changed || saver.calls != 0 {
		t.Errorf("res=%+v err=%v saves=%d", res, err, saver.calls)
	}
	if len(e.Layout().Items) != grid.Columns*grid.MinHeight {
		t.Errorf("items = %d", len(e.Layout().Items))
	}
}

func TestDoubleClickCellRemoves(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(3, 3, 1, 1)
	e.ClickCell(ctx, p(3, 3))

	res, err := e.DoubleClickCell(ctx, p(3, 3))
	if err != nil || !res.Changed {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if e.Layout().Occupied(p(3, 3)) || !e.Selection().IsNone() || saver.calls != 1 {
		t.Errorf("occupied=%v selection=%v saves=%d", e.Layout().Occupied(p(3, 3)), e.Selection(), saver.calls)
	}

	res, _ = e.DoubleClickCell(ctx, p(3, 3))
	if res.Changed {
		t.Error("double-click on empty cell changed layout")
	}
}

func TestCancelAndSetLayoutClearSelection(t *testing.T) {
	e, _ := newTestEditor(t, true)
	e.SelectPalette(1)
	e.Cancel()
	if !e.Selection().IsNone() {
		t.Error("Cancel() kept selection")
	}

	e.SelectPalette(1)
	e.SetLayout(grid.New(2, "Other"))
	if !e.Selection().IsNone() {
		t.Error("SetLayout() kept selection")
	}

	e.SelectPalette(1)
	e.Rebuild()
	if !e.Selection().IsNone() {
		t.Error("Rebuild() kept selection")
	}
}

func TestGateRejectsPaletteAndImport(t *testing.T) {
	e, saver := newTestEditor(t, false)
	e.Layout().Place(0, 0, 1, 1)
	before := e.Layout().Clone()

	checks := []struct {
		name string
		run  func() error
	}{
		{"select palette", func() error { return e.SelectPalette(1) }},
		{"double-click palette", func() error { _, err := e.DoubleClickPalette(ctx, 1); return err }},
		{"drag palette", func() error { _, err := e.DragPalette(ctx, 1, p(1, 1)); return err }},
		{"place", func() error { _, err := e.Dispatch(ctx, Place{Pos: p(1, 1), ItemID: 1}); return err }},
		{"import", func() error {
			_, err := e.Dispatch(ctx, Import{Text: "banktags,1,x,1,layout,5,100"})
			return err
		}},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if err := c.run(); !errors.Is(err, errors.ErrCodeCatalogPending) {
				t.Errorf("error = %v, want CATALOG_PENDING", err)
			}
		})
	}
	if !reflect.DeepEqual(before, e.Layout()) || saver.calls != 0 {
		t.Error("rejected commands changed the layout")
	}

	// Commands that do not need ids still run.
	if _, err := e.DragPlaced(ctx, p(0, 0), p(1, 0)); err != nil {
		t.Errorf("move while pending: %v", err)
	}
	if _, err := e.Dispatch(ctx, Export{}); err != nil {
		t.Errorf("export while pending: %v", err)
	}
}

func TestRowCommands(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(0, 1, 1, 1)
	e.Layout().Place(0, 3, 2, 1)

	if _, err := e.Dispatch(ctx, InsertRow{Row: 1}); err != nil {
		t.Fatal(err)
	}
	if e.Layout().Height != 9 || !e.Layout().Occupied(p(0, 4)) || !e.Layout().Occupied(p(0, 1)) {
		t.Errorf("after insert: height=%d items=%+v", e.Layout().Height, e.Layout().Items)
	}
	if _, err := e.Dispatch(ctx, DeleteRow{Row: 2}); err != nil {
		t.Fatal(err)
	}
	if e.Layout().Height != 8 || !e.Layout().Occupied(p(0, 3)) {
		t.Errorf("after delete: height=%d items=%+v", e.Layout().Height, e.Layout().Items)
	}
	if saver.calls != 2 {
		t.Errorf("saves = %d", saver.calls)
	}

	for _, cmd := range []Command{InsertRow{Row: -1}, DeleteRow{Row: 8}} {
		if _, err := e.Dispatch(ctx, cmd); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%s out of range: %v", cmd.Name(), err)
		}
	}
	if saver.calls != 2 {
		t.Errorf("rejected row commands saved: %d", saver.calls)
	}
}

func TestClearCommand(t *testing.T) {
	e, _ := newTestEditor(t, true)
	e.Layout().InsertRowBelow(7)
	e.Layout().Place(1, 8, 1, 1)
	e.Layout().SetThumbnail(1, "x.png")

	if _, err := e.Dispatch(ctx, Clear{}); err != nil {
		t.Fatal(err)
	}
	l := e.Layout()
	if len(l.Items) != 0 || l.Height != grid.MinHeight || l.ThumbnailID != nil || l.ThumbnailImage != grid.DefaultThumbnailImage {
		t.Errorf("after clear: %+v", l)
	}
}

func TestImportMerges(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(0, 0, 2, 1)

	res, err := e.Dispatch(ctx, Import{Text: "banktags,1,Melee,100,layout,0,100,1,200,2,99999,3,junk"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Added != 3 || res.Skipped != 1 || len(res.Warnings) != 2 {
		t.Errorf("result = %+v", res)
	}
	l := e.Layout()
	if len(l.Items) != 4 {
		t.Fatalf("items = %+v", l.Items)
	}
	if it, _ := l.At(p(0, 0)); it.ItemID != 2 {
		t.Errorf("existing item replaced: %+v", it)
	}
	// Colliding items go to the next free cell in row-major order.
	for x, want := range []int{2, 0, 1, 99999} {
		if it, _ := l.At(p(x, 0)); it.ItemID != want {
			t.Errorf("At(%d,0) = %+v, want item %d", x, it, want)
		}
	}
	if saver.calls != 1 {
		t.Errorf("saves = %d", saver.calls)
	}
}

func TestImportCellPastLastRow(t *testing.T) {
	e, saver := newTestEditor(t, true)

	res, err := e.Dispatch(ctx, Import{Text: "banktags,1,x,1,layout,9223372036854775807,100,99999999,200"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed || res.Added != 0 || saver.calls != 0 {
		t.Errorf("result = %+v, saves = %d", res, saver.calls)
	}
	l := e.Layout()
	if l.Height != grid.MinHeight || len(l.Cells()) != grid.MinHeight {
		t.Errorf("height = %d after import", l.Height)
	}
}

func TestImportInvalidLeavesLayout(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(0, 0, 1, 1)
	before := e.Layout().Clone()
	e.SelectPalette(2)

	_, err := e.Dispatch(ctx, Import{Text: "hello world"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("error = %v, want INVALID_FORMAT", err)
	}
	if !reflect.DeepEqual(before, e.Layout()) || saver.calls != 0 {
		t.Error("failed import changed the layout")
	}
	if e.Selection() != Palette(2) {
		t.Error("failed import cleared the selection")
	}
}

func TestExport(t *testing.T) {
	e, saver := newTestEditor(t, true)
	e.Layout().Place(1, 0, 0, 1)
	e.Layout().Place(0, 0, 2, 1)

	res, err := e.Dispatch(ctx, Export{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "banktags,1,Test,20594,layout,0,300,1,100" || res.Changed {
		t.Errorf("export = %+v", res)
	}
	if saver.calls != 0 {
		t.Error("export saved")
	}
}

func TestDispatchSaveError(t *testing.T) {
	e, saver := newTestEditor(t, true)
	saver.err = stderrors.New("disk full")

	l := e.Layout()
	l.Place(1, 0, 2, 1)
	if _, err := e.ClickCell(ctx, p(1, 0)); err != nil {
		t.Fatal(err)
	}
	before := l.Clone()

	tests := []struct {
		name string
		cmd  Command
	}{
		{"place", Place{Pos: p(0, 0), ItemID: 1}},
		{"move", Move{From: p(1, 0), To: p(3, 3)}},
		{"insert-row", InsertRow{Row: 0}},
		{"clear", Clear{}},
		{"import", Import{Text: "banktags,1,x,1,layout,5,100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Dispatch(ctx, tt.cmd)
			if !errors.Is(err, errors.ErrCodeStorage) {
				t.Errorf("error = %v, want STORAGE_ERROR", err)
			}
			if res.Changed {
				t.Errorf("result = %+v, want no change", res)
			}
			if e.Layout() != l {
				t.Fatal("layout pointer replaced")
			}
			if !reflect.DeepEqual(l, before) {
				t.Errorf("layout = %+v, want %+v", l, before)
			}
			if got := e.Selection(); got != Placed(p(1, 0), 2) {
				t.Errorf("selection = %v, want it kept", got)
			}
		})
	}
}

func TestDispatchWithoutLayout(t *testing.T) {
	e := New(Options{})
	if _, err := e.Dispatch(ctx, Clear{}); !errors.Is(err, errors.ErrCodeLayoutNotFound) {
		t.Errorf("error = %v", err)
	}
	if _, err := e.ClickCell(ctx, p(0, 0)); !errors.Is(err, errors.ErrCodeLayoutNotFound) {
		t.Errorf("error = %v", err)
	}
}

func TestNilOptions(t *testing.T) {
	e := New(Options{})
	e.SetLayout(grid.New(1, "x"))
	if !e.Ready() {
		t.Error("nil gate should be open")
	}
	res, err := e.Dispatch(ctx, Import{Text: "banktags,1,x,1,layout,0,42"})
	if err != nil || res.Added != 1 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	res, _ = e.Dispatch(ctx, Export{})
	if res.Text != "banktags,1,x,20594,layout,0,42" {
		t.Errorf("export = %q", res.Text)
	}
}

func TestApplyGestures(t *testing.T) {
	e, _ := newTestEditor(t, true)

	steps := []Gesture{
		{Type: GestureSelectPalette, ItemID: 1},
		{Type: GestureClick, Pos: p(0, 0)},
		{Type: GestureDoubleClickPalette, ItemID: 2},
		{Type: GestureDragPalette, ItemID: 0, Pos: p(7, 7)},
		{Type: GestureDragPlaced, From: p(0, 0), Pos: p(7, 7)},
		{Type: GestureClick, Pos: p(1, 0)},
		{Type: GestureCancel},
		{Type: GestureDoubleClick, Pos: p(1, 0)},
	}
	for _, g := range steps {
		if _, err := e.Apply(ctx, g); err != nil {
			t.Fatalf("Apply(%+v): %v", g, err)
		}
	}
	want := map[grid.Pos]int{p(0, 0): 0, p(7, 7): 1}
	got := map[grid.Pos]int{}
	for _, it := range e.Layout().Items {
		got[it.Pos()] = it.ItemID
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}

	if _, err := e.Apply(ctx, Gesture{Type: "wave"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown gesture error = %v", err)
	}
}

func TestRequestBuild(t *testing.T) {
	tests := []struct {
		req  Request
		want Command
	}{
		{Request{Command: "place", Pos: p(1, 2), ItemID: 3, Quantity: 4}, Place{Pos: p(1, 2), ItemID: 3, Quantity: 4}},
		{Request{Command: "move", From: p(0, 0), Pos: p(1, 1)}, Move{From: p(0, 0), To: p(1, 1)}},
		{Request{Command: "remove", Pos: p(2, 2)}, Remove{Pos: p(2, 2)}},
		{Request{Command: "insert-row", Row: 3}, InsertRow{Row: 3}},
		{Request{Command: "delete-row", Row: 3}, DeleteRow{Row: 3}},
		{Request{Command: "clear"}, Clear{}},
		{Request{Command: "import", Text: "x"}, Import{Text: "x"}},
		{Request{Command: "export"}, Export{}},
	}
	for _, tt := range tests {
		got, err := tt.req.Build()
		if err != nil {
			t.Errorf("Build(%q): %v", tt.req.Command, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Build(%q) = %#v, want %#v", tt.req.Command, got, tt.want)
		}
	}
	if _, err := (Request{Command: "undo"}).Build(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown command error = %v", err)
	}
}

func TestSelectionText(t *testing.T) {
	var k SelectionKind
	for _, s := range []string{"none", "palette", "placed"} {
		if err := k.UnmarshalText([]byte(s)); err != nil {
			t.Fatal(err)
		}
		if k.String() != s {
			t.Errorf("round trip %q -> %q", s, k)
		}
	}
	if err := k.UnmarshalText([]byte("drag")); err == nil {
		t.Error("unknown kind should fail")
	}
}
