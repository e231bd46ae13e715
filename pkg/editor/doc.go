// Package editor is the interaction layer between a front end and a
// [grid.Layout].
//
// Front ends report gestures (select a palette item, click or double-click
// a cell, drag) and the [Editor] turns them into [Command]s. Commands are a
// closed set ([Place], [Move], [Remove], [InsertRow], [DeleteRow], [Clear],
// [Import], [Export]) executed by [Editor.Dispatch], which also persists the
// layout through a [Saver] after every change.
//
// # Selection
//
// The editor tracks one [Selection]:
//
//	Idle ──SelectPalette──▶ PaletteSelected ──ClickCell──▶ Place ──▶ Idle
//	Idle ──ClickCell(occupied)──▶ PlacedSelected
//	PlacedSelected ──ClickCell(empty)──▶ Move ──▶ Idle
//	PlacedSelected ──ClickCell(occupied)──▶ PlacedSelected(new cell)
//
// Drags and double-clicks bypass the selection. Loading another layout
// clears it.
//
// # Catalog gate
//
// Until the item catalog has loaded, palette gestures, [Place] and [Import]
// are rejected with CATALOG_PENDING and leave the layout untouched.
//
// [grid.Layout]: github.com/matzehuels/banktags/pkg/grid.Layout
package editor
