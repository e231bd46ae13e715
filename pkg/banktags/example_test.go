package banktags_test

import (
	"fmt"

	"github.com/matzehuels/banktags/pkg/banktags"
	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/grid"
)

func Example() {
	cat := catalog.New([]catalog.Record{
		{ID: "4151", Name: "Abyssal whip"},
		{ID: "1333", Name: "Rune scimitar"},
	}, nil)

	l := grid.New(1, "Melee")
	l.Place(0, 0, 0, 1)
	l.Place(1, 0, 1, 1)
	text := banktags.Encode(l, cat)
	fmt.Println(text)

	tag, _ := banktags.Decode(text+",9,99999", catalog.DefaultChain(cat))
	for _, it := range tag.Items {
		fmt.Printf("(%d,%d) %d\n", it.X, it.Y, it.ItemID)
	}
	for _, w := range tag.Warnings {
		fmt.Println(w)
	}
	// Output:
	// banktags,1,Melee,20594,layout,0,4151,1,1333
	// (0,0) 0
	// (1,0) 1
	// (1,1) 99999
	// cell 9: unknown item id "99999" (kept as numeric)
}
