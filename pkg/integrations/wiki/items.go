package wiki

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/banktags/pkg/catalog"
)

// SkipList names items that the wiki lists but the game does not use in
// bank tags: joke items, unreleased rewards and cosmetic variants.
var SkipList = []string{
	"The dogsword",
	"Drygore blowpipe",
	"Amulet of the monarchs",
	"Emperor ring",
	"Devil's element",
	"Nature's reprisal",
	"Gloves of the damned",
	"Crystal blessing",
	"Sunlight spear",
	"Sunlit bracers",
	"Thunder khopesh",
	"Thousand-dragon ward",
	"Arcane grimoire",
	"Wristbands of the arena",
	"Wristbands of the arena (i)",
	"Armadyl chainskirt (or)",
	"Armadyl chestplate (or)",
	"Armadyl helmet (or)",
	"Dagon'hai hat (or)",
	"Dagon'hai robe bottom (or)",
	"Dagon'hai robe top (or)",
	"Dragon warhammer (or)",
	"Centurion cuirass",
	"Ruinous powers (item)",
	"Battlehat",
	"Zaryte bow",
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s._()-]`)

// SanitizeImage maps a wiki file name to a safe local file name.
func SanitizeImage(image string) string {
	return unsafeChars.ReplaceAllString(image, "_")
}

// Stats summarises a [Build] run.
type Stats struct {
	Rows       int
	Duplicates int
	InvalidIDs int
	Skipped    int
	Records    int
}

// Build converts bucket rows into sorted catalog records and returns the
// distinct image file names they reference.
func Build(rows []Row) ([]catalog.Record, []string, Stats) {
	skip := make(map[string]bool, len(SkipList))
	for _, name := range SkipList {
		skip[name] = true
	}

	stats := Stats{Rows: len(rows)}
	seen := make(map[string]bool, len(rows))
	var records []catalog.Record
	for _, r := range rows {
		if seen[r.PageNameSub] {
			stats.Duplicates++
			continue
		}
		id, ok := itemID(r)
		if !ok {
			stats.InvalidIDs++
			continue
		}
		if skip[r.ItemName] {
			stats.Skipped++
			continue
		}
		seen[r.PageNameSub] = true

		image := imageName(r)
		records = append(records, catalog.Record{
			ID:        catalog.FlexID(strconv.Itoa(id)),
			Name:      r.ItemName,
			Image:     image,
			ImagePath: SanitizeImage(image),
		})
	}
	slices.SortStableFunc(records, func(a, b catalog.Record) int {
		return cmp.Compare(a.Name, b.Name)
	})
	stats.Records = len(records)

	var images []string
	have := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Image != "" && !have[rec.Image] {
			have[rec.Image] = true
			images = append(images, rec.Image)
		}
	}
	return records, images, stats
}

func itemID(r Row) (int, bool) {
	if len(r.ItemID) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(r.ItemID[0]))
	if err != nil {
		return 0, false
	}
	return id, true
}

func imageName(r Row) string {
	if len(r.Image) == 0 {
		return ""
	}
	return strings.TrimPrefix(r.Image[len(r.Image)-1], "File:")
}
