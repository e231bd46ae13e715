package wiki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

func TestBucketQuery(t *testing.T) {
	q := BucketQuery(1000)
	for _, want := range []string{
		"bucket('infobox_item')",
		".select('page_name','page_name_sub','item_name','image','item_id')",
		".limit(500).offset(1000)",
		".where(bucket.Not('Category:Beta items'))",
		".orderBy('item_name', 'asc').run()",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("BucketQuery() missing %q", want)
		}
	}
}

func TestSanitizeImage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Abyssal whip.png", "Abyssal whip.png"},
		{"Dagon'hai hat.png", "Dagon_hai hat.png"},
		{"Coins 10000+.png", "Coins 10000_.png"},
		{"Rune (p++).png", "Rune (p__).png"},
	}
	for _, tt := range tests {
		if got := SanitizeImage(tt.in); got != tt.want {
			t.Errorf("SanitizeImage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	rows := []Row{
		{PageNameSub: "Rune scimitar", ItemName: "Rune scimitar", ItemID: []string{"1333"}, Image: []string{"File:Rune scimitar.png"}},
		{PageNameSub: "Abyssal whip", ItemName: "Abyssal whip", ItemID: []string{"4151", "4178"}, Image: []string{"File:Old.png", "File:Abyssal whip.png"}},
		{PageNameSub: "Abyssal whip", ItemName: "Abyssal whip", ItemID: []string{"9999"}},
		{PageNameSub: "Historical", ItemName: "Historical", ItemID: []string{"hist"}},
		{PageNameSub: "No id", ItemName: "No id"},
		{PageNameSub: "Battlehat", ItemName: "Battlehat", ItemID: []string{"12"}},
		{PageNameSub: "Dagon'hai hat", ItemName: "Dagon'hai hat", ItemID: []string{"24288"}, Image: []string{"File:Dagon'hai hat.png"}},
	}

	records, images, stats := Build(rows)

	if len(records) != 3 {
		t.Fatalf("records = %d, want 3: %+v", len(records), records)
	}
	wantOrder := []string{"Abyssal whip", "Dagon'hai hat", "Rune scimitar"}
	for i, name := range wantOrder {
		if records[i].Name != name {
			t.Errorf("records[%d].Name = %q, want %q", i, records[i].Name, name)
		}
	}
	whip := records[0]
	if whip.ID.String() != "4151" {
		t.Errorf("whip id = %q, want first item_id", whip.ID)
	}
	if whip.Image != "Abyssal whip.png" {
		t.Errorf("whip image = %q, want last image without File: prefix", whip.Image)
	}
	if records[1].ImagePath != "Dagon_hai hat.png" {
		t.Errorf("imagepath = %q", records[1].ImagePath)
	}
	if len(images) != 3 {
		t.Errorf("images = %v", images)
	}
	want := Stats{Rows: 7, Duplicates: 1, InvalidIDs: 2, Skipped: 1, Records: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestBuildRecordsEncodeNumericIDs(t *testing.T) {
	records, _, _ := Build([]Row{{PageNameSub: "a", ItemName: "A", ItemID: []string{"42"}}})
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"id":42`) {
		t.Errorf("json = %s, want numeric id", data)
	}
}

func TestFetchItemsPages(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/api.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("action") != "bucket" {
			t.Errorf("action = %q", r.URL.Query().Get("action"))
		}
		n := 0
		switch {
		case strings.Contains(r.URL.Query().Get("query"), ".offset(0)"):
			n = PageSize
		case strings.Contains(r.URL.Query().Get("query"), ".offset(500)"):
			n = 3
		}
		rows := make([]Row, n)
		for i := range rows {
			rows[i] = Row{PageNameSub: strconv.Itoa(i), ItemName: "x", ItemID: []string{strconv.Itoa(i)}}
		}
		json.NewEncoder(w).Encode(bucketResponse{Bucket: rows})
	}))
	defer server.Close()

	c := NewClient(nil, server.URL)
	c.WithHTTPClient(server.Client())

	var offsets []int
	rows, err := c.FetchItems(context.Background(), false, func(o int) { offsets = append(offsets, o) })
	if err != nil {
		t.Fatalf("FetchItems() error: %v", err)
	}
	if len(rows) != PageSize+3 {
		t.Errorf("rows = %d, want %d", len(rows), PageSize+3)
	}
	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2", requests.Load())
	}
	if len(offsets) != 2 || offsets[1] != 500 {
		t.Errorf("offsets = %v", offsets)
	}
}

func TestFetchItemsBucketError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(bucketResponse{Error: "bad query"})
	}))
	defer server.Close()

	c := NewClient(nil, server.URL)
	c.WithHTTPClient(server.Client())

	if _, err := c.FetchItems(context.Background(), false, nil); err == nil {
		t.Error("FetchItems() should surface bucket errors")
	}
}

func TestDownloadImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "Missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("png:" + r.URL.Path))
	}))
	defer server.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Have.png"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(nil, server.URL)
	c.WithHTTPClient(server.Client())

	res, err := c.DownloadImages(context.Background(), dir, []string{"Have.png", "Dagon'hai hat.png", "Missing.png"}, 2)
	if err != nil {
		t.Fatalf("DownloadImages() error: %v", err)
	}
	if res.Saved != 1 || res.Skipped != 1 || res.Failed != 1 {
		t.Errorf("result = %+v, want 1 saved, 1 skipped, 1 failed", res)
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v", res.Errors)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Dagon_hai hat.png"))
	if err != nil {
		t.Fatalf("sanitized file missing: %v", err)
	}
	if !strings.HasPrefix(string(data), "png:/w/Special:Filepath/") {
		t.Errorf("content = %q", data)
	}
}
