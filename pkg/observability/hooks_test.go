package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEditorHooks{}
	e.OnCommand(ctx, "place", time.Millisecond, nil)
	e.OnCatalogLoaded(ctx, 100, time.Second, nil)

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "file", "persisted", 3, nil)
	s.OnSave(ctx, "file", 1024, time.Millisecond, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "cdn.example", "/items.json")
	h.OnResponse(ctx, "GET", "cdn.example", "/items.json", 200, time.Second)
	h.OnError(ctx, "GET", "cdn.example", "/items.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Editor() should return NoopEditorHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	ed := &recordingEditorHooks{}
	SetEditorHooks(ed)
	if Editor() != ed {
		t.Error("SetEditorHooks should set custom hooks")
	}

	st := &recordingStoreHooks{}
	SetStoreHooks(st)
	if Store() != st {
		t.Error("SetStoreHooks should set custom hooks")
	}

	SetEditorHooks(nil)
	if Editor() != ed {
		t.Error("SetEditorHooks(nil) should keep the previous hooks")
	}

	Editor().OnCommand(context.Background(), "clear", 0, nil)
	if len(ed.commands) != 1 || ed.commands[0] != "clear" {
		t.Errorf("commands = %v, want [clear]", ed.commands)
	}

	Reset()
	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Reset() should restore NoopEditorHooks")
	}
}

type recordingEditorHooks struct {
	NoopEditorHooks
	commands []string
}

func (r *recordingEditorHooks) OnCommand(_ context.Context, name string, _ time.Duration, _ error) {
	r.commands = append(r.commands, name)
}

type recordingStoreHooks struct{ NoopStoreHooks }
