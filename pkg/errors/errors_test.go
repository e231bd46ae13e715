package errors_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/matzehuels/banktags/pkg/banktags"
	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/editor"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/store"
)

var errDiskFull = stderrors.New("disk full")

type fullBackend struct{}

func (fullBackend) Load(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (fullBackend) Save(context.Context, string, []byte) error         { return errDiskFull }
func (fullBackend) Close() error                                       { return nil }

type closedGate struct{}

func (closedGate) Ready() bool { return false }

func TestDecodeErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		text string
		code errors.Code
		msg  string
	}{
		{"empty", "", errors.ErrCodeEmptyInput, "no banktags text supplied"},
		{"blank", "  \n", errors.ErrCodeEmptyInput, "no banktags text supplied"},
		{"no header", "hello world", errors.ErrCodeInvalidFormat, ""},
		{"too few fields", "banktags,1,Melee,20594", errors.ErrCodeInvalidFormat, "expected at least 7 fields"},
		{"no layout token", "banktags,1,Melee,20594,grid,0,4151", errors.ErrCodeInvalidFormat, `missing "layout" token`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := banktags.Decode(tt.text, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %q, want %q", errors.GetCode(err), tt.code)
			}
			if !strings.HasPrefix(err.Error(), string(tt.code)+": ") {
				t.Errorf("Error() = %q, want %s prefix", err.Error(), tt.code)
			}
			msg := errors.UserMessage(err)
			if strings.HasPrefix(msg, string(tt.code)) {
				t.Errorf("UserMessage kept the code prefix: %q", msg)
			}
			if !strings.Contains(msg, tt.msg) {
				t.Errorf("UserMessage = %q, want it to contain %q", msg, tt.msg)
			}
			if stderrors.Unwrap(err) != nil {
				t.Errorf("codec error has a cause: %v", stderrors.Unwrap(err))
			}
		})
	}
}

func TestCatalogPendingFromEditor(t *testing.T) {
	e := editor.New(editor.Options{Gate: closedGate{}})
	e.SetLayout(grid.New(1, "Melee"))

	_, err := e.Dispatch(context.Background(), editor.Import{Text: "banktags,1,Melee,20594,layout,0,4151"})
	if !errors.Is(err, errors.ErrCodeCatalogPending) {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeCatalogPending)
	}
	if got := errors.UserMessage(err); got != "item catalog is still loading; import rejected" {
		t.Errorf("UserMessage = %q", got)
	}

	wrapped := errors.Wrap(errors.ErrCodeStorage, err, "save after import")
	if errors.Is(wrapped, errors.ErrCodeCatalogPending) {
		t.Error("outer STORAGE_ERROR should hide the pending code")
	}
	var inner *errors.Error
	if !stderrors.As(stderrors.Unwrap(wrapped), &inner) || inner.Code != errors.ErrCodeCatalogPending {
		t.Errorf("unwrapped cause = %v", stderrors.Unwrap(wrapped))
	}
	want := "STORAGE_ERROR: save after import: CATALOG_PENDING: item catalog is still loading; import rejected"
	if wrapped.Error() != want {
		t.Errorf("Error() = %q\nwant      %q", wrapped.Error(), want)
	}
}

func TestStorageErrorFromCollectionSave(t *testing.T) {
	c := store.NewCollection(fullBackend{}, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := c.Save(context.Background())
	if !errors.Is(err, errors.ErrCodeStorage) {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeStorage)
	}
	if !stderrors.Is(err, errDiskFull) {
		t.Error("backend cause lost")
	}
	if got := errors.UserMessage(err); got != "save layouts" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := err.Error(); got != "STORAGE_ERROR: save layouts: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestEditorSaveErrorKeepsOuterMessage(t *testing.T) {
	c := store.NewCollection(fullBackend{}, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	e := editor.New(editor.Options{Saver: c})
	e.SetLayout(c.Current())

	_, err := e.Dispatch(context.Background(), editor.InsertRow{Row: 0})
	if !errors.Is(err, errors.ErrCodeStorage) {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeStorage)
	}
	if got := errors.UserMessage(err); got != "save after insert-row" {
		t.Errorf("UserMessage = %q, want the outermost message", got)
	}
	if !stderrors.Is(err, errDiskFull) {
		t.Error("backend cause lost across two wraps")
	}
}

func TestCatalogUnavailableWrap(t *testing.T) {
	boom := stderrors.New("connection refused")
	l := catalog.NewLoader(catalog.StaticSource{Err: boom})

	_, err := l.Load(context.Background())
	if !errors.Is(err, errors.ErrCodeCatalogUnavailable) {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeCatalogUnavailable)
	}
	if !stderrors.Is(err, boom) {
		t.Error("source cause lost")
	}
	if errors.UserMessage(err) != "load item catalog" {
		t.Errorf("UserMessage = %q", errors.UserMessage(err))
	}
}

func TestForeignErrors(t *testing.T) {
	plain := stderrors.New("plain failure")
	if errors.Is(plain, errors.ErrCodeStorage) {
		t.Error("Is matched a plain error")
	}
	if errors.GetCode(plain) != "" {
		t.Errorf("GetCode(plain) = %q", errors.GetCode(plain))
	}
	if errors.UserMessage(plain) != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", errors.UserMessage(plain))
	}
	if errors.Is(nil, errors.ErrCodeStorage) || errors.GetCode(nil) != "" {
		t.Error("nil error reported a code")
	}
}
