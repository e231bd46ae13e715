package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/editor"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/session"
)

const defaultSearchLimit = 50

type healthResponse struct {
	Status       string `json:"status"`
	CatalogReady bool   `json:"catalogReady"`
	CatalogItems int    `json:"catalogItems"`
	CatalogError string `json:"catalogError,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cat := s.app.Catalog
	resp := healthResponse{
		Status:       "ok",
		CatalogReady: cat.Ready(),
		CatalogItems: cat.Catalog().Len(),
	}
	if err := cat.Err(); err != nil {
		resp.CatalogError = errors.UserMessage(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

type catalogResponse struct {
	Ready bool                     `json:"ready"`
	Items []catalog.ItemDefinition `json:"items"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.app.Catalog
	limit := queryInt(r, "limit", defaultSearchLimit)
	items := cat.Catalog().Search(r.URL.Query().Get("q"), limit)
	if items == nil {
		items = []catalog.ItemDefinition{}
	}
	writeJSON(w, http.StatusOK, catalogResponse{Ready: cat.Ready(), Items: items})
}

type layoutsResponse struct {
	CurrentID int            `json:"currentId"`
	Layouts   []*grid.Layout `json:"layouts"`
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layouts := s.app.Layouts.Search(r.URL.Query().Get("q"))
	if layouts == nil {
		layouts = []*grid.Layout{}
	}
	writeJSON(w, http.StatusOK, layoutsResponse{CurrentID: s.app.Layouts.CurrentID(), Layouts: layouts})
}

type createLayoutRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req createLayoutRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.app.CreateLayout(r.Context(), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	id, err := layoutID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.app.Layouts.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type updateLayoutRequest struct {
	Title  *string   `json:"title"`
	Author *string   `json:"author"`
	Tags   *[]string `json:"tags"`
}

func (s *Server) handleUpdateLayout(w http.ResponseWriter, r *http.Request) {
	id, err := layoutID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateLayoutRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Title != nil {
		if err := errors.ValidateTitle(*req.Title); err != nil {
			writeError(w, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.app.Layouts.Update(r.Context(), id, func(l *grid.Layout) error {
		if req.Title != nil {
			l.Title = strings.TrimSpace(*req.Title)
		}
		if req.Author != nil {
			l.Author = strings.TrimSpace(*req.Author)
		}
		if req.Tags != nil {
			l.Tags = *req.Tags
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	l, _ := s.app.Layouts.Get(id)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	id, err := layoutID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.app.DeleteLayout(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectLayout(w http.ResponseWriter, r *http.Request) {
	id, err := layoutID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.app.SelectLayout(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type gridResponse struct {
	ID     int                  `json:"id"`
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
	Cells  [][]*grid.PlacedItem `json:"cells"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	id, err := layoutID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.app.Layouts.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gridResponse{ID: l.ID, Width: l.Width, Height: l.Height, Cells: l.Cells()})
}

type commandResponse struct {
	Result editor.Result `json:"result"`
	Layout *grid.Layout  `json:"layout"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req editor.Request
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	cmd, err := req.Build()
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(w, r, cmd)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd editor.Command) {
	res, err := s.app.Dispatch(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Result: res, Layout: s.app.Current()})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(w, r, editor.Import{Text: string(body)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.app.Dispatch(r.Context(), editor.Export{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, res.Text)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cur := s.app.Current()
	s.mu.Unlock()
	if cur == nil {
		writeError(w, errors.New(errors.ErrCodeLayoutNotFound, "no layout selected"))
		return
	}

	sess := session.New(cur.ID, s.sessionTTL)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "store session"))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type gestureResponse struct {
	Result    editor.Result    `json:"result"`
	Selection editor.Selection `json:"selection"`
	Layout    *grid.Layout     `json:"layout"`
}

// handleGesture replays the session's selection into the editor, applies
// the gesture and stores the resulting selection back on the session. A
// session made on another layout follows the current one with its
// selection dropped.
func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	var g editor.Gesture
	if err := decode(w, r, &g); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	sess, err := s.sessions.Get(ctx, chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.app.Current()
	if cur == nil {
		writeError(w, errors.New(errors.ErrCodeLayoutNotFound, "no layout selected"))
		return
	}
	if cur.ID != sess.LayoutID {
		sess.LayoutID, sess.Selection = cur.ID, editor.None()
	}

	s.app.Editor.Restore(sess.Selection)
	res, err := s.app.Editor.Apply(ctx, g)
	sess.Selection = s.app.Editor.Selection()
	sess.Touch()
	if serr := s.sessions.Set(ctx, sess); serr != nil {
		s.logger.Warn("store session", "id", sess.ID, "err", serr)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gestureResponse{Result: res, Selection: sess.Selection, Layout: s.app.Current()})
}
