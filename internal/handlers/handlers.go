package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"pawnstorm/internal/game"
	"pawnstorm/internal/logging"
	"pawnstorm/internal/render"
	"pawnstorm/internal/storage"
	"pawnstorm/internal/templates"
	"pawnstorm/internal/theme"

	"github.com/google/uuid"
)

// PrefersColorSchemeHeader carries the browser's light/dark preference.
const PrefersColorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

const heartbeatInterval = 15 * time.Second

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Hub   *game.Hub
	Store *storage.Store
}

// NewHandler creates a new handler instance. store may be nil.
func NewHandler(hub *game.Hub, store *storage.Store) *Handler {
	return &Handler{Hub: hub, Store: store}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("GET /new", h.HandleNew)
	mux.HandleFunc("GET /sse/", h.HandleSSE)
	mux.HandleFunc("GET /state/", h.HandleState)
	mux.HandleFunc("GET /board/", h.HandleBoardPNG)
	mux.HandleFunc("GET /pgn/", h.HandlePGN)
	mux.HandleFunc("POST /click/", h.HandleClick)
	mux.HandleFunc("POST /drag/", h.HandleDrag)
	mux.HandleFunc("POST /drop/", h.HandleDrop)
	mux.HandleFunc("POST /resign/", h.HandleResign)
	mux.HandleFunc("POST /settings/", h.HandleSettings)
	mux.HandleFunc("POST /theme/", h.Themed("/theme/", h.HandleTheme))
	mux.HandleFunc("POST /resize/", h.HandleResize)
	mux.HandleFunc("POST /reset/", h.HandleReset)
	mux.HandleFunc("GET /", h.HandlePage)
}

// HandleNew creates a new game and redirects to it
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	http.Redirect(w, r, "/"+id, http.StatusFound)
}

// HandlePage serves the home page or game page
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" || path == "index.html" {
		stats, err := h.Store.FetchStats(r.Context())
		if err != nil {
			logging.Warnf("fetch stats: %v", err)
		}
		templates.WriteHomeHTML(w, templates.HomeData{Stats: stats, Persistent: h.Store != nil})
		return
	}
	if _, err := uuid.Parse(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Accept-CH", PrefersColorSchemeHeader)
	s, err := h.Hub.Get(path, r.Header.Get(PrefersColorSchemeHeader))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Touch()
	templates.WriteGameHTML(w, templates.GameData{ID: s.ID, Name: s.Name, Theme: string(s.Theme.Mode())})
}

// HandleHealth reports liveness and the number of live sessions.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": h.Hub.Len()})
}

// HandleSSE handles Server-Sent Events for real-time game updates
func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	g, err := h.session(r, "/sse/")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 16)
	g.AddWatcher(ch)
	defer g.RemoveWatcher(ch)

	initial, _ := json.Marshal(g.State())
	_, _ = fmt.Fprintf(w, "data: %s\n\n", initial)
	flusher.Flush()

	g.Touch()
	go g.Broadcast()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// heartbeat
			_, _ = w.Write([]byte("data: {}\n\n"))
			flusher.Flush()
		case msg := <-ch:
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// HandleState returns the current view state.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	g, err := h.session(r, "/state/")
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": g.State()})
}

// HandleClick resolves a square click.
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	var req game.ClickRequest
	h.act(w, r, "/click/", &req, func(g *game.Session) error {
		g.Controller().Click(normalizeSquare(req.Square))
		return nil
	})
}

// HandleDrag clears the click selection when a drag starts.
func (h *Handler) HandleDrag(w http.ResponseWriter, r *http.Request) {
	var req game.ClickRequest
	h.act(w, r, "/drag/", &req, func(g *game.Session) error {
		g.Controller().DragOver(normalizeSquare(req.Square))
		return nil
	})
}

// HandleDrop applies a drag-and-drop move.
func (h *Handler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	var req game.DropRequest
	h.act(w, r, "/drop/", &req, func(g *game.Session) error {
		from, to := normalizeSquare(req.From), normalizeSquare(req.To)
		if !g.Controller().Drop(from, to) {
			logging.Named("http").Debugw("drop refused", "session", g.ID, "from", from, "to", to)
			return errIllegalMove
		}
		return nil
	})
}

// HandleResign drives the resign confirmation dialog.
func (h *Handler) HandleResign(w http.ResponseWriter, r *http.Request) {
	var req game.StepRequest
	h.act(w, r, "/resign/", &req, func(g *game.Session) error {
		c := g.Controller()
		switch req.Step {
		case "request":
			c.RequestResign()
		case "cancel":
			c.CancelResign()
		case "confirm":
			c.Resign()
		default:
			return fmt.Errorf("%w: %q", errUnknownStep, req.Step)
		}
		return nil
	})
}

// HandleSettings drives the board color dialog.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	var req game.StepRequest
	h.act(w, r, "/settings/", &req, func(g *game.Session) error {
		c := g.Controller()
		switch req.Step {
		case "open":
			c.OpenSettings()
		case "pick":
			return c.PickColor(req.Color)
		case "submit":
			c.SubmitSettings()
		case "close":
			c.CloseSettings()
		default:
			return fmt.Errorf("%w: %q", errUnknownStep, req.Step)
		}
		return nil
	})
}

// HandleTheme toggles the session theme. It must run behind Themed.
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	mode := theme.FromContext(r.Context()).Toggle()
	h.act(w, r, "/theme/", nil, func(g *game.Session) error {
		logging.Named("http").Debugw("theme toggled", "session", g.ID, "mode", mode)
		return nil
	})
}

// HandleResize sets the board width from the reported container width.
func (h *Handler) HandleResize(w http.ResponseWriter, r *http.Request) {
	var req game.ResizeRequest
	h.act(w, r, "/resize/", &req, func(g *game.Session) error {
		if !g.Controller().Resize(req.Width) {
			return errWidthTooSmall
		}
		return nil
	})
}

// HandleReset resets a game to the starting position
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "/reset/", nil, func(g *game.Session) error {
		return g.Controller().Reset()
	})
}

// HandleBoardPNG renders the session's board as a PNG image.
func (h *Handler) HandleBoardPNG(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/board/"), ".png")
	g, err := h.Hub.Lookup(id)
	if errors.Is(err, game.ErrSessionNotFound) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.PNG(w, g.Controller().View()); err != nil {
		logging.Errorf("render board %s: %v", id, err)
	}
}

// HandlePGN serves the game record. Games swept from memory are read back
// from the store when persistence is on.
func (h *Handler) HandlePGN(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/pgn/"), ".pgn")
	var pgn string
	if g, err := h.Hub.Lookup(id); err == nil {
		pgn = g.Controller().View().PGN
	} else {
		uid, perr := uuid.Parse(id)
		if perr != nil {
			http.NotFound(w, r)
			return
		}
		saved, err := h.Store.LoadGame(r.Context(), uid)
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			logging.Errorf("load game %s: %v", id, err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		pgn = saved.Game.PGN
		if pgn == "" {
			sans := make([]string, 0, len(saved.Moves))
			for _, m := range saved.Moves {
				sans = append(sans, m.SAN)
			}
			pgn = render.MoveList(sans) + " *"
		}
	}
	w.Header().Set("Content-Type", "application/x-chess-pgn")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pgn"))
	_, _ = w.Write([]byte(pgn))
}

var (
	errBadJSON       = errors.New("bad json")
	errIllegalMove   = errors.New("illegal move")
	errUnknownStep   = errors.New("unknown step")
	errWidthTooSmall = errors.New("width below minimum")
)

// act decodes body (when non-nil), runs fn against the session and answers
// with the resulting state. Watchers are updated after every call.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, prefix string, body any, fn func(*game.Session) error) {
	g, err := h.session(r, prefix)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	if body != nil {
		if err := json.NewDecoder(r.Body).Decode(body); err != nil {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": errBadJSON.Error()})
			return
		}
	}

	g.Touch()
	err = fn(g)
	state := g.State()
	go g.Broadcast()

	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error(), "state": state})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": state})
}

func (h *Handler) session(r *http.Request, prefix string) (*game.Session, error) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	return h.Hub.Get(id, r.Header.Get(PrefersColorSchemeHeader))
}

func normalizeSquare(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ClientIP extracts the client IP from the request
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
