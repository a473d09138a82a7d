package templates

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"sync"

	"pawnstorm/internal/logging"
	"pawnstorm/internal/storage"
)

//go:embed *.html
var files embed.FS

var (
	pages  = template.Must(template.ParseFS(files, "*.html"))
	mu     sync.RWMutex
	commit = "dev"
)

// SetCommit sets the build revision shown in page footers.
func SetCommit(c string) {
	mu.Lock()
	commit = c
	mu.Unlock()
}

func currentCommit() string {
	mu.RLock()
	defer mu.RUnlock()
	return commit
}

// HomeData feeds home.html.
type HomeData struct {
	Stats      storage.Stats
	Persistent bool
	Commit     string
}

// GameData feeds game.html.
type GameData struct {
	ID     string
	Name   string
	Theme  string
	Commit string
}

// WriteHomeHTML serves the home page template
func WriteHomeHTML(w http.ResponseWriter, data HomeData) {
	data.Commit = currentCommit()
	write(w, "home.html", data)
}

// WriteGameHTML serves the game page template for one session
func WriteGameHTML(w http.ResponseWriter, data GameData) {
	data.Commit = currentCommit()
	write(w, "game.html", data)
}

func write(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		logging.Errorf("render %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
