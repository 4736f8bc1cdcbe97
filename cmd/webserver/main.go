package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"html/template"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/hashicorp/go-hclog"

	"videocourse"
)

// DefaultVideoID is shown when neither the request nor the session names a video
const DefaultVideoID = "UEtBMyzLBFY"

const sessionName = "videocourse"

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	pipeline  videocourse.Pipeline
	store     sessions.Store
	templates map[string]*template.Template
	logger    hclog.Logger
}

func NewServer(pipeline videocourse.Pipeline, store sessions.Store, logger hclog.Logger) (*Server, error) {
	templates := make(map[string]*template.Template)
	templateFiles := []struct {
		name string
		file string
	}{
		{"index", "templates/index.html"},
	}
	for _, tmpl := range templateFiles {
		t, err := template.New(tmpl.name).ParseFS(templateFS, "templates/base.html", tmpl.file)
		if err != nil {
			return nil, err
		}
		templates[tmpl.name] = t
	}

	return &Server{
		pipeline:  pipeline,
		store:     store,
		templates: templates,
		logger:    logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/modules", s.handleModules)
	mux.HandleFunc("/generate_quiz", s.handleGenerateQuiz)
	return mux
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	videocourse.SetVerbose(*verbose)
	logger := videocourse.Logger().Named("webserver")

	cfg, err := videocourse.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	course, kv, err := videocourse.BuildCourse(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to build course pipeline", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	sessionKey := []byte(cfg.SessionKey)
	if len(sessionKey) == 0 {
		// Sessions will not survive a restart
		logger.Warn("no session key configured, generating a random one")
		sessionKey = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(sessionKey)
	store.Options.HttpOnly = true

	server, err := NewServer(course, store, logger)
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	logger.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, server.Routes()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	session := s.session(r)

	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		if last, ok := session.Values["video_id"].(string); ok && last != "" {
			videoID = last
		} else {
			videoID = DefaultVideoID
		}
	}
	if id, ok := videocourse.ExtractVideoID(videoID); ok {
		videoID = id
	} else {
		videoID = DefaultVideoID
	}

	startTime, err := strconv.Atoi(r.URL.Query().Get("t"))
	if err != nil || startTime < 0 {
		startTime = 0
	}

	difficulty, _ := session.Values["difficulty"].(string)
	if difficulty == "" {
		difficulty = string(videocourse.DifficultyMedium)
	}

	err = s.templates["index"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"VideoID":    videoID,
		"EmbedURL":   videocourse.EmbedURL(videoID),
		"StartTime":  startTime,
		"Difficulty": difficulty,
	})
	if err != nil {
		s.logger.Error("template error in index", "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "Video ID is required")
		return
	}

	modules, err := s.pipeline.GetModules(r.Context(), videoID)
	if err != nil {
		s.logger.Error("failed to get modules", "video_id", videoID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.remember(w, r, "video_id", videoID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()
	videoID := query.Get("video_id")
	moduleTitle := query.Get("module_title")
	if videoID == "" || moduleTitle == "" {
		writeError(w, http.StatusBadRequest, "Both video_id and module_title are required")
		return
	}

	difficulty, err := videocourse.ParseDifficulty(query.Get("difficulty"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quiz, err := s.pipeline.GetQuiz(r.Context(), videoID, moduleTitle, difficulty)
	if err != nil {
		s.logger.Error("failed to get quiz", "video_id", videoID, "module", moduleTitle, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.remember(w, r, "difficulty", string(difficulty))
	writeJSON(w, http.StatusOK, map[string]interface{}{"quiz": quiz})
}

func (s *Server) session(r *http.Request) *sessions.Session {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// A cookie signed with an old key decodes as a fresh session
		s.logger.Debug("discarding unreadable session", "error", err)
	}
	return session
}

func (s *Server) remember(w http.ResponseWriter, r *http.Request, key, value string) {
	session := s.session(r)
	session.Values[key] = value
	if err := session.Save(r, w); err != nil {
		s.logger.Warn("failed to save session", "error", err)
	}
}

// statusFor maps pipeline errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, videocourse.ErrInvalidVideoReference),
		errors.Is(err, videocourse.ErrEmptyModuleTitle),
		errors.Is(err, videocourse.ErrInvalidDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, videocourse.ErrNoModules),
		errors.Is(err, videocourse.ErrModuleNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
