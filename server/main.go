package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/gameModel"
)

const (
	msgAddRejected     = "Point rejected: the board is full, the spot is off the grid or too close to another generator"
	msgRemoveRejected  = "Point cannot be removed: no sequence is running, three generators remain, or the id is unknown"
	msgEndgameRejected = "The remaining three generators are not the ideal endgame"
	msgUndoRejected    = "Nothing to undo"
	msgResetRejected   = "The board is resetting"
	msgModeRejected    = "Mode is locked for this sequence"
)

type GameServer struct {
	cfg    Config
	logger *log.Logger
	games  map[string]*session
	mutex  sync.RWMutex
}

func NewGameServer(cfg Config, logger *log.Logger) *GameServer {
	if logger == nil {
		logger = log.Default()
	}
	return &GameServer{
		cfg:    cfg,
		logger: logger,
		games:  make(map[string]*session),
	}
}

func (gs *GameServer) createGame() *session {
	s := newSession(gs.cfg, gs.logger)
	gs.mutex.Lock()
	gs.games[s.id] = s
	gs.mutex.Unlock()
	gs.logger.Printf("created game %s", s.id)
	return s
}

func (gs *GameServer) getGame(gameID string) (*session, bool) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()
	s, exists := gs.games[gameID]
	return s, exists
}

// evictIdle drops every game idle since before now-SessionTTL.
func (gs *GameServer) evictIdle(now time.Time) int {
	cutoff := now.Add(-gs.cfg.SessionTTL)
	var evicted []*session
	gs.mutex.Lock()
	for id, s := range gs.games {
		if s.idleSince().Before(cutoff) {
			delete(gs.games, id)
			evicted = append(evicted, s)
		}
	}
	gs.mutex.Unlock()

	for _, s := range evicted {
		s.ctrl.Reset()
		s.shutdown()
		gs.logger.Printf("evicted idle game %s", s.id)
	}
	return len(evicted)
}

func (gs *GameServer) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(gs.cfg.JanitorEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gs.evictIdle(now)
		}
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (gs *GameServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(withCORS)

	api := r.PathPrefix("/api/game").Subrouter()
	api.HandleFunc("/new", gs.handleNewGame).Methods("POST", "OPTIONS")
	api.HandleFunc("/{gameID}", gs.handleGetGame).Methods("GET", "OPTIONS")
	api.HandleFunc("/{gameID}/points", gs.handleAddPoint).Methods("POST", "OPTIONS")
	api.HandleFunc("/{gameID}/points/{pointID:[0-9]+}", gs.handleRemovePoint).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/{gameID}/endgame", gs.handleEndgame).Methods("POST", "OPTIONS")
	api.HandleFunc("/{gameID}/undo", gs.handleUndo).Methods("POST", "OPTIONS")
	api.HandleFunc("/{gameID}/reset", gs.handleReset).Methods("POST", "OPTIONS")
	api.HandleFunc("/{gameID}/mode", gs.handleMode).Methods("PUT", "OPTIONS")
	api.HandleFunc("/{gameID}/ws", gs.handleWebSocket).Methods("GET")
	return r
}

// sessionFor resolves {gameID} and writes a 404 when it is unknown.
func (gs *GameServer) sessionFor(w http.ResponseWriter, r *http.Request) (*session, bool) {
	s, exists := gs.getGame(mux.Vars(r)["gameID"])
	if !exists {
		http.Error(w, "Game not found", http.StatusNotFound)
		return nil, false
	}
	s.touch()
	return s, true
}

// respond writes the action outcome. A rejected action is still a 200: the
// request was understood, the board just did not take it.
func respond(w http.ResponseWriter, s *session, accepted bool, okMsg, rejectedMsg string) {
	state := s.gameState()
	response := gameModel.GameResponse{
		Success:   accepted,
		Message:   okMsg,
		GameState: &state,
	}
	if !accepted {
		response.Message = rejectedMsg
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (gs *GameServer) handleNewGame(w http.ResponseWriter, r *http.Request) {
	s := gs.createGame()
	respond(w, s, true, "New game created successfully", "")
}

func (gs *GameServer) handleGetGame(w http.ResponseWriter, r *http.Request) {
	s, ok := gs.sessionFor(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.gameState())
}

func (gs *GameServer) handleAddPoint(w http.ResponseWriter, r *http.Request) {
	s, ok := gs.sessionFor(w, r)
	if !ok {
		return
	}
	var req gameModel.AddPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, accepted := s.ctrl.AddPoint(req.X, req.Y)
	respond(w, s, accepted, fmt.Sprintf("Point %d added", p.ID), msgAddRejected)
}

func (gs *GameServer) handleRemovePoint(w http.ResponseWriter, r *http.Request) {
	s, ok := gs.sessionFor(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["pointID"])
	if err != nil {
		http.Error(w, "Invalid point id", http.StatusBadRequest)
		return
	}
	accepted := s.ctrl.RemovePoint(id)
	respond(w, s, accepted, fmt.Sprintf("Point %d removed", id), msgRemoveRejected)
}

func (gs *GameServer) handleEndgame(w http.ResponseWriter, r *http.Request) {
	s, ok := gs.sessionFor(w, r)
	if !ok {
		return
	}
	accepted := endgame(s)
	respond(w, s, accepted, "Ideal endgame reached, board resetting", msgEndgameRejected)
}

// endgame settles a pending analysis pass first so a player who clears the
// final three inside the debounce window is judged on the current board.
func endgame(s *session) bool {
	s.ctrl.Flush()
	return s.ctrl.RemoveTriangleIdeal()
}

func (gs *GameServer) handleUndo(w http.ResponseWriter, r *http.Request) {
	s, ok := gs.sessionFor(w, r)
	if !ok {
		return
	}
	respond(w, s, s.ctrl.Undo(), "Last action undone", msgUndoRejected)
}

func (gs *GameServer) handleReset(w http.ResponseWriter, r *http.Request) {
	s, ok := gs.sessionFor(w, r)
	if !ok {
		return
	}
	respond(w, s, s.ctrl.Reset(), "Board reset", msgResetRejected)
}

func (gs *GameServer) handleMode(w http.ResponseWriter, r *http.Request) {
	s, ok := gs.sessionFor(w, r)
	if !ok {
		return
	}
	var req gameModel.ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	mode, err := analysis.ParseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respond(w, s, s.ctrl.SetMode(mode), "Mode set to "+mode.String(), msgModeRejected)
}

func main() {
	envFile := os.Getenv("DEJAVU_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	loadEnvFile(envFile)

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameServer := NewGameServer(cfg, log.Default())
	go gameServer.runJanitor(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: gameServer.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Server listening on %s (mode %s, debounce %s, exit delay %s, session ttl %s)",
		cfg.Addr, cfg.Mode, cfg.Debounce, cfg.ExitDelay, cfg.SessionTTL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
