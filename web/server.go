// Package web serves a live dashboard for batch MUS conversion: a static
// page plus a websocket feed of per-file decode results.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"musview/pkg/musfile"
)

//go:embed static/*
var staticFiles embed.FS

// Result is the outcome of converting one file.
type Result struct {
	File    string           `json:"file"`
	Status  string           `json:"status"` // "ok" or "error"
	Error   string           `json:"error,omitempty"`
	Output  string           `json:"output,omitempty"`
	Summary *musfile.Summary `json:"summary,omitempty"`
}

// Message is the websocket envelope.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ProgressPayload is the batch counter state.
type ProgressPayload struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Server is the dashboard HTTP/websocket server.
type Server struct {
	addr       string
	hub        *Hub
	httpServer *http.Server

	mu      sync.RWMutex
	results []Result
	total   int
	done    int
}

// NewServer creates a dashboard server listening on addr (e.g. ":8080").
func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		hub:  NewHub(),
	}
}

// Start runs the hub and the HTTP server. Blocks until the server stops.
func (s *Server) Start() error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/results", s.handleAPIResults)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("dashboard listening", "addr", s.addr, "url", fmt.Sprintf("http://localhost%s", s.addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// BatchStarted announces a new conversion batch of the given size.
func (s *Server) BatchStarted(total int) {
	s.mu.Lock()
	s.total = total
	s.done = 0
	s.results = nil
	s.mu.Unlock()

	s.broadcast(Message{Type: "batch_started", Payload: ProgressPayload{Total: total}})
}

// Report records and broadcasts one file's result.
func (s *Server) Report(r Result) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.done++
	progress := ProgressPayload{Done: s.done, Total: s.total}
	s.mu.Unlock()

	s.broadcast(Message{Type: "result", Payload: r})
	s.broadcast(Message{Type: "progress", Payload: progress})
}

// BatchDone announces the end of the batch.
func (s *Server) BatchDone() {
	s.mu.RLock()
	progress := ProgressPayload{Done: s.done, Total: s.total}
	s.mu.RUnlock()

	s.broadcast(Message{Type: "batch_done", Payload: progress})
}

func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal dashboard message", "type", msg.Type, "error", err)
		return
	}
	s.hub.Broadcast(data)
}

// handleIndex serves the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // local tool, any origin
	},
}

// handleWebSocket upgrades a client and replays the results so far.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	s.hub.register <- client

	s.sendSnapshot(client)

	go client.writePump()
	client.readPump()
}

// sendSnapshot brings a newly connected client up to date.
func (s *Server) sendSnapshot(client *Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := []Message{
		{Type: "progress", Payload: ProgressPayload{Done: s.done, Total: s.total}},
	}
	for _, r := range s.results {
		msgs = append(msgs, Message{Type: "result", Payload: r})
	}

	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		select {
		case client.send <- data:
		default:
			return
		}
	}
}

// handleAPIResults serves all results so far as JSON.
func (s *Server) handleAPIResults(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.results)
}
