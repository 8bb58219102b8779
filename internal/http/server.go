package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"investflow/internal/cache"
	"investflow/internal/core"
	"investflow/internal/log"
	"investflow/internal/services"
)

const (
	summaryCacheSize = 64
	summaryCacheTTL  = 2 * time.Minute
)

// Server is the JSON API consumed by the mobile app.
type Server struct {
	http.Server

	expenses     *services.ExpenseService
	approvals    *services.ApprovalService
	participants *services.ParticipantService

	summaryCache *cache.LRUCache[core.Summary]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

func NewServer(addr string, expenses *services.ExpenseService, approvals *services.ApprovalService, participants *services.ParticipantService) *Server {
	s := &Server{
		expenses:         expenses,
		approvals:        approvals,
		participants:     participants,
		summaryCache:     cache.NewLRUCache[core.Summary](summaryCacheSize, summaryCacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      log.RequestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.startCacheCleanup()
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/summary", s.handleSummary)
	mux.HandleFunc("GET /api/expenses/export", s.handleExport)

	mux.HandleFunc("GET /api/projects/{projectID}/participants", s.handleProjectParticipants)
	mux.HandleFunc("PUT /api/participants/{participantID}/privacy", s.handleUpdatePrivacy)

	mux.HandleFunc("POST /api/proposals", s.handleCreateProposal)
	mux.HandleFunc("GET /api/proposals", s.handleListProposals)
	mux.HandleFunc("GET /api/proposals/{proposalID}", s.handleGetProposal)
	mux.HandleFunc("GET /api/proposals/{proposalID}/progress", s.handleProposalProgress)
	mux.HandleFunc("POST /api/proposals/{proposalID}/votes", s.handleCastVote)
	mux.HandleFunc("POST /api/proposals/{proposalID}/withdraw", s.handleWithdrawProposal)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// startCacheCleanup periodically drops expired summary entries.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutine and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
