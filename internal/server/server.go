// Package server exposes the inbound HTTP surface: identity resolution via
// bearer tokens and thin handlers mapping requests onto the module services.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	communityservice "github.com/raceline-gg/raceline-backend/app/modules/community/application"
	levelservice "github.com/raceline-gg/raceline-backend/app/modules/level/application"
	recordservice "github.com/raceline-gg/raceline-backend/app/modules/record/application"
	statsservice "github.com/raceline-gg/raceline-backend/app/modules/stats/application"
	userservice "github.com/raceline-gg/raceline-backend/app/modules/user/application"
)

// Server wires the module services onto HTTP routes.
type Server struct {
	levels    levelservice.Service
	records   recordservice.Service
	community communityservice.Service
	stats     statsservice.Service
	users     userservice.Service
	tokens    *TokenProvider
	logger    *slog.Logger
}

// NewServer creates a new Server.
func NewServer(
	levels levelservice.Service,
	records recordservice.Service,
	community communityservice.Service,
	stats statsservice.Service,
	users userservice.Service,
	tokens *TokenProvider,
	logger *slog.Logger,
) *Server {
	return &Server{
		levels:    levels,
		records:   records,
		community: community,
		stats:     stats,
		users:     users,
		tokens:    tokens,
		logger:    logger,
	}
}

// Router builds the route table. The vote listing is anonymous; everything
// else resolves the caller identity first.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/votes", s.handleListVotes)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/levels", s.handleCreateLevel)
		r.Post("/records/submit", s.handleSubmitRecord)
		r.Post("/favorites", s.handleAddFavorite)
		r.Post("/upvotes", s.handleAddUpvote)
		r.Post("/stats", s.handleSubmitStats)
		r.Post("/users/discord", s.handleUpdateDiscord)
	})

	return r
}
