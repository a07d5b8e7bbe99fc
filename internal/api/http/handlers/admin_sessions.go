package handlers

import (
	"sync"

	"go.uber.org/zap"

	"github.com/deskhub/support-portal/internal/live"
)

// AdminSessions hands out per-admin selection controllers and notification
// trackers. Selection and panel state are scoped to one admin's session; the
// underlying view is shared by everyone.
type AdminSessions struct {
	view    *live.View
	mutator live.Mutator
	marker  live.SeenMarker
	logger  *zap.Logger

	mu          sync.Mutex
	controllers map[string]*live.Controller
	trackers    map[string]*live.Tracker
}

// NewAdminSessions constructs the registry.
func NewAdminSessions(view *live.View, mutator live.Mutator, marker live.SeenMarker, logger *zap.Logger) *AdminSessions {
	return &AdminSessions{
		view:        view,
		mutator:     mutator,
		marker:      marker,
		logger:      logger,
		controllers: map[string]*live.Controller{},
		trackers:    map[string]*live.Tracker{},
	}
}

// Controller returns the admin's selection controller, creating it on first use.
func (s *AdminSessions) Controller(adminID string) *live.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[adminID]
	if !ok {
		ctrl = live.NewController(s.mutator, s.logger)
		s.controllers[adminID] = ctrl
	}
	return ctrl
}

// Tracker returns the admin's notification tracker, creating it on first use.
func (s *AdminSessions) Tracker(adminID string) *live.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.trackers[adminID]
	if !ok {
		tr = live.NewTracker(s.view, s.marker, s.logger)
		s.trackers[adminID] = tr
	}
	return tr
}
