// Package api exposes quantsim post-processing over HTTP: upload a
// traced snapshot as a session, run passes against it, and read back
// the resulting encodings.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/logger"
	"github.com/quantforge/qpost/internal/passes"
	"github.com/quantforge/qpost/internal/simfile"
)

// Pass names accepted by the run endpoint.
const (
	PassPropagate   = "propagate"
	PassMatMul8Bit  = "matmul-8bit"
	PassClipWeights = "clip-weights"
)

type Server struct {
	store *SessionStore
	log   logger.Logger
}

func NewServer(store *SessionStore, log logger.Logger) *Server {
	if store == nil {
		store = NewSessionStore()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{store: store, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/sessions", s.handleCreateSession)
	e.GET("/v1/sessions/:id", s.handleGetSession)
	e.DELETE("/v1/sessions/:id", s.handleDeleteSession)
	e.POST("/v1/sessions/:id/passes", s.handleRunPasses)
	e.GET("/v1/sessions/:id/encodings", s.handleGetEncodings)
}

func (s *Server) handleCreateSession(c *echo.Context) error {
	g, m, err := simfile.Decode(c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	sess := s.store.Create(g, m)
	s.log.Info("session created", "id", sess.ID, "model", g.ModelName, "ops", len(g.Ops))
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleGetSession(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "session not found")
	}
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleDeleteSession(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "session not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) handleRunPasses(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "session not found")
	}
	req, err := decodeJSON[RunPassesRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Passes) == 0 {
		return writeBadRequest(c, "no passes requested")
	}

	sess.Lock()
	defer sess.Unlock()

	applied := make([]string, 0, len(req.Passes))
	for _, spec := range req.Passes {
		if err := s.runPass(sess, spec); err != nil {
			if errors.Is(err, errBadPassSpec) {
				return writeBadRequest(c, err.Error())
			}
			return writeUnprocessable(c, err.Error())
		}
		applied = append(applied, spec.Name)
	}
	s.log.Info("passes applied", "session", sess.ID, "passes", applied)

	return c.JSON(http.StatusOK, RunPassesResponse{
		Applied:   applied,
		Encodings: simfile.Encodings(sess.Model),
	})
}

func (s *Server) handleGetEncodings(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "session not found")
	}
	sess.Lock()
	defer sess.Unlock()
	return c.JSON(http.StatusOK, simfile.Encodings(sess.Model))
}

var errBadPassSpec = errors.New("invalid pass spec")

func (s *Server) runPass(sess *Session, spec PassSpec) error {
	switch spec.Name {
	case PassPropagate:
		kind, err := graph.ParseKind(spec.Kind)
		if err != nil {
			return fmt.Errorf("%w: propagate: %v", errBadPassSpec, err)
		}
		return passes.Propagate(sess.Graph, sess.Model, passes.ByKind(kind))
	case PassMatMul8Bit:
		passes.ApplyMatMulSecondInputRule(sess.Graph, sess.Model, s.log)
		return nil
	case PassClipWeights:
		passes.ClipWeights16BitSymmetric(sess.Model, s.log)
		return nil
	default:
		return fmt.Errorf("%w: unknown pass %q", errBadPassSpec, spec.Name)
	}
}

func sessionResponse(sess *Session) SessionResponse {
	return SessionResponse{
		ID:      sess.ID,
		Model:   sess.Graph.ModelName,
		Ops:     len(sess.Graph.Ops),
		Modules: len(sess.Model.Modules()),
	}
}
