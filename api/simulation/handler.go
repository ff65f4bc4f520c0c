// Package simulation exposes the simulator over HTTP.
package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/pvsim/auth"
	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/infra/input"
)

// Simulator runs one simulation.
type Simulator interface {
	Simulate(ctx context.Context, hours []model.HourRecord, sc config.SimulationConfig) (*sim.Result, error)
}

// SubjectKey is the gin context key holding the JWT subject of the caller.
const SubjectKey = "subject"

// Handler serves the simulation routes.
type Handler struct {
	sim      Simulator
	defaults config.SimulationConfig
	synth    config.GeneratorConfig
	maxHours int
}

// NewHandler returns a handler using cfg for defaults and limits.
func NewHandler(s Simulator, cfg *config.Config) *Handler {
	return &Handler{
		sim:      s,
		defaults: cfg.Simulation.Clone(),
		synth:    cfg.Input.Synth,
		maxHours: cfg.API.MaxHours,
	}
}

// Register mounts the routes on g. Only the simulation route is
// authenticated.
func (h *Handler) Register(g *gin.RouterGroup, authn gin.HandlerFunc) {
	g.GET("/health", h.Health)
	g.POST("/simulate", authn, h.Simulate)
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Simulate handles POST /api/v1/simulate.
func (h *Handler) Simulate(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	sc, err := h.scenario(req.Simulation)
	if err != nil {
		writeError(c, err)
		return
	}
	hours, err := h.hours(req)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.sim.Simulate(c.Request.Context(), hours, sc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResponse(res, req.IncludeRows))
}

func (h *Handler) scenario(raw json.RawMessage) (config.SimulationConfig, error) {
	sc := h.defaults.Clone()
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sc); err != nil {
			return sc, model.NewConfigurationError("simulation", "%v", err)
		}
	}
	sc.SetDefaults()
	return sc, sc.Validate()
}

var errTooManyHours = errors.New("too many hours")

func (h *Handler) hours(req Request) ([]model.HourRecord, error) {
	if len(req.Hours) == 0 {
		g := h.synth
		if req.Synthetic != nil {
			g = *req.Synthetic
		}
		ic := config.InputConfig{Synth: g}
		ic.SetDefaults()
		if err := ic.Validate(); err != nil {
			return nil, err
		}
		if ic.Synth.Days*24 > h.maxHours {
			return nil, fmt.Errorf("%w: %d days exceed the limit of %d hours", errTooManyHours, ic.Synth.Days, h.maxHours)
		}
		return ic.Generator().Generate(), nil
	}
	if len(req.Hours) > h.maxHours {
		return nil, fmt.Errorf("%w: %d exceeds the limit of %d", errTooManyHours, len(req.Hours), h.maxHours)
	}
	out := make([]model.HourRecord, len(req.Hours))
	for i, hr := range req.Hours {
		out[i] = hr.record(i)
	}
	return out, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errTooManyHours):
		abort(c, http.StatusRequestEntityTooLarge, "TOO_MANY_HOURS", err.Error())
	case errors.Is(err, model.ErrEmptyHorizon):
		abort(c, http.StatusUnprocessableEntity, "EMPTY_HORIZON", err.Error())
	case errors.Is(err, model.ErrInvalidConfiguration), errors.Is(err, input.ErrMalformed):
		abort(c, http.StatusUnprocessableEntity, "INVALID_CONFIGURATION", err.Error())
	default:
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}

// RequireAuth rejects requests that carry neither the static bearer token
// nor a JWT signed with the configured secret. With both unset the check is
// disabled.
func RequireAuth(cfg config.APIConfig) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	return func(c *gin.Context) {
		if cfg.Token == "" && len(secret) == 0 {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		bearer, ok := strings.CutPrefix(header, "Bearer ")
		if ok && bearer != "" {
			if cfg.Token != "" && bearer == cfg.Token {
				c.Next()
				return
			}
			if len(secret) > 0 {
				if claims, err := auth.ParseJWT(bearer, secret); err == nil {
					c.Set(SubjectKey, claims.Subject)
					c.Next()
					return
				}
			}
		}
		abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
	}
}
