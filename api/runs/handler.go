// Package runs exposes the history of recent simulation runs.
package runs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/pvsim/core/runstore"
)

type Handler struct {
	store runstore.Store
}

func NewHandler(store runstore.Store) *Handler {
	return &Handler{store: store}
}

// Register mounts GET /runs and GET /runs/:id on g.
func (h *Handler) Register(g *gin.RouterGroup, mw ...gin.HandlerFunc) {
	g.GET("/runs", append(mw, h.List)...)
	g.GET("/runs/:id", append(mw, h.Get)...)
}

// List handles GET /runs. Query parameters tariff, mode, since (RFC3339)
// and failed narrow the result. Unparsable values are rejected.
func (h *Handler) List(c *gin.Context) {
	f := runstore.Filter{
		Tariff: c.Query("tariff"),
		Mode:   c.Query("mode"),
	}
	if s := c.Query("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			badRequest(c, "since: "+err.Error())
			return
		}
		f.Since = t
	}
	if s := c.Query("failed"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			badRequest(c, "failed: "+err.Error())
			return
		}
		f.Failed = &b
	}
	runs, err := h.store.List(f)
	if err != nil {
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, runs)
}

// Get handles GET /runs/:id.
func (h *Handler) Get(c *gin.Context) {
	ev, err := h.store.Get(c.Param("id"))
	switch {
	case errors.Is(err, runstore.ErrNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, ev)
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg)
}

func fail(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": msg}})
}
