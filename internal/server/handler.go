// Package server exposes collected runs over a read-only JSON API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwulff/commutes/internal/db"
	"github.com/jwulff/commutes/internal/tables"
)

// History answers reads for routes saved by earlier runs. *db.Store
// implements it.
type History interface {
	RouteByID(id string) (*tables.Route, error)
	HasLeg(id string) (bool, error)
	LegsForRoute(routeID string) ([]tables.Leg, error)
	StepsForLeg(legID string) ([]tables.Step, error)
	RouteGroups() ([]db.RouteGroup, error)
	Counts() (db.TableCounts, error)
}

// TablesHandler serves one immutable run, falling back to history for ids
// the run does not hold.
type TablesHandler struct {
	result  tables.Result
	history History
}

// NewTablesHandler creates a handler over res. history may be nil.
func NewTablesHandler(res tables.Result, history History) *TablesHandler {
	return &TablesHandler{result: res, history: history}
}

// RegisterRoutes registers the table routes.
func (h *TablesHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api")
	{
		api.GET("/routes", h.ListRoutes)
		api.GET("/routes/:id", h.GetRoute)
		api.GET("/routes/:id/legs", h.ListLegs)
		api.GET("/legs/:id/steps", h.ListSteps)
		api.GET("/fingerprints", h.ListFingerprints)
	}
	if h.history == nil {
		return
	}
	hist := api.Group("/history")
	{
		hist.GET("/fingerprints", h.ListStoredFingerprints)
		hist.GET("/counts", h.StoredCounts)
	}
}

// ListRoutes returns every route of the run, optionally filtered by
// traffic_model or route_hash query parameters.
func (h *TablesHandler) ListRoutes(c *gin.Context) {
	model := c.Query("traffic_model")
	hash := c.Query("route_hash")

	routes := make([]tables.Route, 0, len(h.result.Routes))
	for _, r := range h.result.Routes {
		if model != "" && r.TrafficModel != model {
			continue
		}
		if hash != "" && r.Fingerprint != hash {
			continue
		}
		routes = append(routes, r)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": routes})
}

// GetRoute returns one route.
func (h *TablesHandler) GetRoute(c *gin.Context) {
	r, found, err := h.route(c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": r})
}

// ListLegs returns the legs of a route.
func (h *TablesHandler) ListLegs(c *gin.Context) {
	id := c.Param("id")

	var legs []tables.Leg
	if _, ok := h.result.Route(id); ok {
		legs = h.result.LegsFor(id)
	} else {
		_, found, err := h.route(id)
		if err != nil {
			internalError(c, err)
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
			return
		}
		if legs, err = h.history.LegsForRoute(id); err != nil {
			internalError(c, err)
			return
		}
	}
	if legs == nil {
		legs = []tables.Leg{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": legs})
}

// ListSteps returns the steps of a leg. A leg without steps yields an
// empty list.
func (h *TablesHandler) ListSteps(c *gin.Context) {
	id := c.Param("id")

	var steps []tables.Step
	if _, ok := h.result.Leg(id); ok {
		steps = h.result.StepsFor(id)
	} else {
		found := false
		if h.history != nil {
			var err error
			if found, err = h.history.HasLeg(id); err != nil {
				internalError(c, err)
				return
			}
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "leg not found"})
			return
		}
		var err error
		if steps, err = h.history.StepsForLeg(id); err != nil {
			internalError(c, err)
			return
		}
	}
	if steps == nil {
		steps = []tables.Step{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": steps})
}

// ListFingerprints returns the run's routes grouped by fingerprint.
func (h *TablesHandler) ListFingerprints(c *gin.Context) {
	groups := h.result.FingerprintGroups()
	out := make([]gin.H, len(groups))
	for i, g := range groups {
		out[i] = gin.H{
			"route_hash": g.Fingerprint,
			"summary":    g.Summary,
			"count":      len(g.RouteIDs),
			"route_ids":  g.RouteIDs,
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// ListStoredFingerprints returns every stored route grouped by fingerprint,
// with the traffic duration range seen for each.
func (h *TablesHandler) ListStoredFingerprints(c *gin.Context) {
	groups, err := h.history.RouteGroups()
	if err != nil {
		internalError(c, err)
		return
	}
	out := make([]gin.H, len(groups))
	for i, g := range groups {
		out[i] = gin.H{
			"route_hash":          g.Fingerprint,
			"summary":             g.Summary,
			"count":               g.Routes,
			"min_traffic_seconds": g.MinTrafficSeconds,
			"max_traffic_seconds": g.MaxTrafficSeconds,
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// StoredCounts returns the row counts of the stored tables.
func (h *TablesHandler) StoredCounts(c *gin.Context) {
	counts, err := h.history.Counts()
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"routes": counts.Routes,
		"legs":   counts.Legs,
		"steps":  counts.Steps,
	}})
}

func (h *TablesHandler) route(id string) (tables.Route, bool, error) {
	if r, ok := h.result.Route(id); ok {
		return r, true, nil
	}
	if h.history == nil {
		return tables.Route{}, false, nil
	}
	r, err := h.history.RouteByID(id)
	if err != nil || r == nil {
		return tables.Route{}, false, err
	}
	return *r, true, nil
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
