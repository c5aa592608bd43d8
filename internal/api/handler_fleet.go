package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"emergency-dispatch-backend/internal/fleet"
	"emergency-dispatch-backend/internal/model"
	"emergency-dispatch-backend/internal/notification"
)

func serviceParam(c *gin.Context) (model.Service, bool) {
	service := model.Service(c.Param("service"))
	if !service.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown service, expected ambulance, fire or police"})
		return "", false
	}
	return service, true
}

func queryFloat(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetUnits handles GET /api/units/:service.
func (h *Handler) GetUnits(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	units, err := h.registry.ListUnits(c.Request.Context(), service)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list units"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service, "count": len(units), "units": units})
}

// GetAvailableUnits handles GET /api/units/:service/available.
func (h *Handler) GetAvailableUnits(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	units, err := h.registry.AvailableUnits(c.Request.Context(), service)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list units"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service, "count": len(units), "units": units})
}

// GetNearbyUnits handles GET /api/units/:service/nearby.
func (h *Handler) GetNearbyUnits(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	lat, latOK := queryFloat(c, "lat")
	lon, lonOK := queryFloat(c, "lon")
	if !latOK || !lonOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return
	}
	radius, _ := queryFloat(c, "radius_km")

	candidates, err := h.registry.Nearby(c.Request.Context(), service, lat, lon, radius, c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search units"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service, "count": len(candidates), "units": candidates})
}

// GetStations handles GET /api/stations/:service. With lat/lon query
// parameters it returns stations near that point, otherwise all of
// them.
func (h *Handler) GetStations(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}
	if service == model.ServiceAmbulance {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ambulances are hospital-based, no stations to list"})
		return
	}

	lat, latOK := queryFloat(c, "lat")
	lon, lonOK := queryFloat(c, "lon")
	if latOK && lonOK {
		radius, _ := queryFloat(c, "radius_km")
		stations, err := h.registry.NearbyStations(c.Request.Context(), service, lat, lon, radius)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search stations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"service": service, "count": len(stations), "stations": stations})
		return
	}

	stations, err := h.registry.ListStations(c.Request.Context(), service)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service, "count": len(stations), "stations": stations})
}

// GetDispatches handles GET /api/dispatches/:service.
func (h *Handler) GetDispatches(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	dispatches, err := h.registry.RecentDispatches(c.Request.Context(), service, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list dispatches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service, "count": len(dispatches), "dispatches": dispatches})
}

// GetCase handles GET /api/cases/:case_number, the operator-facing
// lookup for police incident records.
func (h *Handler) GetCase(c *gin.Context) {
	record, err := h.registry.GetCase(c.Request.Context(), c.Param("case_number"))
	switch {
	case errors.Is(err, fleet.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch case"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": record})
}

type completeRequest struct {
	Notes string `json:"notes"`
}

// PostCompleteDispatch handles POST /api/dispatches/:service/:dispatch_id/complete,
// resolving a dispatch and freeing its unit.
func (h *Handler) PostCompleteDispatch(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	dispatchID, err := strconv.ParseInt(c.Param("dispatch_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispatch id"})
		return
	}

	var req completeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	dispatch, err := h.registry.Complete(c.Request.Context(), service, dispatchID, req.Notes)
	switch {
	case errors.Is(err, fleet.ErrDispatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "dispatch not found"})
		return
	case errors.Is(err, fleet.ErrDispatchResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "dispatch already resolved"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete dispatch"})
		return
	}

	if h.pool != nil {
		h.pool.Notify(notification.Job{DispatchID: dispatch.ID, Event: notification.EventReleased})
	}
	c.JSON(http.StatusOK, gin.H{"dispatch": dispatch})
}
