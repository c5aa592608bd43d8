package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message   string   `json:"message" binding:"required"`
	SessionID string   `json:"session_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PostChat handles POST /api/chat: one conversational turn with the
// emergency agent. A missing session_id starts a new session; device
// coordinates, when provided, are trusted over anything the caller says
// in text.
func (h *Handler) PostChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	st := h.sessions.GetOrCreate(req.SessionID)

	if req.Latitude != nil && req.Longitude != nil {
		st.Lock()
		st.SetLocation(*req.Latitude, *req.Longitude, "device", "")
		st.Unlock()
	}

	reply, err := h.orch.ProcessMessage(c.Request.Context(), st, req.Message)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success":  false,
			"error":    "assistant unavailable: " + err.Error(),
			"response": "The system is unavailable right now. Please call 108 (medical), 101 (fire) or 100 (police) directly.",
		})
		return
	}

	st.Lock()
	resp := gin.H{
		"success":        true,
		"response":       reply.Response,
		"session_id":     st.SessionID,
		"phase":          st.Phase,
		"emergency_type": st.EmergencyType,
		"tools_called":   reply.ToolsCalled,
		"dispatched":     st.ServicesDispatched,
		"context":        st.ContextSummary(),
	}
	if st.ActiveDispatch != nil {
		resp["dispatch_info"] = *st.ActiveDispatch
	}
	st.Unlock()

	c.JSON(http.StatusOK, resp)
}

// GetSession handles GET /api/sessions/:session_id.
func (h *Handler) GetSession(c *gin.Context) {
	st, ok := h.sessions.Get(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	st.Lock()
	snapshot := st.Snapshot()
	st.Unlock()

	c.JSON(http.StatusOK, snapshot)
}

// DeleteSession handles DELETE /api/sessions/:session_id: the session
// is marked resolved and dropped from the store.
func (h *Handler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if !h.sessions.End(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "ended": true})
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Address   string   `json:"address"`
}

// PostSessionLocation handles POST /api/sessions/:session_id/location,
// the device GPS update path outside the conversation.
func (h *Handler) PostSessionLocation(c *gin.Context) {
	st, ok := h.sessions.Get(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	st.Lock()
	st.SetLocation(*req.Latitude, *req.Longitude, "device", req.Address)
	location := st.Location
	st.Unlock()

	c.JSON(http.StatusOK, gin.H{"session_id": st.SessionID, "location": location})
}
