// Package httpapi is the thin HTTP glue (SPEC_FULL §4.7): JSON
// request/response translation to the room/user services. Router
// wiring, CORS, and OpenAPI docs are out of scope per spec.md §1.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tienlen/internal/app"
	"tienlen/internal/domain"
	"tienlen/internal/ports"
)

// Handlers holds the services the HTTP surface is thin glue over.
type Handlers struct {
	Store ports.Store
	Rooms *app.RoomService
	Log   *zap.Logger
}

// New constructs Handlers.
func New(store ports.Store, rooms *app.RoomService, log *zap.Logger) *Handlers {
	return &Handlers{Store: store, Rooms: rooms, Log: log}
}

// Register wires every route named in SPEC_FULL §6 onto r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Health)
	r.POST("/users", h.CreateUser)
	r.GET("/users/:user_id", h.GetUser)
	r.POST("/rooms", h.CreateRoom)
	r.POST("/rooms/:code/join", h.JoinRoom)
	r.POST("/rooms/:code/leave", h.LeaveRoom)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createUserRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	user := &domain.User{ID: uuid.NewString(), Name: req.Name, CreatedAt: now, LastJoinedAt: now}
	if err := h.Store.SaveUser(c.Request.Context(), user); err != nil {
		h.Log.Error("save user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.Log.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type createRoomRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	MaxPlayers int    `json:"max_players"`
	Password   string `json:"password"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, playerID, err := h.Rooms.CreateRoom(c.Request.Context(), req.UserID, req.MaxPlayers, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "player_id": playerID})
}

type joinRoomRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password"`
}

func (h *Handlers) JoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := normalizeRoomCode(c.Param("code"))
	room, playerID, err := h.Rooms.JoinRoom(c.Request.Context(), code, req.UserID, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "player_id": playerID})
}

type leaveRoomRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

func (h *Handlers) LeaveRoom(c *gin.Context) {
	var req leaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := normalizeRoomCode(c.Param("code"))
	room, err := h.Rooms.LeaveRoom(c.Request.Context(), code, req.PlayerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func normalizeRoomCode(code string) string {
	out := make([]byte, 0, len(code))
	for i := 0; i < len(code); i++ {
		b := code[i]
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		out = append(out, b)
	}
	return string(out)
}

// writeServiceError maps the error taxonomy of SPEC_FULL §7 onto HTTP
// status codes.
func writeServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch err {
	case app.ErrRoomNotFound, app.ErrUserNotFound, app.ErrPlayerNotFound:
		status = http.StatusNotFound
	case app.ErrInvalidPassword:
		status = http.StatusForbidden
	case app.ErrRoomFull:
		status = http.StatusConflict
	case app.ErrInvalidMaxPlayers:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
