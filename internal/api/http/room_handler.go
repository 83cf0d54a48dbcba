package http

import (
	"net/http"

	"github.com/ratulDIU/RentoVerse/internal/repository"
)

type RoomHandler struct {
	rooms repository.RoomRepository
}

func NewRoomHandler(rooms repository.RoomRepository) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

func (h *RoomHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	items, err := h.rooms.ListAvailable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	room, err := h.rooms.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
