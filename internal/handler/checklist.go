package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/rosario-store/internal/model"
)

type checklistItemResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
}

func toChecklistItemResponse(it *model.ChecklistItem) checklistItemResponse {
	return checklistItemResponse{
		ID:        it.ID,
		Category:  it.Category,
		Text:      it.Text,
		Completed: it.Completed,
		CreatedAt: it.CreatedAt.Format(time.RFC3339),
	}
}

func toChecklistResponse(items []model.ChecklistItem) []checklistItemResponse {
	resp := make([]checklistItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toChecklistItemResponse(&items[i]))
	}
	return resp
}

// GetChecklist возвращает пункты списка покупок одной категории.
func (h *Handler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	items, err := h.service.ListChecklistItems(r.Context(), category)
	if err != nil {
		h.handleServiceError(w, err, "get checklist error", zap.String("category", category))
		return
	}

	h.writeJSON(w, http.StatusOK, toChecklistResponse(items))
}

type checklistItemRequest struct {
	Text string `json:"text"`
}

// AddChecklistItem добавляет пункт в список покупок.
func (h *Handler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req checklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	id, err := h.service.AddChecklistItem(r.Context(), category, req.Text)
	if err != nil {
		h.handleServiceError(w, err, "add checklist item error", zap.String("category", category))
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type toggleRequest struct {
	Completed bool `json:"completed"`
}

// ToggleChecklistItem переключает отметку выполнения пункта.
func (h *Handler) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	id := chi.URLParam(r, "id")

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.ToggleChecklistItem(r.Context(), category, id, req.Completed); err != nil {
		h.handleServiceError(w, err, "toggle checklist item error", zap.String("itemID", id))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteChecklistItem удаляет пункт из списка покупок.
func (h *Handler) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	id := chi.URLParam(r, "id")

	if err := h.service.RemoveChecklistItem(r.Context(), category, id); err != nil {
		h.handleServiceError(w, err, "delete checklist item error", zap.String("itemID", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetChecklistPending возвращает число невыполненных пунктов по категориям.
func (h *Handler) GetChecklistPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.PendingChecklistItems(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get checklist pending error")
		return
	}

	h.writeJSON(w, http.StatusOK, pending)
}

// WatchChecklist отдаёт изменения списка одной категории потоком
// server-sent events. Первое событие — текущий снимок списка, далее полный
// свежий список после каждого изменения. Поток живёт до разрыва соединения.
func (h *Handler) WatchChecklist(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	items, err := h.service.ListChecklistItems(r.Context(), category)
	if err != nil {
		h.handleServiceError(w, err, "watch checklist error", zap.String("category", category))
		return
	}

	updates := make(chan []model.ChecklistItem, 8)
	sub, err := h.service.SubscribeChecklist(category, func(items []model.ChecklistItem) {
		select {
		case updates <- items:
		default:
			// медленный подписчик пропускает промежуточное состояние,
			// следующее событие всё равно принесёт полный список
		}
	})
	if err != nil {
		h.handleServiceError(w, err, "subscribe checklist error", zap.String("category", category))
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if !h.writeChecklistEvent(w, flusher, items) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case items := <-updates:
			if !h.writeChecklistEvent(w, flusher, items) {
				return
			}
		}
	}
}

func (h *Handler) writeChecklistEvent(w http.ResponseWriter, flusher http.Flusher, items []model.ChecklistItem) bool {
	payload, err := json.Marshal(toChecklistResponse(items))
	if err != nil {
		h.logger.Error("marshal checklist event error", zap.Error(err))
		return false
	}

	if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
