package service

import (
	"context"
	"strings"
	"sync"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// ListChecklistItems возвращает пункты списка покупок одной категории.
func (s *Service) ListChecklistItems(ctx context.Context, category string) ([]model.ChecklistItem, error) {
	if !model.IsChecklistCategory(category) {
		return nil, &ValidationError{Field: "category", Reason: "unknown category"}
	}
	return s.repo.GetChecklistItems(ctx, category)
}

// AddChecklistItem добавляет пункт в список покупок и уведомляет подписчиков
// категории.
func (s *Service) AddChecklistItem(ctx context.Context, category, text string) (string, error) {
	if !model.IsChecklistCategory(category) {
		return "", &ValidationError{Field: "category", Reason: "unknown category"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Field: "text", Reason: "must not be empty"}
	}

	id, err := s.repo.CreateChecklistItem(ctx, category, text)
	if err != nil {
		return "", err
	}

	s.notifyChecklist(ctx, category)
	return id, nil
}

// ToggleChecklistItem переключает отметку выполнения пункта.
func (s *Service) ToggleChecklistItem(ctx context.Context, category, id string, completed bool) error {
	if !model.IsChecklistCategory(category) {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}

	if err := s.repo.SetChecklistItemCompleted(ctx, id, completed); err != nil {
		return err
	}

	s.notifyChecklist(ctx, category)
	return nil
}

// RemoveChecklistItem удаляет пункт из списка покупок.
func (s *Service) RemoveChecklistItem(ctx context.Context, category, id string) error {
	if !model.IsChecklistCategory(category) {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}

	if err := s.repo.DeleteChecklistItem(ctx, id); err != nil {
		return err
	}

	s.notifyChecklist(ctx, category)
	return nil
}

// PendingChecklistItems возвращает число невыполненных пунктов по каждой
// категории. Категории без невыполненных пунктов в ответ не попадают.
func (s *Service) PendingChecklistItems(ctx context.Context) (map[string]int, error) {
	res := make(map[string]int)
	for _, category := range model.ChecklistCategories {
		items, err := s.repo.GetChecklistItems(ctx, category)
		if err != nil {
			return nil, err
		}
		pending := 0
		for _, it := range items {
			if !it.Completed {
				pending++
			}
		}
		if pending > 0 {
			res[category] = pending
		}
	}
	return res, nil
}

// SubscribeChecklist подписывает вызывающего на изменения списка одной
// категории. Колбэк получает полный свежий список после каждого изменения.
// Возвращённая подписка действует до явной отмены.
func (s *Service) SubscribeChecklist(category string, fn func([]model.ChecklistItem)) (*ChecklistSubscription, error) {
	if !model.IsChecklistCategory(category) {
		return nil, &ValidationError{Field: "category", Reason: "unknown category"}
	}
	return s.checklistHub.subscribe(category, fn), nil
}

// notifyChecklist читает свежий список категории и рассылает его подписчикам.
// Ошибка чтения подавляется: подписчики просто не получат это обновление.
func (s *Service) notifyChecklist(ctx context.Context, category string) {
	items, err := s.repo.GetChecklistItems(ctx, category)
	if err != nil {
		return
	}
	s.checklistHub.publish(category, items)
}

// ChecklistSubscription — действующая подписка на изменения одной категории.
type ChecklistSubscription struct {
	hub      *checklistHub
	category string
	id       int64
}

// Cancel отменяет подписку. Повторная отмена безопасна.
func (sub *ChecklistSubscription) Cancel() {
	sub.hub.unsubscribe(sub.category, sub.id)
}

// checklistHub хранит подписчиков по категориям внутри процесса.
type checklistHub struct {
	mu     sync.Mutex
	nextID int64
	subs   map[string]map[int64]func([]model.ChecklistItem)
}

func newChecklistHub() *checklistHub {
	return &checklistHub{
		subs: make(map[string]map[int64]func([]model.ChecklistItem)),
	}
}

func (h *checklistHub) subscribe(category string, fn func([]model.ChecklistItem)) *ChecklistSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.subs[category] == nil {
		h.subs[category] = make(map[int64]func([]model.ChecklistItem))
	}
	h.subs[category][id] = fn

	return &ChecklistSubscription{hub: h, category: category, id: id}
}

func (h *checklistHub) unsubscribe(category string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.subs[category]; ok {
		delete(m, id)
		if len(m) == 0 {
			delete(h.subs, category)
		}
	}
}

func (h *checklistHub) publish(category string, items []model.ChecklistItem) {
	h.mu.Lock()
	fns := make([]func([]model.ChecklistItem), 0, len(h.subs[category]))
	for _, fn := range h.subs[category] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(items)
	}
}
