package worker

import (
	"sync"

	"leadreach/utils"
)

// ProgressEvent is one batch-progress update fanned out to live subscribers.
type ProgressEvent struct {
	JobID   string           `json:"job_id"`
	LeadID  string           `json:"lead_id"`
	Index   int              `json:"index"`
	Total   int              `json:"total"`
	Percent int              `json:"percent"`
	Status  string           `json:"status"`
	Result  utils.SendResult `json:"result"`
}

// ProgressHub fans batch progress out to websocket subscribers. Slow
// subscribers drop events instead of blocking the send loop.
type ProgressHub struct {
	mu   sync.RWMutex
	subs map[chan ProgressEvent]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{subs: make(map[chan ProgressEvent]struct{})}
}

func (h *ProgressHub) Subscribe() chan ProgressEvent {
	ch := make(chan ProgressEvent, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *ProgressHub) Unsubscribe(ch chan ProgressEvent) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *ProgressHub) Broadcast(event ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
