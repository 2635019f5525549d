package handlers

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/eventbus"
	"ledgergrip/internal/ui/state"
)

// DefaultStatusTimeout is how long a notification stays in the status bar
const DefaultStatusTimeout = 4 * time.Second

// ClearStatusMsg asks the model to clear the status message numbered Seq
type ClearStatusMsg struct {
	Seq uint64
}

// EventHandler handles domain events and updates state
type EventHandler struct {
	state         *state.AppState
	sync          func(resource string) bool
	logger        *zap.Logger
	statusTimeout time.Duration
}

// NewEventHandler creates a new event handler. sync re-derives the list
// showing resource and reports whether anything changed.
func NewEventHandler(appState *state.AppState, sync func(resource string) bool, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		state:         appState,
		sync:          sync,
		logger:        logger.Named("events"),
		statusTimeout: DefaultStatusTimeout,
	}
}

// SetStatusTimeout changes how long notifications stay visible
func (h *EventHandler) SetStatusTimeout(d time.Duration) {
	h.statusTimeout = d
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.CollectionChangedEvent:
		if h.sync != nil {
			h.sync(e.Resource)
		}

	case eventbus.NotificationEvent:
		return h.Status(e.Kind, e.Message)

	case eventbus.FetchFailedEvent:
		return h.Status(domain.NotifyError, fmt.Sprintf("Failed to load %s: %v", e.Resource, e.Err))

	case eventbus.FetchCompletedEvent:
		h.logger.Debug("fetch completed",
			zap.String("resource", e.Resource),
			zap.Uint64("generation", e.Generation),
			zap.Int("count", e.Count))

	case eventbus.ConfigSavedEvent:
		return h.Status(domain.NotifyInfo, fmt.Sprintf("Saved configuration to %s", e.Path))
	}
	return nil
}

// Status shows message in the status bar and schedules its removal
func (h *EventHandler) Status(kind domain.NotifyKind, message string) tea.Cmd {
	seq := h.state.SetStatus(kind, message)
	return tea.Tick(h.statusTimeout, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
