package ui

import (
	"time"

	"ledgergrip/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// tickMsg is sent on a timer for animations
type tickMsg time.Time

// listChangedMsg tells the program that a list view changed outside Update
type listChangedMsg struct{}

// loadedMsg reports the end of the initial load of both lists
type loadedMsg struct {
	err error
}

// pagerMsg contains the result of showing content in the pager
type pagerMsg struct {
	content string
	err     error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
