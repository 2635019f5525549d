package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventCollectionChanged EventType = "CollectionChanged"
	EventNotification      EventType = "Notification"
	EventFetchStarted      EventType = "FetchStarted"
	EventFetchCompleted    EventType = "FetchCompleted"
	EventFetchFailed       EventType = "FetchFailed"
	EventConfigLoaded      EventType = "ConfigLoaded"
	EventConfigSaved       EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// CollectionChangedEvent is emitted when a cached resource snapshot is replaced
type CollectionChangedEvent struct {
	Resource string
	Version  uint64
}

func (e CollectionChangedEvent) Type() EventType { return EventCollectionChanged }

// NotifyKind classifies user-facing feedback
type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
	NotifyInfo    NotifyKind = "info"
)

// NotificationEvent carries a fire-and-forget message for the status bar
type NotificationEvent struct {
	Kind    NotifyKind
	Message string
}

func (e NotificationEvent) Type() EventType { return EventNotification }

// FetchStartedEvent is emitted when a list starts loading its candidates
type FetchStartedEvent struct {
	Resource   string
	Generation uint64
}

func (e FetchStartedEvent) Type() EventType { return EventFetchStarted }

// FetchCompletedEvent is emitted when a fetch result was applied
type FetchCompletedEvent struct {
	Resource   string
	Generation uint64
	Count      int
}

func (e FetchCompletedEvent) Type() EventType { return EventFetchCompleted }

// FetchFailedEvent is emitted when loading candidates failed
type FetchFailedEvent struct {
	Resource string
	Err      error
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path     string
	Database string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
