package health

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventHealthUpdated is the websocket event carrying an Item whose status
// changed.
const EventHealthUpdated = "health:updated"

// Broadcaster defines the interface for sending WebSocket messages.
type Broadcaster interface {
	Broadcast(msgType string, payload any) error
}

type itemKey struct {
	category Category
	id       string
}

// Service holds the in-memory health state of the data sources and the
// ledger database.
type Service struct {
	mu          sync.RWMutex
	items       map[itemKey]*Item
	broadcaster Broadcaster
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates an empty health service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		items:  make(map[itemKey]*Item),
		logger: logger.With().Str("component", "health").Logger(),
		now:    time.Now,
	}
}

// SetBroadcaster sets the WebSocket broadcaster for status changes.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Register starts tracking an item as OK. Registering a tracked item again
// leaves its status alone.
func (s *Service) Register(category Category, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey{category, id}
	if _, ok := s.items[key]; ok {
		return
	}
	s.items[key] = &Item{Category: category, ID: id, Name: name, Status: StatusOK}
}

// Set records the status of a tracked item. Only changes are logged and
// broadcast; updates for untracked items are ignored.
func (s *Service) Set(category Category, id string, status Status, message string) {
	if status == StatusOK {
		message = ""
	}

	s.mu.Lock()
	item, ok := s.items[itemKey{category, id}]
	if !ok || (item.Status == status && item.Message == message) {
		s.mu.Unlock()
		return
	}
	previous := item.Status
	item.Status = status
	item.Message = message
	item.Since = nil
	if status != StatusOK {
		since := s.now()
		item.Since = &since
	}
	changed := *item
	s.mu.Unlock()

	ev := s.logger.Info()
	if status == StatusError {
		ev = s.logger.Warn()
	}
	ev.Str("category", string(category)).
		Str("id", id).
		Str("from", string(previous)).
		Str("to", string(status)).
		Str("message", message).
		Msg("health status changed")

	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(EventHealthUpdated, changed); err != nil {
			s.logger.Error().Err(err).Msg("failed to broadcast health update")
		}
	}
}

// Item returns a copy of a tracked item.
func (s *Service) Item(category Category, id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemKey{category, id}]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Items returns the items of one category ordered by id.
func (s *Service) Items(category Category) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Item{}
	for key, item := range s.items {
		if key.category == category {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Report returns every item grouped by category.
func (s *Service) Report() Report {
	return Report{
		Sources:  s.Items(CategorySources),
		Database: s.Items(CategoryDatabase),
	}
}

// Summary counts items per category and status.
func (s *Service) Summary() Summary {
	var summary Summary
	for _, category := range categories {
		counts := Counts{Category: category}
		for _, item := range s.Items(category) {
			switch item.Status {
			case StatusOK:
				counts.OK++
			case StatusWarning:
				counts.Warning++
			case StatusError:
				counts.Error++
			}
		}
		summary.HasIssues = summary.HasIssues || counts.Warning+counts.Error > 0
		summary.Categories = append(summary.Categories, counts)
	}
	return summary
}
