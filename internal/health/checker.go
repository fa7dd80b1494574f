package health

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/explorador/imdbexplorer/internal/dataset"
)

const databaseItemID = "sqlite"

var sourceLabels = map[string]string{
	dataset.SourceTitles:         "Títulos",
	dataset.SourceEpisodeLinks:   "Estructura de episodios",
	dataset.SourceEpisodeRatings: "Calificaciones de episodios",
}

// SourceReporter reports the on-disk and cache state of every source.
type SourceReporter interface {
	Status() []dataset.SourceStatus
}

// Pinger checks that the ledger database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker derives health items from source status and database reachability.
type Checker struct {
	health  *Service
	sources SourceReporter
	db      Pinger
	logger  zerolog.Logger
}

// NewChecker creates a checker. db may be nil when no ledger is configured.
func NewChecker(health *Service, sources SourceReporter, db Pinger, logger zerolog.Logger) *Checker {
	c := &Checker{
		health:  health,
		sources: sources,
		db:      db,
		logger:  logger.With().Str("component", "health-checker").Logger(),
	}
	c.register()
	return c
}

func (c *Checker) register() {
	for _, st := range c.sources.Status() {
		c.health.Register(CategorySources, st.Name, sourceLabel(st.Name))
	}
	if c.db != nil {
		c.health.Register(CategoryDatabase, databaseItemID, "Registro de cargas")
	}
}

// Check refreshes every item.
func (c *Checker) Check(ctx context.Context) error {
	unhealthy := 0
	for _, st := range c.sources.Status() {
		c.health.Register(CategorySources, st.Name, sourceLabel(st.Name))
		switch {
		case !st.Available:
			unhealthy++
			c.health.Set(CategorySources, st.Name, StatusError, fmt.Sprintf("Fuente no disponible: %s", st.Error))
		case st.Stale:
			c.health.Set(CategorySources, st.Name, StatusWarning,
				"Los archivos cambiaron en disco; los datos se recargarán en el próximo acceso")
		default:
			c.health.Set(CategorySources, st.Name, StatusOK, "")
		}
	}

	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			unhealthy++
			c.health.Set(CategoryDatabase, databaseItemID, StatusError, err.Error())
		} else {
			c.health.Set(CategoryDatabase, databaseItemID, StatusOK, "")
		}
	}

	c.logger.Debug().Int("unhealthy", unhealthy).Msg("Health check completed")
	return nil
}

func sourceLabel(name string) string {
	if label, ok := sourceLabels[name]; ok {
		return label
	}
	return name
}
