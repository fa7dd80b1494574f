package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/explorador/imdbexplorer/internal/config"
	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/episodes"
	"github.com/explorador/imdbexplorer/internal/logger"
	"github.com/explorador/imdbexplorer/internal/ratings"
	"github.com/explorador/imdbexplorer/internal/section"
	"github.com/explorador/imdbexplorer/internal/temporal"
)

type commandContext struct {
	configFlag   *string
	envFileFlag  *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *dataset.Store
}

func newCommandContext(configFlag, envFileFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		envFileFlag:  envFileFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if c.envFileFlag != nil && *c.envFileFlag != "" {
			if err := godotenv.Load(*c.envFileFlag); err != nil && !errors.Is(err, os.ErrNotExist) {
				c.configErr = fmt.Errorf("load %s: %w", *c.envFileFlag, err)
				return
			}
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) zerolog.Logger {
	level := "warn"
	if c.logLevelFlag != nil {
		level = *c.logLevelFlag
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(logger.ParseLevel(level)).
		With().Timestamp().Logger()
}

func (c *commandContext) ensureStore(cmd *cobra.Command) (*dataset.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.storeOnce.Do(func() {
		sources := dataset.SourcesFromPaths(
			cfg.Data.Resolve(cfg.Data.Titles),
			cfg.Data.Resolve(cfg.Data.EpisodeLinks),
			cfg.Data.Resolve(cfg.Data.EpisodeRatings),
			cfg.Data.Delimiter(),
		)
		c.store = dataset.NewStore(sources, c.logger(cmd))
	})
	return c.store, nil
}

func (c *commandContext) ratingsService(cmd *cobra.Command) (*ratings.Service, error) {
	store, err := c.ensureStore(cmd)
	if err != nil {
		return nil, err
	}
	return ratings.NewService(store, ratings.Config{
		TopN:          c.config.Explorer.TopN,
		HistogramBins: c.config.Explorer.HistogramBins,
	}, c.logger(cmd)), nil
}

func (c *commandContext) temporalService(cmd *cobra.Command) (*temporal.Service, error) {
	store, err := c.ensureStore(cmd)
	if err != nil {
		return nil, err
	}
	return temporal.NewService(store, temporal.Config{
		MinTitlesGenreTrend: c.config.Explorer.MinTitlesGenreTrend,
		MinTitlesComparison: c.config.Explorer.MinTitlesComparison,
	}, c.logger(cmd)), nil
}

func (c *commandContext) episodesService(cmd *cobra.Command) (*episodes.Service, error) {
	store, err := c.ensureStore(cmd)
	if err != nil {
		return nil, err
	}
	return episodes.NewService(store, c.logger(cmd)), nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// emit prints a section result. Info and warning outcomes are printed as
// notices; error outcomes fail the command.
func (c *commandContext) emit(cmd *cobra.Command, data any, err error, render func(io.Writer)) error {
	if c.jsonOutput() {
		return writeJSON(cmd, section.New(data, err))
	}
	if err != nil {
		status, msg := section.Classify(err)
		if status == section.StatusError {
			return fmt.Errorf("%s: %w", msg, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", status, msg)
		return nil
	}
	render(cmd.OutOrStdout())
	return nil
}
