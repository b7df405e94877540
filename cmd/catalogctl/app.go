package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/postgres"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "catalogctl",
		Usage: "Search and manage the course catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or TOML config file",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Read courses from this JSON or YAML file instead of the configured source",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(logger.New(c.App.ErrWriter, c.String("log-level"), "text"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a search query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "category", Usage: "Category facet id (repeatable)"},
					&cli.StringSliceFlag{Name: "duration", Usage: "Duration bucket: short, medium or long (repeatable)"},
					&cli.StringSliceFlag{Name: "level", Usage: "Level: beginner, intermediate or advanced (repeatable)"},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Show typeahead suggestions for a prefix",
				ArgsUsage: "PREFIX",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum title suggestions", Value: 5},
				},
			},
			{
				Name:   "facets",
				Usage:  "List facet options with counts",
				Action: facetsCommand,
			},
			{
				Name:   "seed",
				Usage:  "Replace the PostgreSQL catalog with the courses in a file",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON or YAML course file",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "invalidate",
						Usage: "Broadcast a cache invalidation after seeding",
						Value: true,
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Write the PostgreSQL catalog to a file",
				Action: exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Destination file; the extension selects JSON or YAML",
						Required: true,
					},
				},
			},
			{
				Name:   "invalidate",
				Usage:  "Ask every search replica to drop cached results",
				Action: invalidateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "reason", Usage: "Reason recorded with the event", Value: "manual"},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if path := c.String("catalog"); path != "" {
		cfg.Catalog.Source = config.SourceFile
		cfg.Catalog.Path = path
	}
	return cfg, nil
}

func openSearcher(c *cli.Context) (*searcher.Searcher, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	courses, err := store.Load(c.Context, cfg)
	if err != nil {
		return nil, err
	}
	engine, err := indexer.New(courses)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	return searcher.New(engine,
		searcher.WithFuzzyThreshold(cfg.Search.FuzzyThreshold),
		searcher.WithSuggestLimit(cfg.Search.SuggestLimit),
	), nil
}

func searchCommand(c *cli.Context) error {
	s, err := openSearcher(c)
	if err != nil {
		return err
	}
	filters := catalog.Filters{
		Categories: c.StringSlice("category"),
		Durations:  c.StringSlice("duration"),
		Levels:     c.StringSlice("level"),
	}
	results, err := s.Search(c.Context, strings.Join(c.Args().Slice(), " "), filters)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, results)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tINSTRUCTOR\tDURATION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Category, r.Instructor, r.Duration)
	}
	fmt.Fprintf(tw, "\n%d results\n", len(results))
	return tw.Flush()
}

func suggestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a prefix is required")
	}
	s, err := openSearcher(c)
	if err != nil {
		return err
	}
	suggestions := s.Suggest(strings.Join(c.Args().Slice(), " "), c.Int("limit"))
	if c.Bool("json") {
		return writeJSON(c.App.Writer, suggestions)
	}
	for _, sg := range suggestions {
		line := fmt.Sprintf("[%s] %s", sg.Kind, sg.Text)
		if sg.Reason != nil {
			line += fmt.Sprintf("  (%s: %s)", sg.Reason.Label, sg.Reason.HighlightedValue)
		}
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

func facetsCommand(c *cli.Context) error {
	s, err := openSearcher(c)
	if err != nil {
		return err
	}
	facets := map[string][]catalog.FacetOption{
		"categories": s.Categories(),
		"durations":  s.Durations(),
		"levels":     s.Levels(),
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, facets)
	}
	for _, dim := range []string{"categories", "durations", "levels"} {
		fmt.Fprintf(c.App.Writer, "%s:\n", dim)
		for _, opt := range facets[dim] {
			fmt.Fprintf(c.App.Writer, "  %-24s %-28s %d\n", opt.ID, opt.Label, opt.Count)
		}
	}
	return nil
}

func openStore(c *cli.Context) (*store.CourseStore, *postgres.Client, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return nil, nil, nil, err
	}
	s := store.New(db)
	if err := s.EnsureSchema(c.Context); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return s, db, cfg, nil
}

func seedCommand(c *cli.Context) error {
	courses, err := catalog.LoadFile(c.String("file"))
	if err != nil {
		return err
	}
	s, db, cfg, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := s.ReplaceAll(c.Context, courses); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "seeded %d courses\n", len(courses))
	if c.Bool("invalidate") && cfg.Kafka.Enabled {
		return publishInvalidation(c.Context, cfg, "catalog seeded")
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	s, db, _, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()
	courses, err := s.List(c.Context)
	if err != nil {
		return err
	}
	out := c.String("output")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()
	if err := encodeCourses(f, filepath.Ext(out), courses); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "exported %d courses to %s\n", len(courses), out)
	return nil
}

func invalidateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka is disabled in config; nothing to broadcast on")
	}
	if err := publishInvalidation(c.Context, cfg, c.String("reason")); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "cache invalidation broadcast")
	return nil
}

func publishInvalidation(ctx context.Context, cfg *config.Config, reason string) error {
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CacheInvalidate)
	defer producer.Close()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return producer.Publish(ctx, kafka.Event{
		Key: "invalidate",
		Value: cache.InvalidationEvent{
			Reason:    reason,
			Source:    "catalogctl",
			Timestamp: time.Now().UTC(),
		},
	})
}

// encodeCourses writes courses in the format named by ext, matching what
// catalog.LoadFile reads back.
func encodeCourses(w io.Writer, ext string, courses []catalog.Course) error {
	switch strings.ToLower(ext) {
	case ".json":
		return writeJSON(w, courses)
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(courses); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", ext)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
