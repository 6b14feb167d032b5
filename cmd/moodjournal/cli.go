package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
	"github.com/empowerguard/moodjournal/internal/ops"
	"github.com/empowerguard/moodjournal/internal/web"
)

// defaultStdinLimit applies when content_max_chars is unset.
const defaultStdinLimit = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, analyzer ops.Analyzer, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "moodjournal",
		Usage:   "Journal entries with emotional tone analysis",
		Version: Version,
		Commands: []*cli.Command{
			writeCmd(db, cfg, analyzer),
			fetchCmd(db),
			listCmd(db),
			searchCmd(db),
			deleteCmd(db),
			statsCmd(db),
			trendCmd(db),
			analyzeCmd(cfg, analyzer),
			normalizeCmd(),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			serveCmd(db, cfg, analyzer, logger),
		},
	}
	// Errors go back to run so deferred cleanup happens before the process exits.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// writeCmd creates the write command.
func writeCmd(db *sql.DB, cfg *config.Config, analyzer ops.Analyzer) *cli.Command {
	return &cli.Command{
		Name:  "write",
		Usage: "Write a new entry (reads content from stdin) and analyze its tone",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Entry title"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Entry date, YYYY-MM-DD or RFC3339 (default: now)"},
			&cli.Float64Flag{Name: "lat", Usage: "Latitude"},
			&cli.Float64Flag{Name: "lon", Usage: "Longitude"},
			&cli.StringFlag{Name: "weather", Usage: `Weather as a JSON object, e.g. '{"temp_c":12}'`},
			&cli.StringSliceFlag{Name: "media", Usage: "Attached media file name (repeatable)"},
			&cli.StringSliceFlag{Name: "face", Usage: "Facial-expression tag captured while writing (repeatable, in order)"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("content must be piped via stdin"))
			}
			content, err := readStdin(stdinLimit(cfg))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			if content == "" {
				return outputError(errors.NewInvalidRequest("content is required"))
			}

			input := ops.CreateInput{
				Title:      c.String("title"),
				Content:    content,
				Tags:       journal.SplitTags(c.String("tags")),
				Date:       c.String("date"),
				MediaFiles: c.StringSlice("media"),
			}
			if c.IsSet("lat") || c.IsSet("lon") {
				if !c.IsSet("lat") || !c.IsSet("lon") {
					return outputError(errors.NewInvalidRequest("--lat and --lon must be given together"))
				}
				input.Geolocation = &journal.Geolocation{Latitude: c.Float64("lat"), Longitude: c.Float64("lon")}
			}
			if w := c.String("weather"); w != "" {
				input.Weather = json.RawMessage(w)
			}
			now := time.Now().UTC().Format(time.RFC3339)
			for _, f := range c.StringSlice("face") {
				input.FaceLog = append(input.FaceLog, journal.FaceLogEntry{Emotion: f, Timestamp: now})
			}

			output, err := ops.Create(c.Context, db, cfg, analyzer, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output.Entry)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch an entry by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entries, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find entries by title, tags or content",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Usage: "Only entries with this tag"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, db, ops.SearchInput{
				Query:  strings.Join(c.Args().Slice(), " "),
				Tag:    c.String("tag"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete an entry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"deleted": output.Deleted, "id": output.ID})
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Tone distribution, average mood score and trend over all entries",
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// trendCmd creates the trend command.
func trendCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "trend",
		Usage: "Print the mood trend, one line per entry in date order",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output the series as JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(output.TrendSeries)
			}
			for _, p := range output.TrendSeries {
				fmt.Fprintf(os.Stdout, "%s  %d  %s\n", journal.FormatDate(p.Date), p.MoodValue, strings.Repeat("#", p.MoodValue))
			}
			return nil
		},
	}
}

// analyzeCmd creates the analyze command.
func analyzeCmd(cfg *config.Config, analyzer ops.Analyzer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze text for tone without saving (reads stdin when no text is given)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" && stdinHasData() {
				var err error
				if text, err = readStdin(stdinLimit(cfg)); err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
			}
			output, err := ops.Analyze(c.Context, analyzer, ops.AnalyzeInput{Text: text})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// normalizeCmd creates the normalize command.
func normalizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Usage:     "Map a raw tone label onto the canonical tones",
		ArgsUsage: "<label>",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.NormalizeTone(strings.Join(c.Args().Slice(), " ")))
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all entries to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.moodjournal/exports/<label>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "label", Usage: "File name prefix for the default path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path:  c.String("path"),
				Label: c.String("label"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import entries from a JSONL export file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|rename"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, analyzer ops.Analyzer, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dashboard and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
			&cli.StringFlag{Name: "allow-origin", Usage: "Access-Control-Allow-Origin value (default *)"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, analyzer, logger.Named("web"), web.Options{
				Version:       Version,
				Bind:          c.String("bind"),
				Port:          c.Int("port"),
				AllowedOrigin: c.String("allow-origin"),
			})
			if err := web.Run(srv, logger.Named("web")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var jErr *errors.JournalError
	if stderrors.As(err, &jErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", jErr.Code, jErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// stdinLimit bounds stdin reads: content_max_chars runes of up to 4 bytes each.
func stdinLimit(cfg *config.Config) int64 {
	if cfg == nil || cfg.ContentMaxChars <= 0 {
		return defaultStdinLimit
	}
	return int64(cfg.ContentMaxChars) * 4
}

// readStdin reads at most limit bytes from stdin, trimmed.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}
