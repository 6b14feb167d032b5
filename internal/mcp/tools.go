package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stringItems = map[string]any{"type": "string"}

var writeToolDef = mcp.NewTool("journal_write",
	mcp.WithDescription("Save a journal entry. The content is analyzed for emotional tone and "+
		"coping recommendations; if analysis fails the entry is still saved with tone \"unknown\"."),
	mcp.WithString("content", mcp.Required(), mcp.Description("Entry text (markdown allowed)")),
	mcp.WithString("title", mcp.Description("Optional title")),
	mcp.WithArray("tags", mcp.Description("Tags; lowercased and deduplicated"), mcp.Items(stringItems)),
	mcp.WithString("date", mcp.Description("Day the entry is about, RFC3339 or YYYY-MM-DD. Default: now")),
	mcp.WithObject("geolocation", mcp.Description("{latitude, longitude}")),
	mcp.WithObject("weather", mcp.Description("Free-form weather object")),
	mcp.WithArray("media_files", mcp.Description("Attached media file names"), mcp.Items(stringItems)),
	mcp.WithArray("face_log", mcp.Description("Facial-expression tags [{emotion, timestamp}] captured while writing"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"emotion":   map[string]any{"type": "string"},
				"timestamp": map[string]any{"type": "string"},
			},
		})),
)

var fetchToolDef = mcp.NewTool("journal_fetch",
	mcp.WithDescription("Fetch a journal entry by ID, with its mood meter fill and support links."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ULID")),
)

var listToolDef = mcp.NewTool("journal_list",
	mcp.WithDescription("List entry summaries, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var searchToolDef = mcp.NewTool("journal_search",
	mcp.WithDescription("Find entries whose title, tags or content contain the query, newest first. "+
		"Each item carries a snippet of the matching content."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Description("Case-insensitive text to look for. Required unless tag is set")),
	mcp.WithString("tag", mcp.Description("Only entries with this tag")),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var deleteToolDef = mcp.NewTool("journal_delete",
	mcp.WithDescription("Permanently delete a journal entry."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ULID")),
)

var statsToolDef = mcp.NewTool("journal_stats",
	mcp.WithDescription("Tone distribution, average mood score and mood trend over all entries."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("journal_export",
	mcp.WithDescription("Export all entries to a JSONL file."),
	mcp.WithString("path", mcp.Description("Output file. Default: ~/.moodjournal/exports/<label>-<timestamp>.jsonl")),
	mcp.WithString("label", mcp.Description("File name prefix for the default path")),
)

var importToolDef = mcp.NewTool("journal_import",
	mcp.WithDescription("Import entries from a JSONL export file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Export file to read")),
	mcp.WithString("mode", mcp.Description("Collision handling"), mcp.Enum("error", "replace", "rename")),
)

var analyzeToolDef = mcp.NewTool("tone_analyze",
	mcp.WithDescription("Analyze text for emotional tone and recommendations without saving anything."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("text", mcp.Required(), mcp.Description("Text to analyze")),
)

var normalizeToolDef = mcp.NewTool("tone_normalize",
	mcp.WithDescription("Map a raw tone label onto the canonical tones Angry, Sad, Neutral, Happy."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("label", mcp.Required(), mcp.Description("Raw tone label")),
)
