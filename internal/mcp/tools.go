package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stylesToolDef = mcp.NewTool("card_styles",
	mcp.WithDescription("List the preset card styles and their system prompts."),
)

var generateToolDef = mcp.NewTool("card_generate",
	mcp.WithDescription("Generate an SVG card. Pass either a preset style name or a custom_prompt; "+
		"custom_prompt wins when both are set. Blocks until the model answers and returns the new record with its markup."),
	mcp.WithString("style",
		mcp.Description("Preset style name from card_styles. Defaults to the first style."),
	),
	mcp.WithString("custom_prompt",
		mcp.Description("Custom system prompt used verbatim instead of a preset style."),
	),
	mcp.WithString("user_input",
		mcp.Required(),
		mcp.Description("What the card should say."),
	),
)

var historyToolDef = mcp.NewTool("card_history",
	mcp.WithDescription("List cards generated in this server process, newest first. Markup is omitted; fetch it with card_current."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum records to return (default 20, 0 for all)."),
	),
)

var currentToolDef = mcp.NewTool("card_current",
	mcp.WithDescription("Return the markup of the current card, or of a history record when id is given."),
	mcp.WithString("id",
		mcp.Description("Record ID from card_history."),
	),
)
