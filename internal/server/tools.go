package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func columnIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Column id returned by an earlier tool call",
	}
}

func depthRangeProperties() map[string]interface{} {
	return map[string]interface{}{
		"top": map[string]interface{}{
			"type":        "number",
			"description": "Depth at the top of the first column in the photograph",
		},
		"base": map[string]interface{}{
			"type":        "number",
			"description": "Depth at the base of the last column in the photograph",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	segmentProps := depthRangeProperties()
	segmentProps["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the core box photograph",
	}

	previewProps := map[string]interface{}{
		"id": columnIDProperty(),
		"top": map[string]interface{}{
			"type":        "number",
			"description": "Optional depth to start the preview at",
		},
		"base": map[string]interface{}{
			"type":        "number",
			"description": "Optional depth to end the preview at",
		},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Optional scale factor (e.g., 0.25 for a thumbnail). Default 1.0",
			"default":     1.0,
		},
	}

	sliceProps := depthRangeProperties()
	sliceProps["id"] = columnIDProperty()

	return []Tool{
		// Segmentation
		{
			Name:        "column_segment",
			Description: "Detect the core columns in a core box photograph, crop and orient each one, and assemble them into a single depth-registered column. Returns the new column's id and metadata.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentProps,
				"required":   []string{"path", "top", "base"},
			},
		},
		{
			Name:        "column_segment_many",
			Description: "Segment several core box photographs in depth order and stack them into one column. Photographs are processed concurrently.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"images": map[string]interface{}{
						"type":        "array",
						"description": "Photographs ordered from shallowest to deepest",
						"items": map[string]interface{}{
							"type":       "object",
							"properties": segmentProps,
							"required":   []string{"path", "top", "base"},
						},
					},
				},
				"required": []string{"images"},
			},
		},
		{
			Name:        "column_layout",
			Description: "Get or change how photographs are laid out: column order, orientation, column height, column class and crop endpoints. Omitted fields keep their current value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"order": map[string]interface{}{
						"type":        "string",
						"description": "Direction in which successive columns get deeper",
						"enum":        []string{"t2b", "l2r"},
					},
					"orientation": map[string]interface{}{
						"type":        "string",
						"description": "Direction in which depth increases inside one column",
						"enum":        []string{"t2b", "l2r"},
					},
					"column_height": map[string]interface{}{
						"type":        "number",
						"description": "Depth span of one full column",
					},
					"column_class": map[string]interface{}{
						"type":        "string",
						"description": "Detector class name of column regions",
					},
					"endpoints": map[string]interface{}{
						"type":        "string",
						"description": "Crop extent: \"auto\", \"auto_all\", \"low,high\" pixel bounds, or a class name such as \"tray\"",
					},
				},
			},
		},

		// Column Operations
		{
			Name:        "column_info",
			Description: "Get the shape, depth range, row spacing and add settings of a column.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": columnIDProperty(),
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "column_slice",
			Description: "Create a new column holding the rows of an existing column between top and base.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sliceProps,
				"required":   []string{"id", "top", "base"},
			},
		},
		{
			Name:        "column_combine",
			Description: "Stack two or more columns, shallowest first, into a new column. Gaps are filled or collapsed according to each column's add mode.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ids": map[string]interface{}{
						"type":        "array",
						"description": "Column ids ordered from shallowest to deepest",
						"items":       map[string]interface{}{"type": "string"},
						"minItems":    2,
					},
				},
				"required": []string{"ids"},
			},
		},
		{
			Name:        "column_preview",
			Description: "Render a column, or a depth window of it, as a base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": previewProps,
				"required":   []string{"id"},
			},
		},
		{
			Name:        "column_release",
			Description: "Forget a column and free its memory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": columnIDProperty(),
				},
				"required": []string{"id"},
			},
		},

		// Persistence
		{
			Name:        "column_save",
			Description: "Save a column to a directory as a state blob, a PNG image and a raw depth file. Defaults to all three.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": columnIDProperty(),
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Existing directory to write into",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Optional file stem. Default CoreColumn_<top>_<base>",
					},
					"blob": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the state blob",
					},
					"image": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the PNG image",
					},
					"depths": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the raw float64 depths",
					},
				},
				"required": []string{"id", "dir"},
			},
		},
		{
			Name:        "column_load",
			Description: "Load a column saved by column_save. A PNG without a depth file needs top and base.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory holding the saved files",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File stem the column was saved under",
					},
					"top": map[string]interface{}{
						"type":        "number",
						"description": "Optional top depth for image-only columns",
					},
					"base": map[string]interface{}{
						"type":        "number",
						"description": "Optional base depth for image-only columns",
					},
				},
				"required": []string{"dir", "name"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
