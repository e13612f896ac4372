package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "ocr_extract_text",
			Description: "Extract text from an image file with Tesseract. Returns the normalized text, mean word confidence (0.0-1.0), image metadata and whether the result came from the cache. The file must be JPEG, PNG or GIF and no larger than the configured size limit.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_batch_extract",
			Description: "Extract text from several image files. Results are returned in input order; a file that fails reports its own error without affecting the others. Batch items bypass the format and size checks and the result cache.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the image files (at most the configured batch limit, 10 by default)",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "ocr_cache_stats",
			Description: "Report result cache size, hit and miss counters, capacity and eviction policy.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
