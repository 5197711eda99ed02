package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// detectProperties are shared by every tool that locates a card.
func detectProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"threshold": map[string]interface{}{
			"type":        "number",
			"description": "Canny threshold used for both hysteresis bounds (default from config, 100)",
		},
		"min_area": map[string]interface{}{
			"type":        "number",
			"description": "Minimum enclosed contour area in square pixels (default 10000)",
		},
		"orientation": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"portrait", "landscape", "any"},
			"description": "Accepted card orientation (default portrait)",
		},
	}
}

// withProperties returns detectProperties plus extra.
func withProperties(extra map[string]interface{}) map[string]interface{} {
	props := detectProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tool definitions
func GetToolDefinitions() []Tool {
	return []Tool{
		// === Frame Information ===
		{
			Name:        "frame_load",
			Description: "Load an image as a scanner frame and return its dimensions and channel count. The frame is cached for later tool calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a specific pixel coordinate. Returns hex, RGB, and HSL values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "frame_delta",
			Description: "Mean squared intensity difference between two frames of the same size. 0 means identical; small values mean the camera view is stable.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path_a": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the earlier frame",
					},
					"path_b": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the later frame",
					},
				},
				"required": []string{"path_a", "path_b"},
			},
		},

		// === Card Pipeline ===
		{
			Name:        "edge_map",
			Description: "Run the Canny edge extractor used by the card detector. Returns the edge map as base64 PNG (white = edge).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Threshold used for both hysteresis bounds (default 100)",
					},
					"low": map[string]interface{}{
						"type":        "number",
						"description": "Explicit lower hysteresis bound, requires high",
					},
					"high": map[string]interface{}{
						"type":        "number",
						"description": "Explicit upper hysteresis bound, requires low",
					},
					"blur_sigma": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian pre-blur sigma, 0 disables (default)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "card_detect",
			Description: "Find the card outline in a frame. Returns the four corners in clockwise order starting nearest the origin, or the reason no card was accepted. Set all=true to list every top-level contour with its verdict.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"all": map[string]interface{}{
						"type":        "boolean",
						"description": "List every candidate contour instead of only the largest (default false)",
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a base64 PNG of the frame with the detected corners drawn (default false)",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Overlay color as hex (default #FF0000)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "card_rectify",
			Description: "Detect the card and warp it to a fixed-size top-down image. Returns a base64 JPEG and the mean color of the card face.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Output width in pixels (default 233)",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Output height in pixels (default 310)",
					},
					"quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality 1-100 (default 90)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "card_fingerprint",
			Description: "Detect, rectify and hash the card. Returns a 64-bit perceptual digest as hex; equal or close digests mean the same card.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"hasher": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"phash", "dhash", "ahash"},
						"description": "Hash function (default phash)",
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return reply(req.ID, map[string]interface{}{
		"tools": GetToolDefinitions(),
	})
}
