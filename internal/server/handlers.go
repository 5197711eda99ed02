package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/magicscan/internal/detection"
	"github.com/ironsheep/magicscan/internal/fingerprint"
	"github.com/ironsheep/magicscan/internal/frame"
	"github.com/ironsheep/magicscan/internal/imaging"
	"github.com/ironsheep/magicscan/internal/scan"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "card_detect", "frame_delta").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return reply(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		},
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills optional parameters from the server configuration
//  3. Loads frames from cache as needed
//  4. Runs the requested pipeline stages
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Frame Information
	case "frame_load":
		return s.handleFrameLoad(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "frame_delta":
		return s.handleFrameDelta(args)

	// Card Pipeline
	case "edge_map":
		return s.handleEdgeMap(args)
	case "card_detect":
		return s.handleCardDetect(args)
	case "card_rectify":
		return s.handleCardRectify(args)
	case "card_fingerprint":
		return s.handleCardFingerprint(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &MCPError{Code: code, Message: message, Data: data},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Frame Information Handlers ===

type frameLoadArgs struct {
	Path string `json:"path"`
}

// FrameInfo describes a loaded frame.
type FrameInfo struct {
	Path     string `json:"path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
}

func (s *Server) handleFrameLoad(args json.RawMessage) (interface{}, error) {
	var a frameLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return &FrameInfo{
		Path:     a.Path,
		Width:    f.Width(),
		Height:   f.Height(),
		Channels: f.Channels(),
	}, nil
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(f.Image, a.X, a.Y)
}

type frameDeltaArgs struct {
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

// DeltaResult reports the frame delta between two frames.
type DeltaResult struct {
	Delta  float64 `json:"delta"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Stable bool    `json:"stable"` // within the configured max_delta; always true when the gate is off
}

func (s *Server) handleFrameDelta(args json.RawMessage) (interface{}, error) {
	var a frameDeltaArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	fa, err := s.cache.Load(a.PathA)
	if err != nil {
		return nil, err
	}
	fb, err := s.cache.Load(a.PathB)
	if err != nil {
		return nil, err
	}
	delta, err := imaging.Delta(fa.Image, fb.Image)
	if err != nil {
		return nil, err
	}
	return &DeltaResult{
		Delta:  delta,
		Width:  fb.Width(),
		Height: fb.Height(),
		Stable: s.cfg.MaxDelta <= 0 || delta <= s.cfg.MaxDelta,
	}, nil
}

// === Card Pipeline Handlers ===

type edgeMapArgs struct {
	Path      string  `json:"path"`
	Threshold float64 `json:"threshold"`
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	BlurSigma float64 `json:"blur_sigma"`
}

func (s *Server) handleEdgeMap(args json.RawMessage) (interface{}, error) {
	var a edgeMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := s.cfg.EdgeOptions()
	if a.Threshold > 0 {
		opts.Low, opts.High = a.Threshold, a.Threshold
	}
	if a.Low > 0 && a.High > 0 {
		if a.Low > a.High {
			return nil, fmt.Errorf("low (%g) exceeds high (%g)", a.Low, a.High)
		}
		opts.Low, opts.High = a.Low, a.High
	}
	if a.BlurSigma > 0 {
		opts.BlurSigma = a.BlurSigma
	}
	f, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(f.Image, opts)
}

// detectArgs are the arguments shared by every tool that locates a card.
type detectArgs struct {
	Path        string  `json:"path"`
	Threshold   float64 `json:"threshold"`
	MinArea     float64 `json:"min_area"`
	Orientation string  `json:"orientation"`
}

// locator builds an EdgeLocator from the server configuration with the
// call's overrides applied.
func (s *Server) locator(a detectArgs) (*scan.EdgeLocator, error) {
	edges := s.cfg.EdgeOptions()
	if a.Threshold > 0 {
		edges.Low, edges.High = a.Threshold, a.Threshold
	}

	det := s.cfg.DetectorOptions()
	if a.MinArea > 0 {
		det.MinArea = a.MinArea
	}
	if a.Orientation != "" {
		o, ok := detection.ParseOrientation(a.Orientation)
		if !ok {
			return nil, fmt.Errorf("unknown orientation %q", a.Orientation)
		}
		det.Orientation = o
	}
	return scan.NewEdgeLocator(edges, det), nil
}

// locate loads the frame and runs detection. A frame without an acceptable
// card is an error for tools that need the card.
func (s *Server) locate(a detectArgs) (*frame.Frame, detection.Quad, error) {
	loc, err := s.locator(a)
	if err != nil {
		return nil, detection.Quad{}, err
	}
	f, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, detection.Quad{}, err
	}
	q, reason, ok := loc.Locate(f)
	if !ok {
		return nil, detection.Quad{}, fmt.Errorf("no card detected: %s", reason)
	}
	return f, q, nil
}

type cardDetectArgs struct {
	detectArgs
	All     bool   `json:"all"`
	Overlay bool   `json:"overlay"`
	Color   string `json:"color"`
}

// DetectResult is the outcome of card_detect.
type DetectResult struct {
	Found      bool                        `json:"found"`
	Reason     detection.Reason            `json:"reason"`
	Corners    *detection.Quad             `json:"corners,omitempty"`
	Area       float64                     `json:"area,omitempty"`
	Top        float64                     `json:"top,omitempty"`
	Side       float64                     `json:"side,omitempty"`
	Overlay    *imaging.OverlayResult      `json:"overlay,omitempty"`
	Candidates *detection.CandidatesResult `json:"candidates,omitempty"`
}

func (s *Server) handleCardDetect(args json.RawMessage) (interface{}, error) {
	var a cardDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}
	loc, err := s.locator(a.detectArgs)
	if err != nil {
		return nil, err
	}
	f, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	q, reason, ok := loc.Locate(f)
	res := &DetectResult{Found: ok, Reason: reason}
	if ok {
		res.Corners = &q
		res.Area = q.Area()
		res.Top = q.Top()
		res.Side = q.Side()
		if a.Overlay {
			res.Overlay, err = imaging.PolygonOverlay(f.Image, q.ImagePoints(), a.Color)
			if err != nil {
				return nil, err
			}
		}
	}
	if a.All {
		res.Candidates = loc.Detector.Candidates(loc.EdgeMap(f), 0)
	}
	return res, nil
}

type cardRectifyArgs struct {
	detectArgs
	Width   int `json:"width"`
	Height  int `json:"height"`
	Quality int `json:"quality"`
}

// RectifyResult holds a rectified card as base64 JPEG.
type RectifyResult struct {
	Corners     detection.Quad      `json:"corners"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	MeanColor   imaging.ColorResult `json:"mean_color"`
	ImageBase64 string              `json:"image_base64"`
	MimeType    string              `json:"mime_type"`
}

func (s *Server) handleCardRectify(args json.RawMessage) (interface{}, error) {
	var a cardRectifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		a.Width, a.Height = s.cfg.Output.Width, s.cfg.Output.Height
	}
	if a.Quality == 0 {
		a.Quality = s.cfg.Output.JPEGQuality
	}
	if a.Quality < 1 || a.Quality > 100 {
		return nil, fmt.Errorf("quality must be in [1, 100], got %d", a.Quality)
	}

	f, q, err := s.locate(a.detectArgs)
	if err != nil {
		return nil, err
	}
	img, err := scan.PerspectiveWarper{}.Warp(f, q, a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	data, err := fingerprint.EncodeJPEG(img, a.Quality)
	if err != nil {
		return nil, err
	}

	return &RectifyResult{
		Corners:     q,
		Width:       img.Rect.Dx(),
		Height:      img.Rect.Dy(),
		MeanColor:   imaging.NewColorResult(imaging.MeanColor(img)),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/jpeg",
	}, nil
}

type cardFingerprintArgs struct {
	detectArgs
	Hasher string `json:"hasher"`
}

// FingerprintResult is the digest of a rectified card.
type FingerprintResult struct {
	Digest  fingerprint.Digest `json:"digest"`
	Hasher  string             `json:"hasher"`
	Corners detection.Quad     `json:"corners"`
}

func (s *Server) handleCardFingerprint(args json.RawMessage) (interface{}, error) {
	var a cardFingerprintArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Hasher == "" {
		a.Hasher = s.cfg.Output.Hasher
	}
	h, err := fingerprint.New(a.Hasher)
	if err != nil {
		return nil, err
	}

	f, q, err := s.locate(a.detectArgs)
	if err != nil {
		return nil, err
	}
	img, err := scan.PerspectiveWarper{}.Warp(f, q, s.cfg.Output.Width, s.cfg.Output.Height)
	if err != nil {
		return nil, err
	}
	digest, err := fingerprint.Fingerprint(img, h, s.cfg.Output.JPEGQuality)
	if err != nil {
		return nil, err
	}
	return &FingerprintResult{
		Digest:  digest,
		Hasher:  fmt.Sprint(h),
		Corners: q,
	}, nil
}
