package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/magicscan/internal/config"
	"github.com/ironsheep/magicscan/internal/detection"
)

var (
	background = color.NRGBA{30, 30, 35, 255}
	cardColor  = color.NRGBA{225, 205, 180, 255}
)

// testCorners is a perspective-distorted portrait card on a 500x560 frame.
var testCorners = []detection.Point{{X: 100, Y: 50}, {X: 400, Y: 60}, {X: 410, Y: 500}, {X: 90, Y: 490}}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return f.Name()
}

// createTestImageFile creates a solid test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writePNG(t, img)
}

// createCardImageFile draws the test card on a dark background.
func createCardImageFile(t *testing.T) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 500, 560))
	for y := 0; y < 560; y++ {
		for x := 0; x < 500; x++ {
			c := background
			if inside(testCorners, float64(x), float64(y)) {
				c = cardColor
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return writePNG(t, img)
}

func inside(pts []detection.Point, x, y float64) bool {
	var pos, neg bool
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		c := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		pos = pos || c > 0
		neg = neg || c < 0
	}
	return !(pos && neg)
}

// callTool runs a tool through tools/call and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPError {
	t.Helper()

	params, _ := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Fatalf("content type: got %v, want text", content[0]["type"])
	}
	if out != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
			t.Fatalf("failed to decode tool result: %v", err)
		}
	}
	return nil
}

func TestHandleToolsCall_FrameLoad(t *testing.T) {
	s := New(nil)

	tests := []struct {
		name         string
		img          image.Image
		wantChannels int
	}{
		{"color", image.NewRGBA(image.Rect(0, 0, 100, 80)), 4},
		{"gray", image.NewGray(image.Rect(0, 0, 100, 80)), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePNG(t, tt.img)

			var info FrameInfo
			if err := callTool(t, s, "frame_load", map[string]interface{}{"path": path}, &info); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if info.Width != 100 || info.Height != 80 {
				t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
			}
			if info.Channels != tt.wantChannels {
				t.Errorf("channels: got %d, want %d", info.Channels, tt.wantChannels)
			}
		})
	}

	if s.cache.Len() != 2 {
		t.Errorf("cache holds %d frames, want 2", s.cache.Len())
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(nil)

	err := callTool(t, s, "frame_load", map[string]interface{}{"path": "/nonexistent/image.png"}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if err.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", err.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s := New(nil)
	path := createTestImageFile(t, 50, 50, color.RGBA{0, 0, 255, 255})

	var res struct {
		Hex string `json:"hex"`
	}
	if err := callTool(t, s, "image_sample_color", map[string]interface{}{"path": path, "x": 10, "y": 10}, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Hex != "#0000ff" {
		t.Errorf("hex: got %s, want #0000ff", res.Hex)
	}

	if err := callTool(t, s, "image_sample_color", map[string]interface{}{"path": path, "x": 50, "y": 10}, nil); err == nil {
		t.Error("expected an error outside the image")
	}
}

func TestHandleToolsCall_FrameDelta(t *testing.T) {
	cfg := config.Default()
	cfg.MaxDelta = 10
	s := New(cfg)

	a := createTestImageFile(t, 60, 40, color.RGBA{100, 100, 100, 255})
	b := createTestImageFile(t, 60, 40, color.RGBA{200, 200, 200, 255})
	small := createTestImageFile(t, 30, 40, color.RGBA{100, 100, 100, 255})

	var same DeltaResult
	if err := callTool(t, s, "frame_delta", map[string]interface{}{"path_a": a, "path_b": a}, &same); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if same.Delta != 0 || !same.Stable {
		t.Errorf("identical frames: got %+v, want delta 0 and stable", same)
	}

	var ab, ba DeltaResult
	if err := callTool(t, s, "frame_delta", map[string]interface{}{"path_a": a, "path_b": b}, &ab); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := callTool(t, s, "frame_delta", map[string]interface{}{"path_a": b, "path_b": a}, &ba); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ab.Delta < 9000 || ab.Stable {
		t.Errorf("changed frames: got %+v, want a large unstable delta", ab)
	}
	if ab.Delta != ba.Delta {
		t.Errorf("delta not symmetric: %g vs %g", ab.Delta, ba.Delta)
	}

	if err := callTool(t, s, "frame_delta", map[string]interface{}{"path_a": a, "path_b": small}, nil); err == nil {
		t.Error("expected an error for frames of different size")
	}
}

func TestHandleToolsCall_EdgeMap(t *testing.T) {
	s := New(nil)
	path := createCardImageFile(t)

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantEdges bool
		wantErr   bool
	}{
		{"defaults", map[string]interface{}{}, true, false},
		{"blur", map[string]interface{}{"blur_sigma": 1.0}, true, false},
		{"threshold above every gradient", map[string]interface{}{"threshold": 5000}, false, false},
		{"explicit pair", map[string]interface{}{"low": 50, "high": 150}, true, false},
		{"inverted pair", map[string]interface{}{"low": 150, "high": 50}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["path"] = path
			var res struct {
				Width       int    `json:"width"`
				Height      int    `json:"height"`
				EdgePixels  int    `json:"edge_pixels"`
				ImageBase64 string `json:"image_base64"`
				MimeType    string `json:"mime_type"`
			}
			err := callTool(t, s, "edge_map", tt.args, &res)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if res.Width != 500 || res.Height != 560 {
				t.Errorf("size: got %dx%d, want 500x560", res.Width, res.Height)
			}
			if (res.EdgePixels > 0) != tt.wantEdges {
				t.Errorf("edge pixels: got %d, want edges=%v", res.EdgePixels, tt.wantEdges)
			}
			if res.MimeType != "image/png" || res.ImageBase64 == "" {
				t.Errorf("unexpected encoding %q (%d bytes)", res.MimeType, len(res.ImageBase64))
			}
		})
	}
}

func TestHandleToolsCall_CardDetect(t *testing.T) {
	s := New(nil)
	path := createCardImageFile(t)

	var res DetectResult
	if err := callTool(t, s, "card_detect", map[string]interface{}{"path": path, "overlay": true}, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !res.Found || res.Reason != detection.Accepted {
		t.Fatalf("got found=%v reason=%s, want accepted", res.Found, res.Reason)
	}
	if res.Corners == nil {
		t.Fatal("corners missing")
	}
	for i, want := range testCorners {
		if d := detection.Distance(res.Corners[i], want); d > 3 {
			t.Errorf("corner %d: got %v, want near %v", i, res.Corners[i], want)
		}
	}
	if res.Top >= res.Side {
		t.Errorf("portrait card reported top %g >= side %g", res.Top, res.Side)
	}
	if res.Overlay == nil || res.Overlay.Width != 500 {
		t.Errorf("overlay missing or wrong size: %+v", res.Overlay)
	}
	if res.Candidates != nil {
		t.Error("candidates listed without all=true")
	}
}

func TestHandleToolsCall_CardDetect_Rejections(t *testing.T) {
	s := New(nil)
	card := createCardImageFile(t)
	blank := createTestImageFile(t, 200, 200, background)

	tests := []struct {
		name       string
		args       map[string]interface{}
		wantReason detection.Reason
	}{
		{"blank frame", map[string]interface{}{"path": blank}, detection.NoContour},
		{"landscape only", map[string]interface{}{"path": card, "orientation": "landscape"}, detection.WrongOrientation},
		{"min area above card", map[string]interface{}{"path": card, "min_area": 500000}, detection.AreaTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res DetectResult
			if err := callTool(t, s, "card_detect", tt.args, &res); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if res.Found {
				t.Fatal("expected no card")
			}
			if res.Reason != tt.wantReason {
				t.Errorf("reason: got %s, want %s", res.Reason, tt.wantReason)
			}
			if res.Corners != nil {
				t.Error("corners reported for a rejected frame")
			}
		})
	}

	if err := callTool(t, s, "card_detect", map[string]interface{}{"path": card, "orientation": "sideways"}, nil); err == nil {
		t.Error("expected an error for an unknown orientation")
	}
}

func TestHandleToolsCall_CardDetect_All(t *testing.T) {
	s := New(nil)
	path := createCardImageFile(t)

	var res DetectResult
	if err := callTool(t, s, "card_detect", map[string]interface{}{"path": path, "all": true}, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Candidates == nil || res.Candidates.Count == 0 {
		t.Fatal("expected at least one candidate")
	}
	first := res.Candidates.Candidates[0]
	if first.Reason != detection.Accepted {
		t.Errorf("largest candidate: got %s, want accepted", first.Reason)
	}
	if first.Quad == nil {
		t.Error("accepted candidate without quad")
	}
}

func TestHandleToolsCall_CardRectify(t *testing.T) {
	s := New(nil)
	path := createCardImageFile(t)

	var res RectifyResult
	if err := callTool(t, s, "card_rectify", map[string]interface{}{"path": path}, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Width != 233 || res.Height != 310 {
		t.Errorf("size: got %dx%d, want 233x310", res.Width, res.Height)
	}
	if res.MimeType != "image/jpeg" {
		t.Errorf("mime type: got %s", res.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 233 || img.Bounds().Dy() != 310 {
		t.Errorf("decoded size: got %v", img.Bounds())
	}

	mean := res.MeanColor.RGB
	diff := func(a, b uint8) float64 { return math.Abs(float64(a) - float64(b)) }
	if diff(mean.R, cardColor.R) > 15 || diff(mean.G, cardColor.G) > 15 || diff(mean.B, cardColor.B) > 15 {
		t.Errorf("mean color %+v, want near %v", mean, cardColor)
	}
}

func TestHandleToolsCall_CardRectify_Options(t *testing.T) {
	s := New(nil)
	path := createCardImageFile(t)

	var res RectifyResult
	args := map[string]interface{}{"path": path, "width": 100, "height": 140, "quality": 50}
	if err := callTool(t, s, "card_rectify", args, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Width != 100 || res.Height != 140 {
		t.Errorf("size: got %dx%d, want 100x140", res.Width, res.Height)
	}

	args["quality"] = 101
	if err := callTool(t, s, "card_rectify", args, nil); err == nil {
		t.Error("expected an error for quality 101")
	}
}

func TestHandleToolsCall_CardRectify_NoCard(t *testing.T) {
	s := New(nil)
	blank := createTestImageFile(t, 200, 200, background)

	err := callTool(t, s, "card_rectify", map[string]interface{}{"path": blank}, nil)
	if err == nil {
		t.Fatal("expected an error for a frame without a card")
	}
	if data, _ := err.Data.(string); data != "no card detected: no_contour" {
		t.Errorf("error data: got %v", err.Data)
	}
}

func TestHandleToolsCall_CardFingerprint(t *testing.T) {
	s := New(nil)
	first := createCardImageFile(t)

	// The same card in a second file must hash identically
	second := filepath.Join(t.TempDir(), "copy.png")
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, data, 0644); err != nil {
		t.Fatal(err)
	}

	for _, hasher := range []string{"", "phash", "dhash", "ahash"} {
		t.Run("hasher="+hasher, func(t *testing.T) {
			var a, b FingerprintResult
			if err := callTool(t, s, "card_fingerprint", map[string]interface{}{"path": first, "hasher": hasher}, &a); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if err := callTool(t, s, "card_fingerprint", map[string]interface{}{"path": second, "hasher": hasher}, &b); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if a.Digest != b.Digest {
				t.Errorf("digests differ: %s vs %s", a.Digest, b.Digest)
			}
			want := hasher
			if want == "" {
				want = "phash"
			}
			if a.Hasher != want {
				t.Errorf("hasher: got %s, want %s", a.Hasher, want)
			}
		})
	}

	if err := callTool(t, s, "card_fingerprint", map[string]interface{}{"path": first, "hasher": "md5"}, nil); err == nil {
		t.Error("expected an error for an unknown hasher")
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(nil)

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(nil)

	for _, tool := range GetToolDefinitions() {
		if _, err := s.executeTool(tool.Name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("%s should fail for invalid JSON", tool.Name)
		}
	}
}
