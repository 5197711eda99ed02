// Package server implements the MCP (Model Context Protocol) server for the
// card scanning pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes each pipeline stage
// as a tool, so an MCP client can inspect why a frame did or did not produce
// a card: look at the edge map, list the candidate contours, view the
// rectified card and compare fingerprints.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame Information:
//   - frame_load: Load a still image as a frame, report size and channels
//   - image_sample_color: Get color at pixel
//   - frame_delta: Mean squared intensity change between two frames
//
// Card Pipeline:
//   - edge_map: Canny edge map as base64 PNG
//   - card_detect: Ordered card corners or the rejection reason
//   - card_rectify: Top-down card image as base64 JPEG
//   - card_fingerprint: Perceptual digest of the rectified card
//
// Optional tool arguments default to the configuration the server was
// created with.
//
// # Frame Caching
//
// The server keeps decoded frames in a frame.Cache keyed by path, so running
// several tools over the same file decodes it once. The cache persists for
// the lifetime of the server process.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC errors with code -32000. A frame in
// which no card is accepted is not an error for card_detect (found=false
// with a reason) but is for card_rectify and card_fingerprint.
package server
