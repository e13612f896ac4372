package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/ocr-gateway/internal/imaging"
	"github.com/ironsheep/ocr-gateway/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall runs a tool and wraps its JSON result in MCP's text
// content block. Failures map to -32602 for bad arguments and -32000 for
// everything else.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if s.debug {
			log.Printf("[mcp] %s failed: %v", params.Name, err)
		}
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "ocr_extract_text":
		return s.handleExtractText(ctx, args)
	case "ocr_batch_extract":
		return s.handleBatchExtract(ctx, args)
	case "ocr_cache_stats":
		return s.pipeline.CacheStats(), nil
	default:
		return nil, &argumentError{msg: fmt.Sprintf("unknown tool: %s", name)}
	}
}

// argumentError marks a call the client got wrong, as opposed to a failed
// extraction.
type argumentError struct {
	msg string
}

func (e *argumentError) Error() string {
	return e.msg
}

func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type extractTextArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleExtractText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, &argumentError{msg: "path is required"}
	}

	u := LoadUpload(a.Path)
	if u.Err != nil {
		return nil, u.Err
	}

	resp, err := s.pipeline.ExtractText(ctx, u)
	if err != nil {
		_, msg := pipeline.Classify(err)
		return nil, errors.New(msg)
	}
	return resp, nil
}

type batchExtractArgs struct {
	Paths []string `json:"paths"`
}

func (s *Server) handleBatchExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a batchExtractArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, &argumentError{msg: "paths is required"}
	}
	if err := s.pipeline.CheckBatchSize(len(a.Paths)); err != nil {
		return nil, err
	}

	uploads := make([]pipeline.Upload, len(a.Paths))
	for i, p := range a.Paths {
		uploads[i] = LoadUpload(p)
	}
	return s.pipeline.ExtractBatch(ctx, uploads)
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{msg: err.Error()}
	}
	return nil
}

// LoadUpload reads a file from disk for the pipeline. Read failures are
// reported in Err. The declared type comes from the file extension, or from
// the contents when the extension is unknown.
func LoadUpload(path string) pipeline.Upload {
	u := pipeline.Upload{Filename: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		u.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return u
	}
	u.Data = data
	u.ContentType = contentTypeFor(path, data)
	return u
}

func contentTypeFor(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	if format := imaging.DetectFormat(data); format != "" {
		return "image/" + format
	}
	return "application/octet-stream"
}
