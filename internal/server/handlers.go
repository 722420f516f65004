package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/core-column-mcp/internal/column"
	"github.com/ironsheep/core-column-mcp/internal/imaging"
	"github.com/ironsheep/core-column-mcp/internal/layout"
	"github.com/ironsheep/core-column-mcp/internal/segment"
)

var errNoSegmenter = errors.New("segmentation is unavailable: no inference service configured")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "column_segment", "column_slice").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Error("tool failed", "tool", params.Name, "err", err)
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

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Segmentation
	case "column_segment":
		return s.handleColumnSegment(ctx, args)
	case "column_segment_many":
		return s.handleColumnSegmentMany(ctx, args)
	case "column_layout":
		return s.handleColumnLayout(args)

	// Column Operations
	case "column_info":
		return s.handleColumnInfo(args)
	case "column_slice":
		return s.handleColumnSlice(args)
	case "column_combine":
		return s.handleColumnCombine(args)
	case "column_preview":
		return s.handleColumnPreview(args)
	case "column_release":
		return s.handleColumnRelease(args)

	// Persistence
	case "column_save":
		return s.handleColumnSave(args)
	case "column_load":
		return s.handleColumnLoad(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// ColumnInfo describes a stored column.
type ColumnInfo struct {
	ID           string  `json:"id"`
	Height       int     `json:"height"`
	Width        int     `json:"width"`
	Channels     int     `json:"channels"`
	Top          float64 `json:"top"`
	Base         float64 `json:"base"`
	RowSpacing   float64 `json:"row_spacing"`
	AddTolerance float64 `json:"add_tolerance"`
	AddMode      string  `json:"add_mode"`
}

func columnInfo(id string, c *column.Column) *ColumnInfo {
	return &ColumnInfo{
		ID:           id,
		Height:       c.Height(),
		Width:        c.Width(),
		Channels:     c.Channels(),
		Top:          c.Top(),
		Base:         c.Base(),
		RowSpacing:   c.RowSpacing(),
		AddTolerance: c.AddTolerance(),
		AddMode:      c.AddMode().String(),
	}
}

func (s *Server) storeColumn(c *column.Column) *ColumnInfo {
	id := s.store.put(c)
	s.logger.Debug("stored column", "id", id, "column", c)
	return columnInfo(id, c)
}

// === Segmentation Handlers ===

type columnSegmentArgs struct {
	Path string  `json:"path"`
	Top  float64 `json:"top"`
	Base float64 `json:"base"`
}

func (a columnSegmentArgs) input() segment.Input {
	return segment.Input{Path: a.Path, Range: segment.DepthRange{Top: a.Top, Base: a.Base}}
}

func (s *Server) handleColumnSegment(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.seg == nil {
		return nil, errNoSegmenter
	}
	var a columnSegmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	col, err := s.seg.SegmentFile(ctx, a.Path, a.input().Range)
	if err != nil {
		return nil, err
	}
	return s.storeColumn(col), nil
}

type columnSegmentManyArgs struct {
	Images []columnSegmentArgs `json:"images"`
}

func (s *Server) handleColumnSegmentMany(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.seg == nil {
		return nil, errNoSegmenter
	}
	var a columnSegmentManyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	inputs := make([]segment.Input, len(a.Images))
	for i, img := range a.Images {
		if img.Path == "" {
			return nil, fmt.Errorf("images[%d]: path is required", i)
		}
		inputs[i] = img.input()
	}
	col, err := s.seg.SegmentMany(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return s.storeColumn(col), nil
}

type columnLayoutArgs struct {
	Order        *string  `json:"order"`
	Orientation  *string  `json:"orientation"`
	ColumnHeight *float64 `json:"column_height"`
	ColumnClass  *string  `json:"column_class"`
	Endpoints    *string  `json:"endpoints"`
}

// LayoutResult reports the active layout.
type LayoutResult struct {
	Order        string   `json:"order"`
	Orientation  string   `json:"orientation"`
	ColumnHeight float64  `json:"column_height"`
	ColumnClass  string   `json:"column_class"`
	Endpoints    string   `json:"endpoints"`
	Classes      []string `json:"classes"`
}

func (s *Server) handleColumnLayout(args json.RawMessage) (interface{}, error) {
	if s.seg == nil {
		return nil, errNoSegmenter
	}
	var a columnLayoutArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	cfg := s.seg.Layout()
	changed := false
	if a.Order != nil {
		d, err := layout.ParseDirection(*a.Order)
		if err != nil {
			return nil, err
		}
		cfg.Order, changed = d, true
	}
	if a.Orientation != nil {
		d, err := layout.ParseDirection(*a.Orientation)
		if err != nil {
			return nil, err
		}
		cfg.Orientation, changed = d, true
	}
	if a.ColumnHeight != nil {
		cfg.ColumnHeight, changed = *a.ColumnHeight, true
	}
	if a.ColumnClass != nil {
		cfg.ColumnClass, changed = *a.ColumnClass, true
	}
	if a.Endpoints != nil {
		e, err := layout.ParseEndpoints(*a.Endpoints)
		if err != nil {
			return nil, err
		}
		cfg.Endpoints, changed = e, true
	}
	if changed {
		if err := s.seg.SetLayout(cfg); err != nil {
			return nil, err
		}
		s.logger.Info("layout changed", "order", cfg.Order, "orientation", cfg.Orientation,
			"height", cfg.ColumnHeight, "class", cfg.ColumnClass, "endpoints", cfg.Endpoints)
	}

	classes := s.seg.Classes()
	return &LayoutResult{
		Order:        string(cfg.Order),
		Orientation:  string(cfg.Orientation),
		ColumnHeight: cfg.ColumnHeight,
		ColumnClass:  cfg.ColumnClass,
		Endpoints:    cfg.Endpoints.String(),
		Classes:      classes[1:],
	}, nil
}

// === Column Operation Handlers ===

type columnIDArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleColumnInfo(args json.RawMessage) (interface{}, error) {
	var a columnIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	col, err := s.store.get(a.ID)
	if err != nil {
		return nil, err
	}
	return columnInfo(a.ID, col), nil
}

type columnSliceArgs struct {
	ID   string  `json:"id"`
	Top  float64 `json:"top"`
	Base float64 `json:"base"`
}

func (s *Server) handleColumnSlice(args json.RawMessage) (interface{}, error) {
	var a columnSliceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	col, err := s.store.get(a.ID)
	if err != nil {
		return nil, err
	}
	sliced, err := col.Slice(a.Top, a.Base)
	if err != nil {
		return nil, err
	}
	return s.storeColumn(sliced), nil
}

type columnCombineArgs struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleColumnCombine(args json.RawMessage) (interface{}, error) {
	var a columnCombineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.IDs) < 2 {
		return nil, fmt.Errorf("combine needs at least 2 column ids, got %d", len(a.IDs))
	}
	cols := make([]*column.Column, len(a.IDs))
	for i, id := range a.IDs {
		col, err := s.store.get(id)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	combined, err := column.Stack(cols...)
	if err != nil {
		return nil, err
	}
	return s.storeColumn(combined), nil
}

type columnPreviewArgs struct {
	ID    string   `json:"id"`
	Top   *float64 `json:"top"`
	Base  *float64 `json:"base"`
	Scale float64  `json:"scale"`
}

// PreviewResult is a rendered column window.
type PreviewResult struct {
	ID   string  `json:"id"`
	Top  float64 `json:"top"`
	Base float64 `json:"base"`
	*imaging.EncodedImage
}

func (s *Server) handleColumnPreview(args json.RawMessage) (interface{}, error) {
	var a columnPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	col, err := s.store.get(a.ID)
	if err != nil {
		return nil, err
	}
	if a.Top != nil || a.Base != nil {
		top, base := col.DepthRange()
		if a.Top != nil {
			top = *a.Top
		}
		if a.Base != nil {
			base = *a.Base
		}
		if col, err = col.Slice(top, base); err != nil {
			return nil, err
		}
	}
	enc, err := imaging.EncodePNG(col.Image(), a.Scale)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{ID: a.ID, Top: col.Top(), Base: col.Base(), EncodedImage: enc}, nil
}

func (s *Server) handleColumnRelease(args json.RawMessage) (interface{}, error) {
	var a columnIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !s.store.delete(a.ID) {
		return nil, fmt.Errorf("%w: %q", errUnknownColumn, a.ID)
	}
	return map[string]interface{}{"id": a.ID, "released": true, "remaining": s.store.len()}, nil
}

// === Persistence Handlers ===

type columnSaveArgs struct {
	ID     string `json:"id"`
	Dir    string `json:"dir"`
	Name   string `json:"name"`
	Blob   bool   `json:"blob"`
	Image  bool   `json:"image"`
	Depths bool   `json:"depths"`
}

func (s *Server) handleColumnSave(args json.RawMessage) (interface{}, error) {
	var a columnSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	col, err := s.store.get(a.ID)
	if err != nil {
		return nil, err
	}
	opts := column.SaveOptions{Name: a.Name, Blob: a.Blob, Image: a.Image, Depths: a.Depths}
	if !opts.Blob && !opts.Image && !opts.Depths {
		opts.Blob, opts.Image, opts.Depths = true, true, true
	}
	saved, err := col.Save(a.Dir, opts)
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved column", "id", a.ID, "dir", a.Dir)
	return saved, nil
}

type columnLoadArgs struct {
	Dir  string   `json:"dir"`
	Name string   `json:"name"`
	Top  *float64 `json:"top"`
	Base *float64 `json:"base"`
}

func (s *Server) handleColumnLoad(args json.RawMessage) (interface{}, error) {
	var a columnLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var opts []column.Option
	if (a.Top == nil) != (a.Base == nil) {
		return nil, errors.New("top and base must be given together")
	}
	if a.Top != nil {
		opts = append(opts, column.WithRange(*a.Top, *a.Base))
	}
	col, err := column.Load(a.Dir, a.Name, opts...)
	if err != nil {
		return nil, err
	}
	return s.storeColumn(col), nil
}
