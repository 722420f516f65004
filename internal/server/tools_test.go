package server

import (
	"slices"
	"testing"
)

func toolMap() map[string]Tool {
	m := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		m[tool.Name] = tool
	}
	return m
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"column_segment",
		"column_segment_many",
		"column_layout",
		"column_info",
		"column_slice",
		"column_combine",
		"column_preview",
		"column_release",
		"column_save",
		"column_load",
	}

	m := toolMap()
	for _, name := range expectedTools {
		if _, ok := m[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(m) != len(tools) {
		t.Errorf("duplicate tool names: %d tools, %d unique", len(tools), len(m))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be declared
			if required, ok := tool.InputSchema["required"]; ok {
				requiredList, ok := required.([]string)
				if !ok {
					t.Fatal("'required' should be a string slice")
				}
				for _, r := range requiredList {
					if _, ok := props[r]; !ok {
						t.Errorf("required parameter %q has no property", r)
					}
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredParams(t *testing.T) {
	tests := map[string][]string{
		"column_segment":      {"path", "top", "base"},
		"column_segment_many": {"images"},
		"column_info":         {"id"},
		"column_slice":        {"id", "top", "base"},
		"column_combine":      {"ids"},
		"column_preview":      {"id"},
		"column_release":      {"id"},
		"column_save":         {"id", "dir"},
		"column_load":         {"dir", "name"},
	}

	m := toolMap()
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			tool, ok := m[name]
			if !ok {
				t.Fatalf("Tool %s not found", name)
			}
			got, _ := tool.InputSchema["required"].([]string)
			if !slices.Equal(got, want) {
				t.Errorf("required: got %v, want %v", got, want)
			}
		})
	}

	if _, ok := m["column_layout"].InputSchema["required"]; ok {
		t.Error("column_layout parameters should all be optional")
	}
}

func TestToolDefinitions_PreviewScaleDefault(t *testing.T) {
	props := toolMap()["column_preview"].InputSchema["properties"].(map[string]interface{})
	scale, ok := props["scale"].(map[string]interface{})
	if !ok {
		t.Fatal("column_preview.scale: parameter not found")
	}
	if scale["default"] != 1.0 {
		t.Errorf("column_preview.scale: default got %v, want 1.0", scale["default"])
	}
}

func TestToolDefinitions_LayoutEnums(t *testing.T) {
	props := toolMap()["column_layout"].InputSchema["properties"].(map[string]interface{})
	for _, name := range []string{"order", "orientation"} {
		param := props[name].(map[string]interface{})
		enum, _ := param["enum"].([]string)
		if !slices.Equal(enum, []string{"t2b", "l2r"}) {
			t.Errorf("%s enum: got %v", name, enum)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
