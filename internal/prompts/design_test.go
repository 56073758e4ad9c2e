package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptReq(args map[string]string) mcp.GetPromptRequest {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = args
	return req
}

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Messages[0].Content)
	}
	return tc.Text
}

func TestDesignPrompt_Definition(t *testing.T) {
	def := NewDesignPrompt("steel", true).Definition()
	if def.Name != "hd-design" {
		t.Errorf("prompt name = %q, want hd-design", def.Name)
	}
	if len(def.Arguments) != 3 {
		t.Errorf("arguments = %d, want 3", len(def.Arguments))
	}
}

func TestDesignPrompt_Handle(t *testing.T) {
	tests := []struct {
		name      string
		catalogue bool
		args      map[string]string
		want      []string
		notWant   string
	}{
		{
			name:      "catalogue, explicit material",
			catalogue: true,
			args:      map[string]string{"ratio": "80", "max_diameter": "100", "material": "plastic"},
			want:      []string{"80:1", "material=plastic", "hd_suggest_parameters", "hd_save_design", "design_id"},
		},
		{
			name:    "no catalogue, default material",
			args:    map[string]string{"ratio": "50", "max_diameter": "120"},
			want:    []string{"50:1", "material=tpu", "hd_export_dxf"},
			notWant: "hd_save_design",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewDesignPrompt("tpu", tt.catalogue).Handle(context.Background(), promptReq(tt.args))
			if err != nil {
				t.Fatalf("Handle() error: %v", err)
			}
			text := promptText(t, res)
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("prompt missing %q:\n%s", w, text)
				}
			}
			if tt.notWant != "" && strings.Contains(text, tt.notWant) {
				t.Errorf("prompt should not mention %q", tt.notWant)
			}
		})
	}
}

func TestDesignPrompt_MissingArgs(t *testing.T) {
	_, err := NewDesignPrompt("steel", false).Handle(context.Background(), promptReq(map[string]string{"ratio": "80"}))
	if err == nil {
		t.Fatal("expected error without max_diameter")
	}
}
