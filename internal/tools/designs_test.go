package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/logging"
	"github.com/HendryAvila/hdrive/internal/store"
)

// newTestStore creates a store.Store in a temp directory for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config{DataDir: t.TempDir(), MaxSearchResults: 20})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func saveDesign(t *testing.T, s *store.Store, name, notes, material string) store.Design {
	t.Helper()
	tool := NewSaveDesignTool(s, defaults(), logging.Nop())
	var d store.Design
	decode(t, call(t, tool.Handle, map[string]interface{}{
		"name":            name,
		"notes":           notes,
		"teeth_cs":        float64(160),
		"module":          0.5,
		"material":        material,
		"addendum_factor": 1.0,
	}), &d)
	return d
}

func TestSaveDesignTool_Handle(t *testing.T) {
	s := newTestStore(t)
	d := saveDesign(t, s, "robot elbow", "PLA, 0.2 layer", "plastic")

	if d.ID == "" || d.Name != "robot elbow" {
		t.Errorf("saved design = %+v", d)
	}
	if !d.IsValid {
		t.Errorf("plastic 160/0.5 with full addendum should be valid: strain %v cr %v", d.Strain, d.ContactRatio)
	}

	tool := NewSaveDesignTool(s, defaults(), logging.Nop())
	res := call(t, tool.Handle, map[string]interface{}{"teeth_cs": float64(160), "module": 0.5})
	if !res.IsError || !strings.Contains(resultText(res), "'name' is required") {
		t.Errorf("missing name result = %q", resultText(res))
	}
}

func TestListDesignsTool_Handle(t *testing.T) {
	s := newTestStore(t)
	tool := NewListDesignsTool(s)

	var empty struct {
		Stats   store.Stats    `json:"stats"`
		Designs []store.Design `json:"designs"`
	}
	decode(t, call(t, tool.Handle, map[string]interface{}{}), &empty)
	if empty.Designs == nil || len(empty.Designs) != 0 {
		t.Errorf("empty catalogue designs = %v, want []", empty.Designs)
	}

	saveDesign(t, s, "one", "", "plastic")
	saveDesign(t, s, "two", "", "tpu")

	var got struct {
		Stats   store.Stats    `json:"stats"`
		Designs []store.Design `json:"designs"`
	}
	decode(t, call(t, tool.Handle, map[string]interface{}{"limit": float64(1)}), &got)
	if len(got.Designs) != 1 || got.Designs[0].Name != "two" {
		t.Errorf("designs = %+v, want newest only", got.Designs)
	}
	if got.Stats.TotalDesigns != 2 {
		t.Errorf("TotalDesigns = %d, want 2", got.Stats.TotalDesigns)
	}
}

func TestSearchDesignsTool_Handle(t *testing.T) {
	s := newTestStore(t)
	saveDesign(t, s, "robot elbow", "compact joint", "plastic")
	saveDesign(t, s, "turntable", "slow stage", "tpu")
	tool := NewSearchDesignsTool(s)

	var results []store.SearchResult
	decode(t, call(t, tool.Handle, map[string]interface{}{"query": "joint"}), &results)
	if len(results) != 1 || results[0].Name != "robot elbow" {
		t.Errorf("results = %+v", results)
	}

	none := call(t, tool.Handle, map[string]interface{}{"query": "gearbox"})
	if none.IsError || !strings.Contains(resultText(none), "No designs found") {
		t.Errorf("no-match result = %q", resultText(none))
	}

	missing := call(t, tool.Handle, map[string]interface{}{"query": "  "})
	if !missing.IsError {
		t.Error("blank query should be a tool error")
	}
}

func TestGetDesignTool_Handle(t *testing.T) {
	s := newTestStore(t)
	d := saveDesign(t, s, "elbow", "", "plastic")
	tool := NewGetDesignTool(s)

	text := resultText(call(t, tool.Handle, map[string]interface{}{"id": d.ID}))
	for _, want := range []string{`"design"`, `"summary"`, d.ID, `"circular_spline"`} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %s", want)
		}
	}

	res := call(t, tool.Handle, map[string]interface{}{"id": "nope"})
	if !res.IsError || !strings.Contains(resultText(res), "not found") {
		t.Errorf("unknown id result = %q", resultText(res))
	}
}

func TestDeleteDesignTool_Handle(t *testing.T) {
	s := newTestStore(t)
	d := saveDesign(t, s, "elbow", "", "plastic")
	tool := NewDeleteDesignTool(s, logging.Nop())

	res := call(t, tool.Handle, map[string]interface{}{"id": d.ID})
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(res))
	}
	again := call(t, tool.Handle, map[string]interface{}{"id": d.ID})
	if !again.IsError || !strings.Contains(resultText(again), "not found") {
		t.Errorf("second delete result = %q", resultText(again))
	}
}

func TestExportTool_SavedDesign(t *testing.T) {
	s := newTestStore(t)
	d := saveDesign(t, s, "elbow", "", "plastic")

	cfg := config.DefaultConfig()
	cfg.Export.Dir = t.TempDir()
	tool := NewExportTool(cfg, s, logging.Nop())

	res := call(t, tool.Handle, map[string]interface{}{"design_id": d.ID, "segments": float64(12)})
	if res.IsError {
		t.Fatalf("export failed: %s", resultText(res))
	}
	if _, err := os.Stat(filepath.Join(cfg.Export.Dir, "hdrive_160_m0.5.dxf")); err != nil {
		t.Errorf("dxf missing: %v", err)
	}

	missing := call(t, tool.Handle, map[string]interface{}{"design_id": "nope"})
	if !missing.IsError {
		t.Error("unknown design_id should be a tool error")
	}
}
