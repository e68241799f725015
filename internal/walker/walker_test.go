package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"npc-localizer/internal/irfile"
)

const trashModule = `local mod, CL = BigWigs:NewBoss("Blackrock Depths Trash", 1584)

mod:RegisterEnableMob(
	9016, -- Bael'Gar
)

local L = mod:GetLocale()
if L then
	L.baelgar = "Bael'Gar"
end
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestWalkMatchesSuffix(t *testing.T) {
	root := writeTree(t, map[string]string{
		"BlackrockDepths/BlackrockDepthsTrash.lua": trashModule,
		"BlackrockDepths/Emperor.lua":              "-- a boss module",
		"MoltenCore/MoltenCoreTrash.lua":           trashModule,
		"readme.md":                                "docs",
	})

	paths, err := NewWalker("Trash.lua").Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want the two Trash.lua files", paths)
	}
}

func TestWalkRejectsFileRoot(t *testing.T) {
	root := writeTree(t, map[string]string{"single.lua": trashModule})

	if _, err := NewWalker("Trash.lua").Walk(filepath.Join(root, "single.lua")); err == nil {
		t.Error("walking a plain file should fail")
	}
}

func TestExtractAllMirrorsTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"BlackrockDepths/BlackrockDepthsTrash.lua": trashModule,
	})
	outDir := t.TempDir()

	reports, err := NewWalker("Trash.lua").ExtractAll(context.Background(), root, outDir, irfile.FormatTOML, 2)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %+v, want one", reports)
	}
	if reports[0].Err != nil {
		t.Fatalf("report error: %v", reports[0].Err)
	}

	// Output named after the parsed module, under the mirrored directory.
	wantPath := filepath.Join(outDir, "BlackrockDepths", "Blackrock Depths Trash.toml")
	if reports[0].Output != wantPath {
		t.Errorf("output = %q, want %q", reports[0].Output, wantPath)
	}

	module, records, _, err := irfile.Read(wantPath)
	if err != nil {
		t.Fatalf("Read IR: %v", err)
	}
	if module != "Blackrock Depths Trash" {
		t.Errorf("module = %q", module)
	}
	if len(records) != 1 || records[0].ID != 9016 {
		t.Errorf("records = %+v", records)
	}
}

func TestExtractAllSkipsEmptyModules(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Empty/EmptyTrash.lua": "-- nothing to see here\n",
	})
	outDir := t.TempDir()

	reports, err := NewWalker("Trash.lua").ExtractAll(context.Background(), root, outDir, irfile.FormatTOML, 2)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %+v, want one", reports)
	}
	if reports[0].Output != "" {
		t.Errorf("output = %q, empty modules should not produce IR files", reports[0].Output)
	}
	if len(reports[0].Warnings) == 0 {
		t.Error("empty module should carry warnings")
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("output dir should stay empty, got %v", entries)
	}
}

func TestExtractAllAggregatesWarnings(t *testing.T) {
	unbalanced := `mod:RegisterEnableMob(
	1, -- First
	2, -- Second
)
local L = mod:GetLocale()
if L then
	L.first = "First"
end
`
	root := writeTree(t, map[string]string{
		"A/ATrash.lua": unbalanced,
	})
	outDir := t.TempDir()

	reports, err := NewWalker("Trash.lua").ExtractAll(context.Background(), root, outDir, irfile.FormatTOML, 1)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(reports) != 1 || len(reports[0].Warnings) != 1 {
		t.Errorf("reports = %+v, want one report with one unmatched-ID warning", reports)
	}
}
