package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateFilename(t *testing.T) {
	cases := []struct {
		name   string
		fields RenameFields
		want   string
	}{
		{
			"all fields with analyzer date",
			RenameFields{Date: "25-12-2025", Organization: "Acme Corp", Subject: "Invoice", Receiver: "Mario Rossi"},
			"2025-12-25 - Acme Corp - Invoice - Mario Rossi.pdf",
		},
		{
			"empty parts skipped",
			RenameFields{Organization: "Acme"},
			"Acme.pdf",
		},
		{
			"nothing set falls back",
			RenameFields{},
			"document.pdf",
		},
		{
			"hostile characters replaced",
			RenameFields{Subject: `Re: "offer" <final>`},
			"Re_ _offer_ _final_.pdf",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GenerateFilename("/docs/in.pdf", tc.fields); got != tc.want {
				t.Errorf("GenerateFilename() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSanitizeComponentBoundsLength(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := SanitizeComponent(long)
	if len([]rune(got)) != 50 {
		t.Errorf("len = %d, want 50", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated component should end with ellipsis: %q", got)
	}
}

func TestSanitizeComponentCollapsesWhitespace(t *testing.T) {
	if got := SanitizeComponent("  a   b \t c  "); got != "a b c" {
		t.Errorf("SanitizeComponent() = %q, want %q", got, "a b c")
	}
}

func TestApplyRename(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "old.txt")
	if err := os.WriteFile(original, []byte("content"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	target, err := ApplyRename(original, "new.txt")
	if err != nil {
		t.Fatalf("ApplyRename() error = %v", err)
	}
	if target != filepath.Join(dir, "new.txt") {
		t.Errorf("target = %q", target)
	}
	if _, err := os.Stat(original); !os.IsNotExist(err) {
		t.Error("original file still present")
	}
}

func TestApplyRenameRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "old.txt")
	existing := filepath.Join(dir, "taken.txt")
	for _, p := range []string{original, existing} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	if _, err := ApplyRename(original, "taken.txt"); err == nil {
		t.Fatal("expected refusal to overwrite existing target")
	}
}
