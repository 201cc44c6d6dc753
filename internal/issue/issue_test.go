// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

// Tests in this file replace the package-level render func and therefore do
// not run in parallel.

func TestGet(t *testing.T) {
	for _, id := range []Id{
		NotARepositoryId, ModuleNotFoundId, ModuleUndefinedId, MissingDependencyId,
		NativeModuleExcludedId, ManifestLoadFailedId, DependencyCycleId,
		IgnoreFileNotFoundId, ConfigLoadFailedId, PermissionDeniedId,
	} {
		got := Get(id)
		if got == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if got.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, got.Id())
		}
		if strings.TrimSpace(string(got.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", id)
		}
	}
	if Get(0) != nil || Get(9999) != nil {
		t.Error("unknown ids should yield nil")
	}
}

func TestValues_SortedAndComplete(t *testing.T) {
	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not sorted at %d: %d >= %d", i, values[i-1].Id(), values[i].Id())
		}
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	is := Get(NotARepositoryId)
	links := is.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected external links")
	}
	links[0] = "mutated"
	if is.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks exposed internal storage")
	}
	if len(is.DocLinks()) != 0 {
		t.Errorf("DocLinks() = %v, want none", is.DocLinks())
	}
}

func TestIssue_Render(t *testing.T) {
	orig := render
	t.Cleanup(func() { render = orig })

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	tests := []struct {
		name        string
		issue       *Issue
		wantSeeAlso bool
	}{
		{name: "with links", issue: Get(NotARepositoryId), wantSeeAlso: true},
		{name: "without links", issue: Get(MissingDependencyId), wantSeeAlso: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.issue.Render("notty")
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if gotStyle != "notty" {
				t.Errorf("style = %q, want notty", gotStyle)
			}
			if !strings.Contains(out, string(tt.issue.MarkdownMsg())) {
				t.Error("rendered output lost the message body")
			}
			if got := strings.Contains(out, "See also"); got != tt.wantSeeAlso {
				t.Errorf("See also present = %v, want %v", got, tt.wantSeeAlso)
			}
		})
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	out, err := Get(ModuleNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "Module not found") {
		t.Errorf("glamour output missing heading:\n%s", out)
	}
}
