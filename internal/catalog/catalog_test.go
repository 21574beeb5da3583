package catalog_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/domain"
)

func TestDefaultCatalogShape(t *testing.T) {
	cat := catalog.Default()

	if cat.Version() != "2024.1" {
		t.Fatalf("expected version 2024.1, got %q", cat.Version())
	}
	if got := len(cat.Phases()); got != 6 {
		t.Fatalf("expected 6 phases, got %d", got)
	}
	if cat.Len() != 31 {
		t.Fatalf("expected 31 milestones, got %d", cat.Len())
	}

	milestones := cat.Milestones()
	if milestones[0].ID != "intake_completed" {
		t.Fatalf("expected intake_completed first, got %q", milestones[0].ID)
	}
	for i := 1; i < len(milestones); i++ {
		if !milestones[i-1].SortKey().Less(milestones[i].SortKey()) {
			t.Fatalf("milestones out of order at %d: %s then %s", i, milestones[i-1].ID, milestones[i].ID)
		}
	}
	for _, milestone := range milestones {
		if !milestone.AppliesToPath(domain.PathCourse) {
			t.Fatalf("expected %s to apply to course", milestone.ID)
		}
	}
}

func TestDefaultCatalogPathSubsets(t *testing.T) {
	cat := catalog.Default()
	counts := map[domain.ContentPath]int{}
	for _, milestone := range cat.Milestones() {
		for _, path := range append(domain.ContentPaths(), domain.PathUnset) {
			if milestone.AppliesToPath(path) {
				counts[path]++
			}
		}
	}

	expected := map[domain.ContentPath]int{
		domain.PathUnset:    15,
		domain.PathBlog:     17,
		domain.PathDownload: 22,
		domain.PathCourse:   31,
	}
	for path, want := range expected {
		if counts[path] != want {
			t.Fatalf("expected %d milestones for %s, got %d", want, path, counts[path])
		}
	}
}

func TestDefaultCatalogHooksAndInstructions(t *testing.T) {
	cat := catalog.Default()

	selection, ok := cat.Milestone("content_path_selected")
	if !ok {
		t.Fatalf("expected content_path_selected milestone")
	}
	if selection.Hook != "path_selection" {
		t.Fatalf("expected path_selection hook, got %q", selection.Hook)
	}
	if !selection.Intake {
		t.Fatalf("expected content_path_selected to be an intake milestone")
	}
	if !strings.Contains(selection.Action.InstructionsHTML, "<strong>blog</strong>") {
		t.Fatalf("expected rendered instructions, got %q", selection.Action.InstructionsHTML)
	}

	next, ok := cat.Next("intake_completed")
	if !ok || next.ID != "welcome_call_scheduled" {
		t.Fatalf("expected welcome_call_scheduled after intake, got %+v", next)
	}
	if _, ok := cat.Next("promo_video_recorded"); ok {
		t.Fatalf("expected no milestone after the last one")
	}
}

func TestMilestoneAccessorsReturnCopies(t *testing.T) {
	cat := catalog.Default()

	first, _ := cat.Milestone("blog_topic_proposed")
	first.AppliesTo[0] = domain.PathDownload

	again, _ := cat.Milestone("blog_topic_proposed")
	if again.AppliesTo[0] != domain.PathBlog {
		t.Fatalf("expected catalog to be immutable, got %v", again.AppliesTo)
	}
}

func TestOptionalFor(t *testing.T) {
	cat := catalog.Default()

	topic, _ := cat.Milestone("blog_topic_proposed")
	if !topic.OptionalFor(domain.PathCourse) {
		t.Fatalf("expected blog topic optional on course")
	}
	if topic.OptionalFor(domain.PathBlog) {
		t.Fatalf("expected blog topic required on blog")
	}

	promo, _ := cat.Milestone("promo_video_recorded")
	if !promo.OptionalFor(domain.PathBlog) {
		t.Fatalf("expected promo video optional by default")
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	doc := []byte(`
version: "1"
phases:
  - id: one
    name: One
    order: 1
milestones:
  - id: a
    phase: one
    order: 1
    title: A
    applies_to: [podcast]
`)
	_, err := catalog.Load(doc)
	if !errors.Is(err, catalog.ErrDocumentInvalid) {
		t.Fatalf("expected ErrDocumentInvalid, got %v", err)
	}
}

func TestLoadRejectsDuplicateSortKey(t *testing.T) {
	doc := []byte(`
version: "1"
phases:
  - id: one
    name: One
    order: 1
milestones:
  - id: a
    phase: one
    order: 1
    title: A
  - id: b
    phase: one
    order: 1
    title: B
`)
	_, err := catalog.Load(doc)
	if !errors.Is(err, catalog.ErrDuplicateSortKey) {
		t.Fatalf("expected ErrDuplicateSortKey, got %v", err)
	}
}

func TestLoadRejectsUnknownPhase(t *testing.T) {
	doc := []byte(`
version: "1"
phases:
  - id: one
    name: One
    order: 1
milestones:
  - id: a
    phase: two
    order: 1
    title: A
`)
	_, err := catalog.Load(doc)
	if !errors.Is(err, catalog.ErrUnknownPhase) {
		t.Fatalf("expected ErrUnknownPhase, got %v", err)
	}
}

func TestLoadNormalizesIDs(t *testing.T) {
	doc := []byte(`
version: "1"
phases:
  - id: one
    name: One
    order: 1
milestones:
  - id: "Sign Agreement"
    phase: one
    order: 1
    title: Sign
`)
	cat, err := catalog.Load(doc)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, ok := cat.Milestone("sign_agreement"); !ok {
		t.Fatalf("expected normalized id sign_agreement, got %+v", cat.Milestones())
	}
}

func TestValidatePayload(t *testing.T) {
	cat := catalog.Default()
	selection, _ := cat.Milestone("content_path_selected")

	if err := catalog.ValidatePayload(selection, map[string]any{"content_path": "course"}); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}

	err := catalog.ValidatePayload(selection, map[string]any{"content_path": "podcast"})
	if !errors.Is(err, catalog.ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid, got %v", err)
	}
	var payloadErr *catalog.PayloadError
	if !errors.As(err, &payloadErr) || len(payloadErr.Issues) == 0 {
		t.Fatalf("expected payload issues, got %v", err)
	}

	if err := catalog.ValidatePayload(selection, nil); !errors.Is(err, catalog.ErrPayloadInvalid) {
		t.Fatalf("expected missing content_path to fail, got %v", err)
	}

	plain, _ := cat.Milestone("agreement_signed")
	if err := catalog.ValidatePayload(plain, map[string]any{"anything": true}); err != nil {
		t.Fatalf("expected schemaless milestone to accept payload, got %v", err)
	}
}

func TestLoadMarkdownDirOverlaysInstructions(t *testing.T) {
	fsys := fstest.MapFS{
		"instructions/agreement_signed.md": {Data: []byte("---\nlabel: Sign now\nurl: https://sign.example.com\n---\nUse the **partner** portal.\n")},
		"instructions/profile.md":          {Data: []byte("---\nid: creator-profile-completed\n---\nUpload a headshot.\n")},
		"instructions/readme.txt":          {Data: []byte("ignored")},
	}

	cat, err := catalog.LoadMarkdownDir(fsys, "instructions", catalog.Default())
	if err != nil {
		t.Fatalf("LoadMarkdownDir returned error: %v", err)
	}
	if cat.Len() != 31 {
		t.Fatalf("expected overlay to keep 31 milestones, got %d", cat.Len())
	}

	signed, _ := cat.Milestone("agreement_signed")
	if signed.Action.Label != "Sign now" || signed.Action.URL != "https://sign.example.com" {
		t.Fatalf("expected front matter overrides, got %+v", signed.Action)
	}
	if !strings.Contains(signed.Action.InstructionsHTML, "<strong>partner</strong>") {
		t.Fatalf("expected rendered body, got %q", signed.Action.InstructionsHTML)
	}

	profile, _ := cat.Milestone("creator_profile_completed")
	if profile.Action.Instructions != "Upload a headshot." {
		t.Fatalf("expected profile instructions from front matter id, got %q", profile.Action.Instructions)
	}
}

func TestLoadMarkdownDirRejectsUnknownMilestone(t *testing.T) {
	fsys := fstest.MapFS{
		"instructions/ghost.md": {Data: []byte("---\nid: ghost\n---\nboo\n")},
	}
	_, err := catalog.LoadMarkdownDir(fsys, "instructions", catalog.Default())
	if !errors.Is(err, catalog.ErrUnknownInstructionTarget) {
		t.Fatalf("expected ErrUnknownInstructionTarget, got %v", err)
	}
}
