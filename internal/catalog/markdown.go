package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// ErrUnknownInstructionTarget indicates a markdown file names a milestone the catalog does not declare.
var ErrUnknownInstructionTarget = errors.New("catalog: instructions reference unknown milestone")

type instructionFrontMatter struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
	Type  string `yaml:"type"`
}

// LoadMarkdownDir overlays milestone instructions authored as markdown files onto base.
// Each *.md file carries front matter whose id selects the milestone; when id is omitted the
// file name (without extension) is used. The body replaces the milestone's instructions.
func LoadMarkdownDir(fsys fs.FS, dir string, base Catalog) (Catalog, error) {
	if base == nil {
		return nil, errors.New("catalog: base catalog required")
	}
	if fsys == nil {
		return base, nil
	}

	overrides := map[string]instructionFrontMatter{}
	bodies := map[string]string{}

	err := fs.WalkDir(fsys, dir, func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.EqualFold(path.Ext(name), ".md") {
			return nil
		}
		source, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", name, err)
		}
		var meta instructionFrontMatter
		body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
		if err != nil {
			return fmt.Errorf("catalog: parse frontmatter %s: %w", name, err)
		}
		rawID := meta.ID
		if strings.TrimSpace(rawID) == "" {
			rawID = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		id, err := NormalizeID(rawID)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, ok := base.Milestone(id); !ok {
			return fmt.Errorf("%w: %s (%s)", ErrUnknownInstructionTarget, id, name)
		}
		overrides[id] = meta
		bodies[id] = strings.TrimSpace(string(body))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return base, nil
	}

	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	milestones := base.Milestones()
	positions := make(map[string]int, len(milestones))
	for i, milestone := range milestones {
		positions[milestone.ID] = i
	}
	for _, id := range ids {
		meta := overrides[id]
		milestone := &milestones[positions[id]]
		if label := strings.TrimSpace(meta.Label); label != "" {
			milestone.Action.Label = label
		}
		if url := strings.TrimSpace(meta.URL); url != "" {
			milestone.Action.URL = url
		}
		if actionType := strings.TrimSpace(meta.Type); actionType != "" {
			milestone.Action.Type = actionType
		}
		milestone.Action.Instructions = bodies[id]
		milestone.Action.InstructionsHTML = ""
		if bodies[id] != "" {
			rendered, err := RenderInstructions(bodies[id])
			if err != nil {
				return nil, fmt.Errorf("catalog: render instructions for %s: %w", id, err)
			}
			milestone.Action.InstructionsHTML = rendered
		}
	}

	return Build(base.Version(), base.Phases(), milestones)
}
