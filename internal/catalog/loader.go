package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-slug"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// ErrDocumentInvalid wraps catalog documents that fail schema validation.
var ErrDocumentInvalid = errors.New("catalog: document invalid")

//go:embed schema.json
var documentSchemaJSON []byte

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

type document struct {
	Version    string              `yaml:"version"`
	Phases     []Phase             `yaml:"phases"`
	Milestones []milestoneDocument `yaml:"milestones"`
}

type milestoneDocument struct {
	ID                 string         `yaml:"id"`
	Phase              string         `yaml:"phase"`
	Order              int            `yaml:"order"`
	Title              string         `yaml:"title"`
	AppliesTo          []string       `yaml:"applies_to"`
	OptionalOn         []string       `yaml:"optional_on"`
	RequiresTeamAction bool           `yaml:"requires_team_action"`
	Optional           bool           `yaml:"optional"`
	Intake             bool           `yaml:"intake"`
	Hook               string         `yaml:"hook"`
	Action             actionDocument `yaml:"action"`
}

type actionDocument struct {
	Type             string         `yaml:"type"`
	Label            string         `yaml:"label"`
	URL              string         `yaml:"url"`
	Instructions     string         `yaml:"instructions"`
	SubmissionSchema map[string]any `yaml:"submission_schema"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog Catalog
	defaultErr     error

	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	schemaErr      error
)

// Default returns the embedded default catalog. It panics if the embedded document is invalid,
// which only happens when the bundled YAML is edited incorrectly.
func Default() Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(defaultCatalogYAML)
	})
	if defaultErr != nil {
		panic(fmt.Errorf("catalog: embedded default catalog: %w", defaultErr))
	}
	return defaultCatalog
}

// DefaultDocument exposes the raw embedded catalog document.
func DefaultDocument() []byte {
	return bytes.Clone(defaultCatalogYAML)
}

// LoadFile reads and compiles a catalog document from disk.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Load(data)
}

// Load validates a YAML catalog document against the catalog schema and compiles it.
func Load(data []byte) (Catalog, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode document: %w", err)
	}

	milestones := make([]Milestone, 0, len(doc.Milestones))
	for _, entry := range doc.Milestones {
		milestone, err := compileMilestone(entry)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, milestone)
	}

	return Build(doc.Version, doc.Phases, milestones)
}

func compileMilestone(entry milestoneDocument) (Milestone, error) {
	id, err := NormalizeID(entry.ID)
	if err != nil {
		return Milestone{}, err
	}
	appliesTo, err := parsePaths(id, entry.AppliesTo)
	if err != nil {
		return Milestone{}, err
	}
	optionalOn, err := parsePaths(id, entry.OptionalOn)
	if err != nil {
		return Milestone{}, err
	}

	action := ActionSpec{
		Type:             strings.TrimSpace(entry.Action.Type),
		Label:            strings.TrimSpace(entry.Action.Label),
		URL:              strings.TrimSpace(entry.Action.URL),
		Instructions:     strings.TrimSpace(entry.Action.Instructions),
		SubmissionSchema: entry.Action.SubmissionSchema,
	}
	if action.Instructions != "" {
		rendered, err := RenderInstructions(action.Instructions)
		if err != nil {
			return Milestone{}, fmt.Errorf("catalog: render instructions for %s: %w", id, err)
		}
		action.InstructionsHTML = rendered
	}
	if action.SubmissionSchema != nil {
		if _, err := compilePayloadSchema(id, action.SubmissionSchema); err != nil {
			return Milestone{}, err
		}
	}

	return Milestone{
		ID:                 id,
		PhaseID:            strings.TrimSpace(entry.Phase),
		Order:              entry.Order,
		Title:              strings.TrimSpace(entry.Title),
		AppliesTo:          appliesTo,
		OptionalOn:         optionalOn,
		RequiresTeamAction: entry.RequiresTeamAction,
		IsOptionalDefault:  entry.Optional,
		Intake:             entry.Intake,
		Hook:               strings.TrimSpace(entry.Hook),
		Action:             action,
	}, nil
}

// NormalizeID turns free-form identifiers into the stable snake_case milestone key.
func NormalizeID(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrInvalidMilestoneID
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidMilestoneID, value)
	}
	return strings.ReplaceAll(normalized, "-", "_"), nil
}

// RenderInstructions converts markdown instructions into HTML.
func RenderInstructions(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func parsePaths(id string, values []string) ([]domain.ContentPath, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]domain.ContentPath, 0, len(values))
	for _, value := range values {
		path, err := domain.ParseContentPath(value)
		if err != nil || path == domain.PathUnset {
			return nil, fmt.Errorf("%w: %s lists %q", ErrInvalidAppliesTo, id, value)
		}
		out = append(out, path)
	}
	return out, nil
}

func validateDocument(data []byte) error {
	schema, err := compiledDocumentSchema()
	if err != nil {
		return err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("catalog: decode document: %w", err)
	}
	instance, err := toJSONValue(raw)
	if err != nil {
		return fmt.Errorf("catalog: normalise document: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s", ErrDocumentInvalid, strings.Join(issueMessages(err), "; "))
	}
	return nil
}

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(documentSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		documentSchema, schemaErr = compiler.Compile("catalog.schema.json")
	})
	return documentSchema, schemaErr
}

// toJSONValue round-trips YAML-decoded values through encoding/json so the schema
// validator only sees JSON-native types.
func toJSONValue(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func issueMessages(err error) []string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}
	messages := []string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "/"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, strings.TrimSpace(node.Message)))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return messages
}
