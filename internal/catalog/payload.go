package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrPayloadInvalid indicates a submission payload failed the milestone's submission schema.
var ErrPayloadInvalid = errors.New("catalog: submission payload invalid")

// PayloadError lists the schema violations for a submission payload.
type PayloadError struct {
	MilestoneID string
	Issues      []string
}

func (e *PayloadError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s for %s", ErrPayloadInvalid.Error(), e.MilestoneID)
	}
	return fmt.Sprintf("%s for %s: %s", ErrPayloadInvalid.Error(), e.MilestoneID, strings.Join(e.Issues, "; "))
}

func (e *PayloadError) Unwrap() error { return ErrPayloadInvalid }

var payloadSchemas sync.Map

// ValidatePayload checks a submission payload against the milestone's submission schema.
// Milestones without a schema accept any payload.
func ValidatePayload(m Milestone, payload map[string]any) error {
	if len(m.Action.SubmissionSchema) == 0 {
		return nil
	}
	schema, err := payloadSchema(m)
	if err != nil {
		return err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	instance, err := toJSONValue(payload)
	if err != nil {
		return &PayloadError{MilestoneID: m.ID, Issues: []string{err.Error()}}
	}
	if err := schema.Validate(instance); err != nil {
		return &PayloadError{MilestoneID: m.ID, Issues: issueMessages(err)}
	}
	return nil
}

// payloadSchema caches compiled schemas keyed by milestone id and schema body, so two
// catalogs that reuse an id with different schemas never share a compiled entry.
func payloadSchema(m Milestone) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(m.Action.SubmissionSchema)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode submission schema for %s: %w", m.ID, err)
	}
	key := m.ID + "\x00" + string(encoded)
	if cached, ok := payloadSchemas.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}
	schema, err := compilePayloadSchema(m.ID, m.Action.SubmissionSchema)
	if err != nil {
		return nil, err
	}
	actual, _ := payloadSchemas.LoadOrStore(key, schema)
	return actual.(*jsonschema.Schema), nil
}

func compilePayloadSchema(id string, schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode submission schema for %s: %w", id, err)
	}
	resource := "milestone://" + id + "/submission.json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resource, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("catalog: submission schema for %s: %w", id, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("catalog: submission schema for %s: %w", id, err)
	}
	return compiled, nil
}
