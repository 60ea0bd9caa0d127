package graph

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// applyPatch overlays patch on the JSON fields of data. Keys are replaced
// wholesale; nested objects are not merged.
func applyPatch(data domain.NodeData, patch map[string]any) (domain.NodeData, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	maps.Copy(fields, patch)

	switch data.Kind() {
	case domain.NodeTypeStart:
		return decodeFields[domain.StartData](fields)
	case domain.NodeTypePrompt:
		return decodeFields[domain.PromptData](fields)
	case domain.NodeTypeAction:
		return decodeFields[domain.ActionData](fields)
	case domain.NodeTypeCondition:
		return decodeFields[domain.ConditionData](fields)
	case domain.NodeTypeScript:
		return decodeFields[domain.ScriptData](fields)
	case domain.NodeTypeFunnel:
		return decodeFields[domain.FunnelData](fields)
	case domain.NodeTypeGroup:
		return decodeFields[domain.GroupData](fields)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, data.Kind())
}

func decodeFields[T domain.NodeData](fields map[string]any) (domain.NodeData, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return out, nil
}
