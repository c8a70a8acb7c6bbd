package application

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

const taskArraySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title"],
    "properties": {
      "id": { "type": "string" },
      "title": { "type": "string" },
      "description": { "type": "string" },
      "status": { "type": "string" },
      "priority": { "type": "string" },
      "owner": { "type": "string" },
      "dependencies": { "type": "array", "items": { "type": "string" } },
      "subtasks": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["title"],
          "properties": {
            "id": { "type": "string" },
            "title": { "type": "string" },
            "completed": { "type": "boolean" }
          }
        }
      }
    }
  }
}`

var taskArraySchemaLoader = gojsonschema.NewStringLoader(taskArraySchemaJSON)

// extractJSONPayload strips markdown code fences and surrounding prose from
// a model response, keeping the first JSON array or object it contains.
func extractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return clean
	}

	startArray := strings.Index(clean, "[")
	startObject := strings.Index(clean, "{")
	start := -1
	if startArray == -1 {
		start = startObject
	} else if startObject == -1 || startArray < startObject {
		start = startArray
	} else {
		start = startObject
	}
	if start == -1 {
		return clean
	}

	endArray := strings.LastIndex(clean, "]")
	endObject := strings.LastIndex(clean, "}")
	end := -1
	if endArray == -1 {
		end = endObject
	} else if endObject == -1 || endArray > endObject {
		end = endArray
	} else {
		end = endObject
	}
	if end == -1 || end <= start {
		return clean
	}

	return strings.TrimSpace(clean[start : end+1])
}

// parseTaskArray turns a raw model response into validated tasks. Empty
// status and priority strings coerce to PENDING and MEDIUM; any other
// unknown value fails the response as a whole. Missing subtask ids get
// fresh ones so toggles have something to address.
func parseTaskArray(text string) ([]workflow.Task, error) {
	cleanJSON := extractJSONPayload(text)
	if cleanJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	documentLoader := gojsonschema.NewStringLoader(cleanJSON)
	result, err := gojsonschema.Validate(taskArraySchemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate response: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("response failed schema validation: %s", strings.Join(issues, "; "))
	}

	var tasks []workflow.Task
	if err := json.Unmarshal([]byte(cleanJSON), &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("response contained no tasks")
	}

	for i := range tasks {
		if tasks[i].Subtasks == nil {
			tasks[i].Subtasks = []workflow.SubTask{}
		}
		for j := range tasks[i].Subtasks {
			if tasks[i].Subtasks[j].ID == "" {
				tasks[i].Subtasks[j].ID = workflow.NewSubtaskID()
			}
		}
		if tasks[i].Dependencies == nil {
			tasks[i].Dependencies = []string{}
		}
	}
	return tasks, nil
}

// parseSubtaskList decodes a generated checklist for a single task.
func parseSubtaskList(text string) ([]workflow.SubTask, error) {
	cleanJSON := extractJSONPayload(text)
	if cleanJSON == "" {
		return nil, fmt.Errorf("empty response")
	}
	var subs []workflow.SubTask
	if err := json.Unmarshal([]byte(cleanJSON), &subs); err != nil {
		return nil, fmt.Errorf("decode subtasks: %w", err)
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("response contained no subtasks")
	}
	for i := range subs {
		if subs[i].ID == "" {
			subs[i].ID = workflow.NewSubtaskID()
		}
		subs[i].Completed = false
	}
	return subs, nil
}

// enhancementDTO is the wire shape for a single-task refinement.
type enhancementDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Owner       string `json:"owner"`
	Duration    string `json:"duration"`
}

// parseEnhancement decodes a partial task refinement into a patch.
func parseEnhancement(text string) (workflow.TaskPatch, error) {
	cleanJSON := extractJSONPayload(text)
	if cleanJSON == "" {
		return workflow.TaskPatch{}, fmt.Errorf("empty response")
	}
	var dto enhancementDTO
	if err := json.Unmarshal([]byte(cleanJSON), &dto); err != nil {
		return workflow.TaskPatch{}, fmt.Errorf("decode enhancement: %w", err)
	}

	var patch workflow.TaskPatch
	if dto.Title != "" {
		patch.Title = &dto.Title
	}
	if dto.Description != "" {
		patch.Description = &dto.Description
	}
	if dto.Priority != "" {
		p := workflow.Priority(strings.ToUpper(dto.Priority))
		if p.IsValid() {
			patch.Priority = &p
		}
	}
	if dto.Owner != "" {
		patch.Owner = &dto.Owner
	}
	if dto.Duration != "" {
		patch.Duration = &dto.Duration
	}
	if patch.IsZero() {
		return workflow.TaskPatch{}, fmt.Errorf("response contained no usable fields")
	}
	return patch, nil
}
