package relay

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/n-chekan/ialla-api/fault"
)

// maxBodyBytes bounds how much of a request body is read.
const maxBodyBytes = 1 << 20

const analysisSchema = `{
	"type": "object",
	"required": ["messages"],
	"properties": {
		"messages": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["role", "content"],
				"properties": {
					"role": {"type": "string", "enum": ["system", "user", "assistant"]},
					"content": {"type": "string", "minLength": 1}
				}
			}
		},
		"userProfile": {"type": "object"},
		"studyTopic": {"type": "string"},
		"vocabularyContext": {"type": "string"}
	}
}`

const conversationSchema = `{
	"type": "object",
	"required": ["action"],
	"properties": {
		"action": {"type": "string", "enum": ["start", "send", "end"]},
		"agentId": {"type": "string", "minLength": 1},
		"message": {"type": "string", "minLength": 1},
		"conversationId": {"type": "string", "minLength": 1}
	}
}`

const synthesisSchema = `{
	"type": "object",
	"required": ["text", "voiceId"],
	"properties": {
		"text": {"type": "string", "minLength": 1, "maxLength": 5000},
		"voiceId": {"type": "string", "minLength": 1},
		"settings": {"type": "object"}
	}
}`

const emailSchema = `{
	"type": "object",
	"required": ["emailType", "to"],
	"properties": {
		"emailType": {
			"type": "string",
			"enum": ["welcome", "password_reset", "progress_report", "streak_reminder"]
		},
		"to": {"type": "string", "format": "email"},
		"data": {"type": "object"}
	}
}`

const activitySchema = `{
	"type": "object",
	"required": ["actionType"],
	"properties": {
		"actionType": {
			"type": "string",
			"enum": [
				"lesson_started", "lesson_completed",
				"conversation_started", "conversation_completed",
				"vocabulary_reviewed", "login"
			]
		},
		"userId": {"type": "string", "minLength": 1},
		"actionData": {"type": "object"},
		"metadata": {"type": "object"}
	}
}`

var (
	analysisValidator     = mustSchema(analysisSchema)
	conversationValidator = mustSchema(conversationSchema)
	synthesisValidator    = mustSchema(synthesisSchema)
	emailValidator        = mustSchema(emailSchema)
	activityValidator     = mustSchema(activitySchema)
)

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(err)
	}
	return schema
}

// decodeValid reads the request body, checks it against schema, and
// unmarshals it into out. Violations come back as one validation
// fault naming every offending field.
func decodeValid(r *http.Request, schema *gojsonschema.Schema, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fault.Validation("request body could not be read")
	}
	if len(body) == 0 {
		return fault.Validation("request body is required")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fault.Validation("request body is not valid JSON")
	}
	if !result.Valid() {
		fields := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			field := violation.Field()
			if field == "(root)" {
				if prop, ok := violation.Details()["property"].(string); ok {
					field = prop
				}
			}
			fields = append(fields, field)
		}
		return fault.Validation("invalid request payload", fields...)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fault.Validation("request body is not valid JSON")
	}
	return nil
}
