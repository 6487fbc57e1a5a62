package gateway

import (
	"bytes"
	"time"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"

	"github.com/rm-hull/inventory-console/internal/notify"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type SchemaKind int

const (
	// Enveloped bodies may carry message, hints and tokens either at the top
	// level or one level down, under DataKey.
	Enveloped SchemaKind = iota
	// Flat bodies carry them at the top level only.
	Flat
)

// Schema describes how response bodies from the remote API are laid out. The
// zero value is DefaultSchema.
type Schema struct {
	Kind    SchemaKind
	DataKey string
}

var DefaultSchema = Schema{Kind: Enveloped, DataKey: "data"}

// Envelope is everything the gateway needs from a response body, decoded once.
type Envelope struct {
	Message      string
	Severity     notify.Severity
	Duration     time.Duration
	Success      *bool
	AccessToken  string
	RefreshToken string
}

// Decode never fails: a body that cannot be understood yields an empty
// Envelope.
func (s Schema) Decode(body []byte) Envelope {
	var env Envelope

	fields, bare, ok := decodeObject(body)
	if !ok {
		env.Message = bare
		return env
	}
	env.fill(fields)

	switch s.Kind {
	case Flat:
	case Enveloped:
		key := s.DataKey
		if key == "" {
			key = DefaultSchema.DataKey
		}
		if nested, _, ok := decodeObject(fields[key]); ok {
			env.fill(nested)
		}
	}

	return env
}

// decodeObject decodes raw as a JSON object. A JSON string holding an encoded
// object is unwrapped first; any other JSON string, or a plain-text body that
// is not JSON at all, is returned as bare. Markup and other JSON values yield
// nothing.
func decodeObject(raw []byte) (map[string]jsoniter.RawMessage, string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, "", false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, "", false
		}
		if fields, _, ok := decodeObject([]byte(s)); ok {
			return fields, "", true
		}
		return nil, s, false
	}

	switch raw[0] {
	case '{':
	case '[', '<':
		return nil, "", false
	default:
		if json.Valid(raw) || !utf8.Valid(raw) {
			return nil, "", false
		}
		return nil, string(raw), false
	}

	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, "", false
	}
	return fields, "", true
}

// fill only sets fields that are still unset, so earlier sources win.
func (env *Envelope) fill(fields map[string]jsoniter.RawMessage) {
	if env.Message == "" {
		env.Message = stringField(fields, "message")
	}
	if env.Severity == "" {
		for _, key := range []string{"type", "severity"} {
			if sev, ok := notify.ParseSeverity(stringField(fields, key)); ok {
				env.Severity = sev
				break
			}
		}
	}
	if env.Duration == 0 {
		var ms float64
		if raw, ok := fields["duration"]; ok && json.Unmarshal(raw, &ms) == nil && ms > 0 {
			env.Duration = time.Duration(ms * float64(time.Millisecond))
		}
	}
	if env.Success == nil {
		var success bool
		if raw, ok := fields["success"]; ok && json.Unmarshal(raw, &success) == nil {
			env.Success = &success
		}
	}
	if env.AccessToken == "" {
		env.AccessToken = firstString(fields, "accessToken", "access_token")
	}
	if env.RefreshToken == "" {
		env.RefreshToken = firstString(fields, "refreshToken", "refresh_token")
	}
}

func stringField(fields map[string]jsoniter.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstString(fields map[string]jsoniter.RawMessage, keys ...string) string {
	for _, key := range keys {
		if s := stringField(fields, key); s != "" {
			return s
		}
	}
	return ""
}
