package fashion

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports agent output that could not be decoded as JSON. It is a
// distinct type so callers can separate "agent spoke garbage" from transport
// failures.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StripCodeFence removes an optional markdown triple-backtick fence (with or
// without a language tag) wrapping s. Agents fence their JSON inconsistently;
// every call site normalizes through here rather than ad hoc.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "" || isIdent(first) {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isIdent(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return s != ""
}

// ParseAgentJSON strips an optional code fence then decodes into out.
func ParseAgentJSON(what, raw string, out any) error {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return &ParseError{What: what, Err: fmt.Errorf("empty payload")}
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &ParseError{What: what, Err: err}
	}
	return nil
}

// ParseRecommendations decodes the recommendation agent output and returns the
// outfit list. A decodable document with no outfits is not an error here;
// callers decide how to degrade.
func ParseRecommendations(raw string) (*Recommendations, error) {
	var recs Recommendations
	if err := ParseAgentJSON("recommendations", raw, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

// QuoteJSONString encodes s as a JSON string value, for persisting agent
// output that failed to decode as a document.
func QuoteJSONString(s string) (json.RawMessage, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// NormalizeAgentJSON returns the fence-stripped payload as raw JSON when it
// decodes, or an explicit ParseError. Used before persisting agent output so
// the stored record is always valid JSON.
func NormalizeAgentJSON(what, raw string) (json.RawMessage, error) {
	cleaned := StripCodeFence(raw)
	var probe any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, &ParseError{What: what, Err: err}
	}
	return json.RawMessage(cleaned), nil
}
