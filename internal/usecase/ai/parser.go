package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/duedate"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/pkg/idgen"
)

// Parser turns raw model output into normalized Insights
type Parser struct {
	ids idgen.Generator
}

// NewParser creates a Parser. A nil generator uses random task ids.
func NewParser(ids idgen.Generator) *Parser {
	if ids == nil {
		ids = idgen.New()
	}
	return &Parser{ids: ids}
}

// ParseInsights decodes the model response. When the content is not JSON on
// its own, markdown fences are stripped and then the first balanced object
// is tried before giving up with ErrUnparseableInsights.
func (p *Parser) ParseInsights(content string) (entities.Insights, error) {
	data, err := decodeObject(content)
	if err != nil {
		return entities.Insights{}, err
	}
	return p.normalize(data), nil
}

func decodeObject(content string) (map[string]interface{}, error) {
	var data map[string]interface{}
	if json.Unmarshal([]byte(content), &data) == nil && data != nil {
		return data, nil
	}
	if json.Unmarshal([]byte(extractJSON(content)), &data) == nil && data != nil {
		return data, nil
	}
	if obj, ok := firstBalancedObject(content); ok {
		if json.Unmarshal([]byte(obj), &data) == nil && data != nil {
			return data, nil
		}
	}
	return nil, usecaseerrors.ErrUnparseableInsights
}

func (p *Parser) normalize(data map[string]interface{}) entities.Insights {
	data = lowerKeys(data)
	insights := entities.Insights{
		Summary:     asString(data["summary"]),
		Decisions:   make([]string, 0),
		ActionItems: make([]entities.ActionItem, 0),
	}

	if decisions, ok := data["decisions"].([]interface{}); ok {
		for _, d := range decisions {
			if s := decisionText(d); s != "" {
				insights.Decisions = append(insights.Decisions, s)
			}
		}
	}

	if items, ok := data["action_items"].([]interface{}); ok {
		for _, raw := range items {
			m, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			insights.ActionItems = append(insights.ActionItems, p.actionItem(lowerKeys(m)))
		}
	}
	return insights
}

func (p *Parser) actionItem(m map[string]interface{}) entities.ActionItem {
	item := entities.ActionItem{
		Title:          strings.TrimSpace(asString(m["title"])),
		Owner:          strings.TrimSpace(asString(m["owner"])),
		Details:        strings.TrimSpace(asString(m["details"])),
		IdempotencyKey: strings.TrimSpace(asString(m["idempotency_key"])),
		Priority:       strings.ToLower(strings.TrimSpace(asString(m["priority"]))),
		TaskID:         strings.TrimSpace(firstString(m, "task_id", "action_item_id", "id")),
	}

	item.Due = NormalizeDue(firstString(m, "due_date", "due"))
	if item.Due == "" {
		item.Due = duedate.ExtractDuePhrase(item.Details)
	}
	if item.Priority == "" {
		item.Priority = entities.ActionItemPriorityMedium
	}
	if item.TaskID == "" {
		item.TaskID = p.ids.TaskID()
	}
	return item
}

var dmyPattern = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)

// NormalizeDue rewrites dd-mm-yyyy dates as YYYY-MM-DD and passes anything
// else through trimmed.
func NormalizeDue(s string) string {
	s = strings.TrimSpace(s)
	m := dmyPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return s
	}
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if start := strings.Index(content, "```"); start != -1 {
		content = content[start+3:]
		content = strings.TrimPrefix(content, "json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

// firstBalancedObject returns the first {...} span whose braces balance,
// ignoring braces inside string literals.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start != -1 {
		depth, inString, escaped := 0, false, false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

func lowerKeys(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// decisionText accepts plain strings or objects carrying the decision text
func decisionText(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		m = lowerKeys(m)
		if s := firstString(m, "decision", "text", "title", "summary"); s != "" {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(asString(v))
}
