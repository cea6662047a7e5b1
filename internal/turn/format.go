package turn

import (
	"fmt"
	"regexp"
	"strings"

	"sqlagent/cli/internal/agent"
)

var markers = strings.NewReplacer(
	"Thought:", "\n📝 Analysis:",
	"Action:", "\n🔍 Action:",
	"Action Input:", "\n💻 Command:",
	"Observation:", "\n📊 Result:",
	"Final Answer:", "\n✨ Final Answer:",
	"Error:", "\n❌ Error:",
)

var blankLines = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

const fence = "```"

// Format renders a turn result for display. Structured results (an agent
// Response or a map with an "output" key) get visual markers in front of
// transcript labels, with blank lines removed and code fences on their own
// lines. Any other value is rendered with fmt.Sprint; nil renders as "".
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case *agent.Response:
		if t == nil {
			return ""
		}
		return decorate(t.Output)
	case agent.Response:
		return decorate(t.Output)
	case map[string]any:
		if out, ok := t["output"]; ok {
			if out == nil {
				return ""
			}
			return decorate(fmt.Sprint(out))
		}
		return fmt.Sprint(t)
	case map[string]string:
		if out, ok := t["output"]; ok {
			return decorate(out)
		}
		return fmt.Sprint(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func decorate(output string) string {
	out := markers.Replace(output)
	out = separateFences(out)
	return blankLines.ReplaceAllString(out, "\n")
}

// separateFences puts a newline before every opening ``` fence and after
// every closing one.
func separateFences(s string) string {
	if !strings.Contains(s, fence) {
		return s
	}
	var b strings.Builder
	open := false
	for {
		i := strings.Index(s, fence)
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		if open {
			b.WriteString(fence + "\n")
		} else {
			b.WriteString("\n" + fence)
		}
		open = !open
		s = s[i+len(fence):]
	}
	return b.String()
}
