package agent

import (
	"errors"
	"regexp"
	"strings"
)

const finalAnswerLabel = "Final Answer:"

var (
	actionRe      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionLabelRe = regexp.MustCompile(`Action\s*\d*\s*:`)
)

// Parse errors fed back to the model as observations.
var (
	errMissingAction       = errors.New("invalid format: missing 'Action:' after 'Thought:'")
	errMissingActionInput  = errors.New("invalid format: missing 'Action Input:' after 'Action:'")
	errBothAnswerAndAction = errors.New("could not parse output: it contains both a final answer and an action, provide only one")
)

// decision is what the model chose to do in one completion.
type decision struct {
	final       bool
	output      string
	thought     string
	action      string
	actionInput string
}

// parseCompletion reads one model completion in the ReAct format.
func parseCompletion(text string) (decision, error) {
	hasAnswer := strings.Contains(text, finalAnswerLabel)
	m := actionRe.FindStringSubmatch(text)

	if m != nil {
		if hasAnswer {
			return decision{}, errBothAnswerAndAction
		}
		thought := strings.TrimSpace(text[:strings.Index(text, m[0])])
		thought = strings.TrimSpace(strings.TrimPrefix(thought, "Thought:"))
		input := strings.TrimSpace(m[2])
		if len(input) >= 2 && strings.HasPrefix(input, `"`) && strings.HasSuffix(input, `"`) {
			input = input[1 : len(input)-1]
		}
		return decision{
			thought:     thought,
			action:      strings.TrimSpace(m[1]),
			actionInput: input,
		}, nil
	}

	if hasAnswer {
		i := strings.LastIndex(text, finalAnswerLabel)
		return decision{final: true, output: strings.TrimSpace(text[i+len(finalAnswerLabel):])}, nil
	}

	if !actionLabelRe.MatchString(text) {
		return decision{}, errMissingAction
	}
	return decision{}, errMissingActionInput
}
