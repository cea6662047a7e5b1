// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the messages exchanged with a remote catalog agent
// and their protobuf Struct encoding. The wire format is a plain
// google.protobuf.Struct so client and server need no generated code.
package model

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Wire identifiers of the remote agent service.
const (
	ServiceName = "catalog_agent.CatalogAgent"
	MethodName  = "ask"
	MethodAsk   = "/" + ServiceName + "/" + MethodName
)

// AskRequest is one question sent to the remote agent.
type AskRequest struct {
	Input  string
	TurnID string
}

// Step mirrors one intermediate tool use of the remote agent.
type Step struct {
	Thought     string
	Action      string
	ActionInput string
	Observation string
}

// AskResponse is the remote agent's answer.
type AskResponse struct {
	Output string
	Steps  []Step
}

// ToStruct encodes the request.
func (r AskRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"input":   r.Input,
		"turn_id": r.TurnID,
	})
}

// RequestFromStruct decodes a request. The input field is required.
func RequestFromStruct(s *structpb.Struct) (AskRequest, error) {
	f := s.GetFields()
	in, ok := f["input"]
	if !ok {
		return AskRequest{}, errors.New("request has no input field")
	}
	return AskRequest{Input: in.GetStringValue(), TurnID: f["turn_id"].GetStringValue()}, nil
}

// ToStruct encodes the response.
func (r AskResponse) ToStruct() (*structpb.Struct, error) {
	steps := make([]any, len(r.Steps))
	for i, s := range r.Steps {
		steps[i] = map[string]any{
			"thought":      s.Thought,
			"action":       s.Action,
			"action_input": s.ActionInput,
			"observation":  s.Observation,
		}
	}
	return structpb.NewStruct(map[string]any{
		"output": r.Output,
		"steps":  steps,
	})
}

// ResponseFromStruct decodes a response. Unknown fields are ignored.
func ResponseFromStruct(s *structpb.Struct) (AskResponse, error) {
	f := s.GetFields()
	out, ok := f["output"]
	if !ok {
		return AskResponse{}, errors.New("response has no output field")
	}
	resp := AskResponse{Output: out.GetStringValue()}
	for i, v := range f["steps"].GetListValue().GetValues() {
		st := v.GetStructValue()
		if st == nil {
			return AskResponse{}, fmt.Errorf("step %d is not an object", i)
		}
		sf := st.GetFields()
		resp.Steps = append(resp.Steps, Step{
			Thought:     sf["thought"].GetStringValue(),
			Action:      sf["action"].GetStringValue(),
			ActionInput: sf["action_input"].GetStringValue(),
			Observation: sf["observation"].GetStringValue(),
		})
	}
	return resp, nil
}
