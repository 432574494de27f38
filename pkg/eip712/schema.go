package eip712

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Action is the kind of subscription change being authorized.
// Its value doubles as the EIP-712 primary type and the "action" field value.
type Action string

const (
	ActionSubscribe   Action = "Subscribe"
	ActionUnsubscribe Action = "Unsubscribe"
)

// Schema is the fixed type description of one action.
// A signature is only valid against the exact schema that produced it, so a
// changed schema must be added under a new Action rather than edited here.
type Schema struct {
	PrimaryType string
	Fields      []apitypes.Type
	// UserField names the field carrying the user's address
	UserField string
}

// UnknownOperationError is returned for actions without a schema
type UnknownOperationError struct {
	Action Action
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", string(e.Action))
}

var schemas = map[Action]Schema{
	ActionSubscribe: {
		PrimaryType: "Subscribe",
		UserField:   "subscriber",
		Fields: []apitypes.Type{
			{Name: "channel", Type: "address"},
			{Name: "subscriber", Type: "address"},
			{Name: "action", Type: "string"},
		},
	},
	ActionUnsubscribe: {
		PrimaryType: "Unsubscribe",
		UserField:   "unsubscriber",
		Fields: []apitypes.Type{
			{Name: "channel", Type: "address"},
			{Name: "unsubscriber", Type: "address"},
			{Name: "action", Type: "string"},
		},
	},
}

// SchemaFor returns the schema of action. The returned value is a copy.
func SchemaFor(action Action) (Schema, error) {
	schema, ok := schemas[action]
	if !ok {
		return Schema{}, &UnknownOperationError{Action: action}
	}
	schema.Fields = append([]apitypes.Type(nil), schema.Fields...)
	return schema, nil
}

// Actions lists every action with a schema, sorted
func Actions() []Action {
	out := make([]Action, 0, len(schemas))
	for action := range schemas {
		out = append(out, action)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseAction maps a route or CLI verb ("subscribe", "unsubscribe") to an Action
func ParseAction(s string) (Action, error) {
	for action := range schemas {
		if strings.EqualFold(string(action), s) {
			return action, nil
		}
	}
	return "", &UnknownOperationError{Action: Action(s)}
}

// FieldNames returns the field names in schema order
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Types returns the full type set for signing under domain
func (s Schema) Types(domain Domain) apitypes.Types {
	return apitypes.Types{
		"EIP712Domain": domain.Types(),
		s.PrimaryType:  append([]apitypes.Type(nil), s.Fields...),
	}
}
