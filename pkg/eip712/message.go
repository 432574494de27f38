package eip712

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Field is one named value of a Message
type Field struct {
	Name  string
	Value any
}

// Message holds the values that get hashed and signed, in schema order
type Message struct {
	Action Action
	Fields []Field
}

// BuildMessage fills the schema of action with the channel and user addresses.
// The addresses are the bare native addresses, not the CAIP forms.
func BuildMessage(channel, user string, action Action) (Message, error) {
	schema, err := SchemaFor(action)
	if err != nil {
		return Message{}, err
	}

	values := map[string]any{
		"channel":        channel,
		schema.UserField: user,
		"action":         string(action),
	}

	fields := make([]Field, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		v, ok := values[f.Name]
		if !ok {
			return Message{}, fmt.Errorf("schema %s field %q has no value", schema.PrimaryType, f.Name)
		}
		fields = append(fields, Field{Name: f.Name, Value: v})
	}

	return Message{Action: action, Fields: fields}, nil
}

// Names returns the field names in order
func (m Message) Names() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the value of the named field
func (m Message) Get(name string) (any, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Map converts m for go-ethereum's typed data encoder
func (m Message) Map() apitypes.TypedDataMessage {
	out := make(apitypes.TypedDataMessage, len(m.Fields))
	for _, f := range m.Fields {
		out[f.Name] = f.Value
	}
	return out
}

// MarshalJSON encodes the message as a flat object
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Map())
}
