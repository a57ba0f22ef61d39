package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the type of a variable value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueBool
	ValueNumber
	ValueNull
)

// Value is a typed variable value parsed from a textual token.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	Text   string
}

func StringValue(s string) Value    { return Value{Kind: ValueString, Text: s} }
func BoolValue(b bool) Value        { return Value{Kind: ValueBool, Bool: b} }
func NumberValue(f float64) Value   { return Value{Kind: ValueNumber, Number: f} }
func NullValue() Value              { return Value{Kind: ValueNull} }

// String renders the value the way it is substituted into templates.
func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueNull:
		return "null"
	default:
		return v.Text
	}
}

// Interface returns the value as a plain Go value, suitable for JSON
// encoding.
func (v Value) Interface() any {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueNumber:
		return v.Number
	case ValueNull:
		return nil
	default:
		return v.Text
	}
}

// ParseValue infers a typed value from a raw token. The tokens true, false
// and null map to their typed counterparts, numeric tokens become numbers
// and everything else stays a string.
func ParseValue(token string) Value {
	switch token {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	case "null":
		return NullValue()
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return NumberValue(f)
	}
	return StringValue(token)
}

func parseTypedValue(typeName, token string) (Value, error) {
	switch typeName {
	case "string":
		return StringValue(token), nil
	case "bool", "boolean":
		b, err := strconv.ParseBool(token)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as a boolean", token)
		}
		return BoolValue(b), nil
	case "number":
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as a number", token)
		}
		return NumberValue(f), nil
	case "null":
		if token != "" && token != "null" {
			return Value{}, fmt.Errorf("cannot parse %q as null", token)
		}
		return NullValue(), nil
	}
	return Value{}, fmt.Errorf("unknown variable type %q", typeName)
}

// ParseAssignment parses a name=value assignment. A name:type=value form
// forces the value type instead of inferring it.
func ParseAssignment(s string) (string, Value, error) {
	name, raw, found := strings.Cut(s, "=")
	if !found {
		return "", Value{}, fmt.Errorf("variable %q is missing a value (expected name=value)", s)
	}
	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)

	if base, typeName, typed := strings.Cut(name, ":"); typed {
		base = strings.TrimSpace(base)
		typeName = strings.TrimSpace(typeName)
		if base == "" {
			return "", Value{}, fmt.Errorf("variable %q has an empty name", s)
		}
		value, err := parseTypedValue(typeName, raw)
		if err != nil {
			return "", Value{}, err
		}
		return base, value, nil
	}

	if name == "" {
		return "", Value{}, fmt.Errorf("variable %q has an empty name", s)
	}
	return name, ParseValue(raw), nil
}
