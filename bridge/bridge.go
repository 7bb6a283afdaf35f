package bridge

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/hostbridge/script-value/variant"
)

// FromJSON decodes one JSON document into a value. Objects become
// variant.Map, arrays variant.List, null Null. Numbers become int64 when
// the literal is integral and representable, float64 otherwise, so large
// 64-bit integers survive the trip.
func FromJSON(data []byte) (variant.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return variant.Value{}, fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return variant.Value{}, fmt.Errorf("trailing data after json document")
	}
	return fromDecoded(raw)
}

// ToJSON encodes a value as JSON. Null and Empty encode as null,
// WideString as a validated UTF-8 string, List and Map as array and
// object. Handle payloads are refused; enumerate them through container
// conversion first.
func ToJSON(v variant.Value) ([]byte, error) {
	x, err := toPlain(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(x)
}

// FromYAML decodes one YAML document into a value using the same shape
// mapping as FromJSON. Integral scalars normalize to int64.
func FromYAML(data []byte) (variant.Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return variant.Value{}, fmt.Errorf("decode yaml: %w", err)
	}
	return fromDecoded(raw)
}

// ToYAML encodes a value as YAML with ToJSON's rules.
func ToYAML(v variant.Value) ([]byte, error) {
	x, err := toPlain(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(x)
}

func fromDecoded(raw any) (variant.Value, error) {
	switch x := raw.(type) {
	case nil:
		return variant.NewNull(), nil
	case bool, string, float64, time.Time:
		return variant.New(x), nil
	case int:
		return variant.New(int64(x)), nil
	case int64:
		return variant.New(x), nil
	case uint64:
		return variant.New(x), nil
	case []byte:
		return variant.New(x), nil
	case json.Number:
		return numberValue(x)
	case []any:
		l := make(variant.List, len(x))
		for i, e := range x {
			v, err := fromDecoded(e)
			if err != nil {
				return variant.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			l[i] = v
		}
		return variant.New(l), nil
	case map[string]any:
		m := make(variant.Map, len(x))
		for k, e := range x {
			v, err := fromDecoded(e)
			if err != nil {
				return variant.Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = v
		}
		return variant.New(m), nil
	}
	return variant.Value{}, fmt.Errorf("unsupported document shape %T", raw)
}

func numberValue(n json.Number) (variant.Value, error) {
	if i, err := n.Int64(); err == nil {
		return variant.New(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return variant.Value{}, fmt.Errorf("number %q: %w", n.String(), err)
	}
	return variant.New(f), nil
}

func toPlain(v variant.Value) (any, error) {
	if v.Empty() || v.IsNull() {
		return nil, nil
	}
	if _, ok := v.Object(); ok {
		return nil, fmt.Errorf("cannot encode handle payload %s; convert it to a native container first", v.TypeName())
	}
	switch p := v.Interface().(type) {
	case variant.WideString:
		s, err := variant.ConvertCast[string](v)
		if err != nil {
			return nil, err
		}
		return s, nil
	case variant.List:
		out := make([]any, len(p))
		for i, e := range p {
			x, err := toPlain(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = x
		}
		return out, nil
	case variant.Map:
		out := make(map[string]any, len(p))
		for k, e := range p {
			x, err := toPlain(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = x
		}
		return out, nil
	default:
		return p, nil
	}
}
