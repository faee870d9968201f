package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type OrderedKV[T any] struct {
	Value T
	Order int64
}

// OrderedKVMap is a JSON object whose key order survives a decode/encode
// round trip. Schema properties rely on this: their stored order defines the
// display order of form fields.
type OrderedKVMap[T any] map[string]OrderedKV[T]

// Keys returns the keys in their stored order.
func (om OrderedKVMap[T]) Keys() []string {
	keys := make([]string, 0, len(om))
	for k := range om {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return om[keys[i]].Order < om[keys[j]].Order
	})
	return keys
}

func (om *OrderedKVMap[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object")
	}

	result := make(OrderedKVMap[T])
	var order int64
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var value T
		if err := dec.Decode(&value); err != nil {
			return err
		}

		if _, exists := result[key]; exists {
			return fmt.Errorf("duplicate key %q", key)
		}

		result[key] = OrderedKV[T]{Value: value, Order: order}
		order++
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*om = result
	return nil
}

func (om OrderedKVMap[T]) MarshalJSON() ([]byte, error) {
	type pair struct {
		key   string
		value T
		order int64
	}
	pairs := make([]pair, 0, len(om))
	for k, v := range om {
		pairs = append(pairs, pair{
			key:   k,
			value: v.Value,
			order: v.Order,
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].order < pairs[j].order
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(p.value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
