// Package codec converts cached values to and from their stored byte form.
// Tiers only ever see encoded bytes; live values never cross a tier
// boundary.
package codec

import "encoding/json"

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

// JSON is the default codec. Stored payloads are plain JSON documents,
// which also makes them inspectable in the durable store.
type JSON struct{}

func (JSON) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}
