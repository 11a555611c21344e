// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode applies Core Deterministic Encoding (RFC 8949 §4.2). Equal
// values encode to equal bytes.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown struct fields, so
// older binaries can read entries written by newer ones.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// A type implementing encoding.TextMarshaler encodes as its text
	// form, not as a struct map.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: encoder config: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Decoding into an any-typed target yields map[string]any.
		// The cbor default is map[interface{}]interface{}, which
		// encoding/json cannot re-encode. Stored values only ever
		// use string keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Decode-side counterpart of TextMarshalerTextString.
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: decoder config: " + err.Error())
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
