// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package binding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Media types understood by Body.
const (
	MediaJSON     = "application/json"
	MediaYAML     = "application/yaml"
	MediaTOML     = "application/toml"
	MediaMsgPack  = "application/msgpack"
	MediaProtobuf = "application/x-protobuf"
)

// ErrNotProtoMessage is returned for protobuf bodies bound to a type that
// is not a proto.Message.
var ErrNotProtoMessage = errors.New("destination is not a proto.Message")

type decodeFunc func(data []byte, dst any, cfg *config) error

// codecs maps a media type, including common aliases, to its decoder.
var codecs = map[string]decodeFunc{
	MediaJSON:               decodeJSON,
	MediaYAML:               decodeYAML,
	"application/x-yaml":    decodeYAML,
	"text/yaml":             decodeYAML,
	MediaTOML:               decodeTOML,
	MediaMsgPack:            decodeMsgPack,
	"application/x-msgpack": decodeMsgPack,
	MediaProtobuf:           decodeProto,
	"application/protobuf":  decodeProto,
}

func decodeJSON(data []byte, dst any, cfg *config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if cfg.disallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func decodeYAML(data []byte, dst any, cfg *config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(cfg.disallowUnknown)
	return dec.Decode(dst)
}

func decodeTOML(data []byte, dst any, cfg *config) error {
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(dst)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); cfg.disallowUnknown && len(undecoded) > 0 {
		return fmt.Errorf("unknown keys %v", undecoded)
	}
	return nil
}

func decodeMsgPack(data []byte, dst any, cfg *config) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	dec.DisallowUnknownFields(cfg.disallowUnknown)
	return dec.Decode(dst)
}

func decodeProto(data []byte, dst any, cfg *config) error {
	m, ok := dst.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotProtoMessage, dst)
	}
	return proto.UnmarshalOptions{DiscardUnknown: !cfg.disallowUnknown}.Unmarshal(data, m)
}
