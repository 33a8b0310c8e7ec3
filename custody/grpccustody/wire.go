package grpccustody

import (
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"landlock.dev/landlock/model"
)

// Wire encoding: flat Structs. Signatures travel in their transport form
// ("alg:b64pub:b64sig"), key material as standard base64, timestamps as
// RFC 3339 with nanoseconds.

func mustStruct(fields map[string]interface{}) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		// Only string/bool values are ever passed here.
		panic(fmt.Sprintf("grpccustody: struct encoding failed: %v", err))
	}
	return s
}

func fieldString(s *structpb.Struct, key string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("missing message body")
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	return sv.StringValue, nil
}

func fieldAddress(s *structpb.Struct, key string) (model.Address, error) {
	raw, err := fieldString(s, key)
	if err != nil {
		return "", err
	}
	return model.ParseAddress(raw)
}

func fieldSignature(s *structpb.Struct, key string) (model.Signature, error) {
	raw, err := fieldString(s, key)
	if err != nil {
		return model.Signature{}, err
	}
	return model.DecodeSignature(raw)
}

func fieldBytes(s *structpb.Struct, key string) ([]byte, error) {
	raw, err := fieldString(s, key)
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("field %q is not base64: %v", key, err)
	}
	return b, nil
}

func fieldBool(s *structpb.Struct, key string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("missing message body")
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return false, fmt.Errorf("missing field %q", key)
	}
	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("field %q is not a bool", key)
	}
	return bv.BoolValue, nil
}

func encodeChallenge(ch model.AuthChallenge) *structpb.Struct {
	return mustStruct(map[string]interface{}{
		"subject":     string(ch.Subject),
		"message":     ch.Message,
		"expiresAt":   ch.ExpiresAt.Format(time.RFC3339Nano),
		"attestation": ch.Attestation,
	})
}

func decodeChallenge(s *structpb.Struct) (model.AuthChallenge, error) {
	var ch model.AuthChallenge
	var err error
	if ch.Subject, err = fieldAddress(s, "subject"); err != nil {
		return ch, err
	}
	if ch.Message, err = fieldString(s, "message"); err != nil {
		return ch, err
	}
	rawAt, err := fieldString(s, "expiresAt")
	if err != nil {
		return ch, err
	}
	if ch.ExpiresAt, err = time.Parse(time.RFC3339Nano, rawAt); err != nil {
		return ch, fmt.Errorf("invalid expiry %q", rawAt)
	}
	// Attestation is optional; services without an attestation key send "".
	ch.Attestation, _ = fieldString(s, "attestation")
	return ch, nil
}
