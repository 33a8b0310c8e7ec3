package grpcledger

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"landlock.dev/landlock/ledger"
	"landlock.dev/landlock/model"
)

// Wire encoding: flat Structs with string fields. Token ids and sequence
// numbers are decimal strings (structpb numbers are float64 and would
// truncate uint64), timestamps are RFC 3339 with nanoseconds.

func mustStruct(fields map[string]interface{}) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		// Only string/number/bool values are ever passed here.
		panic(fmt.Sprintf("grpcledger: struct encoding failed: %v", err))
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

func encodeToken(t model.TokenID) string { return strconv.FormatUint(uint64(t), 10) }

func parseToken(s string) (model.TokenID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q", s)
	}
	return model.TokenID(v), nil
}

func fieldToken(s *structpb.Struct, key string) (model.TokenID, error) {
	raw, err := fieldString(s, key)
	if err != nil {
		return 0, err
	}
	return parseToken(raw)
}

func fieldAddress(s *structpb.Struct, key string) (model.Address, error) {
	raw, err := fieldString(s, key)
	if err != nil {
		return "", err
	}
	return model.ParseAddress(raw)
}

func encodeConfirmation(c ledger.Confirmation) *structpb.Struct {
	return mustStruct(map[string]interface{}{
		"token": encodeToken(c.Token),
		"from":  string(c.From),
		"to":    string(c.To),
		"seq":   strconv.FormatUint(c.Seq, 10),
		"at":    c.At.Format(time.RFC3339Nano),
	})
}

func decodeConfirmation(s *structpb.Struct) (ledger.Confirmation, error) {
	var c ledger.Confirmation
	var err error
	if c.Token, err = fieldToken(s, "token"); err != nil {
		return c, err
	}
	if c.From, err = fieldAddress(s, "from"); err != nil {
		return c, err
	}
	if c.To, err = fieldAddress(s, "to"); err != nil {
		return c, err
	}
	rawSeq, err := fieldString(s, "seq")
	if err != nil {
		return c, err
	}
	if c.Seq, err = strconv.ParseUint(rawSeq, 10, 64); err != nil {
		return c, fmt.Errorf("invalid seq %q", rawSeq)
	}
	rawAt, err := fieldString(s, "at")
	if err != nil {
		return c, err
	}
	if c.At, err = time.Parse(time.RFC3339Nano, rawAt); err != nil {
		return c, fmt.Errorf("invalid confirmation time %q", rawAt)
	}
	return c, nil
}

func encodeEvent(ev ledger.TransferEvent) *structpb.Struct {
	return mustStruct(map[string]interface{}{
		"token": encodeToken(ev.Token),
		"from":  string(ev.From),
		"to":    string(ev.To),
		"seq":   strconv.FormatUint(ev.Seq, 10),
	})
}

func decodeEvent(s *structpb.Struct) (ledger.TransferEvent, error) {
	var ev ledger.TransferEvent
	var err error
	if ev.Token, err = fieldToken(s, "token"); err != nil {
		return ev, err
	}
	// Mint events carry the zero address, which ParseAddress accepts.
	if ev.From, err = fieldAddress(s, "from"); err != nil {
		return ev, err
	}
	if ev.To, err = fieldAddress(s, "to"); err != nil {
		return ev, err
	}
	rawSeq, err := fieldString(s, "seq")
	if err != nil {
		return ev, err
	}
	if ev.Seq, err = strconv.ParseUint(rawSeq, 10, 64); err != nil {
		return ev, fmt.Errorf("invalid seq %q", rawSeq)
	}
	return ev, nil
}
