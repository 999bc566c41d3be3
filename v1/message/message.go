package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Scheme prefixes every message in the bus text format.
const Scheme = "pytroll:/"

// DefaultVersion is written by Encode when Message.Version is empty.
const DefaultVersion = "v1.01"

const mimeJSON = "application/json"

// ErrInvalidMessage is wrapped by every decoding failure.
var ErrInvalidMessage = errors.New("invalid message")

// Message is a decoded bus message. The recorder only reads Type and Data.
type Message struct {
	Subject  string
	Type     string
	Sender   string
	Time     time.Time
	Version  string
	MimeType string
	Data     bson.M
}

// Kind returns the Kind of m.Type.
func (m Message) Kind() Kind { return ParseKind(m.Type) }

// URI returns Data["uri"] when it is a non-empty string.
func (m Message) URI() (string, bool) {
	uri, ok := m.Data["uri"].(string)
	return uri, ok && uri != ""
}

// jsonEnvelope is the alternative encoding used on brokers that carry JSON payloads.
type jsonEnvelope struct {
	Subject string          `json:"subject"`
	Type    string          `json:"type"`
	Sender  string          `json:"sender"`
	Time    string          `json:"time"`
	Version string          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Decode parses raw as either the text format
//
//	pytroll://<subject> <type> <sender> <time> <version> [<mime> <data>]
//
// or a JSON object with subject, type, sender, time, version and data fields.
// In the data, integral numbers become int64, other numbers float64, and
// strings holding an ISO 8601 timestamp become time.Time.
func Decode(raw []byte) (Message, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.HasPrefix(trimmed, []byte(Scheme)):
		return decodeText(string(trimmed))
	case bytes.HasPrefix(trimmed, []byte("{")):
		return decodeJSON(trimmed)
	default:
		return Message{}, fmt.Errorf("%w: unrecognized format", ErrInvalidMessage)
	}
}

func decodeText(raw string) (Message, error) {
	parts := strings.SplitN(raw, " ", 7)
	if len(parts) < 5 {
		return Message{}, fmt.Errorf("%w: expected at least 5 header fields, got %d", ErrInvalidMessage, len(parts))
	}

	msg := Message{
		Subject: strings.TrimPrefix(parts[0], Scheme),
		Type:    parts[1],
		Sender:  parts[2],
		Version: parts[4],
	}
	if msg.Subject == "" || msg.Type == "" {
		return Message{}, fmt.Errorf("%w: empty subject or type", ErrInvalidMessage)
	}

	ts, ok := parseTime(parts[3])
	if !ok {
		return Message{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidMessage, parts[3])
	}
	msg.Time = ts

	msg.Data = bson.M{}
	if len(parts) == 5 {
		return msg, nil
	}
	if len(parts) == 6 {
		return Message{}, fmt.Errorf("%w: mime type without data", ErrInvalidMessage)
	}

	msg.MimeType = parts[5]
	if msg.MimeType != mimeJSON {
		return Message{}, fmt.Errorf("%w: unsupported mime type %q", ErrInvalidMessage, msg.MimeType)
	}
	data, err := decodeData([]byte(parts[6]))
	if err != nil {
		return Message{}, err
	}
	msg.Data = data
	return msg, nil
}

func decodeJSON(raw []byte) (Message, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if env.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}

	msg := Message{
		Subject:  env.Subject,
		Type:     env.Type,
		Sender:   env.Sender,
		Version:  env.Version,
		MimeType: mimeJSON,
		Data:     bson.M{},
	}
	if env.Time != "" {
		ts, ok := parseTime(env.Time)
		if !ok {
			return Message{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidMessage, env.Time)
		}
		msg.Time = ts
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		data, err := decodeData(env.Data)
		if err != nil {
			return Message{}, err
		}
		msg.Data = data
	}
	return msg, nil
}

// Encode renders msg in the text format. Time values in the data are written
// as RFC 3339 strings, which Decode turns back into time.Time.
func Encode(msg Message) (string, error) {
	if msg.Subject == "" || msg.Type == "" {
		return "", fmt.Errorf("%w: empty subject or type", ErrInvalidMessage)
	}
	version := msg.Version
	if version == "" {
		version = DefaultVersion
	}
	ts := msg.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	sender := msg.Sender
	if sender == "" {
		sender = "satmeta"
	}

	subject := msg.Subject
	if !strings.HasPrefix(subject, "/") {
		subject = "/" + subject
	}

	header := fmt.Sprintf("%s%s %s %s %s %s", Scheme, subject, msg.Type, sender, ts.Format(timeLayouts[0]), version)
	if msg.Data == nil {
		return header, nil
	}

	data, err := json.Marshal(msg.Data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message data: %w", err)
	}
	return header + " " + mimeJSON + " " + string(data), nil
}
