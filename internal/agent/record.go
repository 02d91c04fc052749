// Package agent provides streaming supervision of external coding-agent
// processes: launching a run per task, capturing its structured output into
// an append-only sink file, tailing that sink live, and extracting the final
// human-readable output once the run ends.
//
// This file decodes individual sink lines into a tagged union of known
// record shapes plus a catch-all raw variant. Decoding never fails: a line
// that is not valid JSON, or valid JSON of an unknown shape, is preserved
// verbatim so consumers never lose information.
package agent

import (
	"encoding/json"
	"strings"
)

// Kind identifies the shape of a decoded sink record.
type Kind string

// Record kinds.
const (
	// KindMessage is an assistant message with a list of content items.
	KindMessage Kind = "message"

	// KindDelta is an incremental text fragment from a streaming block.
	KindDelta Kind = "delta"

	// KindResult is the terminal result payload of a run.
	KindResult Kind = "result"

	// KindText is any other record exposing a top-level string "content"
	// or "text" field.
	KindText Kind = "text"

	// KindOpaque is valid JSON of an unrecognized shape. It contributes
	// nothing to extraction but is still delivered to tail subscribers.
	KindOpaque Kind = "opaque"

	// KindRaw is a line that failed JSON decoding, preserved verbatim.
	KindRaw Kind = "raw"
)

// Record is one decoded sink line.
type Record struct {
	// Kind is the decoded shape.
	Kind Kind

	// Raw is the original line, always set, never trimmed of content.
	Raw string

	// Texts holds the text of each text-typed content item for
	// KindMessage records.
	Texts []string

	// Fragment is the incremental text for KindDelta records.
	Fragment string

	// Text is the payload for KindResult and KindText records.
	Text string
}

// wireContentItem is one entry of a message record's content array.
type wireContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// wireRecord covers every field the known shapes can carry. Pointer fields
// distinguish "absent" from "empty".
type wireRecord struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
	Delta   *struct {
		Text string `json:"text"`
	} `json:"delta"`
	Result json.RawMessage `json:"result"`
	Text   *string         `json:"text"`
}

// DecodeLine decodes a single sink line into a Record. It never returns an
// error: malformed input becomes a KindRaw record.
func DecodeLine(line string) Record {
	rec := Record{Kind: KindRaw, Raw: line}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] != '{' {
		return rec
	}

	var wire wireRecord
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return rec
	}

	switch {
	case wire.Type == "message" && len(wire.Content) > 0:
		var items []wireContentItem
		if err := json.Unmarshal(wire.Content, &items); err == nil {
			rec.Kind = KindMessage
			for _, item := range items {
				if item.Type == "text" {
					rec.Texts = append(rec.Texts, item.Text)
				}
			}
			return rec
		}
		// Fall through: content was not an array; try the string shape.

	case wire.Delta != nil && wire.Delta.Text != "":
		rec.Kind = KindDelta
		rec.Fragment = wire.Delta.Text
		return rec

	case len(wire.Result) > 0:
		var result string
		if err := json.Unmarshal(wire.Result, &result); err == nil {
			rec.Kind = KindResult
			rec.Text = result
			return rec
		}
		rec.Kind = KindOpaque
		return rec
	}

	// Top-level string "content" or "text" fields.
	if len(wire.Content) > 0 {
		var content string
		if err := json.Unmarshal(wire.Content, &content); err == nil {
			rec.Kind = KindText
			rec.Text = content
			return rec
		}
	}
	if wire.Text != nil {
		rec.Kind = KindText
		rec.Text = *wire.Text
		return rec
	}

	rec.Kind = KindOpaque
	return rec
}

// Contribution returns the text this record adds to the finalized task
// output. Message text items and result/content/text payloads are
// newline-terminated; delta fragments are appended as-is; opaque and raw
// records contribute nothing.
func (r Record) Contribution() string {
	switch r.Kind {
	case KindMessage:
		if len(r.Texts) == 0 {
			return ""
		}
		var b strings.Builder
		for _, text := range r.Texts {
			b.WriteString(text)
			b.WriteByte('\n')
		}
		return b.String()
	case KindDelta:
		return r.Fragment
	case KindResult, KindText:
		return r.Text + "\n"
	default:
		return ""
	}
}
