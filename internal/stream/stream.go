// Package stream reconciles raw response bodies into a single ordered
// text output. Two transport encodings are supported: event-framed bodies
// (anthropic streamRawPredict, one JSON object per "data:" line) and
// array-of-chunks bodies (gateway streamGenerateContent and the direct
// Gemini API, a top-level JSON array or a single non-streamed object).
//
// The two encodings carry different tolerance policies. Event framing is
// best-effort per line: transport noise is expected mid-stream and one
// corrupt frame must not lose the rest. The chunk array is parsed as a
// whole: if no chunk yields text the response is structurally broken and
// reconciliation fails hard.
package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/everstacklabs/ask/internal/classify"
)

// Citation is one grounding source attached to a reconciled answer.
type Citation struct {
	Title string
	URI   string
}

// Reconciled is the decoded response. FinalText is the concatenation of
// answer fragments in strict arrival order; ThoughtSegments and Citations
// preserve source order. Immutable once returned.
type Reconciled struct {
	FinalText       string
	ThoughtSegments []string
	Citations       []Citation
}

// eventPrefix marks contributing lines in event-framed bodies.
const eventPrefix = "data: "

// eventFrame is the only event-framed shape that contributes output.
type eventFrame struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// DecodeEventFramed reconciles an event-framed body. Lines without the
// data prefix are discarded; each remaining line is decoded independently
// and malformed lines are skipped. Zero contributing frames yield an
// empty FinalText, not an error.
func DecodeEventFramed(body []byte) (*Reconciled, error) {
	var out strings.Builder

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, eventPrefix) {
			continue
		}
		var frame eventFrame
		if err := json.Unmarshal([]byte(line[len(eventPrefix):]), &frame); err != nil {
			continue
		}
		if frame.Type != "content_block_delta" {
			continue
		}
		out.WriteString(frame.Delta.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, classify.Wrap(classify.ParseFailure, "reading event stream", err)
	}

	return &Reconciled{FinalText: out.String()}, nil
}

// chunk mirrors the generateContent response envelope.
type chunk struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					Title string `json:"title"`
					URI   string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

type part struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought"`
}

// DecodeChunked reconciles an array-of-chunks body. The body must be
// either a top-level JSON array of chunk objects or a single non-streamed
// object. Chunks missing the text path contribute nothing, but if every
// chunk misses it reconciliation fails with ParseFailure.
func DecodeChunked(body []byte) (*Reconciled, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, classify.New(classify.ParseFailure, "empty response body")
	}

	var chunks []chunk
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &chunks); err != nil {
			return nil, classify.Wrap(classify.ParseFailure, "decoding chunk array", err)
		}
	} else {
		var single chunk
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, classify.Wrap(classify.ParseFailure, "decoding response object", err)
		}
		chunks = []chunk{single}
	}

	out := &Reconciled{}
	contributed := false

	for _, c := range chunks {
		if len(c.Candidates) == 0 {
			continue
		}
		cand := c.Candidates[0]
		for _, p := range cand.Content.Parts {
			if p.Text == "" {
				continue
			}
			contributed = true
			if p.Thought {
				out.ThoughtSegments = append(out.ThoughtSegments, p.Text)
			} else {
				out.FinalText += p.Text
			}
		}
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc.Web.Title == "" && gc.Web.URI == "" {
				continue
			}
			out.Citations = append(out.Citations, Citation{Title: gc.Web.Title, URI: gc.Web.URI})
		}
	}

	if !contributed {
		return nil, classify.New(classify.ParseFailure,
			"no chunk carried candidates[0].content.parts[].text")
	}
	return out, nil
}
