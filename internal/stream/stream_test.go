package stream

import (
	"errors"
	"strings"
	"testing"

	"github.com/everstacklabs/ask/internal/classify"
)

func deltaLine(text string) string {
	return `data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"` + text + `"}}`
}

func TestDecodeEventFramedRoundTrip(t *testing.T) {
	body := strings.Join([]string{
		`event: message_start`,
		`data: {"type":"message_start","message":{"id":"msg_1"}}`,
		``,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		deltaLine("The capital "),
		deltaLine("of France "),
		deltaLine("is Paris."),
		`data: {"type":"content_block_stop","index":0}`,
		`data: {"type":"message_stop"}`,
	}, "\n")

	got, err := DecodeEventFramed([]byte(body))
	if err != nil {
		t.Fatalf("DecodeEventFramed: %v", err)
	}
	if want := "The capital of France is Paris."; got.FinalText != want {
		t.Errorf("FinalText = %q, want %q", got.FinalText, want)
	}
}

func TestDecodeEventFramedSkipsCorruptLine(t *testing.T) {
	clean := strings.Join([]string{deltaLine("a"), deltaLine("b"), deltaLine("c")}, "\n")
	corrupt := strings.Join([]string{
		deltaLine("a"),
		`data: {"type":"content_block_delta","delta":{"te`, // truncated frame
		deltaLine("b"),
		deltaLine("c"),
	}, "\n")

	want, err := DecodeEventFramed([]byte(clean))
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeEventFramed([]byte(corrupt))
	if err != nil {
		t.Fatalf("corrupt line must not be fatal: %v", err)
	}
	if got.FinalText != want.FinalText {
		t.Errorf("FinalText = %q, want %q", got.FinalText, want.FinalText)
	}
}

func TestDecodeEventFramedNoFrames(t *testing.T) {
	got, err := DecodeEventFramed([]byte("event: ping\n\nsomething else\n"))
	if err != nil {
		t.Fatalf("zero frames must not error: %v", err)
	}
	if got.FinalText != "" {
		t.Errorf("FinalText = %q, want empty", got.FinalText)
	}
}

func TestDecodeChunkedSingleObject(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"text":"The capital of France is Paris."}]}}]}`
	got, err := DecodeChunked([]byte(body))
	if err != nil {
		t.Fatalf("DecodeChunked: %v", err)
	}
	if want := "The capital of France is Paris."; got.FinalText != want {
		t.Errorf("FinalText = %q, want %q", got.FinalText, want)
	}
	if len(got.ThoughtSegments) != 0 {
		t.Errorf("ThoughtSegments = %v, want empty", got.ThoughtSegments)
	}
}

func TestDecodeChunkedArrayOrder(t *testing.T) {
	body := `[
		{"candidates":[{"content":{"parts":[{"text":"one "}]}}]},
		{"candidates":[{"content":{"parts":[{"text":"two "}]}}]},
		{"candidates":[{"content":{"parts":[{"text":"three"}]}}]}
	]`
	got, err := DecodeChunked([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if want := "one two three"; got.FinalText != want {
		t.Errorf("FinalText = %q, want %q", got.FinalText, want)
	}
}

func TestDecodeChunkedSkipsChunkWithoutText(t *testing.T) {
	body := `[
		{"candidates":[{"content":{"parts":[{"text":"kept "}]}}]},
		{"usageMetadata":{"totalTokenCount":12}},
		{"candidates":[{"content":{"parts":[{"text":"also kept"}]}}]}
	]`
	got, err := DecodeChunked([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if want := "kept also kept"; got.FinalText != want {
		t.Errorf("FinalText = %q, want %q", got.FinalText, want)
	}
}

func TestDecodeChunkedAllMissingIsParseFailure(t *testing.T) {
	body := `[{"usageMetadata":{}},{"candidates":[{"content":{"parts":[]}}]}]`
	_, err := DecodeChunked([]byte(body))
	var cerr *classify.Error
	if !errors.As(err, &cerr) || cerr.Category != classify.ParseFailure {
		t.Fatalf("want ParseFailure, got %v", err)
	}
}

func TestDecodeChunkedSeparatesThoughts(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[
		{"text":"Let me reason about this.","thought":true},
		{"text":"Second reasoning step.","thought":true},
		{"text":"Final answer."}
	]}}]}`
	got, err := DecodeChunked([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if got.FinalText != "Final answer." {
		t.Errorf("FinalText = %q", got.FinalText)
	}
	if len(got.ThoughtSegments) != 2 ||
		got.ThoughtSegments[0] != "Let me reason about this." ||
		got.ThoughtSegments[1] != "Second reasoning step." {
		t.Errorf("ThoughtSegments = %v", got.ThoughtSegments)
	}
}

func TestDecodeChunkedGroundingCitations(t *testing.T) {
	body := `{"candidates":[{
		"content":{"parts":[{"text":"Paris."}]},
		"groundingMetadata":{"groundingChunks":[
			{"web":{"title":"Wikipedia","uri":"https://en.wikipedia.org/wiki/Paris"}},
			{"web":{"title":"Britannica","uri":"https://www.britannica.com/place/Paris"}}
		]}
	}]}`
	got, err := DecodeChunked([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Citations) != 2 {
		t.Fatalf("Citations = %v", got.Citations)
	}
	if got.Citations[0].Title != "Wikipedia" || got.Citations[1].URI != "https://www.britannica.com/place/Paris" {
		t.Errorf("citation order not preserved: %v", got.Citations)
	}
}

func TestDecodeChunkedMalformedJSON(t *testing.T) {
	_, err := DecodeChunked([]byte(`[{"candidates": [`))
	var cerr *classify.Error
	if !errors.As(err, &cerr) || cerr.Category != classify.ParseFailure {
		t.Fatalf("want ParseFailure, got %v", err)
	}
}
