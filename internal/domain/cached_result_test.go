package domain

import (
	"bytes"
	"testing"
)

func TestCachedResultRoundTrip(t *testing.T) {
	original := &Result{
		Mode:    ModeGeneration,
		Parsed:  true,
		RawText: "Meet \"Volt Striker\" - a Legendary outfit.",
		Skin:    &SkinDetails{Name: "Volt Striker", Rarity: "Legendary"},
		Images: []GeneratedImage{
			{Data: []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff}, MIMEType: "image/png"},
		},
	}

	row, err := EncodeResult("abc123", original)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if row.Fingerprint != "abc123" {
		t.Errorf("expected fingerprint abc123, got %q", row.Fingerprint)
	}
	if row.Mode != string(ModeGeneration) {
		t.Errorf("expected mode %q, got %q", ModeGeneration, row.Mode)
	}
	if row.CreatedAt.IsZero() || row.LastAccess.IsZero() {
		t.Error("expected timestamps to be set")
	}

	decoded, err := row.DecodeResult()
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if decoded.Mode != original.Mode || decoded.Parsed != original.Parsed {
		t.Errorf("expected mode=%s parsed=%v, got mode=%s parsed=%v",
			original.Mode, original.Parsed, decoded.Mode, decoded.Parsed)
	}
	if decoded.RawText != original.RawText {
		t.Errorf("expected raw text preserved, got %q", decoded.RawText)
	}
	if decoded.Skin == nil || decoded.Skin.Name != "Volt Striker" {
		t.Errorf("expected skin details preserved, got %+v", decoded.Skin)
	}
	if len(decoded.Images) != 1 || !bytes.Equal(decoded.Images[0].Data, original.Images[0].Data) {
		t.Errorf("expected image bytes preserved, got %+v", decoded.Images)
	}
}

func TestCachedResultDecodeCorruptPayload(t *testing.T) {
	row := &CachedResult{Fingerprint: "abc123", Payload: "{not json"}
	if _, err := row.DecodeResult(); err == nil {
		t.Fatal("expected decode error for corrupt payload")
	}
}
