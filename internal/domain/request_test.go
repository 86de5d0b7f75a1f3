package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	image := []byte("fake image bytes")

	tests := []struct {
		name      string
		req       *Request
		wantParam string
	}{
		{
			name: "valid analysis request",
			req: &Request{
				Mode:  ModeAnalysis,
				Image: image,
				Params: map[string]string{
					ParamTimeframe: "4h",
					ParamAssetType: "btc",
					ParamDirection: "long",
				},
			},
		},
		{
			name: "valid generation request",
			req: &Request{
				Mode:   ModeGeneration,
				Image:  image,
				Params: map[string]string{ParamStyle: "anime"},
			},
		},
		{
			name: "valid request without params",
			req:  &Request{Mode: ModeAnalysis, Image: image},
		},
		{
			name:      "unknown mode",
			req:       &Request{Mode: Mode("remix"), Image: image},
			wantParam: "mode",
		},
		{
			name:      "empty image",
			req:       &Request{Mode: ModeAnalysis, Image: nil},
			wantParam: "file",
		},
		{
			name: "style not recognized for analysis",
			req: &Request{
				Mode:   ModeAnalysis,
				Image:  image,
				Params: map[string]string{ParamStyle: "anime"},
			},
			wantParam: ParamStyle,
		},
		{
			name: "timeframe not recognized for generation",
			req: &Request{
				Mode:   ModeGeneration,
				Image:  image,
				Params: map[string]string{ParamTimeframe: "4h"},
			},
			wantParam: ParamTimeframe,
		},
		{
			name: "unsupported timeframe",
			req: &Request{
				Mode:   ModeAnalysis,
				Image:  image,
				Params: map[string]string{ParamTimeframe: "7h"},
			},
			wantParam: ParamTimeframe,
		},
		{
			name: "auto timeframe accepted",
			req: &Request{
				Mode:   ModeAnalysis,
				Image:  image,
				Params: map[string]string{ParamTimeframe: "auto"},
			},
		},
		{
			name: "unsupported asset type",
			req: &Request{
				Mode:   ModeAnalysis,
				Image:  image,
				Params: map[string]string{ParamAssetType: "doge"},
			},
			wantParam: ParamAssetType,
		},
		{
			name: "asset type case insensitive",
			req: &Request{
				Mode:   ModeAnalysis,
				Image:  image,
				Params: map[string]string{ParamAssetType: "BTC"},
			},
		},
		{
			name: "unsupported trade direction",
			req: &Request{
				Mode:   ModeAnalysis,
				Image:  image,
				Params: map[string]string{ParamDirection: "sideways"},
			},
			wantParam: ParamDirection,
		},
		{
			name: "unsupported style",
			req: &Request{
				Mode:   ModeGeneration,
				Image:  image,
				Params: map[string]string{ParamStyle: "baroque"},
			},
			wantParam: ParamStyle,
		},
		{
			name: "custom prompt too long",
			req: &Request{
				Mode:   ModeGeneration,
				Image:  image,
				Params: map[string]string{ParamCustomPrompt: strings.Repeat("x", MaxCustomPromptLen+1)},
			},
			wantParam: ParamCustomPrompt,
		},
		{
			name: "custom prompt at limit accepted",
			req: &Request{
				Mode:   ModeGeneration,
				Image:  image,
				Params: map[string]string{ParamCustomPrompt: strings.Repeat("x", MaxCustomPromptLen)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected validation error on %q, got nil", tt.wantParam)
			}
			if !IsValidation(err) {
				t.Errorf("expected a validation error, got %T", err)
			}
			var v *ValidationError
			if !errors.As(err, &v) || v.Param != tt.wantParam {
				t.Errorf("expected error on param %q, got %v", tt.wantParam, err)
			}
		})
	}
}

func TestEffectiveParams(t *testing.T) {
	tests := []struct {
		name   string
		req    *Request
		want   map[string]string
		absent []string
	}{
		{
			name: "auto and empty values dropped",
			req: &Request{
				Mode: ModeAnalysis,
				Params: map[string]string{
					ParamTimeframe: "auto",
					ParamAssetType: "",
					ParamDirection: "long",
				},
			},
			want:   map[string]string{ParamDirection: "long"},
			absent: []string{ParamTimeframe, ParamAssetType},
		},
		{
			name: "enum values lowercased",
			req: &Request{
				Mode: ModeAnalysis,
				Params: map[string]string{
					ParamAssetType: "BTC",
					ParamDirection: "Long",
				},
			},
			want: map[string]string{ParamAssetType: "btc", ParamDirection: "long"},
		},
		{
			name: "default style dropped",
			req: &Request{
				Mode:   ModeGeneration,
				Params: map[string]string{ParamStyle: "Legendary"},
			},
			absent: []string{ParamStyle},
		},
		{
			name: "non-default style kept",
			req: &Request{
				Mode:   ModeGeneration,
				Params: map[string]string{ParamStyle: "Anime"},
			},
			want: map[string]string{ParamStyle: "anime"},
		},
		{
			name: "custom prompt kept verbatim",
			req: &Request{
				Mode:   ModeGeneration,
				Params: map[string]string{ParamCustomPrompt: "Make It GLOW"},
			},
			want: map[string]string{ParamCustomPrompt: "Make It GLOW"},
		},
		{
			name: "nil params give empty map",
			req:  &Request{Mode: ModeAnalysis},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.req.EffectiveParams()
			if got == nil {
				t.Fatal("expected non-nil map")
			}
			for name, value := range tt.want {
				if got[name] != value {
					t.Errorf("expected %s=%q, got %q", name, value, got[name])
				}
			}
			for _, name := range tt.absent {
				if _, ok := got[name]; ok {
					t.Errorf("expected %s to be dropped, got %q", name, got[name])
				}
			}
		})
	}
}

// Semantically identical requests must produce identical effective sets,
// otherwise the cache treats them as different work.
func TestEffectiveParamsCollapsesEquivalentRequests(t *testing.T) {
	a := &Request{Mode: ModeAnalysis, Params: map[string]string{
		ParamTimeframe: "4h",
		ParamAssetType: "BTC",
		ParamDirection: "auto",
	}}
	b := &Request{Mode: ModeAnalysis, Params: map[string]string{
		ParamTimeframe: "4h",
		ParamAssetType: "btc",
	}}

	pa, pb := a.EffectiveParams(), b.EffectiveParams()
	if len(pa) != len(pb) {
		t.Fatalf("expected same number of params, got %d and %d", len(pa), len(pb))
	}
	for name, value := range pa {
		if pb[name] != value {
			t.Errorf("expected %s=%q in both sets, got %q", name, value, pb[name])
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "plain number", input: "45250.5", want: 45250.5, ok: true},
		{name: "dollar prefix", input: "$1250", want: 1250, ok: true},
		{name: "thousands separators", input: "$1,250,000", want: 1250000, ok: true},
		{name: "K suffix", input: "45.2K", want: 45200, ok: true},
		{name: "lowercase k suffix", input: "45.2k", want: 45200, ok: true},
		{name: "M suffix", input: "1.5M", want: 1500000, ok: true},
		{name: "dollar and suffix combined", input: "$2.4M", want: 2400000, ok: true},
		{name: "surrounding whitespace", input: "  $99.5  ", want: 99.5, ok: true},
		{name: "negative number", input: "-3.5", want: -3.5, ok: true},
		{name: "empty string", input: "", ok: false},
		{name: "whitespace only", input: "   ", ok: false},
		{name: "not a number", input: "support zone", ok: false},
		{name: "bare suffix", input: "K", ok: false},
		{name: "bare dollar", input: "$", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (value %v)", tt.ok, ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
