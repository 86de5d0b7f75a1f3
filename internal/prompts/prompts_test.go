package prompts

import (
	"strings"
	"testing"

	"github.com/koji/nanobanana/internal/domain"
)

// TestBuildAnalysisPromptContextBlocks verifies that each parameter adds its
// context block and absent parameters add nothing
func TestBuildAnalysisPromptContextBlocks(t *testing.T) {
	testCases := []struct {
		name        string
		params      map[string]string
		wantParts   []string
		absentParts []string
	}{
		{
			name:   "no params",
			params: map[string]string{},
			wantParts: []string{
				"You are an elite technical analyst",
				"support_levels",
				"```json",
			},
			absentParts: []string{
				"**IMPORTANT: This chart is a",
				"ANALYSIS - CRITICAL CONTEXT",
				"TRADE DIRECTION",
			},
		},
		{
			name:   "timeframe only",
			params: map[string]string{domain.ParamTimeframe: "1h"},
			wantParts: []string{
				"This chart is a 1-hour (swing trading) timeframe",
				"Use moderate stop-losses (1-2%)",
			},
			absentParts: []string{
				"ANALYSIS - CRITICAL CONTEXT",
				"TRADE DIRECTION",
			},
		},
		{
			name:   "ultra short timeframe",
			params: map[string]string{domain.ParamTimeframe: "5s"},
			wantParts: []string{
				"This chart is a 5-second (ultra-scalping) timeframe",
				"Use VERY tight stop-losses (0.1-0.5%)",
			},
		},
		{
			name:   "asset context",
			params: map[string]string{domain.ParamAssetType: "btc"},
			wantParts: []string{
				"**BITCOIN (BTC) ANALYSIS - CRITICAL CONTEXT:**",
				"BTC dominance",
			},
			absentParts: []string{
				"SOLANA",
				"MEMECOIN",
			},
		},
		{
			name:   "direction long",
			params: map[string]string{domain.ParamDirection: "long"},
			wantParts: []string{
				"**TRADE DIRECTION: LONG (BULLISH BIAS) - FOCUS YOUR ANALYSIS:**",
				"Set stop-losses BELOW key support levels",
			},
			absentParts: []string{
				"BEARISH BIAS",
			},
		},
		{
			name:   "direction both",
			params: map[string]string{domain.ParamDirection: "both"},
			wantParts: []string{
				"**TRADE DIRECTION: BOTH (LONG & SHORT) - ANALYZE BOTH DIRECTIONS:**",
			},
		},
		{
			name: "all params combined",
			params: map[string]string{
				domain.ParamTimeframe: "1d",
				domain.ParamAssetType: "memecoin",
				domain.ParamDirection: "short",
			},
			wantParts: []string{
				"daily (position trading)",
				"**MEMECOIN ANALYSIS - CRITICAL CONTEXT:**",
				"**TRADE DIRECTION: SHORT (BEARISH BIAS) - FOCUS YOUR ANALYSIS:**",
				"chart_min_price",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prompt := BuildAnalysisPrompt(tc.params)

			for _, part := range tc.wantParts {
				if !strings.Contains(prompt, part) {
					t.Errorf("prompt missing %q", part)
				}
			}
			for _, part := range tc.absentParts {
				if strings.Contains(prompt, part) {
					t.Errorf("prompt unexpectedly contains %q", part)
				}
			}
		})
	}
}

// TestBuildAnalysisPromptDeterminism verifies that the same params always
// produce byte-identical prompt text
func TestBuildAnalysisPromptDeterminism(t *testing.T) {
	params := map[string]string{
		domain.ParamTimeframe: "4h",
		domain.ParamAssetType: "sol",
		domain.ParamDirection: "both",
	}

	first := BuildAnalysisPrompt(params)
	for i := 0; i < 10; i++ {
		if got := BuildAnalysisPrompt(params); got != first {
			t.Fatalf("iteration %d: prompt text changed for identical params", i)
		}
	}
}

// TestBuildGenerationPromptStyles verifies style selection and the default
func TestBuildGenerationPromptStyles(t *testing.T) {
	testCases := []struct {
		name       string
		params     map[string]string
		wantPart   string
		absentPart string
	}{
		{
			name:       "missing style falls back to legendary",
			params:     map[string]string{},
			wantPart:   "VISUAL STYLE - LEGENDARY TIER:",
			absentPart: "NEON CYBER FUTURE",
		},
		{
			name:       "cyberpunk",
			params:     map[string]string{domain.ParamStyle: "cyberpunk"},
			wantPart:   "VISUAL STYLE - NEON CYBER FUTURE:",
			absentPart: "LEGENDARY TIER",
		},
		{
			name:       "anime",
			params:     map[string]string{domain.ParamStyle: "anime"},
			wantPart:   "**ANIME SERIES SKIN**",
			absentPart: "LEGENDARY TIER",
		},
		{
			name:       "meme",
			params:     map[string]string{domain.ParamStyle: "meme"},
			wantPart:   "VISUAL STYLE - FUNNY/GOOFY:",
			absentPart: "CREEPY/SCARY",
		},
		{
			name:       "horror",
			params:     map[string]string{domain.ParamStyle: "horror"},
			wantPart:   "VISUAL STYLE - CREEPY/SCARY:",
			absentPart: "FUNNY/GOOFY",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prompt := BuildGenerationPrompt(tc.params)

			if !strings.Contains(prompt, tc.wantPart) {
				t.Errorf("prompt missing %q", tc.wantPart)
			}
			if strings.Contains(prompt, tc.absentPart) {
				t.Errorf("prompt unexpectedly contains %q", tc.absentPart)
			}
			if !strings.Contains(prompt, "CRITICAL REQUIREMENTS:") {
				t.Error("prompt missing requirements block")
			}
			if !strings.Contains(prompt, "Skin Name (catchy Fortnite-style name)") {
				t.Error("prompt missing output block")
			}
		})
	}
}

// TestBuildAnalysisPromptCustomInstructions verifies the free-text
// instruction is appended verbatim after the task description
func TestBuildAnalysisPromptCustomInstructions(t *testing.T) {
	withCustom := BuildAnalysisPrompt(map[string]string{
		domain.ParamTimeframe:    "4h",
		domain.ParamCustomPrompt: "focus on the volume profile",
	})
	if !strings.Contains(withCustom, "ADDITIONAL INSTRUCTIONS FROM USER:\nfocus on the volume profile") {
		t.Error("custom instructions not appended under their header")
	}

	without := BuildAnalysisPrompt(map[string]string{domain.ParamTimeframe: "4h"})
	if strings.Contains(without, "ADDITIONAL INSTRUCTIONS") {
		t.Error("custom instructions header present without a custom prompt")
	}
}

// TestBuildGenerationPromptCustomInstructions verifies the custom prompt is
// appended under its own header and omitted when empty
func TestBuildGenerationPromptCustomInstructions(t *testing.T) {
	withCustom := BuildGenerationPrompt(map[string]string{
		domain.ParamStyle:        "horror",
		domain.ParamCustomPrompt: "give the character a pumpkin head",
	})
	if !strings.Contains(withCustom, "ADDITIONAL INSTRUCTIONS FROM USER:\ngive the character a pumpkin head") {
		t.Error("custom instructions not appended under their header")
	}

	without := BuildGenerationPrompt(map[string]string{domain.ParamStyle: "horror"})
	if strings.Contains(without, "ADDITIONAL INSTRUCTIONS") {
		t.Error("custom instructions header present without a custom prompt")
	}
}

// TestTimeframeDescriptionsCoverCatalog verifies every selectable timeframe
// has prompt wording
func TestTimeframeDescriptionsCoverCatalog(t *testing.T) {
	for _, tf := range domain.Timeframes {
		if _, ok := TimeframeDescriptions[tf]; !ok {
			t.Errorf("timeframe %q has no description", tf)
		}
		if timeframeGuidance(tf) == "" {
			t.Errorf("timeframe %q has no guidance block", tf)
		}
	}
}

// TestStylePromptsCoverCatalog verifies every selectable style has a visual
// direction block
func TestStylePromptsCoverCatalog(t *testing.T) {
	for _, s := range domain.Styles {
		if _, ok := stylePrompts[s.ID]; !ok {
			t.Errorf("style %q has no prompt block", s.ID)
		}
	}
}
