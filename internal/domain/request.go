package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects which kind of model work a request asks for.
// Values are ModeAnalysis (chart analysis) and ModeGeneration (skin generation).
type Mode string

const (
	ModeAnalysis   Mode = "analysis"
	ModeGeneration Mode = "generation"
)

// Recognized parameter names accepted by Request.Params.
const (
	ParamTimeframe    = "timeframe"
	ParamAssetType    = "asset_type"
	ParamDirection    = "trade_direction"
	ParamStyle        = "style"
	ParamCustomPrompt = "custom_prompt"
)

// DefaultAuto marks a parameter the caller left on automatic detection.
// Auto-valued parameters never reach the prompt or the fingerprint.
const DefaultAuto = "auto"

// MaxCustomPromptLen bounds the free-text instruction a caller may attach.
const MaxCustomPromptLen = 2000

// Timeframes lists supported chart timeframes, shortest first.
var Timeframes = []string{
	"1s", "3s", "5s", "15s", "30s",
	"1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "12h",
	"1d", "3d", "1w", "1M",
}

// AssetTypes lists supported market context selectors.
var AssetTypes = []string{"btc", "sol", "eth", "alts", "memecoin"}

// TradeDirections lists supported analysis framings.
var TradeDirections = []string{"long", "short", "both"}

// StyleDefault is the generation theme used when no style is given.
const StyleDefault = "legendary"

// Style describes a generation theme for the catalog endpoint.
type Style struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// Styles lists the available generation themes.
var Styles = []Style{
	{ID: "legendary", Name: "Legendary", Description: "Premium glowing armor with gold/chrome effects", Color: "#f5a623", Icon: "⭐"},
	{ID: "anime", Name: "Anime", Description: "Cel-shaded anime/manga character style", Color: "#ff6b9d", Icon: "🌸"},
	{ID: "meme", Name: "Meme Lord", Description: "Funny, goofy, viral-worthy character", Color: "#f39c12", Icon: "😂"},
	{ID: "cyberpunk", Name: "Cyberpunk", Description: "Neon-lit futuristic cyber warrior", Color: "#00ffff", Icon: "🤖"},
	{ID: "horror", Name: "Horror", Description: "Creepy, spooky Fortnitemares style", Color: "#8b0000", Icon: "👻"},
}

// StyleIDs returns the style catalog as a plain id list.
func StyleIDs() []string {
	ids := make([]string, len(Styles))
	for i, s := range Styles {
		ids[i] = s.ID
	}
	return ids
}

// paramsByMode maps each mode to the parameter names it accepts.
var paramsByMode = map[Mode][]string{
	ModeAnalysis:   {ParamTimeframe, ParamAssetType, ParamDirection, ParamCustomPrompt},
	ModeGeneration: {ParamStyle, ParamCustomPrompt},
}

// Request is the immutable value handed to the orchestrator:
// validated image bytes plus the recognized parameter set.
// Constructed once per inbound call and never mutated afterwards.
type Request struct {
	Mode      Mode
	Image     []byte
	ImageMIME string
	Params    map[string]string
}

// Validate checks the request before any fingerprinting or model work.
// Parameters: none.
// Returns:
//   - error: a *ValidationError describing the first problem found, or nil.
func (r *Request) Validate() error {
	if r.Mode != ModeAnalysis && r.Mode != ModeGeneration {
		return &ValidationError{Param: "mode", Reason: fmt.Sprintf("unknown mode %q", r.Mode)}
	}
	if len(r.Image) == 0 {
		return &ValidationError{Param: "file", Reason: "empty file uploaded"}
	}

	allowed := make(map[string]bool, len(paramsByMode[r.Mode]))
	for _, name := range paramsByMode[r.Mode] {
		allowed[name] = true
	}
	for name := range r.Params {
		if !allowed[name] {
			return &ValidationError{Param: name, Reason: fmt.Sprintf("parameter not recognized for mode %q", r.Mode)}
		}
	}

	if v, ok := r.Params[ParamTimeframe]; ok && !isDefault(v) && !contains(Timeframes, v) {
		return &ValidationError{Param: ParamTimeframe, Reason: fmt.Sprintf("unsupported timeframe %q", v)}
	}
	if v, ok := r.Params[ParamAssetType]; ok && !isDefault(v) && !contains(AssetTypes, strings.ToLower(v)) {
		return &ValidationError{Param: ParamAssetType, Reason: fmt.Sprintf("unsupported asset type %q", v)}
	}
	if v, ok := r.Params[ParamDirection]; ok && v != "" && !contains(TradeDirections, strings.ToLower(v)) {
		return &ValidationError{Param: ParamDirection, Reason: fmt.Sprintf("unsupported trade direction %q", v)}
	}
	if v, ok := r.Params[ParamStyle]; ok && !isDefault(v) && !contains(StyleIDs(), strings.ToLower(v)) {
		return &ValidationError{Param: ParamStyle, Reason: fmt.Sprintf("unsupported style %q", v)}
	}
	if v, ok := r.Params[ParamCustomPrompt]; ok && len(v) > MaxCustomPromptLen {
		return &ValidationError{Param: ParamCustomPrompt, Reason: fmt.Sprintf("custom prompt exceeds %d characters", MaxCustomPromptLen)}
	}
	return nil
}

// EffectiveParams returns the normalized parameter set that actually shapes
// the model instruction: unset, "auto" and default-valued entries are dropped,
// enum values are lowercased. The fingerprint and the prompt builder both work
// from this set, so semantically identical requests collapse to one cache key.
// Parameters: none.
// Returns:
//   - map[string]string: normalized parameters, never nil.
func (r *Request) EffectiveParams() map[string]string {
	out := make(map[string]string, len(r.Params))
	for name, value := range r.Params {
		switch name {
		case ParamTimeframe:
			if !isDefault(value) {
				out[name] = value
			}
		case ParamAssetType, ParamDirection:
			v := strings.ToLower(value)
			if !isDefault(v) {
				out[name] = v
			}
		case ParamStyle:
			v := strings.ToLower(value)
			if !isDefault(v) && v != StyleDefault {
				out[name] = v
			}
		case ParamCustomPrompt:
			if value != "" {
				out[name] = value
			}
		}
	}
	return out
}

// SortedParamNames returns the effective parameter names in sorted order.
func SortedParamNames(params map[string]string) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isDefault(v string) bool {
	return v == "" || strings.EqualFold(v, DefaultAuto)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
