package domain

// RawOutput is what a model call produces before normalization:
// a text blob and zero or more generated images. Either part may be empty;
// a model that declines to generate an image still yields a valid RawOutput.
type RawOutput struct {
	Text   string
	Images []GeneratedImage
}

// GeneratedImage is one image returned by the model.
type GeneratedImage struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
}

// Result is the normalized outcome of one model invocation.
// It is a tagged union: Parsed=true carries a typed payload for the request's
// mode (Analysis or Skin), Parsed=false is the degraded fallback carrying only
// the raw text. RawText always preserves the model output verbatim, parsed or
// not, and Images carries any generated images regardless of parsing.
type Result struct {
	Mode     Mode             `json:"mode"`
	Parsed   bool             `json:"parsed"`
	RawText  string           `json:"raw_text"`
	Analysis *ChartAnalysis   `json:"analysis,omitempty"`
	Skin     *SkinDetails     `json:"skin_details,omitempty"`
	Images   []GeneratedImage `json:"images,omitempty"`
}

// ChartAnalysis is the typed payload for analysis mode. Every field is
// optional: the model may omit any of them, and a field that fails
// validation is dropped rather than kept half-populated.
type ChartAnalysis struct {
	Bias             string       `json:"bias,omitempty"`
	Confidence       int          `json:"confidence,omitempty"`
	Timeframe        string       `json:"timeframe,omitempty"`
	Asset            string       `json:"asset,omitempty"`
	CurrentPrice     string       `json:"current_price,omitempty"`
	ChartMinPrice    string       `json:"chart_min_price,omitempty"`
	ChartMaxPrice    string       `json:"chart_max_price,omitempty"`
	SupportLevels    []PriceLevel `json:"support_levels,omitempty"`
	ResistanceLevels []PriceLevel `json:"resistance_levels,omitempty"`
	Patterns         []Pattern    `json:"patterns,omitempty"`
	Trend            *Trend       `json:"trend,omitempty"`
	Entry            *EntryPlan   `json:"entry,omitempty"`
	StopLoss         *StopLoss    `json:"stop_loss,omitempty"`
	TakeProfits      []TakeProfit `json:"take_profits,omitempty"`
	RiskRewardRatio  string       `json:"risk_reward_ratio,omitempty"`
	PositionSizing   string       `json:"position_sizing,omitempty"`
	Risks            []string     `json:"risks,omitempty"`
	Reasoning        string       `json:"reasoning,omitempty"`
}

// IsEmpty reports whether no analysis field survived normalization.
func (a *ChartAnalysis) IsEmpty() bool {
	return a.Bias == "" && a.Confidence == 0 && a.Timeframe == "" && a.Asset == "" &&
		a.CurrentPrice == "" && a.ChartMinPrice == "" && a.ChartMaxPrice == "" &&
		len(a.SupportLevels) == 0 && len(a.ResistanceLevels) == 0 && len(a.Patterns) == 0 &&
		a.Trend == nil && a.Entry == nil && a.StopLoss == nil && len(a.TakeProfits) == 0 &&
		a.RiskRewardRatio == "" && a.PositionSizing == "" && len(a.Risks) == 0 && a.Reasoning == ""
}

// PriceLevel is one support or resistance level read off the chart.
// Price preserves the chart's own notation ("45.2K", "$1,250").
type PriceLevel struct {
	Price    string `json:"price"`
	Strength string `json:"strength,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Pattern is one recognized chart pattern.
type Pattern struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Reliability string `json:"reliability,omitempty"`
}

// Trend describes the prevailing price direction.
type Trend struct {
	Direction string `json:"direction"`
	Strength  string `json:"strength,omitempty"`
	Since     string `json:"since,omitempty"`
}

// EntryPlan is the suggested trade entry.
type EntryPlan struct {
	Price     string `json:"price"`
	Reasoning string `json:"reasoning,omitempty"`
}

// StopLoss is the suggested protective stop.
type StopLoss struct {
	Price       string `json:"price"`
	RiskPercent string `json:"risk_percent,omitempty"`
	Reasoning   string `json:"reasoning,omitempty"`
}

// TakeProfit is one suggested profit target.
type TakeProfit struct {
	Price      string `json:"price"`
	RiskReward string `json:"risk_reward,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// SkinDetails is the typed payload for generation mode, extracted
// best-effort from the model's descriptive text.
type SkinDetails struct {
	Name      string   `json:"name,omitempty"`
	Rarity    string   `json:"rarity,omitempty"`
	Set       string   `json:"set,omitempty"`
	Features  []string `json:"features,omitempty"`
	Colors    []string `json:"colors,omitempty"`
	BackBling string   `json:"back_bling,omitempty"`
	Pickaxe   string   `json:"pickaxe,omitempty"`
	Emote     string   `json:"emote,omitempty"`
}

// IsEmpty reports whether no skin field was extracted.
func (s *SkinDetails) IsEmpty() bool {
	return s.Name == "" && s.Rarity == "" && s.Set == "" && len(s.Features) == 0 &&
		len(s.Colors) == 0 && s.BackBling == "" && s.Pickaxe == "" && s.Emote == ""
}
