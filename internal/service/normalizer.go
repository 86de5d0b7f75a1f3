package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/koji/nanobanana/internal/domain"
)

var skinNameRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:skin name|called|named|introducing)[:\s]+["']?([^"'` + "\n" + `,]+)["']?`),
	regexp.MustCompile(`(?i)["']([^"']+)["'](?:\s+skin|\s+outfit)`),
}

// skinRarities are the tiers scanned for in generation output, checked in
// order so "legendary" wins over a stray "rare" inside another word.
var skinRarities = []struct{ match, display string }{
	{"legendary", "Legendary"},
	{"epic", "Epic"},
	{"rare", "Rare"},
	{"uncommon", "Uncommon"},
	{"common", "Common"},
	{"mythic", "Mythic"},
	{"icon series", "Icon Series"},
	{"marvel series", "Marvel Series"},
	{"dc series", "DC Series"},
	{"gaming legends", "Gaming Legends"},
	{"star wars series", "Star Wars Series"},
}

// Normalize turns raw model output into the typed result for the mode.
// It never fails: output that cannot be mapped to the structured payload
// falls back to Parsed=false with the original text preserved verbatim.
func Normalize(mode domain.Mode, raw *domain.RawOutput) *domain.Result {
	result := &domain.Result{
		Mode:    mode,
		RawText: raw.Text,
		Images:  raw.Images,
	}

	switch mode {
	case domain.ModeAnalysis:
		if analysis := normalizeAnalysis(raw.Text); analysis != nil {
			result.Parsed = true
			result.Analysis = analysis
		}
	case domain.ModeGeneration:
		skin := extractSkinDetails(raw.Text)
		if len(raw.Images) > 0 || !skin.IsEmpty() {
			result.Parsed = true
			if !skin.IsEmpty() {
				result.Skin = skin
			}
		}
	}
	return result
}

// normalizeAnalysis extracts and validates the analysis document from the
// model text. Returns nil when no recognizable document is present; a
// document that contributes no valid field also counts as unrecognizable.
func normalizeAnalysis(text string) *domain.ChartAnalysis {
	doc, ok := extractJSON(text)
	if !ok {
		return nil
	}

	analysis := &domain.ChartAnalysis{}

	if v, ok := jsonString(doc["bias"]); ok {
		if v = strings.ToLower(strings.TrimSpace(v)); v == "bullish" || v == "bearish" || v == "neutral" {
			analysis.Bias = v
		}
	}
	if v, ok := jsonInt(doc["confidence"]); ok && v >= 1 && v <= 10 {
		analysis.Confidence = v
	}
	if v, ok := jsonString(doc["timeframe"]); ok {
		analysis.Timeframe = strings.TrimSpace(v)
	}
	if v, ok := jsonString(doc["asset"]); ok {
		analysis.Asset = strings.TrimSpace(v)
	}
	analysis.CurrentPrice = priceField(doc["current_price"])
	analysis.ChartMinPrice = priceField(doc["chart_min_price"])
	analysis.ChartMaxPrice = priceField(doc["chart_max_price"])
	analysis.SupportLevels = priceLevels(doc["support_levels"])
	analysis.ResistanceLevels = priceLevels(doc["resistance_levels"])
	analysis.Patterns = patterns(doc["patterns"])
	analysis.Trend = trend(doc["trend"])
	analysis.Entry = entryPlan(doc["entry"])
	analysis.StopLoss = stopLoss(doc["stop_loss"])
	analysis.TakeProfits = takeProfits(doc["take_profits"])
	if v, ok := jsonString(doc["risk_reward_ratio"]); ok {
		analysis.RiskRewardRatio = strings.TrimSpace(v)
	}
	if v, ok := jsonString(doc["position_sizing"]); ok {
		analysis.PositionSizing = strings.TrimSpace(v)
	}
	analysis.Risks = stringList(doc["risks"])
	if v, ok := jsonString(doc["reasoning"]); ok {
		analysis.Reasoning = strings.TrimSpace(v)
	}

	if analysis.IsEmpty() {
		return nil
	}
	return analysis
}

// extractJSON finds the JSON document in model text. Markdown code fences
// are irrelevant to the scan: the first '{' starts the candidate and brace
// counting finds its matching close. The candidate must actually decode;
// prose that merely contains braces does not count.
func extractJSON(text string) (map[string]json.RawMessage, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return nil, false
	}

	braceCount := 0
	end := -1
findJSON:
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				end = i + 1
				break findJSON
			}
		}
	}
	if end == -1 {
		return nil, false
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end]), &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// jsonString reads a field as a string, tolerating bare numbers since the
// model sometimes emits prices and ratios without quotes.
func jsonString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// jsonInt reads a field as an integer, tolerating floats and numeric strings.
func jsonInt(raw json.RawMessage) (int, bool) {
	if raw == nil {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// priceField validates a scalar price field; unparseable labels are dropped.
func priceField(raw json.RawMessage) string {
	v, ok := jsonString(raw)
	if !ok {
		return ""
	}
	v = strings.TrimSpace(v)
	if _, ok := domain.ParsePrice(v); !ok {
		return ""
	}
	return v
}

func validStrength(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "strong" || s == "moderate" || s == "weak" {
		return s
	}
	return ""
}

// priceLevels decodes a support/resistance list. An entry whose price does
// not parse is dropped whole; an entry with an unrecognized strength keeps
// the level and loses the strength.
func priceLevels(raw json.RawMessage) []domain.PriceLevel {
	if raw == nil {
		return nil
	}
	var entries []struct {
		Price    json.RawMessage `json:"price"`
		Strength json.RawMessage `json:"strength"`
		Reason   json.RawMessage `json:"reason"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	var levels []domain.PriceLevel
	for _, e := range entries {
		price, ok := jsonString(e.Price)
		if !ok {
			continue
		}
		price = strings.TrimSpace(price)
		if _, ok := domain.ParsePrice(price); !ok {
			continue
		}
		level := domain.PriceLevel{Price: price}
		if s, ok := jsonString(e.Strength); ok {
			level.Strength = validStrength(s)
		}
		if r, ok := jsonString(e.Reason); ok {
			level.Reason = strings.TrimSpace(r)
		}
		levels = append(levels, level)
	}
	return levels
}

func patterns(raw json.RawMessage) []domain.Pattern {
	if raw == nil {
		return nil
	}
	var entries []struct {
		Name        json.RawMessage `json:"name"`
		Type        json.RawMessage `json:"type"`
		Reliability json.RawMessage `json:"reliability"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	var out []domain.Pattern
	for _, e := range entries {
		name, ok := jsonString(e.Name)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		p := domain.Pattern{Name: strings.TrimSpace(name)}
		if t, ok := jsonString(e.Type); ok {
			if t = strings.ToLower(strings.TrimSpace(t)); t == "reversal" || t == "continuation" {
				p.Type = t
			}
		}
		if r, ok := jsonString(e.Reliability); ok {
			if r = strings.ToLower(strings.TrimSpace(r)); r == "high" || r == "medium" || r == "low" {
				p.Reliability = r
			}
		}
		out = append(out, p)
	}
	return out
}

func trend(raw json.RawMessage) *domain.Trend {
	if raw == nil {
		return nil
	}
	var entry struct {
		Direction json.RawMessage `json:"direction"`
		Strength  json.RawMessage `json:"strength"`
		Since     json.RawMessage `json:"since"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil
	}

	direction, ok := jsonString(entry.Direction)
	if !ok {
		return nil
	}
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != "up" && direction != "down" && direction != "sideways" {
		return nil
	}
	t := &domain.Trend{Direction: direction}
	if s, ok := jsonString(entry.Strength); ok {
		t.Strength = validStrength(s)
	}
	if s, ok := jsonString(entry.Since); ok {
		t.Since = strings.TrimSpace(s)
	}
	return t
}

func entryPlan(raw json.RawMessage) *domain.EntryPlan {
	if raw == nil {
		return nil
	}
	var entry struct {
		Price     json.RawMessage `json:"price"`
		Reasoning json.RawMessage `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil
	}

	price := priceField(entry.Price)
	if price == "" {
		return nil
	}
	plan := &domain.EntryPlan{Price: price}
	if r, ok := jsonString(entry.Reasoning); ok {
		plan.Reasoning = strings.TrimSpace(r)
	}
	return plan
}

func stopLoss(raw json.RawMessage) *domain.StopLoss {
	if raw == nil {
		return nil
	}
	var entry struct {
		Price       json.RawMessage `json:"price"`
		RiskPercent json.RawMessage `json:"risk_percent"`
		Reasoning   json.RawMessage `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil
	}

	price := priceField(entry.Price)
	if price == "" {
		return nil
	}
	sl := &domain.StopLoss{Price: price}
	if v, ok := jsonString(entry.RiskPercent); ok {
		sl.RiskPercent = strings.TrimSpace(v)
	}
	if r, ok := jsonString(entry.Reasoning); ok {
		sl.Reasoning = strings.TrimSpace(r)
	}
	return sl
}

func takeProfits(raw json.RawMessage) []domain.TakeProfit {
	if raw == nil {
		return nil
	}
	var entries []struct {
		Price      json.RawMessage `json:"price"`
		RiskReward json.RawMessage `json:"risk_reward"`
		Reasoning  json.RawMessage `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	var out []domain.TakeProfit
	for _, e := range entries {
		price := priceField(e.Price)
		if price == "" {
			continue
		}
		tp := domain.TakeProfit{Price: price}
		if v, ok := jsonString(e.RiskReward); ok {
			tp.RiskReward = strings.TrimSpace(v)
		}
		if r, ok := jsonString(e.Reasoning); ok {
			tp.Reasoning = strings.TrimSpace(r)
		}
		out = append(out, tp)
	}
	return out
}

// stringList decodes a list of prose strings; non-string entries are dropped.
func stringList(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		var s string
		if err := json.Unmarshal(e, &s); err == nil && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// extractSkinDetails pulls a name and rarity tier out of the generation
// description. Best effort: text that names neither still produces a valid
// empty SkinDetails.
func extractSkinDetails(description string) *domain.SkinDetails {
	details := &domain.SkinDetails{}
	if description == "" {
		return details
	}

	for _, re := range skinNameRes {
		if m := re.FindStringSubmatch(description); m != nil {
			details.Name = strings.TrimSpace(m[1])
			break
		}
	}

	lower := strings.ToLower(description)
	for _, r := range skinRarities {
		if strings.Contains(lower, r.match) {
			details.Rarity = r.display
			break
		}
	}
	return details
}
