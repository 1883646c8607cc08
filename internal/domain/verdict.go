package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// SectorExposure describes the expected impact of the legislation on one sector.
type SectorExposure struct {
	Sector          string `json:"sector"`
	Rationale       string `json:"rationale"`
	Timeframe       string `json:"timeframe"`
	ConvictionScore int    `json:"conviction_score"`
}

// CompanyExposure describes the expected impact on one listed company.
type CompanyExposure struct {
	Company         string `json:"company"`
	Ticker          string `json:"ticker,omitempty"`
	Rationale       string `json:"rationale"`
	Timeframe       string `json:"timeframe"`
	ConvictionScore int    `json:"conviction_score"`
}

// TradeStrategy holds the suggested positioning derived from the verdict.
type TradeStrategy struct {
	Direction   string   `json:"direction"`
	Instruments []string `json:"instruments"`
	EntryWindow string   `json:"entry_window"`
	RiskFactors []string `json:"risk_factors"`
}

// QuantMetrics holds the quantitative sizing estimates attached to a verdict.
type QuantMetrics struct {
	AffectedMarketCapUSD float64 `json:"affected_market_cap_usd"`
	ExpectedMovePct      float64 `json:"expected_move_pct"`
	ProbabilityPct       float64 `json:"probability_pct"`
}

// Verdict is the structured investment signal produced per legislation.
// The pipeline only acts on ConfidenceScore and TimeHorizonMonths; the rest
// is pass-through payload persisted and rendered as-is.
type Verdict struct {
	LawTitle          string            `json:"law_title"`
	Summary           string            `json:"summary"`
	HiddenOpportunity string            `json:"hidden_opportunity"`
	AffectedSectors   []SectorExposure  `json:"affected_sectors"`
	CompanyExposures  []CompanyExposure `json:"company_exposures"`
	ConfidenceScore   int               `json:"confidence_score"`
	TimeHorizonMonths int               `json:"time_horizon_months"`
	TradeStrategy     TradeStrategy     `json:"trade_strategy"`
	Quantitative      QuantMetrics      `json:"quantitative_metrics"`
}

// Value implements the driver.Valuer interface for database serialization.
func (v Verdict) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (v *Verdict) Scan(value interface{}) error {
	if value == nil {
		*v = Verdict{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan Verdict")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, v)
}

// NoSignalMarker is the out-of-band marker a scout report carries when a
// chunk contains nothing trade-relevant. Reports equal to or containing it
// are dropped before synthesis.
const NoSignalMarker = "NO ALPHA - IGNORE"

// ScoutReport is the ephemeral per-chunk output of the map stage.
// It is never persisted; it lives only for the duration of one pipeline run.
type ScoutReport struct {
	ChunkIndex int
	ChunkText  string
	Findings   string
}

// HasSignal reports whether the scout found anything worth synthesizing.
// Substring match: models tend to wrap the marker in prose.
func (r ScoutReport) HasSignal() bool {
	return r.Findings != "" && !strings.Contains(r.Findings, NoSignalMarker)
}

// NoSignalVerdict returns the canonical zero-confidence verdict used when the
// scout stage surfaced nothing. All numeric fields are zero so the acceptance
// filter marks the job completed without persisting an analysis row.
func NoSignalVerdict(lawTitle string) Verdict {
	return Verdict{
		LawTitle:          lawTitle,
		Summary:           "No trade-relevant provisions identified.",
		HiddenOpportunity: "None identified.",
		AffectedSectors:   []SectorExposure{},
		CompanyExposures:  []CompanyExposure{},
		ConfidenceScore:   0,
		TimeHorizonMonths: 0,
		TradeStrategy: TradeStrategy{
			Direction:   "none",
			Instruments: []string{},
			RiskFactors: []string{},
		},
		Quantitative: QuantMetrics{},
	}
}
