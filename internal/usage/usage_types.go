package usage

// Outcome classifies how a submitted question settled.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeQuotaDenied Outcome = "quota_denied"
	OutcomeFailed      Outcome = "failed"
)

// UsageData represents the root structure stored in persistence.
type UsageData struct {
	Version   string          `json:"version"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// AggregatedStats holds counters broken down by various dimensions.
type AggregatedStats struct {
	Total       TurnCounts            `json:"total"`
	ByPortfolio map[string]TurnCounts `json:"by_portfolio"`
	BySession   map[string]TurnCounts `json:"by_session"`
	ByDay       map[string]TurnCounts `json:"by_day"` // key is 2006-01-02
}

// TurnCounts holds question/outcome sums for one dimension.
type TurnCounts struct {
	Questions   int64 `json:"questions"`
	Answered    int64 `json:"answered"`
	QuotaDenied int64 `json:"quota_denied"`
	Failed      int64 `json:"failed"`
}

func (tc *TurnCounts) Add(outcome Outcome) {
	tc.Questions++
	switch outcome {
	case OutcomeAnswered:
		tc.Answered++
	case OutcomeQuotaDenied:
		tc.QuotaDenied++
	case OutcomeFailed:
		tc.Failed++
	}
}
