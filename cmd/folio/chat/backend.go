package chat

import (
	"context"
	"errors"

	"foliochat/internal/api"
	"foliochat/internal/session"
	"foliochat/internal/usage"
)

// portfolioBackend adapts the REST client to the session engine's
// backend interface and records a usage outcome per question.
type portfolioBackend struct {
	client      *api.Client
	visitorName string
	tracker     *usage.Tracker
}

func newPortfolioBackend(client *api.Client, visitorName string, tracker *usage.Tracker) *portfolioBackend {
	return &portfolioBackend{
		client:      client,
		visitorName: visitorName,
		tracker:     tracker,
	}
}

// LookupPortfolio resolves the portfolio's public profile.
func (b *portfolioBackend) LookupPortfolio(ctx context.Context, customURL string) (*session.PortfolioInfo, error) {
	pub, err := b.client.LookupPortfolio(ctx, customURL)
	if err != nil {
		return nil, err
	}
	return &session.PortfolioInfo{
		Name:      pub.Name,
		CustomURL: pub.CustomURL,
		OwnerName: pub.OwnerName,
		Active:    pub.IsActive,
	}, nil
}

// AskQuestion relays one visitor question and classifies the result
// for usage tracking before handing the error back to the engine.
func (b *portfolioBackend) AskQuestion(ctx context.Context, customURL, question string) (string, error) {
	answer, err := b.client.AskQuestion(ctx, customURL, question, b.visitorName)
	b.trackOutcome(ctx, customURL, err)
	return answer, err
}

func (b *portfolioBackend) trackOutcome(ctx context.Context, customURL string, err error) {
	if b.tracker == nil {
		return
	}
	outcome := usage.OutcomeAnswered
	if err != nil {
		outcome = usage.OutcomeFailed
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.QuotaExceeded() {
			outcome = usage.OutcomeQuotaDenied
		}
	}
	b.tracker.Track(ctx, customURL, outcome)
}
