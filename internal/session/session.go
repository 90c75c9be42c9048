// Package session is the typed, session-scoped cache that hands recommend
// results from the profile form to the results page.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/pageza/smartplate/internal/types"
)

// Cache keys within one session
const (
	KeyTargets         = "targets"
	KeyRecommendations = "recommendations"
	keyResultID        = "result_id"
	keyCreatedAt       = "created_at"
)

var (
	// ErrNotFound means the session has no stored results
	ErrNotFound = errors.New("no results stored for session")
	// ErrMalformedPayload means stored results could not be decoded
	ErrMalformedPayload = errors.New("stored results are malformed")
)

// ResultsPayload is what the profile flow stores: the recommend response
// fields exactly as serialized by the backend.
type ResultsPayload struct {
	ResultID        string
	Targets         json.RawMessage
	Recommendations json.RawMessage
	CreatedAt       time.Time
}

// Results is a decoded payload
type Results struct {
	ResultID        string
	Targets         types.NutrientTargets
	Recommendations []types.RecommendationItem
	CreatedAt       time.Time
}

// Store reads and writes results per session id
type Store interface {
	SetResults(ctx context.Context, sid string, p *ResultsPayload) error
	GetPayload(ctx context.Context, sid string) (*ResultsPayload, error)
}

// GetResults loads and decodes the results for sid. Absent fields decode to
// empty targets and an empty list.
func GetResults(ctx context.Context, s Store, sid string) (*Results, error) {
	p, err := s.GetPayload(ctx, sid)
	if err != nil {
		return nil, err
	}
	return p.Decode()
}

// Decode parses the raw fields
func (p *ResultsPayload) Decode() (*Results, error) {
	r := &Results{ResultID: p.ResultID, CreatedAt: p.CreatedAt}
	if !isEmpty(p.Targets) {
		if err := json.Unmarshal(p.Targets, &r.Targets); err != nil {
			return nil, errors.Wrapf(ErrMalformedPayload, "%s: %v", KeyTargets, err)
		}
	}
	if !isEmpty(p.Recommendations) {
		if err := json.Unmarshal(p.Recommendations, &r.Recommendations); err != nil {
			return nil, errors.Wrapf(ErrMalformedPayload, "%s: %v", KeyRecommendations, err)
		}
	}
	if r.Recommendations == nil {
		r.Recommendations = []types.RecommendationItem{}
	}
	return r, nil
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
