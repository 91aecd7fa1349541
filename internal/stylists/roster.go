package stylists

import (
	"context"

	"github.com/glowdesk/salon-platform/internal/suggest"
)

// SuggestRoster adapts the stylist roster to the suggestion service. Only
// stylists with windows on the requested weekday appear; enumeration order
// follows List's name sort so the sweep fallback stays deterministic.
type SuggestRoster struct {
	repo *Repository
}

func NewSuggestRoster(repo *Repository) *SuggestRoster {
	return &SuggestRoster{repo: repo}
}

func (r *SuggestRoster) RosterForDay(ctx context.Context, weekday string) ([]suggest.StylistAvailability, error) {
	stylists, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var roster []suggest.StylistAvailability
	for _, st := range stylists {
		windows := st.Availability[weekday]
		if len(windows) == 0 {
			continue
		}
		roster = append(roster, suggest.StylistAvailability{
			StylistID:      st.ID,
			AvailableTimes: windows,
		})
	}
	return roster, nil
}

var _ suggest.StylistRoster = (*SuggestRoster)(nil)
