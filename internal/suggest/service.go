package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/internal/observability/metrics"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

var tracer = otel.Tracer("salon-platform/suggest")

// MaxSuggestions caps the number of candidate slots a response may carry.
const MaxSuggestions = 5

// Request asks for candidate slots for one service on one date.
type Request struct {
	Service              string                `json:"service"`
	Duration             int                   `json:"duration"` // minutes
	PreferredDate        string                `json:"preferredDate"`
	StylistAvailability  []StylistAvailability `json:"stylistAvailability"`
	ExistingAppointments []ExistingAppointment `json:"existingAppointments"`
}

// StylistAvailability carries one stylist's windows for the requested date.
type StylistAvailability struct {
	StylistID      string             `json:"stylistId"`
	AvailableTimes []booking.Interval `json:"availableTimes"`
}

// ExistingAppointment is a booked (non-cancelled) interval on the date.
type ExistingAppointment struct {
	StylistID string `json:"stylistId"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// Slot is one proposed (stylist, start, end) candidate.
type Slot struct {
	StylistID string `json:"stylistId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Response holds zero to five candidates. An empty list is a valid outcome,
// distinct from an error.
type Response struct {
	Suggestions []Slot `json:"suggestions"`
}

// Source labels where a response's candidates came from.
const (
	SourceLLM   = "llm"
	SourceSweep = "sweep"
)

// Service produces slot suggestions. When an LLM client is configured its
// candidates are re-checked against the slot predicate and anything invalid
// is dropped; on LLM failure the deterministic sweep takes over, so callers
// always get a well-formed answer or a storage-level error, never a
// hallucinated slot.
type Service struct {
	llm     LLMClient
	modelID string
	timeout time.Duration
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewService builds a suggestion service. llm may be nil, in which case every
// request is answered by the deterministic sweep.
func NewService(llm LLMClient, modelID string, timeout time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		llm:     llm,
		modelID: modelID,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Validate checks the request's structural contract.
func (r *Request) Validate() error {
	if r.Duration <= 0 {
		return fmt.Errorf("suggest: duration must be positive, got %d", r.Duration)
	}
	if _, err := time.Parse("2006-01-02", r.PreferredDate); err != nil {
		return booking.ErrBadDate
	}
	return nil
}

// Suggest returns up to MaxSuggestions candidate slots. The second return
// value reports whether the candidates came from the LLM or the sweep.
func (s *Service) Suggest(ctx context.Context, req Request) (Response, string, error) {
	ctx, span := tracer.Start(ctx, "suggest.Suggest")
	defer span.End()

	if err := req.Validate(); err != nil {
		return Response{}, "", err
	}

	started := time.Now()
	if s.llm != nil {
		slots, err := s.suggestLLM(ctx, req)
		if err == nil {
			span.SetAttributes(
				attribute.String("suggest.source", SourceLLM),
				attribute.Int("suggest.count", len(slots)),
			)
			s.metrics.ObserveSuggestLatency(SourceLLM, time.Since(started).Seconds())
			s.metrics.ObserveSuggestResults(SourceLLM, len(slots))
			return Response{Suggestions: slots}, SourceLLM, nil
		}
		s.logger.Warn("LLM suggestion failed, using deterministic sweep", "error", err)
	}

	slots, err := s.sweep(req)
	if err != nil {
		return Response{}, "", err
	}
	span.SetAttributes(
		attribute.String("suggest.source", SourceSweep),
		attribute.Int("suggest.count", len(slots)),
	)
	s.metrics.ObserveSuggestLatency(SourceSweep, time.Since(started).Seconds())
	s.metrics.ObserveSuggestResults(SourceSweep, len(slots))
	return Response{Suggestions: slots}, SourceSweep, nil
}

const systemPrompt = `You are a salon scheduling assistant. Given a service duration,
per-stylist availability windows and already-booked intervals, propose up to
five (stylist, start) pairs that fit entirely inside an availability window
and overlap no booked interval. Prefer spreading candidates across stylists
and times of day. Respond with JSON only, shaped exactly like
{"suggestions":[{"stylistId":"...","startTime":"HH:mm","endTime":"HH:mm"}]}
with no prose and no code fences.`

func (s *Service) suggestLLM(ctx context.Context, req Request) ([]Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("suggest: marshal request: %w", err)
	}

	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.modelID,
		System:      []string{systemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: string(payload)}},
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseLLMResponse(resp.Text)
	if err != nil {
		return nil, err
	}
	return s.filterValid(req, parsed), nil
}

// parseLLMResponse tolerates markdown code fences around the JSON body, a
// habit generative models refuse to drop.
func parseLLMResponse(text string) ([]Slot, error) {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var resp Response
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &resp); err != nil {
		return nil, fmt.Errorf("suggest: unparseable LLM response: %w", err)
	}
	return resp.Suggestions, nil
}

// filterValid drops every LLM candidate that fails the slot predicate for its
// stylist. The model proposes; the predicate disposes.
func (s *Service) filterValid(req Request, candidates []Slot) []Slot {
	windows := make(map[string][]booking.Interval, len(req.StylistAvailability))
	for _, sa := range req.StylistAvailability {
		windows[sa.StylistID] = sa.AvailableTimes
	}
	busy := busyByStylist(req)

	seen := make(map[string]struct{}, len(candidates))
	out := make([]Slot, 0, MaxSuggestions)
	for _, cand := range candidates {
		if len(out) >= MaxSuggestions {
			break
		}
		w, ok := windows[cand.StylistID]
		if !ok {
			continue
		}
		startMin, err := booking.ParseClock(cand.StartTime)
		if err != nil {
			continue
		}
		fits, err := booking.SlotFits(w, busy[cand.StylistID], startMin, req.Duration)
		if err != nil || !fits {
			continue
		}
		key := cand.StylistID + "@" + cand.StartTime
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Slot{
			StylistID: cand.StylistID,
			StartTime: booking.FormatClock(startMin),
			EndTime:   booking.FormatClock(startMin + req.Duration),
		})
	}
	return out
}

// sweep is the deterministic local search: stylists in request order, windows
// chronologically, first fit. Repeated identical requests return identical
// ordering.
func (s *Service) sweep(req Request) ([]Slot, error) {
	busy := busyByStylist(req)

	out := make([]Slot, 0, MaxSuggestions)
	for _, sa := range req.StylistAvailability {
		if len(out) >= MaxSuggestions {
			break
		}
		starts, err := booking.SweepCandidates(sa.AvailableTimes, busy[sa.StylistID], req.Duration, MaxSuggestions-len(out))
		if err != nil {
			return nil, err
		}
		for _, start := range starts {
			out = append(out, Slot{
				StylistID: sa.StylistID,
				StartTime: booking.FormatClock(start),
				EndTime:   booking.FormatClock(start + req.Duration),
			})
		}
	}
	return out, nil
}

func busyByStylist(req Request) map[string][]booking.Interval {
	busy := make(map[string][]booking.Interval, len(req.ExistingAppointments))
	for _, appt := range req.ExistingAppointments {
		busy[appt.StylistID] = append(busy[appt.StylistID], booking.Interval{Start: appt.Start, End: appt.End})
	}
	return busy
}
