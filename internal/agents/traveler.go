package agents

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/llm"
	"github.com/curbz/skywatch/internal/model"
	"github.com/curbz/skywatch/internal/query"
)

const travelerTokens = 400

// nearbyKeywords routes a question to the ops analyst for regional context.
// Matched case-insensitively as substrings.
var nearbyKeywords = []string{"other flights", "nearby", "around", "near"}

// TravelerSupport helps travelers track a single flight. Its own view is
// narrow, so when a question references surrounding traffic it borrows the
// ops analyst's region-wide alert summary before answering.
type TravelerSupport struct {
	api query.API
	gen llm.Generator
	ops AlertSummarizer
	log *logrus.Entry
}

func NewTravelerSupport(api query.API, gen llm.Generator, ops AlertSummarizer, log *logrus.Logger) *TravelerSupport {
	return &TravelerSupport{
		api: api,
		gen: gen,
		ops: ops,
		log: log.WithField("component", "traveler-support"),
	}
}

// TrackFlight looks up one flight and produces a traveler-facing summary.
// An unknown identifier yields a polite not-found message, never an error.
func (t *TravelerSupport) TrackFlight(ident string) *model.TravelerReport {
	t.log.Infof("tracking flight %s", ident)

	rec, err := t.api.FlightByIdentifier(ident)
	if err != nil {
		if query.IsNotFound(err) {
			return &model.TravelerReport{
				FlightID: ident,
				Summary:  fmt.Sprintf("Sorry, I couldn't find flight %s. Please check the callsign or ICAO24 code.", ident),
			}
		}
		t.log.Warnf("flight fetch failed: %v", err)
		return &model.TravelerReport{
			FlightID: ident,
			Summary:  fmt.Sprintf("Error fetching flight data: %v", err),
		}
	}

	prompt := fmt.Sprintf(`You are helping a traveler track their flight.

Flight data:
%s

Provide a friendly, clear update including:
1. Current location (latitude/longitude in plain terms)
2. Altitude and speed
3. Flight status (climbing/descending/cruising)
4. Any concerns or anomalies

Use plain language suitable for a non-technical traveler.
Keep response under 150 words.`, mustJSON(rec))

	summary, err := t.gen.Generate(prompt, travelerTokens)
	if err != nil {
		t.log.Warnf("generation failed: %v", err)
		summary = fmt.Sprintf("Error calling generation API: %v", err)
	}

	return &model.TravelerReport{
		FlightID: ident,
		Summary:  summary,
		RawData:  rec,
	}
}

// AnswerQuestion answers a free-text question about one flight. Questions
// referencing nearby traffic trigger exactly one cross-role call for the
// ops analyst's alert summary before the generation step.
func (t *TravelerSupport) AnswerQuestion(ident, question string) string {
	t.log.Infof("answering question about %s: %s", ident, question)

	rec, err := t.api.FlightByIdentifier(ident)
	if err != nil {
		if query.IsNotFound(err) {
			return fmt.Sprintf("I couldn't find flight %s to answer your question.", ident)
		}
		t.log.Warnf("flight fetch failed: %v", err)
		return fmt.Sprintf("Error fetching flight data: %v", err)
	}

	context := ""
	if mentionsNearbyTraffic(question) {
		t.log.Info("requesting regional context from ops analyst")
		context = fmt.Sprintf("\n\nRegional context from Ops Analyst:\n%s", t.ops.SummarizeAlerts())
	}

	prompt := fmt.Sprintf(`A traveler tracking flight %s asks: %q

Flight data:
%s
%s

Provide a clear, helpful answer based on the available data.
Keep response under 150 words.`, ident, question, mustJSON(rec), context)

	answer, err := t.gen.Generate(prompt, travelerTokens)
	if err != nil {
		t.log.Warnf("generation failed: %v", err)
		return fmt.Sprintf("Error calling generation API: %v", err)
	}
	return answer
}

// CheckIssues reports whether the flight is currently flagged. Pure
// post-processing of query output; no generation call.
func (t *TravelerSupport) CheckIssues(ident string) string {
	rec, err := t.api.FlightByIdentifier(ident)
	if err != nil {
		if query.IsNotFound(err) {
			return "Flight not found."
		}
		return fmt.Sprintf("Error fetching flight data: %v", err)
	}

	if rec.AnomalyLabel != nil && *rec.AnomalyLabel != "" {
		return fmt.Sprintf("Alert: %s. Please monitor your flight status closely.", *rec.AnomalyLabel)
	}
	return "Your flight appears to be operating normally."
}

func mentionsNearbyTraffic(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range nearbyKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
