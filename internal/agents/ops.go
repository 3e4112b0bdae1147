// Package agents holds the two analyst roles. Both are stateless: every
// call is a fresh fetch-classify-summarize cycle with no session memory,
// terminating in a single delegation to the language-generation boundary.
package agents

import (
	"encoding/json"
	"fmt"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/llm"
	"github.com/curbz/skywatch/internal/model"
	"github.com/curbz/skywatch/internal/query"
)

// DefaultFlightDetailLimit caps how many full flight records are embedded
// in the region-analysis prompt so prompt size stays bounded as regions
// grow. The anomaly list is always included in full.
const DefaultFlightDetailLimit = 10

// NoActiveAlertsMessage is returned without a generation call when there is
// nothing to summarize. Generating from an empty list invites invented
// content.
const NoActiveAlertsMessage = "No active alerts at this time."

const (
	opsAnalysisTokens  = 500
	alertSummaryTokens = 400
)

// AlertSummarizer is the capability the traveler role borrows for regional
// context. OpsAnalyst satisfies it.
type AlertSummarizer interface {
	SummarizeAlerts() string
}

// OpsAnalyst monitors regional airspace and produces operational summaries.
type OpsAnalyst struct {
	api         query.API
	gen         llm.Generator
	detailLimit int
	log         *logrus.Entry
}

func NewOpsAnalyst(api query.API, gen llm.Generator, detailLimit int, log *logrus.Logger) *OpsAnalyst {
	if detailLimit <= 0 {
		detailLimit = DefaultFlightDetailLimit
	}
	return &OpsAnalyst{
		api:         api,
		gen:         gen,
		detailLimit: detailLimit,
		log:         log.WithField("component", "ops-analyst"),
	}
}

// AnalyzeRegion produces the operational report for one region. All failure
// modes land in the report's analysis field as human-readable text; the
// call itself never fails.
func (a *OpsAnalyst) AnalyzeRegion(region string) *model.OperationalReport {
	a.log.Infof("analyzing region %s", region)

	snap, err := a.api.RegionSnapshot(region)
	if err != nil {
		a.log.Warnf("region fetch failed: %v", err)
		return &model.OperationalReport{
			Region:   region,
			Analysis: fmt.Sprintf("Error fetching region data: %v", err),
			RawData:  model.ReportRawData{AllFlights: []model.FlightRecord{}, Alerts: []model.FlightRecord{}},
		}
	}

	anomalous := make([]model.FlightRecord, 0)
	for _, fl := range snap.Flights {
		if fl.AnomalyLabel != nil && *fl.AnomalyLabel != "" {
			anomalous = append(anomalous, fl)
		}
	}

	analysis, err := a.gen.Generate(a.regionPrompt(region, snap, anomalous), opsAnalysisTokens)
	if err != nil {
		a.log.Warnf("generation failed: %v", err)
		analysis = fmt.Sprintf("Error calling generation API: %v", err)
	}

	// Hand consumers their own copy so re-rendering downstream cannot
	// reach back into anything this role still references.
	raw := deepcopy.Copy(model.ReportRawData{
		AllFlights: snap.Flights,
		Alerts:     anomalous,
	}).(model.ReportRawData)

	return &model.OperationalReport{
		Region:           region,
		Timestamp:        snap.Timestamp,
		TotalFlights:     len(snap.Flights),
		AnomalousFlights: len(anomalous),
		Analysis:         analysis,
		RawData:          raw,
	}
}

func (a *OpsAnalyst) regionPrompt(region string, snap *model.RegionSnapshot, anomalous []model.FlightRecord) string {
	detail := snap.Flights
	if len(detail) > a.detailLimit {
		detail = detail[:a.detailLimit]
	}

	return fmt.Sprintf(`You are analyzing airspace operations for %s.

Data timestamp: %d
Total flights: %d
Anomalous flights: %d

Flight details:
%s

Anomalous flights:
%s

Provide a concise operational summary including:
1. Overall airspace status
2. Critical anomalies requiring attention
3. Recommended actions

Keep the response under 200 words.`,
		region, snap.Timestamp, len(snap.Flights), len(anomalous),
		mustJSON(detail), mustJSON(anomalous))
}

// SummarizeAlerts reviews the active alert list and returns a short text
// summary. Zero alerts short-circuits without a generation call.
func (a *OpsAnalyst) SummarizeAlerts() string {
	alerts, err := a.api.ActiveAlerts()
	if err != nil {
		a.log.Warnf("alert fetch failed: %v", err)
		return fmt.Sprintf("Error fetching alerts: %v", err)
	}

	if len(alerts) == 0 {
		return NoActiveAlertsMessage
	}

	prompt := fmt.Sprintf(`You are reviewing active flight alerts:

%s

Provide a brief summary of the most critical issues and any patterns you observe.
Keep response under 150 words.`, mustJSON(alerts))

	summary, err := a.gen.Generate(prompt, alertSummaryTokens)
	if err != nil {
		a.log.Warnf("generation failed: %v", err)
		return fmt.Sprintf("Error calling generation API: %v", err)
	}
	return summary
}

func mustJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// only reachable for unmarshalable types, which the model types
		// are not
		return fmt.Sprintf("%+v", v)
	}
	return string(out)
}
