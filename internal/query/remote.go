package query

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/model"
)

// DefaultRemoteTimeout bounds each fetch to the remote query service. A
// stuck upstream must surface as a TransportError, not an unbounded hang.
const DefaultRemoteTimeout = 5 * time.Second

// RemoteService implements API against a query service running in another
// process, speaking the same routes the front door exposes.
type RemoteService struct {
	baseURL string
	region  string
	client  *http.Client
	log     *logrus.Entry
}

func NewRemoteService(baseURL, region string, log *logrus.Logger) *RemoteService {
	return &RemoteService{
		baseURL: baseURL,
		region:  region,
		client:  &http.Client{Timeout: DefaultRemoteTimeout},
		log:     log.WithField("component", "query-remote"),
	}
}

func (r *RemoteService) RegionSnapshot(region string) (*model.RegionSnapshot, error) {
	if region == "" {
		region = r.region
	}
	var snap model.RegionSnapshot
	if err := r.getJSON("/flights/list_region_snapshot/"+url.PathEscape(region), "list_region_snapshot", &snap); err != nil {
		return nil, err
	}
	if snap.Flights == nil {
		snap.Flights = []model.FlightRecord{}
	}
	return &snap, nil
}

func (r *RemoteService) FlightByIdentifier(ident string) (*model.FlightRecord, error) {
	var rec model.FlightRecord
	err := r.getJSON("/flights/get_by_callsign/"+url.PathEscape(ident), "get_by_callsign", &rec)
	if err != nil {
		if se, isStatus := err.(*statusError); isStatus && se.code == http.StatusNotFound {
			return nil, &NotFoundError{Ident: ident}
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RemoteService) ActiveAlerts() ([]model.AlertRecord, error) {
	var resp struct {
		Alerts []model.AlertRecord `json:"alerts"`
	}
	if err := r.getJSON("/alerts/list_active", "list_active", &resp); err != nil {
		return nil, err
	}
	if resp.Alerts == nil {
		resp.Alerts = []model.AlertRecord{}
	}
	return resp.Alerts, nil
}

// statusError carries a non-OK status through getJSON so FlightByIdentifier
// can tell a 404 apart from transport trouble.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

func (r *RemoteService) getJSON(path, op string, dest any) error {
	req, err := http.NewRequest(http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warnf("%s transport failure: %v", op, err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &TransportError{Op: op, Err: &statusError{code: resp.StatusCode, body: string(body)}}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
