package twchart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/babyapi"
	"github.com/calvinmclean/twchart"

	"github.com/calvinmclean/rackbot/encoder"
)

// Probes name the encoder channels recorded with a run. Position is the channel number plus one
type Probes []twchart.Probe

// Client records autonomous runs as twchart sessions. Phases are stages and notable actions are events
type Client struct {
	client    *babyapi.Client[*session]
	sessionID string
	names     Probes
}

// session matches the stored shape, which nests the twchart.Session under its ID
type session struct {
	// include NilResource so we don't implement Render/Bind which are not needed
	*babyapi.NilResource
	ID         string          `json:"id"`
	Session    twchart.Session `json:"Session"`
	UploadedAt time.Time       `json:"UploadedAt,omitzero"`
}

func (s session) GetID() string {
	return s.ID
}

func NewClient(addr string) *Client {
	client := babyapi.NewClient[*session](addr, "/sessions")
	return &Client{client: client}
}

// CreateSession creates a session for a new run. Following calls are applied to this session
func (c *Client) CreateSession(ctx context.Context, runName string, probes Probes) (string, error) {
	resp, err := c.client.Post(ctx, &session{
		Session: twchart.Session{
			Name:   runName,
			Date:   time.Now(),
			Probes: []twchart.Probe(probes),
		},
	})
	if err != nil {
		return "", err
	}

	c.sessionID = resp.Data.GetID()
	c.names = probes

	return resp.Data.GetID(), nil
}

// SessionID returns the ID of the current session
func (c Client) SessionID() string {
	return c.sessionID
}

func (c Client) SetStartTime(ctx context.Context, startTime time.Time) error {
	_, err := c.client.Patch(ctx, c.sessionID, &session{Session: twchart.Session{
		StartTime: startTime,
	}})
	return err
}

func (c Client) AddEvent(ctx context.Context, note string, now time.Time) error {
	e := twchart.Event{Note: note, Time: now}

	url, _ := c.client.URL(c.sessionID)
	url += "/add-event"

	return c.makeRequest(ctx, url, e)
}

// AddPositions records encoder counts as an event. counts is indexed by encoder channel
func (c Client) AddPositions(ctx context.Context, counts []int32, now time.Time) error {
	return c.AddEvent(ctx, PositionsNote(c.names, counts), now)
}

func (c Client) AddStage(ctx context.Context, name string, now time.Time) error {
	s := twchart.Stage{Name: name, Start: now}

	url, _ := c.client.URL(c.sessionID)
	url += "/add-stage"

	return c.makeRequest(ctx, url, s)
}

func (c Client) Done(ctx context.Context) error {
	url, _ := c.client.URL(c.sessionID)
	url += "/done"

	return c.makeRequest(ctx, url, map[string]any{"time": time.Now()})
}

func (c Client) makeRequest(ctx context.Context, url string, body any) error {
	var bodyReader io.Reader = http.NoBody
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding body: %w", err)
		}

		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := c.client.MakeGenericRequest(req, nil)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	if resp.Response.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status code: %d, response: %v", resp.Response.StatusCode, resp.Body)
	}

	return nil
}

// PositionsNote formats counts as "Name=count" pairs using the session's channel names. Channels
// without a name use "encN" with the channel's position
func PositionsNote(names Probes, counts []int32) string {
	named := map[int]string{}
	for _, n := range names {
		named[int(n.Position)] = n.Name
	}

	parts := make([]string, 0, len(counts))
	for i, count := range counts {
		name, ok := named[i+1]
		if !ok {
			name = "enc" + strconv.Itoa(i+1)
		}
		parts = append(parts, name+"="+strconv.Itoa(int(count)))
	}
	return strings.Join(parts, " ")
}

// ParseProbes parses a string in the format "1=Name,2=Name,..." into twchart.Probes. Positions
// must refer to an encoder channel
func ParseProbes(input string) (Probes, error) {
	var probes Probes
	entries := strings.SplitSeq(input, ",")
	for entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid probe entry: %q", entry)
		}
		posStr := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])

		var pos twchart.ProbePosition
		_, err := fmt.Sscanf(posStr, "%d", &pos)
		if err != nil || pos <= twchart.ProbePositionNone || int(pos) > encoder.NumChannels {
			return nil, fmt.Errorf("invalid probe position: %q", posStr)
		}
		probes = append(probes, twchart.Probe{Name: name, Position: pos})
	}
	return probes, nil
}
