package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codetrek/backend/internal/config"
	"github.com/codetrek/backend/pkg/logger"
)

var (
	ErrJudgeUnavailable = errors.New("judge service unavailable")
	ErrJudgeTimeout     = errors.New("judge service timed out")
)

// Judge service status codes. Ids at or below statusQueuedCeiling mean the
// case is still queued or running.
const (
	statusQueuedCeiling = 2
	StatusIDAccepted    = 3
	StatusIDFault       = 4 // runtime or compile fault
)

// JudgeCase is one test case of a batch sent to the judge service
type JudgeCase struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// Verdict is the judge's terminal result for one test case
type Verdict struct {
	Token          string
	StatusID       int
	Time           float64 // seconds
	Memory         int     // KB
	Stdout         string
	Stderr         string
	CompileOutput  string
	Stdin          string
	ExpectedOutput string
}

func (v Verdict) Accepted() bool {
	return v.StatusID == StatusIDAccepted
}

func (v Verdict) Faulted() bool {
	return v.StatusID == StatusIDFault
}

func (v Verdict) Terminal() bool {
	return v.StatusID > statusQueuedCeiling
}

// JudgeClient drives the external judge service: one batched dispatch per
// submission, then polling until every case is terminal.
type JudgeClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client

	PollInterval    time.Duration
	PerCaseWait     time.Duration // poll deadline contribution per test case
	MinWait         time.Duration // poll deadline floor
	DispatchRetries int
}

// Judge is the process-wide client, set up from config at boot.
// Tests point it at an httptest server instead.
var Judge *JudgeClient

func InitJudge() {
	Judge = &JudgeClient{
		BaseURL:         strings.TrimRight(config.AppConfig.JudgeURL, "/"),
		APIKey:          config.AppConfig.JudgeAPIKey,
		HTTPClient:      &http.Client{Timeout: 15 * time.Second},
		PollInterval:    time.Second,
		PerCaseWait:     10 * time.Second,
		MinWait:         30 * time.Second,
		DispatchRetries: 3,
	}
}

type batchSubmitRequest struct {
	Submissions []JudgeCase `json:"submissions"`
}

type batchToken struct {
	Token string `json:"token"`
}

// judgeTime tolerates the judge reporting elapsed time as a quoted decimal
// string, a bare number, or null.
type judgeTime float64

func (t *judgeTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*t = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*t = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid time value %q: %w", s, err)
	}
	*t = judgeTime(f)
	return nil
}

type batchStatusResponse struct {
	Submissions []caseStatus `json:"submissions"`
}

type caseStatus struct {
	Token          string    `json:"token"`
	StatusID       int       `json:"status_id"`
	Time           judgeTime `json:"time"`
	Memory         int       `json:"memory"`
	Stdout         string    `json:"stdout"`
	Stderr         string    `json:"stderr"`
	CompileOutput  string    `json:"compile_output"`
	Stdin          string    `json:"stdin"`
	ExpectedOutput string    `json:"expected_output"`
}

// Dispatch submits the whole batch in one call and returns the per-case
// tokens. The batch fails as a unit: any rejection by the judge surfaces as
// ErrJudgeUnavailable with nothing dispatched. Transport-level failures are
// retried with doubling backoff; HTTP-level rejections are not.
func (jc *JudgeClient) Dispatch(ctx context.Context, cases []JudgeCase) ([]string, error) {
	body, err := json.Marshal(batchSubmitRequest{Submissions: cases})
	if err != nil {
		return nil, fmt.Errorf("marshal judge batch: %w", err)
	}

	url := jc.BaseURL + "/submissions/batch?base64_encoded=false"

	var resp *http.Response
	backoff := 500 * time.Millisecond
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if jc.APIKey != "" {
			req.Header.Set("X-Auth-Token", jc.APIKey)
		}

		resp, err = jc.HTTPClient.Do(req)
		if err == nil {
			break
		}
		if attempt >= jc.DispatchRetries || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("Judge dispatch failed, retrying")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: batch rejected with status %d: %s", ErrJudgeUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var tokens []batchToken
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("%w: decoding batch response: %v", ErrJudgeUnavailable, err)
	}
	if len(tokens) != len(cases) {
		return nil, fmt.Errorf("%w: expected %d tokens, got %d", ErrJudgeUnavailable, len(cases), len(tokens))
	}

	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Token
	}
	return out, nil
}

// Await polls the batch-status endpoint until every case reports a terminal
// status, returning verdicts in dispatch order. It never returns partial
// results. The total wait is bounded by case count; on expiry the caller
// gets ErrJudgeTimeout.
func (jc *JudgeClient) Await(ctx context.Context, tokens []string) ([]Verdict, error) {
	deadline := time.Duration(len(tokens)) * jc.PerCaseWait
	if deadline < jc.MinWait {
		deadline = jc.MinWait
	}
	expiry := time.Now().Add(deadline)

	url := jc.BaseURL + "/submissions/batch?tokens=" + strings.Join(tokens, ",") + "&base64_encoded=false"

	for {
		statuses, err := jc.poll(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrJudgeTimeout, ctx.Err())
			}
			return nil, err
		}
		if len(statuses) != len(tokens) {
			return nil, fmt.Errorf("%w: expected %d results, got %d", ErrJudgeUnavailable, len(tokens), len(statuses))
		}

		done := true
		for _, s := range statuses {
			if s.StatusID <= statusQueuedCeiling {
				done = false
				break
			}
		}
		if done {
			// Return verdicts in dispatch order regardless of how the
			// judge ordered its response.
			index := make(map[string]int, len(tokens))
			for i, tok := range tokens {
				index[tok] = i
			}
			verdicts := make([]Verdict, len(statuses))
			for i, s := range statuses {
				pos, ok := index[s.Token]
				if !ok {
					pos = i
				}
				verdicts[pos] = Verdict{
					Token:          s.Token,
					StatusID:       s.StatusID,
					Time:           float64(s.Time),
					Memory:         s.Memory,
					Stdout:         s.Stdout,
					Stderr:         s.Stderr,
					CompileOutput:  s.CompileOutput,
					Stdin:          s.Stdin,
					ExpectedOutput: s.ExpectedOutput,
				}
			}
			return verdicts, nil
		}

		if time.Now().After(expiry) {
			return nil, fmt.Errorf("%w: %d cases still running after %s", ErrJudgeTimeout, len(tokens), deadline)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrJudgeTimeout, ctx.Err())
		case <-time.After(jc.PollInterval):
		}
	}
}

func (jc *JudgeClient) poll(ctx context.Context, url string) ([]caseStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	if jc.APIKey != "" {
		req.Header.Set("X-Auth-Token", jc.APIKey)
	}

	resp, err := jc.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status poll returned %d", ErrJudgeUnavailable, resp.StatusCode)
	}

	var out batchStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding status response: %v", ErrJudgeUnavailable, err)
	}
	return out.Submissions, nil
}
