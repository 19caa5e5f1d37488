package translator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
)

// ============================================================================
// FAKE COMPLETERS
// ============================================================================

type stubCompleter struct {
	text   string
	err    error
	calls  atomic.Int32
	system string
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	s.calls.Add(1)
	s.system, s.prompt = system, prompt
	return s.text, s.err
}

// slowCompleter answers only when ctx ends.
type slowCompleter struct{}

func (slowCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// ============================================================================
// REMOTE PARSER
// ============================================================================

func TestRemoteParserMergesModelAnswer(t *testing.T) {
	stub := &stubCompleter{text: "Sure!\n```json\n{\"action\":\"top\",\"locations\":[\"Kerala\"],\"limit\":\"3\",\"metrics\":[\"rainfall\"]}\n```"}
	p := NewRemoteParser(stub, nil)

	q, err := p.Parse(context.Background(), "Show rainfall in Punjab")
	require.NoError(t, err)

	assert.Equal(t, int32(1), stub.calls.Load())
	assert.Equal(t, engine.ActionTop, q.Action)
	assert.Equal(t, []string{"Kerala"}, q.Locations)
	assert.Equal(t, 3, q.Limit)
	assert.True(t, q.NeedsPrecipitation)
	assert.False(t, q.NeedsProduction)
	assert.Equal(t, "Show rainfall in Punjab", q.Question)
	assert.Equal(t, "Rankings of top performers with rainfall statistics for Kerala", q.ExpectedResult)
	assert.Contains(t, stub.prompt, "Show rainfall in Punjab")
	assert.Contains(t, stub.system, "RESPONSE FORMAT")
}

func TestRemoteParserFallsBackOnError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	stub := &stubCompleter{err: errors.New("connection refused")}
	p := NewRemoteParser(stub, NewRuleParser(), WithLogger(zap.New(core)))

	q, err := p.Parse(context.Background(), "Top 3 districts by maize production in Karnataka")
	require.NoError(t, err)

	assert.Equal(t, NewRuleParser().ParseText("Top 3 districts by maize production in Karnataka"), q)

	entries := logs.FilterMessage("Remote parse failed, using rule parse").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "remote-parser", entries[0].LoggerName)
}

func TestRemoteParserFallsBackOnUnreadableAnswer(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := NewRemoteParser(&stubCompleter{text: "I cannot help with that."}, nil, WithLogger(zap.New(core)))

	q, err := p.Parse(context.Background(), "What is the average annual rainfall in Punjab?")
	require.NoError(t, err)
	assert.Equal(t, []string{"Punjab"}, q.Locations)
	assert.Equal(t, 1, logs.FilterMessage("Remote parse unreadable, using rule parse").Len())
}

func TestRemoteParserTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := NewRemoteParser(slowCompleter{}, nil, WithTimeout(20*time.Millisecond))

	start := time.Now()
	q, err := p.Parse(context.Background(), "Show crop production trend in Karnataka")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, engine.ActionTrend, q.Action)
	assert.False(t, q.Feasible)
}

func TestRemoteParserNilCompleterIsRuleParse(t *testing.T) {
	p := NewRemoteParser(nil, nil)
	q, err := p.Parse(context.Background(), "Compare rainfall in Coastal Karnataka")
	require.NoError(t, err)
	assert.Equal(t, []string{"Coastal Karnataka"}, q.Locations)
}

func TestRemoteParserRecomputesFeasibility(t *testing.T) {
	stub := &stubCompleter{text: `{"action":"trend","metrics":["production"]}`}
	p := NewRemoteParser(stub, nil)

	q, err := p.Parse(context.Background(), "Show rainfall in Punjab")
	require.NoError(t, err)

	assert.Equal(t, engine.ActionTrend, q.Action)
	assert.False(t, q.NeedsPrecipitation)
	assert.False(t, q.Feasible)
	assert.Equal(t, engine.SnapshotReason, q.InfeasibilityReason)
}

// ============================================================================
// RESPONSE DECODING
// ============================================================================

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{name: "bare object", response: `{"action":"top"}`, want: `{"action":"top"}`},
		{name: "prose around object", response: "Here you go: {\"a\":1} hope that helps", want: `{"a":1}`},
		{name: "think block stripped", response: "<think>{not json}</think>\n{\"a\":2}", want: `{"a":2}`},
		{name: "braces inside strings", response: `x {"locations":["a}b","c{"]} y`, want: `{"locations":["a}b","c{"]}`},
		{name: "skips invalid candidate", response: `{oops} {"a":3}`, want: `{"a":3}`},
		{name: "no object", response: "nothing here", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeResponseFlexibleNumbers(t *testing.T) {
	rq, err := DecodeResponse(`{"years":["2010", 2015.0, null],"limit":"7","time_period":"range"}`)
	require.NoError(t, err)
	assert.Equal(t, 7, int(rq.Limit))
	require.Len(t, rq.Years, 3)
	assert.Equal(t, 2010, int(rq.Years[0]))
	assert.Equal(t, 2015, int(rq.Years[1]))

	_, err = DecodeResponse(`{"limit":"many"}`)
	assert.Error(t, err)
}

func TestMergeKeepsBaseForEmptyFields(t *testing.T) {
	base := NewRuleParser().ParseText("Top 3 districts by maize production in Karnataka")

	q := Merge(base, &RemoteQuery{Action: "nonsense", Crops: []string{" Rice "}, Years: []flexInt{1850, 2001}, TimePeriod: "range"})

	assert.Equal(t, engine.ActionTop, q.Action)
	assert.Equal(t, []string{"Karnataka"}, q.Locations)
	assert.Equal(t, []string{"rice"}, q.Crops)
	assert.Equal(t, []int{2001}, q.Years)
	assert.Equal(t, 3, q.Limit)
	assert.Equal(t, engine.WindowRange, q.TimeWindow)

	assert.Equal(t, base, Merge(base, nil))
}

func TestMergeKeepsBaseYearsWhenRemoteYearsInvalid(t *testing.T) {
	base := NewRuleParser().ParseText("Rainfall in Kerala in 2010 and 2012")
	require.Equal(t, []int{2010, 2012}, base.Years)

	q := Merge(base, &RemoteQuery{Years: []flexInt{12, 1850, 3000}})
	assert.Equal(t, []int{2010, 2012}, q.Years)
}

// ============================================================================
// COMPLETERS
// ============================================================================

func TestNewCompleter(t *testing.T) {
	_, err := NewCompleter(Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, ErrNoCompleter)

	c, err := NewCompleter(DefaultConfig(ProviderOpenAI, "k"))
	require.NoError(t, err)
	assert.IsType(t, &OpenAICompleter{}, c)

	c, err = NewCompleter(DefaultConfig(ProviderAnthropic, "k"))
	require.NoError(t, err)
	assert.IsType(t, &AnthropicCompleter{}, c)

	c, err = NewCompleter(DefaultConfig(ProviderGemini, "k"))
	require.NoError(t, err)
	assert.IsType(t, &GeminiCompleter{}, c)

	_, err = NewCompleter(Config{Provider: "mystery", APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAICompleter(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		gotModel = body.Model
		assert.Len(t, body.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"action\":\"top\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig(ProviderOpenAI, "test-key")
	cfg.Endpoint = srv.URL + "/"
	text, err := NewOpenAICompleter(cfg).Complete(context.Background(), "system", "question")
	require.NoError(t, err)

	assert.Equal(t, `{"action":"top"}`, text)
	assert.Equal(t, "llama-3.1-8b-instant", gotModel)
}

func TestAnthropicCompleter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "ak", r.Header.Get("X-Api-Key"))

		var body struct {
			Model     string `json:"model"`
			System    string `json:"system"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		raw, _ := io.ReadAll(r.Body)
		if assert.NoError(t, json.Unmarshal(raw, &body)) {
			assert.Equal(t, "claude-test", body.Model)
			assert.Equal(t, "sys", body.System)
			assert.Equal(t, 512, body.MaxTokens)
			assert.Len(t, body.Messages, 1)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"{\"action\":"},{"type":"text","text":"\"trend\"}"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	cfg := Config{Provider: ProviderAnthropic, APIKey: "ak", Model: "claude-test", Endpoint: srv.URL + "/"}
	text, err := NewAnthropicCompleter(cfg).Complete(context.Background(), "sys", "q")
	require.NoError(t, err)
	assert.Equal(t, `{"action":"trend"}`, text)
}

func TestAnthropicCompleterEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m2","type":"message","role":"assistant","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	cfg := Config{Provider: ProviderAnthropic, APIKey: "ak", Model: "claude-test", Endpoint: srv.URL}
	_, err := NewAnthropicCompleter(cfg).Complete(context.Background(), "sys", "q")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGeminiCompleter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "gk", r.URL.Query().Get("key"))

		var req geminiRequest
		raw, _ := io.ReadAll(r.Body)
		if assert.NoError(t, json.Unmarshal(raw, &req)) && assert.NotNil(t, req.SystemInstruction) {
			assert.Equal(t, "sys", req.SystemInstruction.Parts[0].Text)
			assert.Equal(t, "q", req.Contents[0].Parts[0].Text)
		}

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiCompleter(Config{APIKey: "gk", Model: "test-model", Endpoint: srv.URL})
	text, err := g.Complete(context.Background(), "sys", "q")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
}

func TestGeminiCompleterErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{name: "http status", status: http.StatusInternalServerError, body: "boom"},
		{name: "api error", status: http.StatusOK, body: `{"error":{"code":400,"message":"bad key"}}`},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, is: ErrEmptyCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGeminiCompleter(Config{APIKey: "k", Endpoint: srv.URL}).Complete(context.Background(), "", "q")
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}
