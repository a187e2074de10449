package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/metrics"
	"digital.vasic.contracts/pkg/monitor"
	"digital.vasic.contracts/pkg/plugin"
	"digital.vasic.contracts/pkg/probe"
	"digital.vasic.contracts/pkg/rule"
)

// proberFunc adapts a function to probe.Prober.
type proberFunc func(ctx context.Context, ep probe.Endpoint, timeout time.Duration) (*probe.Response, error)

func (f proberFunc) Send(ctx context.Context, ep probe.Endpoint, timeout time.Duration) (*probe.Response, error) {
	return f(ctx, ep, timeout)
}

func jsonResponse(status int, body string, elapsed time.Duration) *probe.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return probe.NewResponse(status, h, []byte(body), elapsed)
}

func okProber() proberFunc {
	return func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		return jsonResponse(200, `{"ok":true}`, time.Millisecond), nil
	}
}

func testConfig() *contract.RunConfig {
	cfg := contract.NewRunConfig("http://api.test")
	cfg.PerCaseTimeout = time.Second
	return cfg
}

func getCase(name, path string, rules ...rule.Definition) contract.TestCase {
	if len(rules) == 0 {
		rules = []rule.Definition{rule.StatusEquals(200)}
	}
	return contract.TestCase{
		Name:     name,
		Endpoint: probe.Endpoint{Method: probe.MethodGet, Path: path},
		Rules:    rules,
	}
}

func namedCases(n int) []contract.TestCase {
	cases := make([]contract.TestCase, n)
	for i := range cases {
		cases[i] = getCase(fmt.Sprintf("case-%d", i), fmt.Sprintf("/items/%d", i))
	}
	return cases
}

func resultNames(results []contract.CaseResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Case
	}
	return out
}

// concurrencyGauge tracks the peak number of overlapping calls.
type concurrencyGauge struct {
	current atomic.Int64
	peak    atomic.Int64
}

func (g *concurrencyGauge) enter() {
	n := g.current.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (g *concurrencyGauge) leave() { g.current.Add(-1) }

func TestRun_SequentialOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
		gauge concurrencyGauge
	)
	prober := proberFunc(func(_ context.Context, ep probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		gauge.enter()
		defer gauge.leave()
		mu.Lock()
		order = append(order, ep.Path)
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		return jsonResponse(200, `{}`, time.Millisecond), nil
	})

	suite := contract.Suite{Name: "seq", Concurrency: contract.Sequential(), Cases: namedCases(5)}
	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"/items/0", "/items/1", "/items/2", "/items/3", "/items/4"}, order)
	assert.Equal(t, int64(1), gauge.peak.Load())
	assert.Equal(t, 5, rep.Passed)
	assert.Equal(t, []string{"case-0", "case-1", "case-2", "case-3", "case-4"}, resultNames(rep.Results))
}

func TestRun_SequentialIsDeterministic(t *testing.T) {
	prober := proberFunc(func(_ context.Context, ep probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		switch ep.Path {
		case "/missing":
			return jsonResponse(404, `{}`, time.Millisecond), nil
		case "/down":
			return nil, &probe.Error{Kind: probe.KindNetwork, Err: errors.New("connection refused")}
		}
		return jsonResponse(200, `{"id":1}`, time.Millisecond), nil
	})

	suite := contract.Suite{
		Name:        "mixed",
		Concurrency: contract.Sequential(),
		Cases: []contract.TestCase{
			getCase("first", "/ok"),
			getCase("missing", "/missing", rule.StatusEquals(200), rule.FieldsPresent("id")),
			getCase("down", "/down"),
			getCase("last", "/ok", rule.FieldsPresent("id")),
		},
	}

	run := func() []contract.CaseResult {
		rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
		require.NoError(t, err)
		return rep.Results
	}
	first, second := run(), run()

	require.Len(t, first, 4)
	require.Len(t, second, 4)
	assert.Equal(t,
		[]contract.Status{contract.StatusPassed, contract.StatusFailed, contract.StatusErrored, contract.StatusPassed},
		[]contract.Status{first[0].Status, first[1].Status, first[2].Status, first[3].Status},
	)
	for i := range first {
		assert.Equal(t, first[i].Case, second[i].Case, "slot %d", i)
		assert.Equal(t, first[i].Status, second[i].Status, "slot %d", i)
		assert.Equal(t, first[i].RuleFailures, second[i].RuleFailures, "slot %d", i)
		assert.Equal(t, first[i].Cause, second[i].Cause, "slot %d", i)
	}
	assert.Len(t, first[1].RuleFailures, 2)
	assert.Contains(t, first[2].Cause, "connection refused")
}

func TestRun_ParallelReassemblesInCaseOrder(t *testing.T) {
	var gauge concurrencyGauge
	cases := namedCases(5)
	delays := map[string]time.Duration{}
	for i, tc := range cases {
		delays[tc.Endpoint.Path] = time.Duration(len(cases)-i) * 15 * time.Millisecond
	}
	prober := proberFunc(func(_ context.Context, ep probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		gauge.enter()
		defer gauge.leave()
		time.Sleep(delays[ep.Path])
		return jsonResponse(200, `{}`, delays[ep.Path]), nil
	})

	suite := contract.Suite{Name: "par", Concurrency: contract.Parallel(5), Cases: cases}
	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"case-0", "case-1", "case-2", "case-3", "case-4"}, resultNames(rep.Results))
	assert.Equal(t, 5, rep.Passed)
	assert.Greater(t, gauge.peak.Load(), int64(1))
}

func TestRun_ParallelCappedByMaxWorkers(t *testing.T) {
	var gauge concurrencyGauge
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		gauge.enter()
		defer gauge.leave()
		time.Sleep(10 * time.Millisecond)
		return jsonResponse(200, `{}`, time.Millisecond), nil
	})

	cfg := testConfig()
	cfg.MaxWorkers = 2
	suite := contract.Suite{Name: "capped", Concurrency: contract.Parallel(10), Cases: namedCases(8)}

	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, cfg)
	require.NoError(t, err)
	assert.Equal(t, 8, rep.Passed)
	assert.LessOrEqual(t, gauge.peak.Load(), int64(2))
}

func TestRun_TimeoutWhenProberIgnoresContext(t *testing.T) {
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		time.Sleep(500 * time.Millisecond)
		return jsonResponse(200, `{}`, 500*time.Millisecond), nil
	})

	tc := getCase("stuck", "/stuck")
	tc.TimeoutMillis = 50
	suite := contract.Suite{Name: "timeouts", Cases: []contract.TestCase{tc}}

	start := time.Now()
	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 400*time.Millisecond)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, contract.StatusErrored, rep.Results[0].Status)
	assert.Equal(t, "timeout", rep.Results[0].Cause)
	assert.Equal(t, 1, rep.Errored)
}

func TestRun_SlowResponseIsFailedNotErrored(t *testing.T) {
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		return jsonResponse(200, `{}`, 250*time.Millisecond), nil
	})

	tc := getCase("slow", "/slow", rule.ResponseTimeUnder(100))
	suite := contract.Suite{Name: "timing", Cases: []contract.TestCase{tc}}

	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	res := rep.Results[0]
	assert.Equal(t, contract.StatusFailed, res.Status)
	assert.Empty(t, res.Cause)
	assert.Equal(t, []string{"response time 250.0ms is not under 100ms"}, res.RuleFailures)
}

func TestRun_SuiteDeadline(t *testing.T) {
	var calls atomic.Int64
	prober := proberFunc(func(ctx context.Context, _ probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		calls.Add(1)
		<-ctx.Done()
		return nil, &probe.Error{Kind: probe.KindNetwork, Err: ctx.Err()}
	})

	cfg := testConfig()
	cfg.SuiteDeadline = 100 * time.Millisecond
	suite := contract.Suite{Name: "deadline", Cases: namedCases(3)}

	start := time.Now()
	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, cfg)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 800*time.Millisecond)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 3, rep.Errored)
	assert.Equal(t, int64(1), calls.Load())
	for _, res := range rep.Results {
		assert.Equal(t, "suite deadline exceeded", res.Cause, res.Case)
	}
	assert.Equal(t, []string{"case-0", "case-1", "case-2"}, resultNames(rep.Results))
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite := contract.Suite{Name: "canceled", Cases: namedCases(2)}
	rep, err := NewRunner(WithProber(okProber())).Run(ctx, suite, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Errored)
	for _, res := range rep.Results {
		assert.Equal(t, "run canceled", res.Cause)
	}
}

func TestRun_PanicIsolated(t *testing.T) {
	prober := proberFunc(func(_ context.Context, ep probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		if ep.Path == "/items/1" {
			panic("boom")
		}
		return jsonResponse(200, `{}`, time.Millisecond), nil
	})

	suite := contract.Suite{Name: "panics", Concurrency: contract.Parallel(3), Cases: namedCases(3)}
	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Passed)
	assert.Equal(t, 1, rep.Errored)
	assert.Equal(t, contract.StatusErrored, rep.Results[1].Status)
	assert.Equal(t, "panic: boom", rep.Results[1].Cause)
}

func TestRun_EvaluatorPanicIsolated(t *testing.T) {
	engine := rule.NewEngine()
	require.NoError(t, engine.Register("explode", func(rule.Definition, *probe.Response) (bool, string) {
		panic("evaluator crashed")
	}))

	cases := namedCases(2)
	cases[0].Rules = []rule.Definition{{Type: "explode"}}
	suite := contract.Suite{Name: "eval", Cases: cases}

	rep, err := NewRunner(WithEngine(engine), WithProber(okProber())).
		Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	assert.Equal(t, contract.StatusErrored, rep.Results[0].Status)
	assert.Contains(t, rep.Results[0].Cause, "evaluator crashed")
	assert.Equal(t, contract.StatusPassed, rep.Results[1].Status)
}

func TestRun_RetriesNetworkErrors(t *testing.T) {
	tests := []struct {
		name         string
		retries      int
		failures     int
		wantStatus   contract.Status
		wantAttempts int
	}{
		{"recovers within retries", 2, 2, contract.StatusPassed, 3},
		{"exhausts retries", 1, 2, contract.StatusErrored, 2},
		{"no retries", 0, 1, contract.StatusErrored, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int64
			prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
				if int(calls.Add(1)) <= tt.failures {
					return nil, &probe.Error{Kind: probe.KindNetwork, Err: errors.New("connection refused")}
				}
				return jsonResponse(200, `{}`, time.Millisecond), nil
			})

			cfg := testConfig()
			cfg.Retries = tt.retries
			m := metrics.NewInMemoryMetrics()
			suite := contract.Suite{Name: "retry", Cases: namedCases(1)}

			rep, err := NewRunner(WithProber(prober), WithMetrics(m)).
				Run(context.Background(), suite, cfg)
			require.NoError(t, err)

			res := rep.Results[0]
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantAttempts, res.Attempts)
			assert.Equal(t, tt.wantAttempts-1, m.RetryCount("retry"))
			if tt.wantStatus == contract.StatusErrored {
				assert.Contains(t, res.Cause, "connection refused")
			}
		})
	}
}

func TestRun_ResponsesAreNeverRetried(t *testing.T) {
	var calls atomic.Int64
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		calls.Add(1)
		return jsonResponse(500, `{}`, time.Millisecond), nil
	})

	cfg := testConfig()
	cfg.Retries = 3
	suite := contract.Suite{Name: "no-retry", Cases: namedCases(1)}

	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, contract.StatusFailed, rep.Results[0].Status)
	assert.Equal(t, 500, rep.Results[0].StatusCode)
}

func TestRun_TimeoutsAreNotRetried(t *testing.T) {
	var calls atomic.Int64
	prober := proberFunc(func(ctx context.Context, _ probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		calls.Add(1)
		<-ctx.Done()
		return nil, &probe.Error{Kind: probe.KindNetwork, Err: ctx.Err()}
	})

	cfg := testConfig()
	cfg.Retries = 2
	tc := getCase("slow", "/slow")
	tc.TimeoutMillis = 20
	suite := contract.Suite{Name: "t", Cases: []contract.TestCase{tc}}

	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, "timeout", rep.Results[0].Cause)
}

func TestRun_ExpectedFailure(t *testing.T) {
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		return jsonResponse(404, ``, time.Millisecond), nil
	})

	inverted := getCase("missing", "/users/999")
	inverted.Expect = contract.ExpectFailure
	holds := getCase("found", "/users/999", rule.StatusEquals(404))
	holds.Expect = contract.ExpectFailure
	suite := contract.Suite{Name: "xfail", Cases: []contract.TestCase{inverted, holds}}

	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	assert.Equal(t, contract.StatusPassed, rep.Results[0].Status)
	assert.Equal(t, contract.StatusFailed, rep.Results[1].Status)
	assert.Equal(t, []string{contract.ExpectedFailureReason}, rep.Results[1].RuleFailures)
}

func TestRunAll_FaultAbortsBeforeProbe(t *testing.T) {
	var calls atomic.Int64
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		calls.Add(1)
		return jsonResponse(200, `{}`, time.Millisecond), nil
	})

	good := contract.Suite{Name: "good", Cases: namedCases(1)}
	dup := contract.Suite{Name: "dup", Cases: []contract.TestCase{
		getCase("same", "/a"),
		getCase("same", "/b"),
	}}
	badRule := contract.Suite{Name: "bad-rule", Cases: []contract.TestCase{
		getCase("r", "/a", rule.Definition{Type: "no_such_rule"}),
	}}

	tests := []struct {
		name    string
		suites  []contract.Suite
		cfg     *contract.RunConfig
		wantMsg string
	}{
		{"duplicate case", []contract.Suite{good, dup}, testConfig(), "duplicate"},
		{"unknown rule", []contract.Suite{badRule}, testConfig(), "unknown rule type"},
		{"duplicate suite", []contract.Suite{good, good}, testConfig(), "duplicate suite name"},
		{"nil config", []contract.Suite{good}, nil, "run config is required"},
		{"bad config", []contract.Suite{good}, &contract.RunConfig{BaseURL: "api.test"}, "base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports, err := NewRunner(WithProber(prober)).RunAll(context.Background(), tt.suites, tt.cfg)
			require.Error(t, err)
			assert.Nil(t, reports)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var fault *contract.FaultError
			assert.True(t, errors.As(err, &fault))
		})
	}
	assert.Zero(t, calls.Load())
}

func TestRunAll_SharedPoolAcrossSuites(t *testing.T) {
	suites := []contract.Suite{
		{Name: "first", Concurrency: contract.Parallel(3), Cases: namedCases(3)},
		{Name: "second", Cases: namedCases(2)},
	}

	reports, err := NewRunner(WithProber(okProber())).RunAll(context.Background(), suites, testConfig())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "first", reports[0].Suite)
	assert.Equal(t, "second", reports[1].Suite)
	assert.Equal(t, reports[0].RunID, reports[1].RunID)
	assert.NotEmpty(t, reports[0].RunID)
	assert.Equal(t, 3, reports[0].Passed)
	assert.Equal(t, 2, reports[1].Passed)
	assert.False(t, reports[0].StartedAt.IsZero())
}

func TestRun_Parametrized(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	prober := proberFunc(func(_ context.Context, ep probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		path, err := ep.ResolvePath()
		if err != nil {
			return nil, &probe.Error{Kind: probe.KindRequest, Err: err}
		}
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
		return jsonResponse(200, `{"id":`+path[len("/users/"):]+`}`, time.Millisecond), nil
	})

	suite := contract.Suite{
		Name:        "params",
		Concurrency: contract.Parallel(5),
		Parametrized: []contract.Template{{
			Name:   "get_user",
			Param:  "id",
			Values: []any{1, 2, 3},
			Case:   getCase("", "/users/{id}", rule.StatusEquals(200), rule.FieldEquals("id", "{id}")),
		}},
	}

	rep, err := NewRunner(WithProber(prober)).Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"get_user[1]", "get_user[2]", "get_user[3]"}, resultNames(rep.Results))
	assert.Equal(t, 3, rep.Passed)
	assert.ElementsMatch(t, []string{"/users/1", "/users/2", "/users/3"}, paths)
}

func TestRun_Budget(t *testing.T) {
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		time.Sleep(20 * time.Millisecond)
		return jsonResponse(200, `{}`, 20*time.Millisecond), nil
	})

	tight := contract.Suite{Name: "tight", Cases: namedCases(2), BudgetMillis: 1}
	loose := contract.Suite{Name: "loose", Cases: namedCases(1), BudgetMillis: 60_000}

	reports, err := NewRunner(WithProber(prober)).
		RunAll(context.Background(), []contract.Suite{tight, loose}, testConfig())
	require.NoError(t, err)

	assert.True(t, reports[0].BudgetExceeded)
	assert.Equal(t, time.Millisecond, reports[0].Budget)
	assert.False(t, reports[1].BudgetExceeded)
	assert.True(t, reports[0].OK())
}

func TestRun_EventsAndMetrics(t *testing.T) {
	prober := proberFunc(func(_ context.Context, ep probe.Endpoint, _ time.Duration) (*probe.Response, error) {
		if ep.Path == "/items/1" {
			return jsonResponse(404, `{}`, time.Millisecond), nil
		}
		return jsonResponse(200, `{}`, time.Millisecond), nil
	})

	collector := monitor.NewEventCollector()
	m := metrics.NewInMemoryMetrics()
	suite := contract.Suite{Name: "observed", Cases: namedCases(2)}

	_, err := NewRunner(WithProber(prober), WithCollector(collector), WithMetrics(m)).
		Run(context.Background(), suite, testConfig())
	require.NoError(t, err)

	var types []monitor.EventType
	var states []contract.State
	for _, e := range collector.Events() {
		types = append(types, e.Type)
		states = append(states, e.State)
	}
	assert.Equal(t, []monitor.EventType{
		monitor.EventSuiteStarted,
		monitor.EventDispatched, monitor.EventPassed,
		monitor.EventDispatched, monitor.EventFailed,
		monitor.EventSuiteFinished,
	}, types)
	assert.Equal(t, []contract.State{
		"",
		contract.StateDispatched, contract.StateEvaluated,
		contract.StateDispatched, contract.StateEvaluated,
		"",
	}, states)

	stats := collector.Stats()
	assert.Equal(t, 2, stats.Cases)
	assert.Equal(t, 0, stats.InFlight)

	assert.Equal(t, 1, m.RunTotal())
	assert.Equal(t, 1, m.CaseCount("observed", "passed"))
	assert.Equal(t, 1, m.CaseCount("observed", "failed"))
	assert.Equal(t, 1, m.RuleCount("observed", string(rule.TypeStatusEquals), false))
	assert.Equal(t, 1, m.PeakInFlight())
	assert.Equal(t, 0, m.InFlight())
}

func TestRun_PluginRules(t *testing.T) {
	const typeHasOK rule.Type = "has_ok"
	pack := plugin.NewRulePack("ok", "1.0").Add(typeHasOK,
		func(_ rule.Definition, resp *probe.Response) (bool, string) {
			body, _ := resp.Body.(map[string]any)
			if body["ok"] != true {
				return false, "ok flag not set"
			}
			return true, ""
		})

	suite := contract.Suite{
		Name:  "plugins",
		Cases: []contract.TestCase{getCase("ok", "/ok", rule.Definition{Type: typeHasOK})},
	}

	r := NewRunner(WithProber(okProber()), WithPlugins(pack))
	rep, err := r.Run(context.Background(), suite, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Passed)

	// Plugins load once per runner.
	rep, err = r.Run(context.Background(), suite, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Passed)
}

func TestRun_UnknownRuleWithoutPlugin(t *testing.T) {
	suite := contract.Suite{
		Name:  "plugins",
		Cases: []contract.TestCase{getCase("ok", "/ok", rule.Definition{Type: "has_ok"})},
	}
	_, err := NewRunner(WithProber(okProber())).Run(context.Background(), suite, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown rule type: "has_ok"`)
}

func TestRun_PluginInitFailureFaults(t *testing.T) {
	pack := plugin.NewRulePack("shadow", "1.0").Add(rule.TypeStatusEquals,
		func(rule.Definition, *probe.Response) (bool, string) { return true, "" })

	var calls atomic.Int32
	prober := proberFunc(func(context.Context, probe.Endpoint, time.Duration) (*probe.Response, error) {
		calls.Add(1)
		return jsonResponse(200, `{}`, time.Millisecond), nil
	})
	suite := contract.Suite{Name: "s", Cases: []contract.TestCase{getCase("a", "/a")}}

	_, err := NewRunner(WithProber(prober), WithPlugins(pack)).Run(context.Background(), suite, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugins: init plugin \"shadow\"")
	assert.Zero(t, calls.Load())
}
