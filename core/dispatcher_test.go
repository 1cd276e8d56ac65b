package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelaire/ares/core/metrics"
	"github.com/jdelaire/ares/core/ops"
)

// --- test helpers ---

type spyNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (s *spyNotifier) Name() string { return "spy" }
func (s *spyNotifier) Send(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}
func (s *spyNotifier) lastText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1].Text
}
func (s *spyNotifier) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeStats struct {
	ratios  map[string]float64
	predict float64
	player  ops.PlayerStats
	err     error
}

func (f *fakeStats) ReferralGainedRatio(_ context.Context, id string) (float64, error) {
	return f.ratios[id], f.err
}
func (f *fakeStats) Predict(_ context.Context, _, _ string) (float64, error) {
	return f.predict, f.err
}
func (f *fakeStats) UserStats(_ context.Context, _ string) (ops.PlayerStats, error) {
	return f.player, f.err
}

type panicOp struct{}

func (p *panicOp) Name() string        { return "panic" }
func (p *panicOp) Description() string { return "always panics" }
func (p *panicOp) Arity() ops.Arity    { return ops.AnyArgs }
func (p *panicOp) Execute(_ context.Context, _ ops.Call) (string, error) {
	var m map[string]int
	m["x"]++
	return "unreachable", nil
}

func newTestDispatcher(spy *spyNotifier, stats *fakeStats, opts DispatcherOptions, extraOps ...ops.Op) *Dispatcher {
	reg := ops.Default(stats, "v5.5.1")
	reg.MustRegister(extraOps...)
	return NewDispatcher(reg, spy, zerolog.Nop(), opts)
}

func validMsg(text string) InboundMessage {
	return InboundMessage{
		UpdateID:  time.Now().UnixNano(),
		ChatID:    100,
		UserID:    1,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// --- tests ---

func TestDispatchStartIgnoresArgs(t *testing.T) {
	for _, text := range []string{"/start", "/start now please", "/START", "/start@AresBot x"} {
		spy := &spyNotifier{}
		d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{})

		out := d.Dispatch(context.Background(), validMsg(text))

		require.True(t, out.OK(), text)
		assert.True(t, out.Handled)
		assert.True(t, out.Replied)
		require.Equal(t, 1, spy.count(), text)
		assert.Equal(t, ops.Greeting, spy.lastText())
		assert.Equal(t, int64(100), spy.sent[0].ChatID)
		assert.NotEmpty(t, spy.sent[0].ID)
	}
}

func TestDispatchRefRatio(t *testing.T) {
	spy := &spyNotifier{}
	stats := &fakeStats{ratios: map[string]float64{"addr1": 0.333, "addr2": 2}}
	d := newTestDispatcher(spy, stats, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/refratio addr1 addr2"))

	require.True(t, out.OK())
	lines := strings.Split(spy.lastText(), "\n")
	assert.Equal(t, []string{"addr1: 0.33", "addr2: 2.00"}, lines)
}

func TestDispatchRefRatioNoArgsSendsNothing(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/refratio"))

	assert.True(t, out.OK())
	assert.True(t, out.Handled)
	assert.False(t, out.Replied)
	assert.Equal(t, 0, spy.count())
}

func TestDispatchPredictMissingArgument(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{predict: 0.5}, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/predict A"))

	assert.False(t, out.OK())
	assert.Equal(t, KindArity, out.Kind)
	assert.ErrorIs(t, out.Err, ops.ErrArity)
	assert.Equal(t, 0, spy.count())
}

func TestDispatchPredict(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{predict: 0.25}, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/predict A B"))

	require.True(t, out.OK())
	assert.Equal(t, "Propability of A winning B is 25.0%.", spy.lastText())
}

func TestDispatchStatsDivideByZero(t *testing.T) {
	spy := &spyNotifier{}
	stats := &fakeStats{player: ops.PlayerStats{Username: "ares", WonMatches: 5}}
	d := newTestDispatcher(spy, stats, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/stats ares"))

	assert.Equal(t, KindComputation, out.Kind)
	assert.ErrorIs(t, out.Err, ops.ErrDivideByZero)
	assert.Equal(t, 0, spy.count(), "no partial reply")
}

func TestDispatchCollaboratorError(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{err: errors.New("upstream 503")}, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/stats ares"))

	assert.Equal(t, KindCollaborator, out.Kind)
	assert.Equal(t, 0, spy.count())
}

func TestDispatchReplyErrors(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{ReplyErrors: true})

	out := d.Dispatch(context.Background(), validMsg("/predict A"))

	assert.Equal(t, KindArity, out.Kind)
	require.Equal(t, 1, spy.count())
	assert.Contains(t, spy.lastText(), "Error running /predict")
}

func TestDispatchRecoversPanic(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{}, &panicOp{})

	var out Outcome
	require.NotPanics(t, func() {
		out = d.Dispatch(context.Background(), validMsg("/panic"))
	})
	assert.Equal(t, KindComputation, out.Kind)
	assert.Contains(t, out.Err.Error(), "panic in /panic")
	assert.Equal(t, 0, spy.count())
}

func TestDispatchUnknownCommand(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/foobar"))

	assert.True(t, out.OK())
	assert.False(t, out.Handled)
	assert.Equal(t, "foobar", out.Command)
	assert.Equal(t, 0, spy.count())
}

func TestDispatchNonCommand(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{})

	for _, text := range []string{"start", "just a regular message", "", "   "} {
		out := d.Dispatch(context.Background(), validMsg(text))
		assert.True(t, out.OK())
		assert.False(t, out.Handled)
	}
	assert.Equal(t, 0, spy.count())
}

func TestDispatchDeliveryFailure(t *testing.T) {
	spy := &spyNotifier{err: errors.New("chat not found")}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{})

	out := d.Dispatch(context.Background(), validMsg("/start"))

	assert.Equal(t, KindDelivery, out.Kind)
	assert.False(t, out.Replied)
}

func TestDispatchMetrics(t *testing.T) {
	m := metrics.New()
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{Metrics: m})

	d.Dispatch(context.Background(), validMsg("/start"))
	d.Dispatch(context.Background(), validMsg("/predict A"))
	d.Dispatch(context.Background(), validMsg("/nope"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.Commands))
	assert.Equal(t, 2, testutil.CollectAndCount(m.CommandLatency))
}

func TestHandleDiscardsOutcome(t *testing.T) {
	spy := &spyNotifier{}
	d := newTestDispatcher(spy, &fakeStats{}, DispatcherOptions{})

	var h MessageHandler = d.Handle
	h(validMsg("/version"))

	assert.Equal(t, "v5.5.1", spy.lastText())
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "ok", KindNone.String())
	assert.Equal(t, "arity", KindArity.String())
	assert.Equal(t, "computation", KindComputation.String())
	assert.Equal(t, "collaborator", KindCollaborator.String())
	assert.Equal(t, "delivery", KindDelivery.String())
	assert.Equal(t, "unknown", ErrorKind(42).String())
}
