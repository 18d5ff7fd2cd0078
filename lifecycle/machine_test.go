package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"content_generation_suite/client"
	"content_generation_suite/form"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type outcome struct {
	res client.Result
	err error
}

// scriptedGen blocks every call until the test resolves it.
type scriptedGen struct {
	started chan chan outcome
}

func newScriptedGen() *scriptedGen {
	return &scriptedGen{started: make(chan chan outcome, 4)}
}

func (g *scriptedGen) Submit(_ context.Context, _ form.Input) (client.Result, error) {
	ch := make(chan outcome, 1)
	g.started <- ch
	o := <-ch
	return o.res, o.err
}

func (g *scriptedGen) next(t *testing.T) chan outcome {
	t.Helper()
	select {
	case ch := <-g.started:
		return ch
	case <-time.After(2 * time.Second):
		t.Fatal("generation call was not issued")
		return nil
	}
}

func wait(t *testing.T, c *Call) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("call %d did not resolve", c.Seq)
	}
}

func topicForm(topic string) *form.Model {
	m := form.NewModel(nil)
	m.SetTopic(topic)
	return m
}

func newMachine(t *testing.T, gen Submitter) *Machine {
	t.Helper()
	m, err := New(gen, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestInitialStateIsIdle(t *testing.T) {
	m := newMachine(t, newScriptedGen())
	if s := m.State(); s.Phase != PhaseIdle || s.Result != nil || s.Message != "" {
		t.Errorf("unexpected initial state %+v", s)
	}
	if _, err := New(nil, nil); err == nil {
		t.Error("expected error without a generation client")
	}
}

func TestGuardRejectsBlankTopic(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)

	for _, topic := range []string{"", "   "} {
		call, err := m.Submit(context.Background(), topicForm(topic))
		if !errors.Is(err, ErrNotSubmittable) || call != nil {
			t.Errorf("topic %q: expected ErrNotSubmittable, got %v", topic, err)
		}
	}
	if m.State().Phase != PhaseIdle {
		t.Errorf("state changed on rejected submit: %s", m.State().Phase)
	}
	select {
	case <-gen.started:
		t.Error("rejected submit must not reach the client")
	default:
	}
}

func TestSubmitSuccess(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)

	call, err := m.Submit(context.Background(), topicForm("AI"))
	if err != nil {
		t.Fatal(err)
	}
	if m.State().Phase != PhaseLoading {
		t.Fatalf("expected loading, got %s", m.State().Phase)
	}

	gen.next(t) <- outcome{res: client.Result{Content: "hello", Shape: client.ShapeString}}
	wait(t, call)

	s := m.State()
	if s.Phase != PhaseSuccess || s.Result == nil || s.Result.Content != "hello" {
		t.Fatalf("unexpected state %+v", s)
	}
	if !call.Applied() {
		t.Error("expected call to be applied")
	}
	if m.Draft() != "hello" {
		t.Errorf("draft = %q", m.Draft())
	}
}

func TestFormGuardBlocksWhileLoading(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)
	f := form.NewModel(m)
	f.SetTopic("AI")

	call, err := m.Submit(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if f.IsSubmittable() {
		t.Error("form must not be submittable while loading")
	}
	if _, err := m.Submit(context.Background(), f); !errors.Is(err, ErrNotSubmittable) {
		t.Errorf("expected ErrNotSubmittable while loading, got %v", err)
	}

	gen.next(t) <- outcome{res: client.Result{Content: "done"}}
	wait(t, call)
	if !f.IsSubmittable() {
		t.Error("form should be submittable again after resolution")
	}
}

func TestLaterSubmitWinsOverSlowEarlierOne(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)

	first, err := m.Submit(context.Background(), topicForm("first"))
	if err != nil {
		t.Fatal(err)
	}
	firstCh := gen.next(t)

	second, err := m.Submit(context.Background(), topicForm("second"))
	if err != nil {
		t.Fatal(err)
	}
	secondCh := gen.next(t)

	if second.Seq <= first.Seq {
		t.Fatalf("sequence numbers not increasing: %d then %d", first.Seq, second.Seq)
	}

	secondCh <- outcome{res: client.Result{Content: "second result"}}
	wait(t, second)
	firstCh <- outcome{res: client.Result{Content: "first result"}}
	wait(t, first)

	s := m.State()
	if s.Phase != PhaseSuccess || s.Result.Content != "second result" || s.Seq != second.Seq {
		t.Fatalf("expected second result to win, got %+v", s)
	}
	if first.Applied() {
		t.Error("superseded call must not be applied")
	}
	if m.Draft() != "second result" {
		t.Errorf("draft = %q", m.Draft())
	}
}

func TestSupersededFailureIsDiscarded(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)

	first, _ := m.Submit(context.Background(), topicForm("a"))
	firstCh := gen.next(t)
	second, _ := m.Submit(context.Background(), topicForm("b"))
	secondCh := gen.next(t)

	firstCh <- outcome{err: &client.Error{Kind: client.KindHTTP, Status: 500}}
	wait(t, first)
	if m.State().Phase != PhaseLoading {
		t.Fatalf("stale failure changed state to %s", m.State().Phase)
	}

	secondCh <- outcome{res: client.Result{Content: "ok"}}
	wait(t, second)
	if m.State().Phase != PhaseSuccess {
		t.Fatalf("expected success, got %s", m.State().Phase)
	}
}

func TestResubmitDiscardsPreviousResultImmediately(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)

	call, _ := m.Submit(context.Background(), topicForm("AI"))
	gen.next(t) <- outcome{res: client.Result{Content: "old"}}
	wait(t, call)

	call, err := m.Submit(context.Background(), topicForm("AI"))
	if err != nil {
		t.Fatal(err)
	}
	s := m.State()
	if s.Phase != PhaseLoading || s.Result != nil {
		t.Fatalf("expected bare loading state, got %+v", s)
	}
	if m.Draft() != "" {
		t.Errorf("draft should be cleared, got %q", m.Draft())
	}

	gen.next(t) <- outcome{res: client.Result{Content: "new"}}
	wait(t, call)
}

func TestHTTP500AfterSuccessClearsResult(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"content":"first","analysis":{"wordCount":1}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model unavailable"}`))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	m := newMachine(t, c)
	f := form.NewModel(m)
	f.SetTopic("AI")

	call, err := m.Submit(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	wait(t, call)
	if m.State().Phase != PhaseSuccess {
		t.Fatalf("expected success, got %+v", m.State())
	}

	call, err = m.Submit(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	wait(t, call)

	s := m.State()
	if s.Phase != PhaseError {
		t.Fatalf("expected error, got %s", s.Phase)
	}
	if s.Result != nil {
		t.Error("prior result must be discarded")
	}
	if s.Message != "Failed to generate content: HTTP error! status: 500" {
		t.Errorf("message = %q", s.Message)
	}
	if m.Draft() != "" {
		t.Errorf("draft should be empty after failure, got %q", m.Draft())
	}
}

func TestEditChangesDraftOnly(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)

	if err := m.Edit("x"); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft in idle, got %v", err)
	}

	call, _ := m.Submit(context.Background(), topicForm("AI"))
	gen.next(t) <- outcome{res: client.Result{Content: "generated"}}
	wait(t, call)

	if err := m.Edit("edited by hand"); err != nil {
		t.Fatal(err)
	}
	if m.Draft() != "edited by hand" {
		t.Errorf("draft = %q", m.Draft())
	}
	if m.State().Result.Content != "generated" {
		t.Errorf("result content must stay untouched, got %q", m.State().Result.Content)
	}
}

func TestSubscribeSeesTransitionsInOrder(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)
	states, cancel := m.Subscribe()
	defer cancel()

	call, _ := m.Submit(context.Background(), topicForm("AI"))
	gen.next(t) <- outcome{err: &client.Error{Kind: client.KindNetwork, Err: errors.New("refused")}}
	wait(t, call)

	var got []Phase
	for len(got) < 2 {
		select {
		case s := <-states:
			got = append(got, s.Phase)
		case <-time.After(2 * time.Second):
			t.Fatalf("only received %v", got)
		}
	}
	if got[0] != PhaseLoading || got[1] != PhaseError {
		t.Errorf("transitions = %v", got)
	}
}

func TestSubmitIgnoresCallerCancellation(t *testing.T) {
	gen := newScriptedGen()
	m := newMachine(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	call, _ := m.Submit(ctx, topicForm("AI"))
	ch := gen.next(t)
	cancel()

	ch <- outcome{res: client.Result{Content: "still applied"}}
	wait(t, call)
	if m.State().Phase != PhaseSuccess {
		t.Errorf("expected success, got %s", m.State().Phase)
	}
}
