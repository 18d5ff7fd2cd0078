// Package lifecycle drives the idle/loading/success/error state of a generation session.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"content_generation_suite/client"
	"content_generation_suite/form"
	"content_generation_suite/logger"
)

var (
	// ErrNotSubmittable 表单当前不允许提交（主题为空或已有请求在途）。
	ErrNotSubmittable = &client.Error{Kind: client.KindValidation, Err: errors.New("topic is empty or a request is in flight")}
	// ErrNoDraft 只有在 Success 状态下才能编辑。
	ErrNoDraft = errors.New("no generated content to edit")
)

// Submitter 由 client.Client 实现。
type Submitter interface {
	Submit(ctx context.Context, in form.Input) (client.Result, error)
}

// Form 由 form.Model 实现。
type Form interface {
	IsSubmittable() bool
	Input() form.Input
}

// Call tracks one accepted submit.
type Call struct {
	Seq     uint64
	done    chan struct{}
	applied bool
}

// Done 在请求结束（无论结果是否生效）后关闭。
func (c *Call) Done() <-chan struct{} { return c.done }

// Applied reports whether the resolution reached the machine. Valid after Done.
func (c *Call) Applied() bool {
	<-c.done
	return c.applied
}

// Machine 是唯一写入 State 的一方；所有转换都在 mu 下完成。
type Machine struct {
	gen    Submitter
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	seq     uint64
	draft   string
	subs    map[int]chan State
	nextSub int
}

// New 创建处于 Idle 的状态机。
func New(gen Submitter, l *slog.Logger) (*Machine, error) {
	if gen == nil {
		return nil, errors.New("generation client is required")
	}
	if l == nil {
		l = logger.Default()
	}
	return &Machine{
		gen:    gen,
		logger: l,
		state:  State{Phase: PhaseIdle},
		subs:   make(map[int]chan State),
	}, nil
}

// State 返回当前状态快照。
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Loading 实现 form.Busy。
func (m *Machine) Loading() bool {
	return m.State().Phase == PhaseLoading
}

// Draft 返回可编辑的内容缓冲；导出操作以它为准。
func (m *Machine) Draft() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Edit replaces the draft without touching the generated Result.
func (m *Machine) Edit(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseSuccess {
		return ErrNoDraft
	}
	m.draft = text
	return nil
}

// Submit 在表单允许时进入 Loading 并异步发起请求；否则不改变状态。
// 请求不可取消：ctx 只用于传递日志字段。
func (m *Machine) Submit(ctx context.Context, f Form) (*Call, error) {
	if !f.IsSubmittable() {
		return nil, ErrNotSubmittable
	}
	in := f.Input()

	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.draft = ""
	m.setLocked(State{Phase: PhaseLoading, Seq: seq})
	m.mu.Unlock()

	call := &Call{Seq: seq, done: make(chan struct{})}
	reqCtx := logger.WithContext(context.WithoutCancel(ctx), logger.SeqKey, seq)
	go m.run(reqCtx, in, call)
	return call, nil
}

func (m *Machine) run(ctx context.Context, in form.Input, call *Call) {
	res, err := m.gen.Submit(ctx, in)

	m.mu.Lock()
	latest := m.seq
	if call.Seq == latest {
		if err != nil {
			m.draft = ""
			m.setLocked(State{Phase: PhaseError, Seq: call.Seq, Message: Message(err)})
		} else {
			r := res
			m.draft = r.Content
			m.setLocked(State{Phase: PhaseSuccess, Seq: call.Seq, Result: &r})
		}
		call.applied = true
	}
	m.mu.Unlock()

	if !call.applied {
		m.logger.Debug("[lifecycle] discarding superseded resolution", "seq", call.Seq, "latest", latest)
	}
	close(call.done)
}

// Subscribe 返回一个接收后续每次状态变化的 channel；调用 cancel 取消订阅。
// 消费过慢时丢弃最旧的状态，State() 始终可取得最新值。
func (m *Machine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (m *Machine) setLocked(s State) {
	prev := m.state.Phase
	m.state = s
	m.logger.Debug("[lifecycle] transition", "from", prev.String(), "to", s.Phase.String(), "seq", s.Seq)
	for _, ch := range m.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
