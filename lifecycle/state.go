package lifecycle

import (
	"content_generation_suite/client"
)

// Phase 是四种互斥状态之一。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// State is an immutable snapshot. Result is set only in PhaseSuccess,
// Message only in PhaseError.
type State struct {
	Phase   Phase
	Seq     uint64
	Result  *client.Result
	Message string
}

// CanSubmit 对应界面上提交按钮是否可用（不含主题判断）。
func (s State) CanSubmit() bool {
	return s.Phase != PhaseLoading
}

// Message 将任意失败转换为展示给用户的一句话。
func Message(err error) string {
	return "Failed to generate content: " + err.Error()
}
