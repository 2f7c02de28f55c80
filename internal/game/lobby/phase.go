package lobby

// Phase 大厅阶段，只能向前推进
type Phase int

const (
	PhaseLobby      Phase = iota // 等待玩家加入
	PhaseSetup                   // 已发牌，玩家决定翻面或保留
	PhaseInProgress              // 出牌阶段
	PhaseFinished                // 已结束
)

var phaseNames = map[Phase]string{
	PhaseLobby:      "Lobby",
	PhaseSetup:      "Setup",
	PhaseInProgress: "InProgress",
	PhaseFinished:   "Finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "Unknown"
}

// nextPhase 合法的阶段流转表
var nextPhase = map[Phase]Phase{
	PhaseLobby:      PhaseSetup,
	PhaseSetup:      PhaseInProgress,
	PhaseInProgress: PhaseFinished,
}

// canAdvance 是否允许从 from 进入 to
func canAdvance(from, to Phase) bool {
	next, ok := nextPhase[from]
	return ok && next == to
}
