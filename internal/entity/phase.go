package entity

const (
	DefaultPhaseName       = "Phase"
	DefaultOperatingRounds = 2
)

type PhaseInfo struct {
	Name            string `json:"name"`
	OperatingRounds int    `json:"operating_rounds"`
}

// PhaseFromValue reads a phase entry as supplied by the loader: either a bare
// name or a map with "name" and "operating_rounds".
func PhaseFromValue(raw any) PhaseInfo {
	switch value := raw.(type) {
	case string:
		return PhaseInfo{Name: value, OperatingRounds: DefaultOperatingRounds}
	case map[string]any:
		phase := PhaseInfo{Name: "?", OperatingRounds: DefaultOperatingRounds}
		if name, ok := value["name"].(string); ok {
			phase.Name = name
		}

		if rounds, ok := toInt(value["operating_rounds"]); ok && rounds >= 0 {
			phase.OperatingRounds = max(rounds, 1)
		}

		return phase
	default:
		return PhaseInfo{Name: "?", OperatingRounds: DefaultOperatingRounds}
	}
}

type OperatingRound struct {
	Revenues []int `json:"revenues"`
}

func NewOperatingRound(corporations int) OperatingRound {
	return OperatingRound{Revenues: make([]int, corporations)}
}
