package domain

const (
	MailTypeCreateUser  = "create_user"
	MailTypeRunFinished = "run_finished"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RunFinishedMailData struct {
	RunID        string           `json:"runID"`
	ScenarioName string           `json:"scenarioName"`
	Score        float64          `json:"score"`
	Generations  int              `json:"generations"`
	Allocations  []SiteAllocation `json:"allocations"`
}
