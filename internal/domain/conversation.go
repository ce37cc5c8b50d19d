package domain

// Step enumerates the conversation states of the intake wizard.
type Step string

const (
	StepAskTitle   Step = "ASK_TITLE"
	StepAskSystem  Step = "ASK_SYSTEM"
	StepAskDesc    Step = "ASK_DESC"
	StepAskUrgency Step = "ASK_URGENCY"
	StepAskImpact  Step = "ASK_IMPACT"
	StepConfirm    Step = "CONFIRM"
)

// Valid reports whether the step is one of the six known states. Anything
// else is a corrupt session and takes the reset recovery path.
func (s Step) Valid() bool {
	switch s {
	case StepAskTitle, StepAskSystem, StepAskDesc, StepAskUrgency, StepAskImpact, StepConfirm:
		return true
	}
	return false
}

// AllowedSystems is the closed set of systems a ticket can be filed against.
var AllowedSystems = []string{"Alma", "Summon", "AtoM", "Archivematica", "RFID", "Other"}

// AllowedLevels is the closed set of urgency/impact levels.
var AllowedLevels = []string{"Low", "Medium", "High"}

// DefaultLevel pre-seeds urgency and impact when a conversation starts.
const DefaultLevel = "Medium"

// TicketDraft is the payload under construction during a conversation.
type TicketDraft struct {
	Email       string `json:"email"`
	Title       string `json:"title"`
	System      string `json:"system"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
	Impact      string `json:"impact"`
}

// Session is the persisted state of one in-progress ticket conversation
// for one user context.
type Session struct {
	ID      string      `json:"id"`
	Step    Step        `json:"step"`
	Payload TicketDraft `json:"payload"`
}
