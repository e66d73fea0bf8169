package interview

import "time"

// Phase is the coarse position of the session in its lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseRecording  Phase = "recording"
	PhaseProcessing Phase = "processing"
	PhaseEnded      Phase = "ended"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation, in display order.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time
}

// Identity is fixed once a session is loaded.
type Identity struct {
	SessionID        string
	CandidateName    string
	InterviewerStyle string
}

// State is the snapshot handed to renderers. Messages is replaced on every
// change, never written in place.
type State struct {
	Phase Phase
	Identity

	Messages      []Message
	QuestionCount int
	Error         string
	Summary       string

	IsLoading        bool
	IsRecording      bool
	IsProcessing     bool
	IsPlayingAudio   bool
	InterviewStarted bool
	// IsFinished mirrors the backend's hint that no question is left.
	IsFinished bool

	LoadingInterviewID string

	generation uint64
}

// LastMessage returns the most recent message, if any.
func (s State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

func initialState(generation uint64) State {
	return State{
		Phase:      PhaseIdle,
		Identity:   Identity{InterviewerStyle: "neutral"},
		generation: generation,
	}
}

// User-facing messages.
const (
	errSessionNotFound = "Session non trouvée. Redirection..."
	errLoadFailed      = "Impossible de charger l'entretien."
	errMicrophone      = "Impossible d'accéder au microphone. Veuillez autoriser l'accès."
	errProcessing      = "Erreur lors du traitement de votre réponse. Veuillez réessayer."
	errEndFailed       = "Erreur lors de la fin de l'entretien."
)
