package models

import "encoding/json"

// Placeholders used in descriptions when one side of a result is absent.
const (
	NobodyName  = "Nobody"
	NothingName = "Nothing"
)

// Entity is a named thing taking part in a raffle. The name doubles as its ID,
// so two entities with the same name are equal.
type Entity struct {
	Name string `json:"name"`
}

// NewEntity wraps a display name.
func NewEntity(name string) Entity {
	return Entity{Name: name}
}

// ID returns the entity's stable identifier.
func (e Entity) ID() string { return e.Name }

// Prize is an Entity handed out by a raffle.
type Prize = Entity

// Participant is an Entity entered into a raffle.
type Participant = Entity

// ResultKind tells which of the three outcome shapes a Result holds.
type ResultKind int

const (
	// KindInvalid is the zero Result; constructors never produce it.
	KindInvalid ResultKind = iota
	KindWin
	KindUnclaimedPrize
	KindNonWinner
)

func (k ResultKind) String() string {
	switch k {
	case KindWin:
		return "win"
	case KindUnclaimedPrize:
		return "unclaimed_prize"
	case KindNonWinner:
		return "non_winner"
	}
	return "invalid"
}

// Result is the outcome of a raffle for one prize or one leftover participant.
// Build it with Win, UnclaimedPrize or NonWinner.
type Result struct {
	kind        ResultKind
	participant Participant
	prize       Prize
}

// Win pairs a participant with the prize they won.
func Win(participant Participant, prize Prize) Result {
	return Result{kind: KindWin, participant: participant, prize: prize}
}

// UnclaimedPrize records a prize nobody was left to win.
func UnclaimedPrize(prize Prize) Result {
	return Result{kind: KindUnclaimedPrize, prize: prize}
}

// NonWinner records a participant who went home empty handed.
func NonWinner(participant Participant) Result {
	return Result{kind: KindNonWinner, participant: participant}
}

func (r Result) Kind() ResultKind { return r.kind }

// Participant returns the participant, if the result has one.
func (r Result) Participant() (Participant, bool) {
	if r.kind == KindWin || r.kind == KindNonWinner {
		return r.participant, true
	}
	return Participant{}, false
}

// Prize returns the prize, if the result has one.
func (r Result) Prize() (Prize, bool) {
	if r.kind == KindWin || r.kind == KindUnclaimedPrize {
		return r.prize, true
	}
	return Prize{}, false
}

// ParticipantName returns the participant's name or "Nobody".
func (r Result) ParticipantName() string {
	if p, ok := r.Participant(); ok {
		return p.Name
	}
	return NobodyName
}

// PrizeName returns the prize's name or "Nothing".
func (r Result) PrizeName() string {
	if p, ok := r.Prize(); ok {
		return p.Name
	}
	return NothingName
}

// Description renders the result as "<participant> won <prize>".
func (r Result) Description() string {
	return r.ParticipantName() + " won " + r.PrizeName()
}

func (r Result) String() string { return r.Description() }

type resultJSON struct {
	Kind        string       `json:"kind"`
	Participant *Participant `json:"participant,omitempty"`
	Prize       *Prize       `json:"prize,omitempty"`
	Description string       `json:"description"`
}

// MarshalJSON emits the kind, the present sides and the description.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Kind: r.kind.String(), Description: r.Description()}
	if p, ok := r.Participant(); ok {
		out.Participant = &p
	}
	if p, ok := r.Prize(); ok {
		out.Prize = &p
	}
	return json.Marshal(out)
}
