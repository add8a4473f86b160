package services

import (
	"math/rand"
	"strings"
	"time"

	"raffle/internal/models"
)

const resultsHeader = "RESULTS"

// Raffle hands out each prize to at most one participant, and each participant
// wins at most one prize.
type Raffle struct {
	prizes       []models.Prize
	participants []models.Participant
	results      []models.Result
}

// Option configures a Raffle.
type Option func(*raffleOptions)

type raffleOptions struct {
	rng *rand.Rand
}

// WithRand draws with the given source. The source must not be shared with
// other goroutines while the raffle is being built.
func WithRand(rng *rand.Rand) Option {
	return func(o *raffleOptions) { o.rng = rng }
}

// WithSeed draws with a source seeded from seed, making the outcome repeatable.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// NewRaffle runs the raffle over the given names. Duplicate names are distinct
// entries, one per position.
func NewRaffle(prizeNames, participantNames []string, opts ...Option) *Raffle {
	o := &raffleOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := &Raffle{
		prizes:       toEntities(prizeNames),
		participants: toEntities(participantNames),
	}
	r.results = perform(o.rng, r.prizes, r.participants)
	return r
}

func toEntities(names []string) []models.Entity {
	entities := make([]models.Entity, 0, len(names))
	for _, name := range names {
		entities = append(entities, models.NewEntity(name))
	}
	return entities
}

// perform reshuffles the remaining pool before every prize and takes the last
// participant as the winner.
func perform(rng *rand.Rand, prizes []models.Prize, participants []models.Participant) []models.Result {
	remaining := make([]models.Participant, len(participants))
	copy(remaining, participants)

	results := make([]models.Result, 0, len(prizes)+max(0, len(participants)-len(prizes)))
	for _, prize := range prizes {
		if len(remaining) == 0 {
			results = append(results, models.UnclaimedPrize(prize))
			continue
		}
		rng.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
		last := len(remaining) - 1
		winner := remaining[last]
		remaining = remaining[:last]
		results = append(results, models.Win(winner, prize))
	}

	for _, p := range remaining {
		results = append(results, models.NonWinner(p))
	}
	return results
}

// Prizes returns the prizes in input order.
func (r *Raffle) Prizes() []models.Prize {
	return append([]models.Prize(nil), r.prizes...)
}

// Participants returns the participants in input order.
func (r *Raffle) Participants() []models.Participant {
	return append([]models.Participant(nil), r.participants...)
}

// Results returns one result per prize, in prize order, followed by one per
// participant who won nothing.
func (r *Raffle) Results() []models.Result {
	out := make([]models.Result, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Raffle) Winners() []models.Result {
	return r.filter(models.KindWin)
}

func (r *Raffle) Unclaimed() []models.Result {
	return r.filter(models.KindUnclaimedPrize)
}

func (r *Raffle) NonWinners() []models.Result {
	return r.filter(models.KindNonWinner)
}

func (r *Raffle) filter(kind models.ResultKind) []models.Result {
	var out []models.Result
	for _, res := range r.results {
		if res.Kind() == kind {
			out = append(out, res)
		}
	}
	return out
}

// Description renders the results report.
func (r *Raffle) Description() string {
	return Describe(r.results)
}

// Describe renders a "RESULTS" header, a dash separator of the same length and
// one "<participant> won <prize>" line per result.
func Describe(results []models.Result) string {
	lines := make([]string, 0, len(results))
	for _, res := range results {
		lines = append(lines, res.Description())
	}

	var sb strings.Builder
	sb.WriteString(resultsHeader)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("-", len(resultsHeader)))
	sb.WriteByte('\n')
	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String()
}
