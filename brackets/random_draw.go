package brackets

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Dosada05/tichu-tournament/models"
	"github.com/google/uuid"
)

// RandomDrawGenerator pairs the opening round: teams are shuffled and paired in order.
type RandomDrawGenerator struct {
	rng *rand.Rand
}

// NewRandomDrawGenerator uses rng for the shuffle; a nil rng is seeded from the clock.
func NewRandomDrawGenerator(rng *rand.Rand) PairingGenerator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &RandomDrawGenerator{rng: rng}
}

func (g *RandomDrawGenerator) GetName() string {
	return "RandomDraw"
}

func (g *RandomDrawGenerator) GeneratePairings(ctx context.Context, params GeneratePairingsParams) (*Pairings, error) {
	n := len(params.Teams)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughTeams, n)
	}

	shuffled := make([]uuid.UUID, n)
	for i, t := range params.Teams {
		shuffled[i] = t.ID
	}
	// Fisher-Yates
	for i := n - 1; i > 0; i-- {
		j := g.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	result := &Pairings{
		Matches:       make([]Pairing, 0, n/2),
		Unpaired:      []uuid.UUID{},
		InitialStatus: models.MatchStatusPlaying,
	}
	for i := 0; i+1 < n; i += 2 {
		result.Matches = append(result.Matches, Pairing{
			Team1ID:     shuffled[i],
			Team2ID:     shuffled[i+1],
			TableNumber: len(result.Matches) + 1,
		})
	}
	if n%2 == 1 {
		result.Unpaired = append(result.Unpaired, shuffled[n-1])
	}
	return result, nil
}
