package learning

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/cardlearn/pkg/models"
)

// DecoyProvider supplies wrong answers to show next to a card's translation
type DecoyProvider interface {
	Decoys(ctx context.Context, card models.Card) ([]string, error)
}

// DeckDecoys draws decoys from the translations of other cards in the same deck.
type DeckDecoys struct {
	cards CardStore
	count int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewDeckDecoys returns a provider yielding up to count decoys per card.
func NewDeckDecoys(cards CardStore, count int) *DeckDecoys {
	return &DeckDecoys{
		cards: cards,
		count: count,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *DeckDecoys) Decoys(ctx context.Context, card models.Card) ([]string, error) {
	if d.count <= 0 {
		return []string{}, nil
	}
	// sqlite only folds ASCII case, so ask for spares to cover what the loop below drops
	options, err := d.cards.RandomTranslations(ctx, card.DeckID, card, 2*d.count)
	if err != nil {
		return nil, err
	}

	// drop duplicates case-insensitively and anything equal to the answer
	seen := map[string]bool{normalize(card.Translation): true}
	out := make([]string, 0, len(options))
	for _, o := range options {
		key := normalize(o)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
		if len(out) == d.count {
			break
		}
	}

	d.mu.Lock()
	d.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	d.mu.Unlock()

	return out, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
