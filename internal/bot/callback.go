package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const answerPrefix = "a"

// answer is the payload of an outcome button: a:<deck>:<card>:<action>
type answer struct {
	DeckID int64
	CardID int64
	Action string
}

func (a answer) String() string {
	return fmt.Sprintf("%s:%d:%d:%s", answerPrefix, a.DeckID, a.CardID, a.Action)
}

var errBadCallback = errors.New("malformed callback data")

func parseAnswer(data string) (answer, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != answerPrefix {
		return answer{}, fmt.Errorf("%w: %q", errBadCallback, data)
	}
	deckID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return answer{}, fmt.Errorf("%w: deck %q", errBadCallback, parts[1])
	}
	cardID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return answer{}, fmt.Errorf("%w: card %q", errBadCallback, parts[2])
	}
	// the action itself is validated by the scheduler
	return answer{DeckID: deckID, CardID: cardID, Action: parts[3]}, nil
}

// userID maps a telegram account onto the opaque user id used by storage.
func userID(telegramID int64) string {
	return "tg:" + strconv.FormatInt(telegramID, 10)
}
