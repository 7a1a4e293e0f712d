package service

import (
	"sort"
	"strings"

	"lurdinha/internal/model"
)

// Resolution is the outcome of a round: the winning answer strings (ties
// allowed), the penalized uids, and the player list with penalties applied.
type Resolution struct {
	MajorityAnswers []string
	LurdinhaVictims []string
	Players         []model.Player
}

// NormalizeAnswer makes two answers comparable: surrounding whitespace is
// dropped and the text is lowercased. Equality is byte equality of the
// normalized forms.
func NormalizeAnswer(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ResolveRound tallies the round's answers and assigns penalties. A player
// is safe iff they answered and their normalized answer is among the most
// common ones; everyone else gets score += 1 (lower is better).
//
// When every submitted answer is distinct there is no real majority. The
// default keeps every answerer safe (each answer ties at count 1);
// penalizeOnNoMajority flips that so everyone who answered is penalized too.
// Players who never answered are penalized under either rule.
func ResolveRound(answers map[string]string, players []model.Player, penalizeOnNoMajority bool) Resolution {
	counts := make(map[string]int, len(answers))
	normalized := make(map[string]string, len(answers))
	for uid, text := range answers {
		n := NormalizeAnswer(text)
		normalized[uid] = n
		counts[n]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	majority := make(map[string]bool, len(counts))
	var majorityAnswers []string
	for answer, c := range counts {
		if c == maxCount {
			majority[answer] = true
			majorityAnswers = append(majorityAnswers, answer)
		}
	}
	sort.Strings(majorityAnswers)

	noMajority := penalizeOnNoMajority && maxCount == 1 && len(answers) >= 2

	updated := make([]model.Player, len(players))
	var victims []string
	for i, p := range players {
		n, answered := normalized[p.UID]
		safe := answered && majority[n] && !noMajority
		if !safe {
			p.Score++
			victims = append(victims, p.UID)
		}
		updated[i] = p
	}

	return Resolution{
		MajorityAnswers: majorityAnswers,
		LurdinhaVictims: victims,
		Players:         updated,
	}
}
