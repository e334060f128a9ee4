package bracket

// Result is one round's worth of generated matches. Bye, when set, is a
// participant left unpaired this round; the caller must treat it as an
// automatic round win.
type Result struct {
	Matches []*Match
	Bye     *Competitor
}

// Generate produces the match list for one round. It is deterministic for
// a fixed participant ordering, format, and round index: pairing is pure
// index arithmetic, never map iteration.
//
// Single elimination pairs by consecutive index; an odd count leaves the
// last participant as a bye. Round robin rotates everyone but a fixed
// anchor by the round index, pairs the anchor with the first rotated
// participant, then pairs the remainder from both ends inward, skipping
// any pair already present in prior.
func Generate(participants []Competitor, format Format, round int, prior PairSet) (Result, error) {
	if len(participants) == 0 {
		return Result{}, ErrInsufficientParticipants
	}
	if format == FormatRoundRobin {
		return generateRoundRobin(participants, round, prior)
	}
	return generateSingleElim(participants), nil
}

func generateSingleElim(participants []Competitor) Result {
	var res Result
	for i := 0; i+1 < len(participants); i += 2 {
		res.Matches = append(res.Matches, &Match{
			Competitors: [2]Competitor{participants[i], participants[i+1]},
			Status:      MatchPending,
		})
	}
	if len(participants)%2 == 1 {
		bye := participants[len(participants)-1]
		res.Bye = &bye
	}
	return res
}

func generateRoundRobin(participants []Competitor, round int, prior PairSet) (Result, error) {
	if len(participants) < 2 {
		return Result{}, ErrInsufficientParticipants
	}

	anchor := participants[0]
	rest := participants[1:]
	rotated := make([]Competitor, len(rest))
	for i := range rest {
		rotated[i] = rest[(i+round)%len(rest)]
	}

	var res Result
	pair := func(a, b Competitor) {
		key := CanonicalPair(a, b)
		if prior.Has(key) {
			return
		}
		prior.Add(key)
		res.Matches = append(res.Matches, &Match{
			Competitors: [2]Competitor{a, b},
			Status:      MatchPending,
		})
	}

	pair(anchor, rotated[0])
	i, j := 1, len(rotated)-1
	for i < j {
		pair(rotated[i], rotated[j])
		i++
		j--
	}
	if i == j {
		bye := rotated[i]
		res.Bye = &bye
	}

	if len(res.Matches) == 0 {
		return Result{}, ErrNoMatchesGenerated
	}
	return res, nil
}
