package bracket

// Kind discriminates the competitor variants that can occupy a match
// slot. Comparisons against competitors are exhaustive over Kind instead
// of sniffing field contents.
type Kind uint8

const (
	KindHuman Kind = iota
	KindNamedLocal
	KindAI
)

// Competitor is a tagged variant: a registered participant, a locally
// named player with no account, or an AI filler slot.
type Competitor struct {
	Kind Kind
	ID   string // set for KindHuman
	Name string // set for KindNamedLocal
}

func Human(id string) Competitor        { return Competitor{Kind: KindHuman, ID: id} }
func NamedLocal(name string) Competitor { return Competitor{Kind: KindNamedLocal, Name: name} }
func AI() Competitor                    { return Competitor{Kind: KindAI} }

// Key returns a stable identifier usable as a map key and for canonical
// pairing keys.
func (c Competitor) Key() string {
	switch c.Kind {
	case KindHuman:
		return "h:" + c.ID
	case KindNamedLocal:
		return "n:" + c.Name
	default:
		return "ai"
	}
}

func (c Competitor) Display() string {
	switch c.Kind {
	case KindHuman:
		return c.ID
	case KindNamedLocal:
		return c.Name
	default:
		return "AI"
	}
}

// PairKey is the canonical identifier for an unordered competitor pair:
// both keys in ascending order. Used to suppress repeat matchups.
type PairKey string

func CanonicalPair(a, b Competitor) PairKey {
	ka, kb := a.Key(), b.Key()
	if kb < ka {
		ka, kb = kb, ka
	}
	return PairKey(ka + "|" + kb)
}

// PairSet is the already-paired history a round-robin caller threads
// through successive generations.
type PairSet map[PairKey]struct{}

func (ps PairSet) Has(k PairKey) bool {
	_, ok := ps[k]
	return ok
}

func (ps PairSet) Add(k PairKey) { ps[k] = struct{}{} }
