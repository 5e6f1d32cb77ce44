package loyalty

type Rank string

const (
	RankStandard Rank = "STANDARD"
	RankSilver   Rank = "SILVER"
	RankGold     Rank = "GOLD"
	RankDiamond  Rank = "DIAMOND"
)

// Cumulative spending needed for each rank, in the smallest currency unit.
const (
	SilverThreshold  int64 = 1_000_000
	GoldThreshold    int64 = 5_000_000
	DiamondThreshold int64 = 10_000_000
)

var rankLevel = map[Rank]int{
	RankStandard: 0,
	RankSilver:   1,
	RankGold:     2,
	RankDiamond:  3,
}

func (r Rank) String() string {
	return string(r)
}

func (r Rank) IsValid() bool {
	_, ok := rankLevel[r]
	return ok
}

func (r Rank) AtLeast(other Rank) bool {
	return rankLevel[r] >= rankLevel[other]
}

func RankFor(spending int64) Rank {
	switch {
	case spending >= DiamondThreshold:
		return RankDiamond
	case spending >= GoldThreshold:
		return RankGold
	case spending >= SilverThreshold:
		return RankSilver
	default:
		return RankStandard
	}
}
