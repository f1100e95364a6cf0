package affect

// MoodCategory is the coarse label for a point in valence/arousal space.
type MoodCategory string

const (
	MoodExcited   MoodCategory = "excited"   // high valence, high arousal
	MoodHappy     MoodCategory = "happy"     // high valence, mid arousal
	MoodRelaxed   MoodCategory = "relaxed"   // high valence, low arousal
	MoodEnergetic MoodCategory = "energetic" // mid valence, high arousal
	MoodNeutral   MoodCategory = "neutral"   // baseline
	MoodTired     MoodCategory = "tired"     // mid valence, low arousal
	MoodAnnoyed   MoodCategory = "annoyed"   // low valence, high arousal
	MoodSad       MoodCategory = "sad"       // low valence, mid arousal
	MoodGloomy    MoodCategory = "gloomy"    // low valence, low arousal
)

// MoodCategories lists every category in grid order.
var MoodCategories = []MoodCategory{
	MoodExcited, MoodHappy, MoodRelaxed,
	MoodEnergetic, MoodNeutral, MoodTired,
	MoodAnnoyed, MoodSad, MoodGloomy,
}

// moodBases is the representative vector for each category. Each entry
// classifies back to its own category.
var moodBases = map[MoodCategory]Vector{
	MoodExcited:   {8, 8},
	MoodHappy:     {8, 2},
	MoodRelaxed:   {4, -4},
	MoodEnergetic: {2, 8},
	MoodNeutral:   {0, 0},
	MoodTired:     {-2, -6},
	MoodAnnoyed:   {-4, 4},
	MoodSad:       {-6, -2},
	MoodGloomy:    {-8, -8},
}

// MoodBase returns the representative vector for a category.
func MoodBase(c MoodCategory) (Vector, bool) {
	v, ok := moodBases[c]
	return v, ok
}

// Classify maps a valence/arousal pair onto the 3x3 mood grid. Values above 3
// are the high band, values below -3 the low band, everything else mid.
func Classify(valence, arousal float64) MoodCategory {
	switch band(valence) {
	case bandHigh:
		switch band(arousal) {
		case bandHigh:
			return MoodExcited
		case bandMid:
			return MoodHappy
		default:
			return MoodRelaxed
		}
	case bandMid:
		switch band(arousal) {
		case bandHigh:
			return MoodEnergetic
		case bandMid:
			return MoodNeutral
		default:
			return MoodTired
		}
	default:
		switch band(arousal) {
		case bandHigh:
			return MoodAnnoyed
		case bandMid:
			return MoodSad
		default:
			return MoodGloomy
		}
	}
}

type moodBand int

const (
	bandHigh moodBand = iota
	bandMid
	bandLow
)

func band(v float64) moodBand {
	switch {
	case v > 3:
		return bandHigh
	case v >= -3:
		return bandMid
	default:
		return bandLow
	}
}

// State is a labelled vector, as reported for mood and temperament.
type State struct {
	Category MoodCategory `json:"category"`
	Valence  float64      `json:"valence"`
	Arousal  float64      `json:"arousal"`
}

func stateOf(v Vector) State {
	return State{Category: v.Category(), Valence: v.Valence, Arousal: v.Arousal}
}
