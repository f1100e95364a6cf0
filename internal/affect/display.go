package affect

// DisplayEmotion is the presentation-facing label for a single response.
// It is never stored as engine state.
type DisplayEmotion string

const (
	DisplayExcited   DisplayEmotion = "excited"
	DisplayHappy     DisplayEmotion = "happy"
	DisplayRelaxed   DisplayEmotion = "relaxed"
	DisplayEnergetic DisplayEmotion = "energetic"
	DisplayNeutral   DisplayEmotion = "neutral"
	DisplayTired     DisplayEmotion = "tired"
	DisplayAnnoyed   DisplayEmotion = "annoyed"
	DisplaySad       DisplayEmotion = "sad"
	DisplayGloomy    DisplayEmotion = "gloomy"
	DisplaySurprised DisplayEmotion = "surprised"
	DisplayTense     DisplayEmotion = "tense"
	DisplayScared    DisplayEmotion = "scared"
	DisplayAngry     DisplayEmotion = "angry"
	DisplayMiserable DisplayEmotion = "miserable"
	DisplaySleep     DisplayEmotion = "sleep"
)

// displayGrid is indexed [arousal band][valence band], both ordered from
// highest to lowest.
var displayGrid = [5][5]DisplayEmotion{
	{DisplayExcited, DisplayExcited, DisplaySurprised, DisplayTense, DisplayScared},
	{DisplayHappy, DisplayHappy, DisplayEnergetic, DisplayAnnoyed, DisplayAngry},
	{DisplayHappy, DisplayHappy, DisplayNeutral, DisplaySad, DisplayMiserable},
	{DisplayRelaxed, DisplayRelaxed, DisplayTired, DisplaySad, DisplaySad},
	{DisplayRelaxed, DisplayRelaxed, DisplayTired, DisplayGloomy, DisplayGloomy},
}

// ResolveDisplay maps a valence/arousal pair onto the 5x5 display grid.
// Band edges are 6, 3, -3 and -6 on both axes.
func ResolveDisplay(valence, arousal float64) DisplayEmotion {
	return displayGrid[fineBand(arousal)][fineBand(valence)]
}

func fineBand(v float64) int {
	switch {
	case v > 6:
		return 0
	case v > 3:
		return 1
	case v >= -3:
		return 2
	case v >= -6:
		return 3
	default:
		return 4
	}
}
