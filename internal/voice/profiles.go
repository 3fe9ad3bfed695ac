package voice

const (
	GenderMale   = "male"
	GenderFemale = "female"

	AccentBritish = "british"
)

// DefaultVoice is accepted by Synthesize but not listed.
const DefaultVoice = "celebrity_voice"

// Profile describes the character a voice should imitate. Gender and Accent
// are preferences for voice selection, empty when the character has none.
type Profile struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Gender      string `json:"-"`
	Accent      string `json:"-"`
	Rate        int    `json:"-"` // words per minute
}

const defaultRate = 150

var profiles = []Profile{
	{Name: "morgan_freeman", DisplayName: "Morgan Freeman", Gender: GenderMale, Rate: defaultRate},
	{Name: "david_attenborough", DisplayName: "David Attenborough", Rate: 140},
	{Name: "barack_obama", DisplayName: "Barack Obama", Gender: GenderMale, Rate: defaultRate},
	{Name: "stephen_hawking", DisplayName: "Stephen Hawking", Rate: 120},
	{Name: "winston_churchill", DisplayName: "Winston Churchill", Accent: AccentBritish, Rate: defaultRate},
}

var defaultProfile = Profile{Name: DefaultVoice, DisplayName: "Celebrity Voice", Rate: defaultRate}

// Profiles returns the listed voices in display order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Lookup returns the profile for name, or the default profile for unknown names.
func Lookup(name string) Profile {
	for _, p := range profiles {
		if p.Name == name {
			return p
		}
	}
	return defaultProfile
}
