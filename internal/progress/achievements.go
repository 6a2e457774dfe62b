package progress

// Achievement is an unlockable milestone. Conditions are evaluated
// against the current snapshot after every recorded visit or
// conversation.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"` // "common" | "rare" | "epic" | "legendary"
	Points      int    `json:"points"`

	Condition func(Snapshot) bool `json:"-"`
}

// Catalog is the fixed achievement list.
var Catalog = []Achievement{
	{
		ID: "first-step", Name: "First Steps",
		Description: "Visit your first exhibit", Icon: "👣",
		Rarity: "common", Points: 10,
		Condition: func(s Snapshot) bool { return len(s.VisitedPoints) >= 1 },
	},
	{
		ID: "culture-lover", Name: "Culture Lover",
		Description: "Visit five exhibits", Icon: "❤️",
		Rarity: "common", Points: 25,
		Condition: func(s Snapshot) bool { return len(s.VisitedPoints) >= 5 },
	},
	{
		ID: "curious-mind", Name: "Curious Mind",
		Description: "Ask the guide ten questions", Icon: "💬",
		Rarity: "rare", Points: 30,
		Condition: func(s Snapshot) bool { return s.Conversations >= 10 },
	},
	{
		ID: "wanderer", Name: "Wanderer",
		Description: "Explore three different scenes", Icon: "🧭",
		Rarity: "rare", Points: 40,
		Condition: func(s Snapshot) bool { return len(s.ScenesExplored) >= 3 },
	},
	{
		ID: "completionist", Name: "Completionist",
		Description: "Visit twenty exhibits", Icon: "🏆",
		Rarity: "epic", Points: 100,
		Condition: func(s Snapshot) bool { return len(s.VisitedPoints) >= 20 },
	},
}

// Lookup returns the achievement definition for id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
