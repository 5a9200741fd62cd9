package models

// Game is a catalog entry. Launching returns a URL owned by the provider; the
// client never runs game logic.
type Game struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	ProviderID string `json:"provider_id"`
	ImageURL   string `json:"image_url"`
	Featured   bool   `json:"is_featured"`
}

type GameCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GameProvider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameLaunch is the launch response: either a redirect location or an
// embeddable URL, whichever the provider supports.
type GameLaunch struct {
	URL      string `json:"url"`
	Embedded bool   `json:"embedded"`
}
