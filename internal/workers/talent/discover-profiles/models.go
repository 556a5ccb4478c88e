package discoverprofiles

type Input struct {
	Platforms   []string `json:"platforms,omitempty"`
	Query       string   `json:"query,omitempty"`
	Location    string   `json:"location,omitempty"`
	MaxProfiles int      `json:"maxProfiles,omitempty"`
}

type Output struct {
	Platforms     []string `json:"platforms"`
	ProfilesFound int      `json:"profilesFound"`
	NewLeads      int      `json:"newLeads"`
}
