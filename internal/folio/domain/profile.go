package domain

// Profile is the public-facing portfolio content. Bio and PublicEmail are
// only ever populated in memory; the store persists the encrypted forms.
type Profile struct {
	FirstName      string
	LastName       string
	Bio            string
	ProfilePicture string
	Location       string
	Website        string
	GithubURL      string
	LinkedinURL    string
	Headline       string
	Subheadlines   []string
	AboutTitle     string
	AboutContent   string
	AboutCards     []AboutCard
	Phone          string
	PublicEmail    string

	BioEncrypted         string
	PublicEmailEncrypted string
}

type AboutCard struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

type SkillGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type Social struct {
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	PublicProfile      bool `json:"publicProfile"`
}

// DefaultPreferences are applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, PublicProfile: true}
}
