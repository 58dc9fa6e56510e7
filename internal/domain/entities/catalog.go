package entities

// Section is an entry of the start menu.
// It either starts a single poll or opens a submenu of polls.
type Section struct {
	Title  string
	Prompt string
	Poll   string   // set when the section starts a poll directly
	Polls  []string // submenu entries
}

// IsSubmenu reports whether the section opens a list of polls.
func (s Section) IsSubmenu() bool {
	return s.Poll == "" && len(s.Polls) > 0
}

// Article is an entry of the emergency menu.
type Article struct {
	Title     string
	Animation string
	Messages  []string
}
