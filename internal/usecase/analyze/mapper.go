package analyze

import "strings"

// CategoryHint maps a prompt to Target when every keyword occurs in it.
type CategoryHint struct {
	Keywords []string
	Target   string
}

// Mapper guesses a category from prompt keywords. The first matching hint wins.
type Mapper struct {
	hints []CategoryHint
}

// NewMapper creates a Mapper. Keywords are matched lower-cased as substrings,
// so inflected forms ("çantası") still match their stem.
func NewMapper(hints []CategoryHint) *Mapper {
	return &Mapper{hints: hints}
}

// DefaultHints returns the built-in keyword table.
func DefaultHints() []CategoryHint {
	return []CategoryHint{
		{Keywords: []string{"vacuum"}, Target: "Bagless Vacuum"},
		{Keywords: []string{"çanta"}, Target: "Çanta"},
		{Keywords: []string{"bag"}, Target: "Çanta"},
		{Keywords: []string{"akıllı saat"}, Target: "Akıllı Saat"},
		{Keywords: []string{"smart watch"}, Target: "Akıllı Saat"},
		{Keywords: []string{"kulak içi", "kulaklık"}, Target: "Kulak İçi Bluetooth Kulaklık"},
		{Keywords: []string{"kulaklık"}, Target: "Kulaklık"},
		{Keywords: []string{"in-ear", "headphone"}, Target: "In-Ear Bluetooth Headphones"},
		{Keywords: []string{"headphone"}, Target: "Bluetooth Headphones"},
		{Keywords: []string{"süpürge"}, Target: "Süpürge"},
		{Keywords: []string{"telefon"}, Target: "Cep Telefonu"},
		{Keywords: []string{"laptop"}, Target: "Laptop"},
		{Keywords: []string{"buzdolabı"}, Target: "Buzdolabı"},
	}
}

// Map returns the guessed category, or "" when nothing matches.
func (m *Mapper) Map(prompt string) string {
	p := strings.ToLower(prompt)
	for _, h := range m.hints {
		if containsAll(p, h.Keywords) {
			return h.Target
		}
	}
	return ""
}

func containsAll(s string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}
