package language

import "strings"

type entry struct {
	code    string   // Kokoro language letter
	iso     []string // ISO 639-1/639-2 codes and BCP 47 tags
	display string
	words   []string
}

var languages = []entry{
	{"a", []string{"en", "eng", "en-us"}, "American English", []string{"english", "american", "american english"}},
	{"b", []string{"en-gb", "en-uk"}, "British English", []string{"british", "british english"}},
	{"e", []string{"es", "spa"}, "Spanish", []string{"spanish"}},
	{"f", []string{"fr", "fra", "fre", "fr-fr"}, "French", []string{"french"}},
	{"h", []string{"hi", "hin"}, "Hindi", []string{"hindi"}},
	{"i", []string{"it", "ita"}, "Italian", []string{"italian"}},
	{"j", []string{"ja", "jpn"}, "Japanese", []string{"japanese"}},
	{"p", []string{"pt", "por", "pt-br"}, "Brazilian Portuguese", []string{"portuguese", "brazilian portuguese"}},
	{"z", []string{"zh", "zho", "chi", "cmn"}, "Mandarin Chinese", []string{"chinese", "mandarin"}},
}

var (
	byCode map[string]*entry
	byName map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages))
	byName = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		byCode[e.code] = e
		for _, iso := range e.iso {
			byName[iso] = e
		}
		for _, w := range e.words {
			byName[w] = e
		}
	}
}

func lookup(value string) *entry {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "_", "-")
	if value == "" {
		return nil
	}
	if e, ok := byCode[value]; ok {
		return e
	}
	return byName[value]
}

// Normalize returns the Kokoro letter for value and whether it was recognized.
func Normalize(value string) (string, bool) {
	if e := lookup(value); e != nil {
		return e.code, true
	}
	return "", false
}

// DisplayName returns a human-readable name for any recognized value, or the
// trimmed input when unrecognized.
func DisplayName(value string) string {
	if e := lookup(value); e != nil {
		return e.display
	}
	return strings.TrimSpace(value)
}

// Codes lists the Kokoro letters in catalog order.
func Codes() []string {
	codes := make([]string, 0, len(languages))
	for _, e := range languages {
		codes = append(codes, e.code)
	}
	return codes
}

// ForVoice returns the language letter implied by a Kokoro voice id, whose
// first character is the language ("af_heart" is American English).
func ForVoice(voice string) (string, bool) {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return "", false
	}
	_, ok := byCode[strings.ToLower(voice[:1])]
	if !ok {
		return "", false
	}
	return strings.ToLower(voice[:1]), true
}
