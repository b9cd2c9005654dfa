package steps

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// DefaultLocale is used when the configured locale has no table.
const DefaultLocale = "en"

// Vars are the placeholder values substituted into a phrase.
type Vars map[string]string

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// Phrases is a localized table of step-name templates keyed by action id.
type Phrases struct {
	locale string
	tables map[string]map[string]string
}

// LoadPhrases loads the built-in table for the closest matching locale.
func LoadPhrases(locale string) (*Phrases, error) {
	return NewPhrases(defaultPhrases, locale)
}

// NewPhrases parses a YAML table of the form {locale: {key: template}}.
func NewPhrases(data []byte, locale string) (*Phrases, error) {
	var tables map[string]map[string]string
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse phrase table: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("phrase table is empty")
	}

	return &Phrases{
		locale: matchLocale(tables, locale),
		tables: tables,
	}, nil
}

// matchLocale picks the table closest to the requested locale; the default
// locale wins ties and unknown requests.
func matchLocale(tables map[string]map[string]string, requested string) string {
	keys := make([]string, 0, len(tables))
	for k := range tables {
		if k != DefaultLocale {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := tables[DefaultLocale]; ok {
		keys = append([]string{DefaultLocale}, keys...)
	}

	tags := make([]language.Tag, len(keys))
	for i, k := range keys {
		tags[i] = language.Make(k)
	}

	want, err := language.Parse(requested)
	if err != nil {
		return keys[0]
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return keys[0]
	}
	return keys[idx]
}

// Locale returns the table in use.
func (p *Phrases) Locale() string {
	return p.locale
}

// Format renders the template for key. Unknown keys fall back to the default
// locale and then to the key itself; placeholders without a value render empty.
func (p *Phrases) Format(key string, vars Vars) string {
	tmpl, ok := p.tables[p.locale][key]
	if !ok {
		tmpl, ok = p.tables[DefaultLocale][key]
	}
	if !ok {
		tmpl = key
	}

	r := renderer{}
	last := 0
	for _, loc := range placeholder.FindAllStringIndex(tmpl, -1) {
		r.literal(tmpl[last:loc[0]])
		r.value(vars[tmpl[loc[0]+1:loc[1]-1]])
		last = loc[1]
	}
	r.literal(tmpl[last:])
	return r.String()
}

// renderer collapses whitespace in template text, including the gap left by
// an empty placeholder, and copies values verbatim.
type renderer struct {
	b     strings.Builder
	space bool // output ends with a space taken from the template
}

func (r *renderer) literal(s string) {
	for _, c := range s {
		if unicode.IsSpace(c) {
			if r.b.Len() > 0 && !r.space {
				r.b.WriteByte(' ')
				r.space = true
			}
			continue
		}
		r.b.WriteRune(c)
		r.space = false
	}
}

func (r *renderer) value(v string) {
	if v == "" {
		return
	}
	r.b.WriteString(v)
	r.space = false
}

func (r *renderer) String() string {
	out := r.b.String()
	if r.space {
		out = out[:len(out)-1]
	}
	return out
}
