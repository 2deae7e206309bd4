package i18n

import (
	"os"
	"path/filepath"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	MemberFile = "member_mapping.json"
	SectorFile = "sector_mapping.json"
	StockFile  = "stock_mapping.json"
	TitlesFile = "titles.json"
)

// canonicalLang is the language whose sector labels act as lookup keys.
const canonicalLang = "en"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Table maps a domain code to its display strings by language tag.
type Table map[string]map[string]string

// Lookup returns the display string for code in lang, or code itself when
// either the code or the language is absent.
func Lookup(t Table, code, lang string) string {
	if byLang, ok := t[code]; ok {
		if v, ok := byLang[lang]; ok {
			return v
		}
	}
	return code
}

type sectorEntry struct {
	english string
	names   map[string]string
}

// Store is read-only after LoadStore or NewStore returns.
type Store struct {
	members Table
	stocks  Table
	titles  Table
	sectors []sectorEntry
}

func NewStore(members, sectors, stocks, titles Table) *Store {
	s := &Store{members: members, stocks: stocks, titles: titles}
	keys := make([]string, 0, len(sectors))
	for k := range sectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		en, ok := sectors[k][canonicalLang]
		if !ok {
			continue
		}
		s.sectors = append(s.sectors, sectorEntry{english: en, names: sectors[k]})
	}
	return s
}

// LoadStore reads the four mapping documents from dir. A missing or malformed
// document leaves its table empty so lookups pass codes through.
func LoadStore(dir string, log *logrus.Logger) *Store {
	return NewStore(
		loadTable(filepath.Join(dir, MemberFile), log),
		loadTable(filepath.Join(dir, SectorFile), log),
		loadTable(filepath.Join(dir, StockFile), log),
		loadTable(filepath.Join(dir, TitlesFile), log),
	)
}

func loadTable(path string, log *logrus.Logger) Table {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("mapping file not found at %s: %v", path, err)
		return Table{}
	}
	t := Table{}
	if err := json.Unmarshal(b, &t); err != nil {
		log.Warnf("malformed mapping file %s: %v", path, err)
		return Table{}
	}
	return t
}

func (s *Store) MemberName(code, lang string) string {
	return Lookup(s.members, code, lang)
}

func (s *Store) StockName(isin, lang string) string {
	return Lookup(s.stocks, isin, lang)
}

// SectorName looks a sector up by its English label rather than by key.
func (s *Store) SectorName(english, lang string) string {
	for _, e := range s.sectors {
		if e.english != english {
			continue
		}
		if v, ok := e.names[lang]; ok {
			return v
		}
		return english
	}
	return english
}

// Text returns the UI string for key.
func (s *Store) Text(key, lang string) string {
	return Lookup(s.titles, key, lang)
}

// Texts resolves every known titles key in lang.
func (s *Store) Texts(lang string) map[string]string {
	out := make(map[string]string, len(s.titles))
	for k := range s.titles {
		out[k] = Lookup(s.titles, k, lang)
	}
	return out
}
