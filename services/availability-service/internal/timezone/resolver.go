package timezone

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	// Ship the IANA database with the binary so zone resolution does not
	// depend on the host image.
	_ "time/tzdata"
)

var ErrUnsupportedCountry = errors.New("unsupported country")

//go:embed zones.json
var defaultTable []byte

// Entry maps one numeric ISO-3166 country code to its IANA zone.
type Entry struct {
	ISONumeric int    `json:"iso_numeric"`
	Alpha2     string `json:"alpha2"`
	Zone       string `json:"zone"`
}

// Resolver is an immutable country → zone table. Safe for concurrent use.
type Resolver struct {
	zones map[int]*time.Location
}

// NewResolver builds a resolver from entries, loading every zone up front so
// a bad table fails at startup rather than on a request.
func NewResolver(entries []Entry) (*Resolver, error) {
	zones := make(map[int]*time.Location, len(entries))
	for _, e := range entries {
		if e.ISONumeric <= 0 || e.ISONumeric > 999 {
			return nil, fmt.Errorf("zone table: invalid country code %d", e.ISONumeric)
		}
		if _, dup := zones[e.ISONumeric]; dup {
			return nil, fmt.Errorf("zone table: duplicate country code %d", e.ISONumeric)
		}
		loc, err := time.LoadLocation(e.Zone)
		if err != nil {
			return nil, fmt.Errorf("zone table: country %d: %w", e.ISONumeric, err)
		}
		zones[e.ISONumeric] = loc
	}
	return &Resolver{zones: zones}, nil
}

// Default returns the resolver over the embedded table.
func Default() (*Resolver, error) {
	return parse(defaultTable)
}

// Load reads a JSON table from path; an empty path selects the embedded table.
func Load(path string) (*Resolver, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("zone table: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Resolver, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("zone table: %w", err)
	}
	return NewResolver(entries)
}

// Resolve returns the IANA zone name for a numeric country code.
func (r *Resolver) Resolve(countryISONum int) (string, error) {
	loc, err := r.ResolveLocation(countryISONum)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

func (r *Resolver) ResolveLocation(countryISONum int) (*time.Location, error) {
	loc, ok := r.zones[countryISONum]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCountry, countryISONum)
	}
	return loc, nil
}

func (r *Resolver) Len() int {
	return len(r.zones)
}
