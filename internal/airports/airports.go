// Package airports answers airport autocomplete queries from an embedded
// IATA list.
package airports

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
)

const DefaultLimit = 10

//go:embed data/airports.csv
var embedded string

type entry struct {
	airport domain.Airport
	code    string
	city    string
	name    string
	country string
}

type Index struct {
	entries []entry
}

// Default loads the embedded list. It panics on a malformed file since the
// file ships with the binary.
func Default() *Index {
	idx, err := Load(strings.NewReader(embedded))
	if err != nil {
		panic(fmt.Sprintf("airports: embedded data: %v", err))
	}
	return idx
}

// Load reads a CSV with a header row of code,city,name,country. Rows without
// a three letter code are skipped.
func Load(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := &Index{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read airport: %w", err)
		}
		code := strings.ToUpper(strings.TrimSpace(rec[0]))
		if len(code) != 3 {
			continue
		}
		country := strings.TrimSpace(rec[3])
		if country == "" {
			country = "Unknown"
		}
		a := domain.Airport{Code: code, City: strings.TrimSpace(rec[1]), Name: strings.TrimSpace(rec[2]), Country: country}
		idx.entries = append(idx.entries, entry{
			airport: a,
			code:    strings.ToLower(a.Code),
			city:    strings.ToLower(a.City),
			name:    strings.ToLower(a.Name),
			country: strings.ToLower(a.Country),
		})
	}
	return idx, nil
}

func (i *Index) Len() int { return len(i.entries) }

type scored struct {
	airport domain.Airport
	score   int
}

// Search ranks airports by how well the query matches code, city, country
// and name, in that order of weight. Shorter city names get a small bonus.
func (i *Index) Search(query string, limit int) []domain.Airport {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []domain.Airport{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var results []scored
	for _, e := range i.entries {
		score := tiered(e.code, term, 1000, 500, 100) +
			tiered(e.city, term, 800, 400, 80) +
			tiered(e.country, term, 300, 150, 50)
		if strings.Contains(e.name, term) {
			score += 30
		}
		if score == 0 {
			continue
		}
		score += max(0, 100-len(e.city))
		results = append(results, scored{airport: e.airport, score: score})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].score != results[b].score {
			return results[a].score > results[b].score
		}
		return results[a].airport.Code < results[b].airport.Code
	})

	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]domain.Airport, len(results))
	for n, r := range results {
		out[n] = r.airport
	}
	return out
}

func tiered(field, term string, exact, prefix, contains int) int {
	switch {
	case field == term:
		return exact
	case strings.HasPrefix(field, term):
		return prefix
	case strings.Contains(field, term):
		return contains
	}
	return 0
}
