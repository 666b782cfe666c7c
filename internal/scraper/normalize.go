package scraper

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/samber/lo"
)

const (
	source = "booking.com"

	maxAmenities = 12
	maxRooms     = 5
	maxImages    = 8
)

var (
	ratingRe      = regexp.MustCompile(`\d+(\.\d+)?`)
	cardImageRe   = regexp.MustCompile(`(max|square)\d+(x\d+)?`)
	detailImageRe = regexp.MustCompile(`/max\d+(x\d+)?/`)
)

// SearchURL builds the listing page for a query in USD and English.
func SearchURL(base string, q domain.HotelQuery) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("search base url: %w", err)
	}
	v := url.Values{}
	v.Set("ss", q.Location)
	v.Set("checkin", q.CheckIn)
	v.Set("checkout", q.CheckOut)
	v.Set("group_adults", strconv.Itoa(q.Guests.Adults))
	v.Set("group_children", strconv.Itoa(q.Guests.Children))
	v.Set("no_rooms", strconv.Itoa(q.Guests.Rooms))
	v.Set("selected_currency", "USD")
	v.Set("lang", "en-us")
	v.Set("offset", strconv.Itoa(q.Offset))
	u.RawQuery = v.Encode()
	return u.String(), nil
}

func normalizeCard(c rawCard, pageURL string, position int) domain.Hotel {
	name := strings.TrimSpace(c.Title)
	link := absoluteLink(pageURL, c.Href)

	return domain.Hotel{
		ID:       hotelID(link, position),
		Name:     lo.Ternary(name == "", "Unknown Hotel", name),
		Location: strings.TrimSpace(c.Address),
		Price:    lo.Ternary(strings.TrimSpace(c.Price) == "", "Contact for Price", strings.TrimSpace(c.Price)),
		Rating:   parseRating(c.Score),
		Reviews:  "Verified Reviews",
		Image:    cardImage(c.Src, c.Srcset),
		Link:     link,
		Vibes:    vibes(name),
		Source:   source,
	}
}

func parseRating(s string) string {
	if m := ratingRe.FindString(s); m != "" {
		return m
	}
	return "N/A"
}

// cardImage prefers src, then the last srcset candidate, and asks the CDN
// for a larger rendition.
func cardImage(src, srcset string) string {
	img := strings.TrimSpace(src)
	if img == "" && srcset != "" {
		parts := strings.Split(srcset, ",")
		if fields := strings.Fields(parts[len(parts)-1]); len(fields) > 0 {
			img = fields[0]
		}
	}
	if img == "" {
		return ""
	}
	return cardImageRe.ReplaceAllString(img, "max1024x768")
}

var vibeKeywords = []struct {
	vibe     string
	keywords []string
}{
	{"Relaxation", []string{"resort", "spa", "beach"}},
	{"Social", []string{"hostel", "backpackers"}},
	{"Work", []string{"business", "suite", "airport"}},
	{"Romantic", []string{"boutique", "villa", "design"}},
	{"Family", []string{"apartment", "home"}},
}

func vibes(name string) []string {
	lower := strings.ToLower(name)
	var out []string
	for _, v := range vibeKeywords {
		if lo.SomeBy(v.keywords, func(k string) bool { return strings.Contains(lower, k) }) {
			out = append(out, v.vibe)
		}
	}
	if len(out) == 0 {
		out = []string{"Hidden Gem"}
	}
	return out
}

func absoluteLink(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return href
	}
	return base.ResolveReference(ref).String()
}

// hotelID uses the property slug from the link, e.g. /hotel/fr/le-petit.html.
func hotelID(link string, position int) string {
	if u, err := url.Parse(link); err == nil && u.Path != "" && u.Path != "/" {
		slug := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
		if i := strings.Index(slug, "."); i > 0 {
			slug = slug[:i]
		}
		if slug != "" {
			return slug
		}
	}
	return "hotel-" + strconv.Itoa(position+1)
}

func normalizeDetails(raw rawDetails) domain.HotelDetails {
	d := domain.HotelDetails{
		Description: description(raw),
		Amenities:   amenities(raw),
		Rooms:       rooms(raw.Rooms),
		HouseRules: domain.HouseRules{
			CheckIn:  strings.TrimSpace(strings.Replace(raw.CheckIn, "Check-in", "", 1)),
			CheckOut: strings.TrimSpace(strings.Replace(raw.CheckOut, "Check-out", "", 1)),
		},
		Images: images(raw.Images),
	}
	d.TruthLens = truthLens(d.Description, d.Amenities)
	return d
}

func description(raw rawDetails) string {
	for _, c := range raw.DescriptionCandidates {
		if len(c) > 50 {
			return strings.TrimSpace(c)
		}
	}
	for _, p := range raw.Paragraphs {
		if len(p) > 100 {
			return strings.TrimSpace(p)
		}
	}
	return ""
}

func amenities(raw rawDetails) []string {
	items := lo.Filter(raw.Popular, func(s string, _ int) bool { return len(strings.TrimSpace(s)) > 2 })
	items = lo.Map(items, func(s string, _ int) string { return strings.TrimSpace(s) })
	if len(items) < 3 && raw.Checklist != "" {
		items = items[:0]
		for _, line := range strings.Split(raw.Checklist, "\n") {
			line = strings.TrimSpace(line)
			if len(line) > 3 && len(line) < 30 {
				items = append(items, line)
			}
		}
	}
	if len(items) > maxAmenities {
		items = items[:maxAmenities]
	}
	return nonNil(items)
}

func rooms(names []string) []string {
	var out []string
	for _, n := range names {
		first, _, _ := strings.Cut(strings.TrimSpace(n), "\n")
		first = strings.TrimSpace(first)
		if len(first) > 3 {
			out = append(out, first)
		}
	}
	out = lo.Uniq(out)
	if len(out) > maxRooms {
		out = out[:maxRooms]
	}
	return nonNil(out)
}

func images(srcs []string) []string {
	var out []string
	for _, src := range srcs {
		if src == "" || strings.Contains(src, "pixel") {
			continue
		}
		out = append(out, detailImageRe.ReplaceAllString(src, "/max1280x900/"))
	}
	out = lo.Uniq(out)
	if len(out) > maxImages {
		out = out[:maxImages]
	}
	return nonNil(out)
}

func containsAny(s string, subs ...string) bool {
	return lo.SomeBy(subs, func(sub string) bool { return strings.Contains(s, sub) })
}

// truthLens derives pros and cons from the description and amenity list.
func truthLens(desc string, amenities []string) domain.TruthLens {
	lowerDesc := strings.ToLower(desc)
	has := func(word string) bool {
		return lo.SomeBy(amenities, func(a string) bool { return strings.Contains(strings.ToLower(a), word) })
	}

	var lens domain.TruthLens
	if has("pool") || strings.Contains(lowerDesc, "pool") {
		lens.Pros = append(lens.Pros, "Aquatic Center Verified")
	}
	if has("wifi") && !strings.Contains(lowerDesc, "paid wifi") {
		lens.Pros = append(lens.Pros, "Remote Work Ready")
	}
	if containsAny(lowerDesc, "heart of", "center", "walking distance") {
		lens.Pros = append(lens.Pros, "Prime Location")
	}
	if lo.SomeBy(amenities, func(a string) bool { return strings.Contains(a, "Breakfast") }) {
		lens.Pros = append(lens.Pros, "Breakfast Included")
	}

	if containsAny(lowerDesc, "lively area", "nightlife", "bar") {
		lens.Cons = append(lens.Cons, "Potential Noise Risk")
	}
	if !has("elevator") && !has("lift") && strings.Contains(lowerDesc, "floor") {
		lens.Cons = append(lens.Cons, "Stairs Only Warning")
	}
	if containsAny(lowerDesc, "compact", "cosy", "small room") {
		lens.Cons = append(lens.Cons, "Small Room Size")
	}
	if strings.Contains(lowerDesc, "shared bathroom") {
		lens.Cons = append(lens.Cons, "Shared Bathroom")
	}

	if len(lens.Pros) == 0 {
		lens.Pros = []string{"Standard Amenities"}
	}
	if len(lens.Cons) == 0 {
		lens.Cons = []string{"No Red Flags Detected"}
	}
	return lens
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
