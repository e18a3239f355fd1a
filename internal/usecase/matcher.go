package usecase

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dealscope/backend/internal/domain"
	"github.com/google/uuid"
)

// Package-level compiled regex patterns for performance
var (
	punctuationRegex = regexp.MustCompile(`[^\w\s]`)
	storageAttrRegex = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(gb|tb)\b`)
	modelTokenRegex  = regexp.MustCompile(`^(?:[a-z]+\d|\d+[a-z])[a-z0-9]*$`)
)

// matcherStopWords are tokens that carry no product identity: basic English
// stop words plus retail listing noise.
var matcherStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,

	// Condition / seller noise
	"new": true, "used": true, "refurbished": true, "renewed": true,
	"certified": true, "sealed": true, "genuine": true, "official": true,
	"authentic": true, "unlocked": true, "locked": true, "warranty": true,

	// Marketing noise
	"best": true, "deal": true, "sale": true, "offer": true, "price": true,
	"premium": true, "quality": true, "original": true, "latest": true,
	"edition": true, "version": true, "bundle": true, "includes": true,
	"free": true, "shipping": true, "fast": true,

	// Packaging / quantity terms
	"pack": true, "count": true, "ct": true, "pk": true, "box": true,
	"piece": true, "pieces": true, "set": true, "kit": true,
}

// knownColors are color words extracted as coarse attributes. Disagreeing
// colors veto a merge.
var knownColors = map[string]bool{
	"black": true, "white": true, "silver": true, "gold": true,
	"gray": true, "grey": true, "blue": true, "red": true,
	"green": true, "purple": true, "pink": true, "yellow": true,
	"orange": true, "titanium": true, "graphite": true,
	"midnight": true, "starlight": true, "natural": true,
}

// MatcherConfig holds configuration for the listing matcher
type MatcherConfig struct {
	JaccardThreshold    float64
	EnableFuzzyMatching bool
	FuzzyEditDistance   int
	EnableDebugLogging  bool
}

// Matcher groups normalized listings that refer to the same physical product
// across sources. It is deliberately conservative: a false split is cheaper
// than a false merge, because merging different products corrupts the price
// comparison.
type Matcher struct {
	jaccardThreshold    float64
	enableFuzzyMatching bool
	fuzzyEditDistance   int
	enableDebugLogging  bool
}

// NewMatcher creates a new matcher with the given configuration
func NewMatcher(config MatcherConfig) *Matcher {
	threshold := config.JaccardThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6 // Default threshold
	}

	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1 // Default edit distance of 1
	}

	return &Matcher{
		jaccardThreshold:    threshold,
		enableFuzzyMatching: config.EnableFuzzyMatching,
		fuzzyEditDistance:   fuzzyDist,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// candidate is a listing with its precomputed similarity features
type candidate struct {
	listing domain.Listing
	tokens  []string
	key     string
	attrs   attributes
}

// groupState accumulates members of one match group during assignment.
// Similarity is always computed against the seed (first member) so that group
// identity does not drift as members are added.
type groupState struct {
	key     string
	seed    []string
	attrs   attributes
	members []domain.Listing
}

// Match partitions listings into match groups. The assignment is
// deterministic for any permutation of the input: listings are visited in a
// canonical order and ties between candidate groups resolve to the earliest
// created group.
func (m *Matcher) Match(listings []domain.Listing) []domain.MatchGroup {
	if len(listings) == 0 {
		return nil
	}

	ordered := make([]domain.Listing, len(listings))
	copy(ordered, listings)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Title != ordered[j].Title {
			return ordered[i].Title < ordered[j].Title
		}
		if ordered[i].SourceID != ordered[j].SourceID {
			return ordered[i].SourceID < ordered[j].SourceID
		}
		return ordered[i].ExternalID < ordered[j].ExternalID
	})

	var groups []*groupState
	for _, listing := range ordered {
		c := m.makeCandidate(listing)

		bestIdx := -1
		bestScore := 0.0
		for idx, g := range groups {
			score, ok := m.similarity(c, g)
			if !ok {
				continue
			}
			// Strict comparison keeps the earliest group on ties
			if score > bestScore {
				bestScore = score
				bestIdx = idx
			}
		}

		if bestIdx >= 0 {
			g := groups[bestIdx]
			g.members = append(g.members, c.listing)
			g.attrs = g.attrs.merge(c.attrs)
			if m.enableDebugLogging {
				log.Printf("[MATCH] %q joined group %q (score %.2f)", c.listing.Title, g.members[0].Title, bestScore)
			}
			continue
		}

		groups = append(groups, &groupState{
			key:     c.key,
			seed:    c.tokens,
			attrs:   c.attrs,
			members: []domain.Listing{c.listing},
		})
	}

	result := make([]domain.MatchGroup, 0, len(groups))
	for _, g := range groups {
		result = append(result, domain.MatchGroup{
			GroupID:             uuid.NewString(),
			RepresentativeTitle: representativeTitle(g.members),
			Listings:            g.members,
		})
	}
	return result
}

// similarity scores a candidate against a group. An exact similarity-key
// match always wins; otherwise token-set Jaccard must clear the threshold.
// Contradicting attributes veto the merge regardless of token overlap.
func (m *Matcher) similarity(c candidate, g *groupState) (float64, bool) {
	if c.attrs.contradicts(g.attrs) {
		return 0, false
	}

	if c.key != "" && c.key == g.key {
		// Above any possible Jaccard score so exact keys dominate
		return 1.1, true
	}

	score := m.jaccard(c.tokens, g.seed)
	if score <= m.jaccardThreshold {
		return 0, false
	}
	return score, true
}

func (m *Matcher) makeCandidate(listing domain.Listing) candidate {
	tokens := matchTokens(listing.Title)
	return candidate{
		listing: listing,
		tokens:  tokens,
		key:     similarityKey(tokens),
		attrs:   extractAttributes(listing.Title, tokens),
	}
}

// matchTokens splits a title into normalized lowercase tokens. Punctuation is
// stripped and stop words removed; numeric tokens are kept because they often
// carry model identity ("iphone 15").
func matchTokens(title string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(title), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 {
			continue
		}
		if matcherStopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// similarityKey is the canonical form of a token set: sorted unique tokens
// joined into one string. Titles that reduce to the same key always group.
func similarityKey(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	unique := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			unique = append(unique, t)
			seen[t] = true
		}
	}
	sort.Strings(unique)
	return strings.Join(unique, "|")
}

// jaccard computes token-set Jaccard similarity, optionally counting
// near-identical tokens as matches within the configured edit distance.
func (m *Matcher) jaccard(tokens1, tokens2 []string) float64 {
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0
	}

	set2 := make(map[string]bool, len(tokens2))
	for _, t := range tokens2 {
		set2[t] = true
	}

	matched := 0
	seen := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set2[t] {
			matched++
			continue
		}
		if m.enableFuzzyMatching && m.fuzzyInSet(t, tokens2) {
			matched++
		}
	}

	union := len(set2)
	for t := range seen {
		if !set2[t] {
			union++
		}
	}

	return float64(matched) / float64(union)
}

func (m *Matcher) fuzzyInSet(token string, tokens []string) bool {
	for _, other := range tokens {
		if fuzzyTokenMatch(token, other, m.fuzzyEditDistance) {
			return true
		}
	}
	return false
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens > 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	// Quick length check - if lengths differ by more than threshold, can't match
	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	n := len(r2)

	// Use two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// attributes are coarse product properties extracted from titles. Two
// listings that disagree on an attribute never merge: different storage
// capacities or colors are different products no matter how similar the
// titles read.
type attributes struct {
	storageGB float64
	colors    map[string]bool
	models    map[string]bool
}

func extractAttributes(title string, tokens []string) attributes {
	attrs := attributes{}

	if m := storageAttrRegex.FindStringSubmatch(title); m != nil {
		size := parseFloatLoose(m[1])
		if strings.EqualFold(m[2], "tb") {
			size *= 1024
		}
		attrs.storageGB = size
	}

	for _, t := range tokens {
		if knownColors[t] {
			if attrs.colors == nil {
				attrs.colors = make(map[string]bool)
			}
			attrs.colors[t] = true
		}
		if len(t) >= 4 && modelTokenRegex.MatchString(t) && !storageAttrRegex.MatchString(t) {
			if attrs.models == nil {
				attrs.models = make(map[string]bool)
			}
			attrs.models[t] = true
		}
	}

	return attrs
}

// contradicts reports whether two attribute sets disagree on any extracted
// attribute. Absent attributes never contradict.
func (a attributes) contradicts(b attributes) bool {
	if a.storageGB > 0 && b.storageGB > 0 && a.storageGB != b.storageGB {
		return true
	}
	if len(a.colors) > 0 && len(b.colors) > 0 && disjoint(a.colors, b.colors) {
		return true
	}
	if len(a.models) > 0 && len(b.models) > 0 && disjoint(a.models, b.models) {
		return true
	}
	return false
}

// merge folds a member's attributes into the group's
func (a attributes) merge(b attributes) attributes {
	merged := a
	if merged.storageGB == 0 {
		merged.storageGB = b.storageGB
	}
	merged.colors = unionSet(a.colors, b.colors)
	merged.models = unionSet(a.models, b.models)
	return merged
}

func disjoint(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return false
		}
	}
	return true
}

func unionSet(a, b map[string]bool) map[string]bool {
	if len(b) == 0 {
		return a
	}
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// representativeTitle picks the shortest member title: across retail sources
// the shortest variant tends to carry the least seller noise.
func representativeTitle(members []domain.Listing) string {
	title := members[0].Title
	for _, l := range members[1:] {
		if len(l.Title) < len(title) {
			title = l.Title
		}
	}
	return title
}

func parseFloatLoose(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
