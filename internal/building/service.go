package building

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Token match scores, strongest first.
const (
	scoreExact       = 4
	scorePrefix      = 3
	scoreQueryPrefix = 2
	scoreContains    = 1
)

// DefaultSearchLimit bounds search results when the caller does not say.
const DefaultSearchLimit = 10

// ServiceConfig bundles Service dependencies.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service provides building directory operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new building service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger.With().Str("component", "building").Logger(),
	}
}

// Get retrieves a building by ID.
func (s *Service) Get(ctx context.Context, id string) (*Building, error) {
	return s.repo.Get(ctx, id)
}

// List returns the full directory, ordered by name.
func (s *Service) List(ctx context.Context) ([]*Building, error) {
	return s.repo.All(ctx)
}

// Search scores every building against the query and returns the best
// matches. A building matches when all query tokens hit its name or aliases;
// when nothing passes that bar the match requirement relaxes to any token,
// so partial queries still return something useful.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	buildings, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	var all, partial []Match
	for _, b := range buildings {
		candidates := buildingTokens(b)
		if len(candidates) == 0 {
			continue
		}

		total := 0
		hits := 0
		for _, qt := range queryTokens {
			best := 0
			for _, ct := range candidates {
				if sc := tokenScore(qt, ct); sc > best {
					best = sc
				}
			}
			if best > 0 {
				hits++
				total += best
			}
		}

		if hits == 0 {
			continue
		}
		m := Match{Building: *b, Score: total}
		if hits == len(queryTokens) {
			all = append(all, m)
		} else {
			partial = append(partial, m)
		}
	}

	matches := all
	if len(matches) == 0 {
		matches = partial
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Building.Name < matches[j].Building.Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// tokenScore rates how well one query token matches one candidate token.
func tokenScore(query, candidate string) int {
	switch {
	case query == candidate:
		return scoreExact
	case strings.HasPrefix(candidate, query):
		return scorePrefix
	case strings.HasPrefix(query, candidate):
		return scoreQueryPrefix
	case strings.Contains(candidate, query):
		return scoreContains
	default:
		return 0
	}
}

// buildingTokens collects the searchable tokens of a building's name and
// aliases.
func buildingTokens(b *Building) []string {
	tokens := tokenize(b.Name)
	for _, alias := range b.Aliases {
		tokens = append(tokens, tokenize(alias)...)
	}
	return tokens
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
