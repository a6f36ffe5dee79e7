package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// Mask replaces the value of every masked metadata key.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ResultStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks metadata values whose keys match
// one of the patterns before they are stored. Nested maps are masked too.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ResultStore) ports.ResultStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Append(ctx context.Context, sessionID string, result domain.TrialResult) error {
	// The caller keeps its record untouched.
	result.Data = deepCopyMap(result.Data)
	maskMap(result.Data, m.patterns)
	return m.next.Append(ctx, sessionID, result)
}

func (m *piiMiddleware) List(ctx context.Context, sessionID string) ([]domain.TrialResult, error) {
	return m.next.List(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) Sessions(ctx context.Context) ([]string, error) {
	return m.next.Sessions(ctx)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok && !masked {
			maskMap(subMap, patterns)
		}
	}
}
