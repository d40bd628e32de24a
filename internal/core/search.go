package core

import (
	"context"
	"strings"
	"time"

	"arogya-intake/internal/logging"
)

// Searcher is the auxiliary medical information service.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// MedicalLookup asks the search service about query.  It reports ok=false on
// any failure, including timeouts and empty answers, and never returns an
// error.
func MedicalLookup(ctx context.Context, s Searcher, query string, timeout time.Duration) (string, bool) {
	query = strings.TrimSpace(query)
	if s == nil || query == "" {
		return "", false
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	answer, err := s.Search(ctx, query)
	if err != nil {
		logging.FromContext(ctx).Error("medical search failed", "error", err)
		return "", false
	}
	if strings.TrimSpace(answer) == "" {
		return "", false
	}
	return answer, true
}
