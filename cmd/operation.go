package cmd

import (
	"fmt"
	"strings"

	"github.com/zjrosen/finder/internal/config"
	"github.com/zjrosen/finder/internal/domain"
	"github.com/zjrosen/finder/internal/finder"
)

// operationFlags select what a command operates on.
type operationFlags struct {
	order string
	named string
}

// parseQuery turns command arguments into a validated query.
//
// A saved query is used when --named is set. Otherwise the arguments are
// joined: operation text is parsed, anything else is a name search, and no
// arguments at all means every child. --order replaces any ORDER BY clause.
func parseQuery(cfg config.Config, flags operationFlags, args []string) (*finder.Query, error) {
	text := strings.TrimSpace(strings.Join(args, " "))

	var q *finder.Query
	switch {
	case flags.named != "":
		if text != "" {
			return nil, fmt.Errorf("--named cannot be combined with an operation")
		}
		saved, ok := cfg.Query(flags.named)
		if !ok {
			return nil, fmt.Errorf("no saved query named %q", flags.named)
		}
		op, orderBy, err := saved.Parse()
		if err != nil {
			return nil, fmt.Errorf("saved query %q: %w", saved.Name, err)
		}
		q = &finder.Query{Filter: op, OrderBy: orderBy}

	case text == "":
		q = &finder.Query{Filter: finder.All()}

	case finder.IsOperationText(text):
		parsed, err := finder.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parsing operation: %w", err)
		}
		if parsed.Filter == nil {
			parsed.Filter = finder.All()
		}
		q = parsed

	default:
		q = &finder.Query{Filter: finder.Contains(domain.AttrName, text)}
	}

	if flags.order != "" {
		orderBy, err := finder.ParseOrderBy(flags.order)
		if err != nil {
			return nil, fmt.Errorf("parsing --order: %w", err)
		}
		q.OrderBy = orderBy
	}

	if err := finder.Validate(domain.AbstractChildSchema, q); err != nil {
		return nil, err
	}
	return q, nil
}
