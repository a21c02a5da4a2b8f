// Package report renders the subscriber report text.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/brizzai/subcount-bot/internal/accounts"
	"github.com/brizzai/subcount-bot/internal/subscribers"
	"go.uber.org/fx"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var Module = fx.Module("report",
	fx.Provide(NewBuilder),
)

// Builder renders one line per account followed by a total line
type Builder struct {
	provider subscribers.Provider
	list     *accounts.List
	printer  *message.Printer
}

// NewBuilder creates a Builder for the given accounts
func NewBuilder(provider subscribers.Provider, list *accounts.List) *Builder {
	return &Builder{
		provider: provider,
		list:     list,
		printer:  message.NewPrinter(language.English),
	}
}

// Build fetches the counts and renders the report. The result has no
// trailing newline.
func (b *Builder) Build(ctx context.Context) (string, error) {
	counts, total, err := b.provider.Counts(ctx, b.list.IDs())
	if err != nil {
		return "", err
	}
	if len(counts) != len(b.list.Accounts) {
		return "", fmt.Errorf("subscriber provider returned %d counts for %d accounts", len(counts), len(b.list.Accounts))
	}

	lines := make([]string, 0, len(counts)+1)
	for i, account := range b.list.Accounts {
		lines = append(lines, b.printer.Sprintf("%s has %d subscribers", account.Name, counts[i]))
	}
	if b.list.Group != "" {
		lines = append(lines, b.printer.Sprintf("%s have %d subscribers in total", b.list.Group, total))
	} else {
		lines = append(lines, b.printer.Sprintf("Total: %d", total))
	}
	return strings.Join(lines, "\n"), nil
}
