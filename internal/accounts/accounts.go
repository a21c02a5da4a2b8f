// Package accounts holds the ordered list of tracked channels.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/storage"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Account is one tracked channel
type Account struct {
	Name string `yaml:"name"`
	// ID is the channel handle without the leading "@"
	ID string `yaml:"id"`
}

// List is an ordered set of accounts, optionally named as a group
type List struct {
	Group    string    `yaml:"group"`
	Accounts []Account `yaml:"accounts"`
}

// IDs returns the account identifiers in list order
func (l *List) IDs() []string {
	ids := make([]string, len(l.Accounts))
	for i, a := range l.Accounts {
		ids[i] = a.ID
	}
	return ids
}

// Default returns the built-in list: the five members of Regloss
func Default() *List {
	return &List{
		Group: "Regloss",
		Accounts: []Account{
			{Name: "Hiodoshi Ao", ID: "hiodoshiao"},
			{Name: "Otonose Kanade", ID: "otonosekanade"},
			{Name: "Ichijou Ririka", ID: "ichijouririka"},
			{Name: "Juufuutei Raden", ID: "juufuuteiraden"},
			{Name: "Todoroki Hajime", ID: "todorokihajime"},
		},
	}
}

// Load reads a list from a YAML file. An empty location yields Default.
func Load(ctx context.Context, files storage.Files, location string, logger *zap.Logger) (*List, error) {
	if location == "" {
		logger.Debug("No accounts file provided, using the built-in list")
		return Default(), nil
	}

	logger.Info("Loading accounts from file", zap.String("file", location))
	data, err := files.Read(ctx, location)
	if err != nil {
		return nil, errs.IO("read accounts file", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list. Every account needs a name and an id.
func Parse(data []byte) (*List, error) {
	const op = "decode accounts file"

	var list List
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errs.State(op, err)
	}
	if len(list.Accounts) == 0 {
		return nil, errs.State(op, errors.New("no accounts listed"))
	}
	for i, a := range list.Accounts {
		if a.Name == "" || a.ID == "" {
			return nil, errs.State(op, fmt.Errorf("account %d needs both name and id", i))
		}
	}
	return &list, nil
}

// FromConfig loads the list configured by accounts_file under the run's context
func FromConfig(ctx context.Context, files storage.Files, cfg *config.Config, logger *zap.Logger) (*List, error) {
	return Load(ctx, files, cfg.AccountsFile, logger)
}
