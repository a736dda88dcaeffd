package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Afrawles/clickup-alerts/internal/config"
	"github.com/Afrawles/clickup-alerts/internal/secrets"
	"github.com/schollz/progressbar/v3"
)

// parseLists reads "id=name,id=name". A pair without a name uses the id.
func parseLists(input string) ([]config.ListConfig, error) {
	var lists []config.ListConfig
	for _, part := range strings.Split(input, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		id, name, _ := strings.Cut(trimmed, "=")
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if id == "" {
			return nil, fmt.Errorf("invalid list %q: missing id", trimmed)
		}
		if name == "" {
			name = id
		}
		lists = append(lists, config.ListConfig{ID: id, Name: name})
	}

	if len(lists) == 0 {
		return nil, fmt.Errorf("--lists is set but names no lists")
	}
	return lists, nil
}

func loadCredentials(ctx context.Context, cfg *config.Config) (secrets.Credentials, error) {
	var provider secrets.Provider
	switch cfg.Secrets.Source {
	case config.SecretsSourceEnv:
		provider = secrets.NewEnvProvider()
	default:
		p, err := secrets.NewAWSProviderFromRegion(ctx, cfg.Secrets.Region, cfg.Secrets.Endpoint, cfg.Secrets.Name)
		if err != nil {
			return secrets.Credentials{}, err
		}
		provider = p
	}

	creds, err := provider.Load(ctx)
	if err != nil {
		return secrets.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	return creds, nil
}

func newSpinner(description string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetWriter(os.Stderr),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
