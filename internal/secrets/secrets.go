// Package secrets loads the ClickUp and Slack credentials the job runs with.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const (
	ClickUpTokenKey = "CLICKUP_API_TOKEN"
	SlackTokenKey   = "SLACK_BOT_TOKEN"
)

var ErrMissingCredential = errors.New("missing credential")

type Credentials struct {
	ClickUpToken string
	SlackToken   string
}

func (c Credentials) validate() error {
	var missing []string
	if c.ClickUpToken == "" {
		missing = append(missing, ClickUpTokenKey)
	}
	if c.SlackToken == "" {
		missing = append(missing, SlackTokenKey)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}

type Provider interface {
	Load(ctx context.Context) (Credentials, error)
}

// SecretsManagerAPI is the part of the Secrets Manager client the loader needs.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSProvider reads a JSON secret holding both tokens from AWS Secrets Manager.
type AWSProvider struct {
	client     SecretsManagerAPI
	secretName string
}

func NewAWSProvider(client SecretsManagerAPI, secretName string) *AWSProvider {
	return &AWSProvider{client: client, secretName: secretName}
}

// NewAWSProviderFromRegion builds the Secrets Manager client from the default
// AWS credential chain.
func NewAWSProviderFromRegion(ctx context.Context, region, endpoint, secretName string) (*AWSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewAWSProvider(client, secretName), nil
}

func (p *AWSProvider) Load(ctx context.Context) (Credentials, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretName),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to get secret %s: %w", p.secretName, err)
	}
	if out.SecretString == nil {
		return Credentials{}, fmt.Errorf("secret %s has no string value", p.secretName)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
		return Credentials{}, fmt.Errorf("failed to decode secret %s: %w", p.secretName, err)
	}

	creds := Credentials{
		ClickUpToken: values[ClickUpTokenKey],
		SlackToken:   values[SlackTokenKey],
	}
	if err := creds.validate(); err != nil {
		return Credentials{}, fmt.Errorf("secret %s: %w", p.secretName, err)
	}
	return creds, nil
}

// EnvProvider reads the tokens from environment variables, for local runs.
type EnvProvider struct {
	lookup func(string) string
}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.Getenv}
}

func (p *EnvProvider) Load(context.Context) (Credentials, error) {
	creds := Credentials{
		ClickUpToken: p.lookup(ClickUpTokenKey),
		SlackToken:   p.lookup(SlackTokenKey),
	}
	if err := creds.validate(); err != nil {
		return Credentials{}, fmt.Errorf("environment: %w", err)
	}
	return creds, nil
}
