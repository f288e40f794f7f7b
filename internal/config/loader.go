package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdharms/jumpking-autosplitter/internal/store"
	"github.com/sirupsen/logrus"
)

// ConfigLoader handles loading and saving of configuration documents
type ConfigLoader struct {
	logger *logrus.Logger
	store  store.Store
}

// NewConfigLoader creates a new configuration loader over a document store
func NewConfigLoader(logger *logrus.Logger, s store.Store) *ConfigLoader {
	return &ConfigLoader{
		logger: logger,
		store:  s,
	}
}

// LoadDocument loads and parses a configuration document by name
func (cl *ConfigLoader) LoadDocument(ctx context.Context, name string) (*Document, error) {
	data, err := cl.store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration '%s': %w", name, err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("configuration '%s': %w", name, err)
	}

	splits := 0
	if doc.Splits != nil {
		splits = len(doc.Splits.Nodes)
	}
	cl.logger.WithFields(logrus.Fields{
		"config": name,
		"splits": splits,
	}).Info("Configuration loaded successfully")

	return doc, nil
}

// SaveDocument encodes and stores a configuration document under name
func (cl *ConfigLoader) SaveDocument(ctx context.Context, name string, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := cl.store.Save(ctx, name, data); err != nil {
		return fmt.Errorf("failed to save configuration '%s': %w", name, err)
	}
	return nil
}

// DiscoverDocuments lists the names of all stored configurations
func (cl *ConfigLoader) DiscoverDocuments(ctx context.Context) ([]string, error) {
	names, err := cl.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover configurations: %w", err)
	}

	cl.logger.WithField("count", len(names)).Info("Configuration discovery completed")
	return names, nil
}

// FindByName resolves a configuration name, preferring an exact
// case-insensitive match and falling back to a unique partial match
func (cl *ConfigLoader) FindByName(names []string, query string) (string, error) {
	for _, name := range names {
		if strings.EqualFold(name, query) {
			return name, nil
		}
	}

	var matches []string
	lowerQuery := strings.ToLower(query)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), lowerQuery) {
			matches = append(matches, name)
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("no configuration found matching '%s'", query)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("multiple configurations found matching '%s': %s", query, strings.Join(matches, ", "))
	}
	return matches[0], nil
}
