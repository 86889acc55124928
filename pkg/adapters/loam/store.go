package loam

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/lookahead/pkg/domain"
)

const ext = ".json"

// Store implements ports.PlanStore on a Loam vault: one JSON document per
// agent whose metadata is the plan record. With versioning enabled every
// save becomes a git commit, which keeps the history of an agent's plans.
type Store struct {
	Repo *loam.TypedRepository[domain.PlanRecord]
}

// New opens (and creates if needed) a vault at path. Versioning is off
// unless overridden through opts.
func New(path string, opts ...loam.Option) (*Store, error) {
	if path == "" {
		path = filepath.Join(".lookahead", "vault")
	}
	base := []loam.Option{
		loam.WithAutoInit(true),
		loam.WithVersioning(false),
		loam.WithDevSafety(false),
	}
	repo, err := loam.Init(path, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan vault %s: %w", path, err)
	}
	return &Store{Repo: loam.NewTypedRepository[domain.PlanRecord](repo)}, nil
}

// Save writes the agent's record, replacing the previous document.
func (s *Store) Save(ctx context.Context, agentID string, record *domain.PlanRecord) error {
	id, err := docID(agentID)
	if err != nil {
		return err
	}
	doc := &loam.DocumentModel[domain.PlanRecord]{ID: id, Data: *record}
	if err := s.Repo.Save(ctx, doc); err != nil {
		return fmt.Errorf("loam save failed for %s: %w", agentID, err)
	}
	return nil
}

// Load reads the agent's record.
func (s *Store) Load(ctx context.Context, agentID string) (*domain.PlanRecord, error) {
	id, err := docID(agentID)
	if err != nil {
		return nil, err
	}
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", agentID, err)
	}
	record := doc.Data
	return &record, nil
}

// Delete removes the agent's document. Deleting a missing record is a no-op.
func (s *Store) Delete(ctx context.Context, agentID string) error {
	id, err := docID(agentID)
	if err != nil {
		return err
	}
	if _, err := s.Repo.Get(ctx, id); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", agentID, err)
	}
	return nil
}

// List returns the agents with a stored plan, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]bool, len(docs))
	agents := make([]string, 0, len(docs))
	for _, d := range docs {
		id := strings.TrimSuffix(d.ID, ext)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		agents = append(agents, id)
	}
	sort.Strings(agents)
	return agents, nil
}

// docID maps an agent to its document. Slashes would address rows of a
// Loam collection and are refused.
func docID(agentID string) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("agentID cannot be empty")
	}
	if strings.ContainsAny(agentID, `/\`) {
		return "", fmt.Errorf("invalid agentID %q", agentID)
	}
	return agentID + ext, nil
}
