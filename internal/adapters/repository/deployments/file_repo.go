package deployments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

const (
	// DeploymentsFile is the registry file inside the data directory
	DeploymentsFile = "deployments.json"

	lockRetryDelay = 50 * time.Millisecond
)

// LookupIndexes are rebuilt from the deployments on every change
type LookupIndexes struct {
	ByAddress  map[uint64]map[string]string // chainID -> lowercase address -> ID
	ByContract map[string][]string          // contract name -> IDs
}

// FileRepository stores the deployments in a json file on the system
type FileRepository struct {
	dataDir     string
	lookups     *LookupIndexes
	mu          sync.RWMutex
	deployments map[string]*models.Deployment
}

// NewFileRepository creates a new registry over the project data directory
func NewFileRepository(cfg *config.RuntimeConfig) (*FileRepository, error) {
	m := &FileRepository{
		dataDir:     cfg.DataDir,
		deployments: make(map[string]*models.Deployment),
		lookups: &LookupIndexes{
			ByAddress:  make(map[uint64]map[string]string),
			ByContract: make(map[string][]string),
		},
	}

	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return m, nil
}

// load reads the registry file
func (m *FileRepository) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload()
}

// reload replaces the in-memory state with the registry file; callers hold m.mu
func (m *FileRepository) reload() error {
	deployments := make(map[string]*models.Deployment)

	data, err := os.ReadFile(m.path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		if err := json.Unmarshal(data, &deployments); err != nil {
			return fmt.Errorf("failed to parse %s: %w", m.path(), err)
		}
		if deployments == nil {
			deployments = make(map[string]*models.Deployment)
		}
	}

	m.deployments = deployments
	m.rebuildLookups()
	return nil
}

// lock takes the cross-process registry lock
func (m *FileRepository) lock(ctx context.Context) (*flock.Flock, error) {
	if err := os.MkdirAll(m.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fileLock := flock.New(m.path() + ".lock")
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock registry: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock registry: %s is held by another process", fileLock.Path())
	}
	return fileLock, nil
}

func (m *FileRepository) path() string {
	return filepath.Join(m.dataDir, DeploymentsFile)
}

// save writes the registry file atomically
func (m *FileRepository) save() error {
	if err := os.MkdirAll(m.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(m.deployments, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first
	tmpPath := m.path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmpPath, m.path())
}

// rebuildLookups rebuilds all lookup indexes from the loaded data
func (m *FileRepository) rebuildLookups() {
	m.lookups.ByAddress = make(map[uint64]map[string]string)
	m.lookups.ByContract = make(map[string][]string)

	for id, dep := range m.deployments {
		if m.lookups.ByAddress[dep.ChainID] == nil {
			m.lookups.ByAddress[dep.ChainID] = make(map[string]string)
		}
		m.lookups.ByAddress[dep.ChainID][strings.ToLower(dep.Address)] = id
		m.lookups.ByContract[dep.ContractName] = append(m.lookups.ByContract[dep.ContractName], id)
	}
}

// GetDeployment retrieves a deployment by ID
func (m *FileRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dep, exists := m.deployments[id]
	if !exists {
		return nil, domain.ErrNotFound
	}

	// Clone to avoid mutations
	clone := *dep
	return &clone, nil
}

// GetDeploymentByAddress retrieves a deployment by chain ID and address
func (m *FileRepository) GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chainAddrs, exists := m.lookups.ByAddress[chainID]
	if !exists {
		return nil, fmt.Errorf("%w: no deployments on chain %d", domain.ErrNotFound, chainID)
	}

	id, exists := chainAddrs[strings.ToLower(address)]
	if !exists {
		return nil, fmt.Errorf("%w: deployment at address %s on chain %d", domain.ErrNotFound, address, chainID)
	}

	clone := *m.deployments[id]
	return &clone, nil
}

// ListDeployments retrieves deployments matching the filter, oldest first
func (m *FileRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := make([]string, 0, len(m.deployments))
	if filter.ContractName != "" {
		candidates = append(candidates, m.lookups.ByContract[filter.ContractName]...)
	} else {
		for id := range m.deployments {
			candidates = append(candidates, id)
		}
	}

	var result []*models.Deployment
	for _, id := range candidates {
		dep := m.deployments[id]
		if filter.Namespace != "" && dep.Namespace != filter.Namespace {
			continue
		}
		if filter.ChainID != 0 && dep.ChainID != filter.ChainID {
			continue
		}
		if filter.Label != "" && dep.Label != filter.Label {
			continue
		}

		clone := *dep
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// SaveDeployment saves or updates a deployment. The registry file is locked
// and re-read first so records written by other processes since load are
// kept. A new record (zero CreatedAt) whose ID was taken meanwhile moves to
// the next free label; deployment.ID and Label are updated in place.
func (m *FileRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	if deployment.ID == "" {
		return fmt.Errorf("deployment has no ID")
	}

	fileLock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = fileLock.Unlock() }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(); err != nil {
		return fmt.Errorf("failed to reload registry: %w", err)
	}

	if deployment.CreatedAt.IsZero() {
		if _, taken := m.deployments[deployment.ID]; taken {
			label := m.nextFreeLabel(deployment.Namespace, deployment.ChainID, deployment.ContractName, baseLabel(deployment.Label))
			deployment.Label = label
			deployment.ID = models.BuildDeploymentID(deployment.Namespace, deployment.ChainID, deployment.ContractName, label)
		}
		deployment.CreatedAt = time.Now()
	}
	deployment.UpdatedAt = time.Now()

	stored := *deployment
	m.deployments[deployment.ID] = &stored

	m.rebuildLookups()

	return m.save()
}

// NextLabel returns label if its ID is free, otherwise the first free
// "label-N" (or "N" for an empty label) starting at 2
func (m *FileRepository) NextLabel(ctx context.Context, namespace string, chainID uint64, contractName, label string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Best effort, SaveDeployment checks again under the file lock
	_ = m.reload()

	return m.nextFreeLabel(namespace, chainID, contractName, label)
}

// nextFreeLabel implements NextLabel on the loaded state; callers hold m.mu
func (m *FileRepository) nextFreeLabel(namespace string, chainID uint64, contractName, label string) string {
	if _, taken := m.deployments[models.BuildDeploymentID(namespace, chainID, contractName, label)]; !taken {
		return label
	}

	for n := 2; ; n++ {
		candidate := strconv.Itoa(n)
		if label != "" {
			candidate = label + "-" + candidate
		}
		if _, taken := m.deployments[models.BuildDeploymentID(namespace, chainID, contractName, candidate)]; !taken {
			return candidate
		}
	}
}

// baseLabel strips a numeric suffix added by NextLabel: "2" -> "", "v1-3" -> "v1"
func baseLabel(label string) string {
	if _, err := strconv.Atoi(label); err == nil {
		return ""
	}
	if i := strings.LastIndex(label, "-"); i > 0 {
		if _, err := strconv.Atoi(label[i+1:]); err == nil {
			return label[:i]
		}
	}
	return label
}

// Ensure the repository implements the interface
var _ usecase.DeploymentRepository = (*FileRepository)(nil)
