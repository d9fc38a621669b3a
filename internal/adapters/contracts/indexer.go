package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// Indexer discovers compilation artifacts and indexes them by contract name
type Indexer struct {
	projectRoot string
	dirs        []string
	log         *slog.Logger

	mu            sync.RWMutex
	indexed       bool
	contracts     map[string]*models.ContractFactory   // key: "path:Name"
	contractNames map[string][]*models.ContractFactory // key: contract name
	abstract      map[string]bool                      // names only seen without bytecode
	dbgFiles      map[string]string                    // artifact path -> hardhat .dbg.json path
}

// NewIndexer creates a new contract indexer over the configured artifact dirs
func NewIndexer(cfg *config.RuntimeConfig, log *slog.Logger) *Indexer {
	return &Indexer{
		projectRoot: cfg.ProjectRoot,
		dirs:        cfg.ArtifactDirs,
		log:         log,
	}
}

// rawArtifact covers both the Foundry and the Hardhat artifact layouts
type rawArtifact struct {
	Format         string                    `json:"_format"`
	ContractName   string                    `json:"contractName"`
	SourceName     string                    `json:"sourceName"`
	ABI            json.RawMessage           `json:"abi"`
	Bytecode       json.RawMessage           `json:"bytecode"`
	LinkReferences map[string]map[string]any `json:"linkReferences"`
	Metadata       json.RawMessage           `json:"metadata"`
	RawMetadata    string                    `json:"rawMetadata"`
}

type foundryBytecode struct {
	Object         string                    `json:"object"`
	LinkReferences map[string]map[string]any `json:"linkReferences"`
}

type foundryMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// EnsureIndexed indexes artifacts on first use
func (i *Indexer) EnsureIndexed() error {
	i.mu.RLock()
	done := i.indexed
	i.mu.RUnlock()
	if done {
		return nil
	}
	return i.Index()
}

// Index discovers all artifacts. Directories are scanned in order and the
// first artifact seen for a given "path:Name" wins.
func (i *Indexer) Index() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.contracts = make(map[string]*models.ContractFactory)
	i.contractNames = make(map[string][]*models.ContractFactory)
	i.abstract = make(map[string]bool)
	i.dbgFiles = make(map[string]string)

	scanned := 0
	for _, dir := range i.dirs {
		root := dir
		if !filepath.IsAbs(root) {
			root = filepath.Join(i.projectRoot, dir)
		}
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			i.log.Debug("artifact directory not present", "dir", root)
			continue
		}
		scanned++

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
				return nil
			}
			return i.processArtifact(path)
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}

	if scanned == 0 {
		return fmt.Errorf("no artifact directories found (looked in %s) - compile the contracts first",
			strings.Join(i.dirs, ", "))
	}

	i.indexed = true
	i.log.Debug("indexed artifacts", "contracts", len(i.contracts))
	return nil
}

// processArtifact processes a single artifact file
func (i *Indexer) processArtifact(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return err
	}

	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		// Skip unrelated json files
		return nil
	}
	if len(raw.ABI) == 0 || len(raw.Bytecode) == 0 {
		return nil
	}

	var factory *models.ContractFactory
	if strings.HasPrefix(raw.Format, "hh-sol-artifact") {
		factory, err = i.parseHardhat(artifactPath, &raw)
	} else {
		factory, err = i.parseFoundry(artifactPath, &raw)
	}
	if err != nil {
		i.log.Debug("skipping artifact", "path", artifactPath, "error", err)
		return nil
	}
	if factory == nil {
		return nil
	}

	key := factory.FullyQualifiedName()
	if _, exists := i.contracts[key]; exists {
		i.log.Debug("duplicate artifact ignored", "contract", key, "path", artifactPath)
		return nil
	}
	i.contracts[key] = factory
	i.contractNames[factory.Name] = append(i.contractNames[factory.Name], factory)
	delete(i.abstract, factory.Name)
	return nil
}

func (i *Indexer) parseFoundry(artifactPath string, raw *rawArtifact) (*models.ContractFactory, error) {
	var bytecode foundryBytecode
	if err := json.Unmarshal(raw.Bytecode, &bytecode); err != nil {
		return nil, fmt.Errorf("bytecode: %w", err)
	}

	// Foundry names artifacts "<Name>.json" or "<Name>.<solc version>.json"
	name := strings.SplitN(strings.TrimSuffix(filepath.Base(artifactPath), ".json"), ".", 2)[0]
	source := filepath.Base(filepath.Dir(artifactPath))
	var compiler string

	var meta foundryMetadata
	if len(raw.Metadata) > 0 && raw.Metadata[0] == '{' {
		_ = json.Unmarshal(raw.Metadata, &meta)
	} else if raw.RawMetadata != "" {
		_ = json.Unmarshal([]byte(raw.RawMetadata), &meta)
	}
	for src, contract := range meta.Settings.CompilationTarget {
		source = src
		name = contract
	}
	compiler = meta.Compiler.Version

	return i.buildFactory(name, source, artifactPath, models.ArtifactFormatFoundry, compiler, raw.ABI, bytecode.Object, bytecode.LinkReferences)
}

func (i *Indexer) parseHardhat(artifactPath string, raw *rawArtifact) (*models.ContractFactory, error) {
	var bytecode string
	if err := json.Unmarshal(raw.Bytecode, &bytecode); err != nil {
		return nil, fmt.Errorf("bytecode: %w", err)
	}
	if raw.ContractName == "" {
		return nil, fmt.Errorf("missing contractName")
	}

	factory, err := i.buildFactory(raw.ContractName, raw.SourceName, artifactPath, models.ArtifactFormatHardhat, "", raw.ABI, bytecode, raw.LinkReferences)
	if err != nil || factory == nil {
		return factory, err
	}

	dbg := strings.TrimSuffix(artifactPath, ".json") + ".dbg.json"
	if _, err := os.Stat(dbg); err == nil {
		i.dbgFiles[artifactPath] = dbg
	}
	return factory, nil
}

func (i *Indexer) buildFactory(
	name, source, artifactPath string,
	format models.ArtifactFormat,
	compiler string,
	rawABI json.RawMessage,
	bytecode string,
	linkRefs map[string]map[string]any,
) (*models.ContractFactory, error) {
	if bytecode == "" || bytecode == "0x" {
		if _, seen := i.contractNames[name]; !seen {
			i.abstract[name] = true
		}
		return nil, nil
	}

	parsed, err := abi.JSON(bytes.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("abi: %w", err)
	}

	factory := &models.ContractFactory{
		Name:            name,
		SourcePath:      source,
		ArtifactPath:    artifactPath,
		Format:          format,
		CompilerVersion: compiler,
		ABI:             parsed,
	}

	for file, libs := range linkRefs {
		for lib := range libs {
			factory.UnlinkedLibraries = append(factory.UnlinkedLibraries, fmt.Sprintf("%s:%s", file, lib))
		}
	}
	sort.Strings(factory.UnlinkedLibraries)

	// Placeholders are not valid hex; leave Bytecode empty and let the
	// resolver report which libraries are missing.
	if len(factory.UnlinkedLibraries) > 0 || strings.Contains(bytecode, "__") {
		if len(factory.UnlinkedLibraries) == 0 {
			factory.UnlinkedLibraries = []string{"<unknown>"}
		}
		return factory, nil
	}

	code, err := hexutil.Decode(ensureHexPrefix(bytecode))
	if err != nil {
		return nil, fmt.Errorf("bytecode: %w", err)
	}
	factory.Bytecode = code
	return factory, nil
}

// Find returns every contract matching a "Name" or "path:Name" reference
func (i *Indexer) Find(ref string) []*models.ContractFactory {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if idx := strings.LastIndex(ref, ":"); idx > 0 {
		path, name := ref[:idx], ref[idx+1:]
		return lo.Filter(i.contractNames[name], func(c *models.ContractFactory, _ int) bool {
			return c.SourcePath == path || strings.HasSuffix(c.SourcePath, "/"+path) || filepath.Base(c.SourcePath) == path
		})
	}
	return append([]*models.ContractFactory(nil), i.contractNames[ref]...)
}

// IsAbstract reports whether the name was only seen without creation bytecode
func (i *Indexer) IsAbstract(name string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.abstract[name]
}

// Names returns all indexed contract names, sorted
func (i *Indexer) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	names := lo.Keys(i.contractNames)
	sort.Strings(names)
	return names
}

// Suggest returns up to limit contract names fuzzily matching ref
func (i *Indexer) Suggest(ref string, limit int) []string {
	if idx := strings.LastIndex(ref, ":"); idx >= 0 {
		ref = ref[idx+1:]
	}
	names := i.Names()
	matches := fuzzy.Find(ref, names)
	if len(matches) == 0 {
		// fuzzy.Find needs ref to be a subsequence; fall back to prefix on lowercase
		lower := strings.ToLower(ref)
		return lo.Slice(lo.Filter(names, func(n string, _ int) bool {
			return strings.HasPrefix(strings.ToLower(n), lower[:min(len(lower), 3)])
		}), 0, limit)
	}
	return lo.Slice(lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str }), 0, limit)
}

// CompilerVersion resolves the solc version of a hardhat artifact through its
// .dbg.json build-info pointer
func (i *Indexer) CompilerVersion(factory *models.ContractFactory) string {
	if factory.CompilerVersion != "" {
		return factory.CompilerVersion
	}

	i.mu.RLock()
	dbg, ok := i.dbgFiles[factory.ArtifactPath]
	i.mu.RUnlock()
	if !ok {
		return ""
	}

	data, err := os.ReadFile(dbg)
	if err != nil {
		return ""
	}
	var pointer struct {
		BuildInfo string `json:"buildInfo"`
	}
	if err := json.Unmarshal(data, &pointer); err != nil || pointer.BuildInfo == "" {
		return ""
	}

	f, err := os.Open(filepath.Join(filepath.Dir(dbg), pointer.BuildInfo))
	if err != nil {
		return ""
	}
	defer f.Close()

	var info struct {
		SolcVersion     string `json:"solcVersion"`
		SolcLongVersion string `json:"solcLongVersion"`
	}
	if err := json.NewDecoder(f).Decode(&info); err != nil {
		return ""
	}
	if info.SolcLongVersion != "" {
		return info.SolcLongVersion
	}
	return info.SolcVersion
}

func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
