package network

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/samber/lo"
	cfgpkg "github.com/trebuchet-org/nft-deployer/internal/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

const (
	// DefaultNetwork is used when no --network is given
	DefaultNetwork = "localhost"

	localRPCURL      = "http://127.0.0.1:8545"
	chainIDCacheFile = "chain-ids.json"
)

// builtin networks, overridable from foundry.toml [rpc_endpoints]
var defaultEndpoints = map[string]string{
	"localhost": localRPCURL,
	"anvil":     localRPCURL,
	"hardhat":   localRPCURL,
}

// ChainIDFetcher asks an RPC endpoint for its chain ID
type ChainIDFetcher func(ctx context.Context, rpcURL string) (uint64, error)

// chainIDCache caches chain ID lookups of remote networks
type chainIDCache struct {
	Networks  map[string]uint64 `json:"networks"` // name -> chainID
	RPCs      map[string]uint64 `json:"rpcs"`     // keccak of expanded rpc URL -> chainID
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Resolver resolves network names to configurations with caching
type Resolver struct {
	cfg          *config.RuntimeConfig
	log          *slog.Logger
	fetchChainID ChainIDFetcher

	mu    sync.Mutex
	cache *chainIDCache
}

// NewResolver creates a new network resolver
func NewResolver(cfg *config.RuntimeConfig, log *slog.Logger) *Resolver {
	return NewResolverWithFetcher(cfg, log, DialChainID)
}

// NewResolverWithFetcher creates a resolver with a custom chain ID lookup
func NewResolverWithFetcher(cfg *config.RuntimeConfig, log *slog.Logger, fetch ChainIDFetcher) *Resolver {
	return &Resolver{
		cfg:          cfg,
		log:          log,
		fetchChainID: fetch,
	}
}

// DialChainID fetches eth_chainId through ethclient
func DialChainID(ctx context.Context, rpcURL string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return chainID.Uint64(), nil
}

// GetNetworks returns all configured network names, sorted
func (r *Resolver) GetNetworks(ctx context.Context) []string {
	names := lo.Keys(defaultEndpoints)
	if r.cfg.FoundryConfig != nil {
		names = append(names, lo.Keys(r.cfg.FoundryConfig.RpcEndpoints)...)
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// ResolveNetwork resolves a network name or raw RPC URL. An empty name
// resolves the default local network.
func (r *Resolver) ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error) {
	if networkName == "" {
		networkName = DefaultNetwork
	}

	name, rawURL, err := r.lookup(networkName)
	if err != nil {
		return nil, err
	}

	rpcURL, err := cfgpkg.ExpandValue(rawURL)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", name, err)
	}

	chainID, err := r.chainID(ctx, name, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", name, err)
	}

	network := &config.Network{
		ChainID:     chainID,
		Name:        name,
		RPCURL:      rpcURL,
		ExplorerURL: ExplorerURL(chainID),
	}
	r.applyExplorerAPI(network)

	r.log.Debug("resolved network", "network", name, "chainId", chainID)
	return network, nil
}

func (r *Resolver) lookup(networkName string) (name, rawURL string, err error) {
	if isRPCURL(networkName) {
		u, err := url.Parse(networkName)
		if err != nil {
			return "", "", fmt.Errorf("invalid RPC URL: %w", err)
		}
		return u.Hostname(), networkName, nil
	}

	if r.cfg.FoundryConfig != nil {
		if endpoint, ok := r.cfg.FoundryConfig.RpcEndpoints[networkName]; ok {
			return networkName, endpoint, nil
		}
	}
	if endpoint, ok := defaultEndpoints[networkName]; ok {
		return networkName, endpoint, nil
	}

	return "", "", fmt.Errorf("%w: %s (available: %s; add %s = \"${%s}\" to [rpc_endpoints] in foundry.toml)",
		domain.ErrNetworkNotConfigured, networkName, strings.Join(r.GetNetworks(context.Background()), ", "),
		networkName, cfgpkg.GenerateEnvVarName(networkName))
}

// EndpointEnvVar returns the env variable an endpoint is read from, if the
// endpoint is a plain ${VAR} reference
func (r *Resolver) EndpointEnvVar(networkName string) string {
	if r.cfg.FoundryConfig == nil {
		return ""
	}
	envVar, _ := cfgpkg.DetectEnvVar(r.cfg.FoundryConfig.RpcEndpoints[networkName])
	return envVar
}

// chainID returns the cached chain ID of a remote network or asks the RPC.
// Entries are keyed on a hash of the expanded URL, which keeps API keys off
// disk. Local endpoints are never cached since dev chains get restarted.
func (r *Resolver) chainID(ctx context.Context, name, rpcURL string) (uint64, error) {
	cacheable := !isLocalURL(rpcURL)
	key := rpcCacheKey(rpcURL)

	if cacheable {
		r.mu.Lock()
		r.loadCache()
		id, ok := r.cache.RPCs[key]
		r.mu.Unlock()
		if ok {
			return id, nil
		}
	}

	id, err := r.fetchChainID(ctx, rpcURL)
	if err != nil {
		return 0, err
	}

	if cacheable {
		r.mu.Lock()
		r.cache.Networks[name] = id
		r.cache.RPCs[key] = id
		r.cache.UpdatedAt = time.Now()
		if err := r.saveCache(); err != nil {
			r.log.Debug("failed to save chain ID cache", "error", err)
		}
		r.mu.Unlock()
	}
	return id, nil
}

// applyExplorerAPI fills the verification API endpoint and key. foundry.toml
// [etherscan.<network>] wins over the Etherscan v2 multichain API.
func (r *Resolver) applyExplorerAPI(network *config.Network) {
	if network.IsLocal() {
		return
	}

	network.ExplorerAPIURL = config.EtherscanV2APIURL
	network.ExplorerAPIKey = os.Getenv("ETHERSCAN_API_KEY")

	if r.cfg.FoundryConfig == nil {
		return
	}
	if ec, ok := r.cfg.FoundryConfig.Etherscan[network.Name]; ok {
		if ec.URL != "" {
			network.ExplorerAPIURL = ec.URL
		}
		if ec.Key != "" {
			network.ExplorerAPIKey = ec.Key
		}
	}
}

func rpcCacheKey(rpcURL string) string {
	return crypto.Keccak256Hash([]byte(rpcURL)).Hex()
}

func (r *Resolver) cachePath() string {
	if r.cfg.DataDir == "" {
		return ""
	}
	return filepath.Join(r.cfg.DataDir, chainIDCacheFile)
}

// loadCache loads the chain ID cache from disk once; callers hold r.mu
func (r *Resolver) loadCache() {
	if r.cache != nil {
		return
	}
	r.cache = &chainIDCache{
		Networks: make(map[string]uint64),
		RPCs:     make(map[string]uint64),
	}

	path := r.cachePath()
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var loaded chainIDCache
	if err := json.Unmarshal(data, &loaded); err != nil {
		r.log.Debug("ignoring invalid chain ID cache", "path", path, "error", err)
		return
	}
	if loaded.Networks != nil {
		r.cache.Networks = loaded.Networks
	}
	if loaded.RPCs != nil {
		r.cache.RPCs = loaded.RPCs
	}
	r.cache.UpdatedAt = loaded.UpdatedAt
}

// saveCache saves the cache to disk; callers hold r.mu
func (r *Resolver) saveCache() error {
	path := r.cachePath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExplorerURL returns the block explorer of well-known chains
func ExplorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 17000:
		return "https://holesky.etherscan.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 80002:
		return "https://amoy.polygonscan.com"
	case 8453:
		return "https://basescan.org"
	case 84532:
		return "https://sepolia.basescan.org"
	case 42161:
		return "https://arbiscan.io"
	case 421614:
		return "https://sepolia.arbiscan.io"
	case 43114:
		return "https://snowtrace.io"
	case 56:
		return "https://bscscan.com"
	case 250:
		return "https://ftmscan.com"
	case 42220:
		return "https://celoscan.io"
	default:
		return ""
	}
}

func isRPCURL(s string) bool {
	for _, prefix := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func isLocalURL(rpcURL string) bool {
	u, err := url.Parse(rpcURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "0.0.0.0" || host == "::1"
}

// Ensure the resolver implements the interface
var _ usecase.NetworkResolver = (*Resolver)(nil)
