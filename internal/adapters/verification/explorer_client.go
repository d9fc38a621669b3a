package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// ExplorerClient queries Etherscan-compatible APIs for published source
type ExplorerClient struct {
	client *resty.Client
	log    *slog.Logger
}

// NewExplorerClient creates a new explorer API client
func NewExplorerClient(log *slog.Logger) *ExplorerClient {
	client := resty.New().
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Accept", "application/json")
	return &ExplorerClient{client: client, log: log}
}

// explorerResponse is the envelope of every Etherscan API answer. Result is a
// string on errors and a list on success.
type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type sourceCodeEntry struct {
	SourceCode   string `json:"SourceCode"`
	ContractName string `json:"ContractName"`
}

// IsVerified reports whether the explorer already has source for address
func (c *ExplorerClient) IsVerified(ctx context.Context, network *config.Network, address string) (bool, error) {
	if network.ExplorerAPIURL == "" {
		return false, fmt.Errorf("no explorer API configured for network %s", network.Name)
	}

	params := map[string]string{
		"module":  "contract",
		"action":  "getsourcecode",
		"address": address,
	}
	if strings.Contains(network.ExplorerAPIURL, "/v2/") {
		params["chainid"] = strconv.FormatUint(network.ChainID, 10)
	}
	if network.ExplorerAPIKey != "" {
		params["apikey"] = network.ExplorerAPIKey
	}

	var body explorerResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get(network.ExplorerAPIURL)
	if err != nil {
		return false, fmt.Errorf("explorer request failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("explorer returned HTTP %d", resp.StatusCode())
	}

	if body.Status != "1" {
		var reason string
		if err := json.Unmarshal(body.Result, &reason); err != nil || reason == "" {
			reason = body.Message
		}
		return false, fmt.Errorf("explorer error: %s", reason)
	}

	var entries []sourceCodeEntry
	if err := json.Unmarshal(body.Result, &entries); err != nil {
		return false, fmt.Errorf("failed to parse explorer response: %w", err)
	}

	verified := len(entries) > 0 && entries[0].SourceCode != ""
	c.log.Debug("explorer source lookup", "address", address, "verified", verified)
	return verified, nil
}

// Ensure the client implements the interface
var _ usecase.VerificationStatusChecker = (*ExplorerClient)(nil)
