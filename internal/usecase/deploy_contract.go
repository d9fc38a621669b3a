package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// VerifyConfirmations is waited for before verifying when neither the
// command nor the project sets a confirmation count
const VerifyConfirmations = 6

// DeployContractParams contains parameters for a single deployment
type DeployContractParams struct {
	ContractRef   string   // "Name" or "path/File.sol:Name"; empty means the project default
	Label         string   // registry label, auto-suffixed when taken
	Args          []string // raw constructor arguments in ABI order
	Sender        string   // named sender; empty picks the default
	Confirmations uint64   // blocks to wait after inclusion; 0 means the project default
	Verify        bool
	DryRun        bool
	Tags          []string
}

// DeployContractResult contains the outcome of a deployment
type DeployContractResult struct {
	Factory *models.ContractFactory
	Network *config.Network

	// Set on dry runs only
	Estimate *models.DeploymentEstimate

	// Set once the deployment is confirmed
	Receipt    *models.DeploymentReceipt
	Deployment *models.Deployment

	// Problems after confirmation that did not change the outcome
	Warnings []string
}

// Address returns the confirmed contract address, or the predicted one on dry runs
func (r *DeployContractResult) Address() string {
	switch {
	case r.Receipt != nil:
		return r.Receipt.Address.Hex()
	case r.Estimate != nil:
		return r.Estimate.PredictedAddress.Hex()
	default:
		return ""
	}
}

// DeployContract resolves a contract factory, submits exactly one creation
// transaction and waits for it. Stages run strictly one after another and any
// failure before confirmation aborts the run without retry.
type DeployContract struct {
	config     *config.RuntimeConfig
	factories  ContractFactoryResolver
	argsParser ConstructorArgsParser
	networks   NetworkResolver
	senders    SenderProvider
	deployer   ContractDeployer
	repo       DeploymentRepository
	verifier   ContractVerifier
	sink       ProgressSink
	log        *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(
	cfg *config.RuntimeConfig,
	factories ContractFactoryResolver,
	argsParser ConstructorArgsParser,
	networks NetworkResolver,
	senders SenderProvider,
	deployer ContractDeployer,
	repo DeploymentRepository,
	verifier ContractVerifier,
	sink ProgressSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
		config:     cfg,
		factories:  factories,
		argsParser: argsParser,
		networks:   networks,
		senders:    senders,
		deployer:   deployer,
		repo:       repo,
		verifier:   verifier,
		sink:       sink,
		log:        log,
	}
}

// Run executes the deployment pipeline
func (uc *DeployContract) Run(ctx context.Context, params DeployContractParams) (*DeployContractResult, error) {
	ref := params.ContractRef
	if ref == "" {
		ref = uc.config.DefaultContract
	}

	// Resolve the factory before touching the network
	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageResolving, Message: fmt.Sprintf("Resolving %s", ref), Spinner: true})
	factory, err := uc.factories.GetContractFactory(ctx, ref)
	if err != nil {
		return nil, err
	}

	args, packedArgs, err := uc.argsParser.ParseConstructorArgs(factory, params.Args)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageConnecting, Message: "Connecting to network", Spinner: true})
	network, err := uc.networks.ResolveNetwork(ctx, uc.config.NetworkName)
	if err != nil {
		return nil, err
	}
	if err := uc.deployer.Connect(ctx, network); err != nil {
		return nil, err
	}
	defer uc.deployer.Close()

	opts, err := uc.senders.TransactOpts(ctx, params.Sender, network.ChainID)
	if err != nil {
		return nil, err
	}

	result := &DeployContractResult{Factory: factory, Network: network}

	if params.DryRun {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageDeploying, Message: "Estimating gas", Spinner: true})
		estimate, err := uc.deployer.Estimate(ctx, factory, opts, args)
		if err != nil {
			return nil, err
		}
		result.Estimate = estimate
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageCompleted})
		return result, nil
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageDeploying, Message: fmt.Sprintf("Submitting %s to %s", factory.Name, network.Name), Spinner: true})
	pending, err := uc.deployer.Deploy(ctx, factory, opts, args)
	if err != nil {
		return nil, err
	}
	uc.log.Debug("deployment submitted", "tx", pending.TxHash().Hex(), "nonce", pending.Nonce)

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageDeploying, Message: fmt.Sprintf("Waiting for %s", pending.TxHash().Hex()), Spinner: true})
	receipt, err := uc.deployer.WaitForDeployment(ctx, pending)
	if err != nil {
		return nil, err
	}

	confirmations := params.Confirmations
	if confirmations == 0 {
		confirmations = uc.config.DefaultConfirmations
	}
	if confirmations == 0 && params.Verify && !network.IsLocal() {
		// Explorers index a few blocks behind the head
		confirmations = VerifyConfirmations
	}
	if confirmations > 1 {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageConfirming, Message: fmt.Sprintf("Waiting for %d confirmations", confirmations), Spinner: true})
		if err := uc.deployer.WaitForConfirmations(ctx, receipt, confirmations); err != nil {
			return nil, err
		}
	}
	result.Receipt = receipt

	// The contract exists from here on; later problems are only warnings
	record := uc.buildRecord(ctx, params, factory, network, pending, receipt, packedArgs)
	result.Deployment = record

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageRecording, Message: fmt.Sprintf("Recording %s", record.ID)})
	if err := uc.repo.SaveDeployment(ctx, record); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to record deployment: %v", err))
	}

	if params.Verify {
		uc.verify(ctx, result)
	}

	// The renderer prints warnings, the log only traces them
	for _, warning := range result.Warnings {
		uc.log.Debug("deployment warning", "warning", warning)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageCompleted})
	return result, nil
}

func (uc *DeployContract) buildRecord(
	ctx context.Context,
	params DeployContractParams,
	factory *models.ContractFactory,
	network *config.Network,
	pending *models.PendingDeployment,
	receipt *models.DeploymentReceipt,
	packedArgs []byte,
) *models.Deployment {
	namespace := uc.config.Namespace
	label := uc.repo.NextLabel(ctx, namespace, network.ChainID, factory.Name, params.Label)
	if label != params.Label {
		uc.log.Debug("label taken, using next free one", "requested", params.Label, "label", label)
	}

	record := &models.Deployment{
		ID:           models.BuildDeploymentID(namespace, network.ChainID, factory.Name, label),
		Namespace:    namespace,
		ChainID:      network.ChainID,
		NetworkName:  network.Name,
		ContractName: factory.Name,
		Label:        label,
		Address:      receipt.Address.Hex(),
		Deployer:     pending.From.Hex(),
		TxHash:       receipt.TransactionHash.Hex(),
		BlockNumber:  receipt.BlockNumber,
		GasUsed:      receipt.GasUsed,
		Artifact: models.ArtifactInfo{
			Path:            factory.FullyQualifiedName(),
			Format:          factory.Format,
			CompilerVersion: factory.CompilerVersion,
			BytecodeHash:    factory.BytecodeHash().Hex(),
		},
		Verification: models.VerificationInfo{Status: models.VerificationStatusUnverified},
		Tags:         normalizeTags(params.Tags),
	}
	if len(packedArgs) > 0 {
		record.ConstructorArgs = hexutil.Encode(packedArgs)
		record.ConstructorArgsRaw = params.Args
	}
	return record
}

// verify runs explorer verification on the recorded deployment. Failures are
// collected as warnings on the result.
func (uc *DeployContract) verify(ctx context.Context, result *DeployContractResult) {
	if result.Network.IsLocal() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("skipping verification on local network %s", result.Network.Name))
		return
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageVerifying, Message: fmt.Sprintf("Verifying %s", result.Deployment.Address), Spinner: true})
	if err := uc.verifier.Verify(ctx, result.Deployment, result.Network); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("verification failed: %v", err))
	}

	// Persist whatever the verifiers reported
	if err := uc.repo.SaveDeployment(ctx, result.Deployment); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to record verification: %v", err))
	}
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
