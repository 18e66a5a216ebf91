package gateway

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"review-core/internal/manifest"
	"review-core/internal/review"
	"review-core/internal/submit"
)

// Client is the JSON HTTP client for the network gateway. One value
// serves all three roles the review flow needs: preview, metadata, and
// submission.
type Client struct {
	baseURL string
	http    *http.Client

	networkID uint8
}

func NewClient(baseURL string, networkID uint8, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		networkID: networkID,
		http:      &http.Client{Timeout: timeout},
	}
}

type previewRequest struct {
	NetworkID uint8  `json:"network_id"`
	Manifest  string `json:"manifest"`
}

type wireEffect struct {
	AccountAddress   string          `json:"account_address"`
	ResourceAddress  string          `json:"resource_address"`
	Kind             string          `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	LocalIDs         []string        `json:"local_ids,omitempty"`
	Estimated        bool            `json:"estimated"`
	InstructionIndex uint64          `json:"instruction_index,omitempty"`
}

type wireInstruction struct {
	Kind    string           `json:"kind"`
	Address string           `json:"address,omitempty"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Raw     string           `json:"raw,omitempty"`
}

type previewResponse struct {
	Withdrawals          []wireEffect      `json:"withdrawals"`
	Deposits             []wireEffect      `json:"deposits"`
	EncounteredAddresses []string          `json:"encountered_addresses"`
	ProofResources       []string          `json:"proof_resources"`
	FeeEstimate          decimal.Decimal   `json:"fee_estimate"`
	FeePayerAddress      string            `json:"fee_payer_address"`
	ManifestWithLockFee  []wireInstruction `json:"manifest_with_lock_fee"`
}

// PreviewManifest implements review.PreviewClient.
func (c *Client) PreviewManifest(ctx context.Context, m manifest.Manifest) (*review.PreviewResult, error) {
	var resp previewResponse
	err := c.post(ctx, "/transaction/preview", previewRequest{
		NetworkID: c.networkID,
		Manifest:  m.String(),
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := &review.PreviewResult{
		RawWithdrawals:       decodeEffects(resp.Withdrawals),
		RawDeposits:          decodeEffects(resp.Deposits),
		EncounteredAddresses: resp.EncounteredAddresses,
		ProofResources:       resp.ProofResources,
		FeeEstimate:          resp.FeeEstimate,
		FeePayerAddress:      resp.FeePayerAddress,
		ManifestWithLockFee:  decodeManifest(resp.ManifestWithLockFee),
	}
	return out, nil
}

func decodeEffects(in []wireEffect) []review.RawEffect {
	out := make([]review.RawEffect, 0, len(in))
	for _, e := range in {
		kind := review.ResourceFungible
		if e.Kind == "non_fungible" {
			kind = review.ResourceNonFungible
		}
		certainty := review.Exact()
		if e.Estimated {
			certainty = review.Estimated(manifest.InstructionIndex(e.InstructionIndex))
		}
		out = append(out, review.RawEffect{
			AccountAddress: e.AccountAddress,
			Specifier: review.ResourceSpecifier{
				ResourceAddress: e.ResourceAddress,
				Kind:            kind,
				Amount:          e.Amount,
				LocalIDs:        e.LocalIDs,
			},
			Certainty: certainty,
		})
	}
	return out
}

func decodeManifest(in []wireInstruction) manifest.Manifest {
	out := make([]manifest.Instruction, 0, len(in))
	for _, ins := range in {
		kind := manifest.InstructionKind(ins.Kind)
		switch kind {
		case manifest.KindCallMethod, manifest.KindTakeFromWorktop,
			manifest.KindAssertWorktopContains, manifest.KindLockFee:
		default:
			kind = manifest.KindOther
		}
		out = append(out, manifest.Instruction{
			Kind:    kind,
			Address: ins.Address,
			Amount:  ins.Amount,
			Raw:     ins.Raw,
		})
	}
	return manifest.Manifest{Instructions: out}
}

type entityRequest struct {
	NetworkID uint8  `json:"network_id"`
	Address   string `json:"address"`
}

type resourceMetadataResponse struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	IconURL      string `json:"icon_url"`
	Kind         string `json:"kind"`
	Divisibility int32  `json:"divisibility"`
}

// FetchResourceMetadata implements review.MetadataClient.
func (c *Client) FetchResourceMetadata(ctx context.Context, resourceAddress string) (*review.ResourceMetadata, error) {
	var resp resourceMetadataResponse
	err := c.post(ctx, "/state/resource", entityRequest{NetworkID: c.networkID, Address: resourceAddress}, &resp)
	if err != nil {
		return nil, err
	}

	kind := review.ResourceFungible
	if resp.Kind == "non_fungible" {
		kind = review.ResourceNonFungible
	}
	return &review.ResourceMetadata{
		Name:         resp.Name,
		Symbol:       resp.Symbol,
		IconURL:      resp.IconURL,
		Kind:         kind,
		Divisibility: resp.Divisibility,
	}, nil
}

type entityMetadataResponse struct {
	Name        string `json:"name"`
	IconURL     string `json:"icon_url"`
	Description string `json:"description"`
}

// FetchEntityMetadata implements review.MetadataClient.
func (c *Client) FetchEntityMetadata(ctx context.Context, address string) (*review.EntityMetadata, error) {
	var resp entityMetadataResponse
	err := c.post(ctx, "/state/entity", entityRequest{NetworkID: c.networkID, Address: address}, &resp)
	if err != nil {
		return nil, err
	}
	return &review.EntityMetadata{
		Name:        resp.Name,
		IconURL:     resp.IconURL,
		Description: resp.Description,
	}, nil
}

type submitRequest struct {
	NetworkID  uint8  `json:"network_id"`
	PayloadHex string `json:"notarized_payload_hex"`
	IntentID   string `json:"intent_id"`
}

type submitResponse struct {
	Duplicate bool   `json:"duplicate"`
	Rejected  bool   `json:"rejected"`
	Reason    string `json:"reason"`
}

// Submit implements submit.SubmitClient.
func (c *Client) Submit(ctx context.Context, payload *submit.SignedPayload) (*submit.SubmitResult, error) {
	var resp submitResponse
	err := c.post(ctx, "/transaction/submit", submitRequest{
		NetworkID:  c.networkID,
		PayloadHex: hex.EncodeToString(payload.Payload),
		IntentID:   payload.IntentID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &submit.SubmitResult{
		Duplicate: resp.Duplicate,
		Rejected:  resp.Rejected,
		Reason:    resp.Reason,
	}, nil
}

type statusRequest struct {
	NetworkID uint8  `json:"network_id"`
	IntentID  string `json:"intent_id"`
}

type statusResponse struct {
	Status string `json:"status"` // Pending | Committed | PermanentFailure
	TxID   string `json:"tx_id"`
	Reason string `json:"reason"`
}

// PollStatus implements submit.SubmitClient.
func (c *Client) PollStatus(ctx context.Context, intentID string) (*submit.Status, error) {
	var resp statusResponse
	err := c.post(ctx, "/transaction/status", statusRequest{NetworkID: c.networkID, IntentID: intentID}, &resp)
	if err != nil {
		return nil, err
	}

	out := &submit.Status{TxID: resp.TxID, Reason: resp.Reason}
	switch resp.Status {
	case "Committed":
		out.Committed = true
	case "PermanentFailure":
		out.PermanentFailure = true
	default:
		out.Pending = true
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway %s: status %d: %s", path, resp.StatusCode, snippet)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
