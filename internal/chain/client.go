package chain

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/config"
	"github.com/blues/takeover/internal/logger"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client Solana JSON-RPC 客户端。go-ethereum 的 rpc 包是通用的 JSON-RPC 2.0 实现，
// 这里只用它做传输和编解码。
type Client struct {
	rpc        *rpc.Client
	commitment string
	timeout    time.Duration
}

// TokenSupply getTokenSupply 结果
type TokenSupply struct {
	Amount   *big.Int
	Decimals int
	Slot     uint64
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

type tokenAmount struct {
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
}

type tokenSupplyResult struct {
	Context rpcContext  `json:"context"`
	Value   tokenAmount `json:"value"`
}

type accountInfo struct {
	Data     []string `json:"data"` // [payload, encoding]
	Owner    string   `json:"owner"`
	Lamports uint64   `json:"lamports"`
}

type accountInfoResult struct {
	Context rpcContext   `json:"context"`
	Value   *accountInfo `json:"value"`
}

// Dial 连接 RPC 节点
func Dial(ctx context.Context, cfg config.ChainConfig) (*Client, error) {
	logger.Info("Connecting to Solana RPC %s (commitment: %s)", cfg.RpcUrl, cfg.Commitment)

	client, err := rpc.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc %s: %w", cfg.RpcUrl, err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	commitment := cfg.Commitment
	if commitment == "" {
		commitment = "confirmed"
	}
	return &Client{rpc: client, commitment: commitment, timeout: timeout}, nil
}

// Close 关闭连接
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// GetSlot 最新 slot，用于健康检查
func (c *Client) GetSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	err := c.call(ctx, &slot, "getSlot", map[string]string{"commitment": c.commitment})
	return slot, err
}

// GetTokenSupply 查询 mint 当前流通总量
func (c *Client) GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error) {
	if _, err := calc.ParseAddress("mint", mint); err != nil {
		return nil, err
	}

	var res tokenSupplyResult
	if err := c.call(ctx, &res, "getTokenSupply", mint, map[string]string{"commitment": c.commitment}); err != nil {
		return nil, err
	}

	amount, ok := new(big.Int).SetString(res.Value.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("getTokenSupply: invalid amount %q", res.Value.Amount)
	}
	return &TokenSupply{Amount: amount, Decimals: res.Value.Decimals, Slot: res.Context.Slot}, nil
}

// GetTakeoverAccount 读取并解析链上众筹账户
func (c *Client) GetTakeoverAccount(ctx context.Context, address string) (*TakeoverAccount, error) {
	if _, err := calc.ParseAddress("address", address); err != nil {
		return nil, err
	}

	var res accountInfoResult
	params := map[string]string{"encoding": "base64", "commitment": c.commitment}
	if err := c.call(ctx, &res, "getAccountInfo", address, params); err != nil {
		return nil, err
	}
	if res.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if len(res.Value.Data) != 2 || res.Value.Data[1] != "base64" {
		return nil, fmt.Errorf("%w: unexpected data encoding", ErrInvalidAccount)
	}

	raw, err := base64.StdEncoding.DecodeString(res.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return DecodeTakeoverAccount(raw)
}
