package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
)

// TakeoverAccountSize 链上 Takeover 账户数据长度
const TakeoverAccountSize = 8 + 32*3 + 8*7 + 8*2 + 2*2 + 1*2

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidAccount  = errors.New("invalid takeover account data")

	takeoverDiscriminator = accountDiscriminator("Takeover")
)

// TakeoverAccount 链上众筹账户
type TakeoverAccount struct {
	Authority   string
	V1TokenMint string
	RewardVault string

	TotalSupply              *big.Int
	GoalAmount               *big.Int
	RewardPoolTokens         *big.Int
	LiquidityPoolTokens      *big.Int
	MaxSafeTotalContribution *big.Int
	TotalContributed         *big.Int
	ContributorCount         uint64

	StartTime int64
	EndTime   int64

	RewardRateBp          uint16
	TargetParticipationBp uint16

	IsFinalized  bool
	IsSuccessful bool
}

// accountDiscriminator Anchor 账户前 8 字节：sha256("account:<Name>")[:8]
func accountDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:8]
}

// DecodeTakeoverAccount 解析账户原始数据（小端序）
func DecodeTakeoverAccount(data []byte) (*TakeoverAccount, error) {
	if len(data) < TakeoverAccountSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAccount, len(data), TakeoverAccountSize)
	}
	if !bytes.Equal(data[:8], takeoverDiscriminator) {
		return nil, fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccount)
	}

	r := reader{buf: data[8:]}
	acc := &TakeoverAccount{
		Authority:   r.pubkey(),
		V1TokenMint: r.pubkey(),
		RewardVault: r.pubkey(),
	}
	acc.TotalSupply = r.u64Big()
	acc.GoalAmount = r.u64Big()
	acc.RewardPoolTokens = r.u64Big()
	acc.LiquidityPoolTokens = r.u64Big()
	acc.MaxSafeTotalContribution = r.u64Big()
	acc.TotalContributed = r.u64Big()
	acc.ContributorCount = r.u64()
	acc.StartTime = int64(r.u64())
	acc.EndTime = int64(r.u64())
	acc.RewardRateBp = r.u16()
	acc.TargetParticipationBp = r.u16()
	acc.IsFinalized = r.u8() != 0
	acc.IsSuccessful = r.u8() != 0
	return acc, nil
}

// EncodeTakeoverAccount DecodeTakeoverAccount 的逆操作
func EncodeTakeoverAccount(acc *TakeoverAccount) ([]byte, error) {
	buf := make([]byte, 0, TakeoverAccountSize)
	buf = append(buf, takeoverDiscriminator...)
	for _, key := range []string{acc.Authority, acc.V1TokenMint, acc.RewardVault} {
		raw, err := base58.Decode(key)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("invalid public key %q", key)
		}
		buf = append(buf, raw...)
	}
	for _, n := range []*big.Int{
		acc.TotalSupply, acc.GoalAmount, acc.RewardPoolTokens, acc.LiquidityPoolTokens,
		acc.MaxSafeTotalContribution, acc.TotalContributed,
	} {
		if n == nil {
			n = new(big.Int)
		}
		if n.Sign() < 0 || !n.IsUint64() {
			return nil, fmt.Errorf("amount %s does not fit in u64", n)
		}
		buf = binary.LittleEndian.AppendUint64(buf, n.Uint64())
	}
	buf = binary.LittleEndian.AppendUint64(buf, acc.ContributorCount)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(acc.StartTime))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(acc.EndTime))
	buf = binary.LittleEndian.AppendUint16(buf, acc.RewardRateBp)
	buf = binary.LittleEndian.AppendUint16(buf, acc.TargetParticipationBp)
	buf = append(buf, boolByte(acc.IsFinalized), boolByte(acc.IsSuccessful))
	return buf, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// reader 调用方保证长度足够
type reader struct {
	buf []byte
	off int
}

func (r *reader) next(n int) []byte {
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) pubkey() string { return base58.Encode(r.next(32)) }

func (r *reader) u64() uint64 { return binary.LittleEndian.Uint64(r.next(8)) }

func (r *reader) u64Big() *big.Int { return new(big.Int).SetUint64(r.u64()) }

func (r *reader) u16() uint16 { return binary.LittleEndian.Uint16(r.next(2)) }

func (r *reader) u8() byte { return r.next(1)[0] }
