package calc

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

// maxUint64 链上金额上限（u64）
var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// maxExactFloat float64 能精确表示的最大整数 2^53
const maxExactFloat = 1 << 53

// ParseAmount 将字符串、数字或大整数规范化为精确的大整数，缺失视为错误
func ParseAmount(field string, v any) (*big.Int, error) {
	if isMissing(v) {
		return nil, malformedError(field, fmt.Sprintf("%s is required", field))
	}
	return parseAmount(field, v)
}

// ParseOptionalAmount 同 ParseAmount，但缺失时返回 0（用于累计类字段）
func ParseOptionalAmount(field string, v any) (*big.Int, error) {
	if isMissing(v) {
		return new(big.Int), nil
	}
	return parseAmount(field, v)
}

func isMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case json.Number:
		return strings.TrimSpace(string(t)) == ""
	case *big.Int:
		return t == nil
	}
	return false
}

func parseAmount(field string, v any) (*big.Int, error) {
	var n *big.Int

	switch t := v.(type) {
	case string:
		return parseDecimalString(field, t)
	case json.Number:
		return parseDecimalString(field, string(t))
	case *big.Int:
		n = new(big.Int).Set(t)
	case big.Int:
		n = new(big.Int).Set(&t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return nil, malformedError(field, fmt.Sprintf("%s must be a whole number of smallest units", field))
		}
		if math.Abs(t) > maxExactFloat {
			return nil, malformedError(field, fmt.Sprintf("%s is too large to be sent as a JSON number, send it as a string", field))
		}
		n = big.NewInt(int64(t))
	case float32:
		return parseAmount(field, float64(t))
	case int:
		n = big.NewInt(int64(t))
	case int8:
		n = big.NewInt(int64(t))
	case int16:
		n = big.NewInt(int64(t))
	case int32:
		n = big.NewInt(int64(t))
	case int64:
		n = big.NewInt(t)
	case uint:
		n = new(big.Int).SetUint64(uint64(t))
	case uint8:
		n = new(big.Int).SetUint64(uint64(t))
	case uint16:
		n = new(big.Int).SetUint64(uint64(t))
	case uint32:
		n = new(big.Int).SetUint64(uint64(t))
	case uint64:
		n = new(big.Int).SetUint64(t)
	default:
		return nil, malformedError(field, fmt.Sprintf("%s has unsupported type %T", field, v))
	}

	return checkU64(field, n)
}

func parseDecimalString(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, malformedError(field, fmt.Sprintf("%s is required", field))
	}
	if s[0] == '-' {
		return nil, rangeError(field, fmt.Sprintf("%s must not be negative", field))
	}
	s = strings.TrimPrefix(s, "+")
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil, malformedError(field, fmt.Sprintf("%s must be a non-negative integer string", field))
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, malformedError(field, fmt.Sprintf("%s must be a non-negative integer string", field))
	}
	return checkU64(field, n)
}

func checkU64(field string, n *big.Int) (*big.Int, error) {
	if n.Sign() < 0 {
		return nil, rangeError(field, fmt.Sprintf("%s must not be negative", field))
	}
	if n.Cmp(maxUint64) > 0 {
		return nil, rangeError(field, fmt.Sprintf("%s exceeds the maximum on-chain amount", field))
	}
	return n, nil
}

// FormatAmount 大整数的规范十进制字符串
func FormatAmount(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

// ParseTimestamp 规范化为 Unix 秒
func ParseTimestamp(field string, v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, malformedError(field, fmt.Sprintf("%s is required", field))
	case time.Time:
		if t.IsZero() {
			return 0, malformedError(field, fmt.Sprintf("%s is required", field))
		}
		if t.Unix() < 0 {
			return 0, rangeError(field, fmt.Sprintf("%s must not be before the epoch", field))
		}
		return t.Unix(), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, malformedError(field, fmt.Sprintf("%s must be whole seconds", field))
		}
	case float32:
		return ParseTimestamp(field, float64(t))
	}

	n, err := ParseAmount(field, v)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, rangeError(field, fmt.Sprintf("%s is out of range", field))
	}
	return n.Int64(), nil
}

// ParseAddress 校验 base58 编码的 32 字节公钥
func ParseAddress(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", malformedError(field, fmt.Sprintf("%s is required", field))
	}
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return "", malformedError(field, fmt.Sprintf("%s must be a base58 encoded 32-byte public key", field))
	}
	return s, nil
}
