package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/blues/takeover/internal/calc"
)

// Amount 链上最小单位的金额，数据库中存为 numeric(20,0)，JSON 中为十进制字符串
type Amount struct {
	v *big.Int
}

// NewAmount 拷贝一个大整数
func NewAmount(n *big.Int) Amount {
	if n == nil {
		return Amount{}
	}
	return Amount{v: new(big.Int).Set(n)}
}

// AmountPtr 返回可空字段使用的指针
func AmountPtr(n *big.Int) *Amount {
	if n == nil {
		return nil
	}
	a := NewAmount(n)
	return &a
}

// AmountFromInt64 便捷构造
func AmountFromInt64(n int64) Amount {
	return Amount{v: big.NewInt(n)}
}

// Big 返回拷贝，空值视为 0
func (a Amount) Big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.v)
}

// BigOrNil 可空字段取值
func (a *Amount) BigOrNil() *big.Int {
	if a == nil || a.v == nil {
		return nil
	}
	return new(big.Int).Set(a.v)
}

func (a Amount) String() string {
	return calc.FormatAmount(a.v)
}

// Cmp 比较大小
func (a Amount) Cmp(b Amount) int {
	return a.Big().Cmp(b.Big())
}

// Value 实现 driver.Valuer
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan 实现 sql.Scanner
func (a *Amount) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		a.v = nil
		return nil
	case int64:
		a.v = big.NewInt(t)
		return nil
	case float64:
		// sqlite 对超出 int64 的 NUMERIC 会退化为 REAL
		n, err := calc.ParseAmount("amount", strconv.FormatFloat(t, 'f', -1, 64))
		if err != nil {
			return fmt.Errorf("scan amount %v: %w", t, err)
		}
		a.v = n
		return nil
	case []byte:
		return a.scanString(string(t))
	case string:
		return a.scanString(t)
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
}

func (a *Amount) scanString(s string) error {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("scan amount: invalid value %q", s)
	}
	a.v = n
	return nil
}

// MarshalJSON 大整数以字符串形式输出，避免超过 2^53 时丢失精度
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON 接受字符串或数字
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		a.v = nil
		return nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	n, err := calc.ParseOptionalAmount("amount", raw)
	if err != nil {
		return err
	}
	a.v = n
	return nil
}
