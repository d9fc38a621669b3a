package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// ArgsParser converts --arg strings into values accepted by abi.Pack
type ArgsParser struct{}

// NewArgsParser creates a new constructor argument parser
func NewArgsParser() *ArgsParser {
	return &ArgsParser{}
}

// ParseConstructorArgs parses raw values against the factory constructor and
// returns both the typed values and their ABI encoding.
func (p *ArgsParser) ParseConstructorArgs(factory *models.ContractFactory, raw []string) ([]any, []byte, error) {
	inputs := factory.ABI.Constructor.Inputs
	if len(raw) != len(inputs) {
		return nil, nil, fmt.Errorf("%w: %s constructor takes %d argument(s) (%s), got %d",
			domain.ErrInvalidConstructorArgs, factory.Name, len(inputs), Signature(inputs), len(raw))
	}
	if len(inputs) == 0 {
		return nil, nil, nil
	}

	values := make([]any, len(inputs))
	for i, input := range inputs {
		v, err := ParseValue(input.Type, raw[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, nil, fmt.Errorf("%w: %s (%s): %v", domain.ErrInvalidConstructorArgs, name, input.Type.String(), err)
		}
		values[i] = v
	}

	encoded, err := inputs.Pack(values...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidConstructorArgs, err)
	}
	return values, encoded, nil
}

// Signature renders "uint256 fee, address treasury"
func Signature(inputs abi.Arguments) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = strings.TrimSpace(in.Type.String() + " " + in.Name)
	}
	return strings.Join(parts, ", ")
}

// ParseValue converts a single string into the Go type abi.Pack expects for t
func ParseValue(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)

	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q", s)
		}
		return b, nil

	case abi.StringTy:
		return s, nil

	case abi.UintTy, abi.IntTy:
		return parseInteger(t, s)

	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes %q: %v", s, err)
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes%d %q: %v", t.Size, s, err)
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("value has %d bytes, bytes%d holds %d", len(b), t.Size, t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.SliceTy, abi.ArrayTy:
		return parseList(t, s)

	default:
		return nil, fmt.Errorf("type %s is not supported on the command line", t.String())
	}
}

func parseInteger(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}

	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("%s cannot be negative", t.String())
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s overflows %s", s, t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		minimum := new(big.Int).Neg(limit)
		if n.Cmp(limit) >= 0 || n.Cmp(minimum) < 0 {
			return nil, fmt.Errorf("%s overflows %s", s, t.String())
		}
	}

	// go-ethereum packs 8/16/32/64 bit integers from native types and
	// everything else from *big.Int
	switch t.GetType().Kind() {
	case reflect.Uint8:
		return uint8(n.Uint64()), nil
	case reflect.Uint16:
		return uint16(n.Uint64()), nil
	case reflect.Uint32:
		return uint32(n.Uint64()), nil
	case reflect.Uint64:
		return n.Uint64(), nil
	case reflect.Int8:
		return int8(n.Int64()), nil
	case reflect.Int16:
		return int16(n.Int64()), nil
	case reflect.Int32:
		return int32(n.Int64()), nil
	case reflect.Int64:
		return n.Int64(), nil
	default:
		return n, nil
	}
}

// parseList accepts "[a,b,c]" or "a,b,c" for one-dimensional arrays
func parseList(t abi.Type, s string) (any, error) {
	elem := t.Elem
	if elem == nil {
		return nil, fmt.Errorf("invalid list type %s", t.String())
	}
	switch elem.T {
	case abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return nil, fmt.Errorf("nested type %s is not supported on the command line", t.String())
	}

	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	var items []string
	if strings.TrimSpace(s) != "" {
		items = strings.Split(s, ",")
	}

	if t.T == abi.ArrayTy && len(items) != t.Size {
		return nil, fmt.Errorf("%s needs exactly %d elements, got %d", t.String(), t.Size, len(items))
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}
	for i, item := range items {
		v, err := ParseValue(*elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(v))
	}
	return out.Interface(), nil
}

// Ensure the parser implements the interface
var _ usecase.ConstructorArgsParser = (*ArgsParser)(nil)
