package ethcall

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterABIJSON = `[
	{
		"inputs": [],
		"name": "value",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var counterABI = MustParseABI(counterABIJSON)

// stubCaller routes every call through a single handler.
type stubCaller struct {
	calls   int
	handler func(msg ethereum.CallMsg) ([]byte, error)
}

func (c *stubCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.handler(msg)
}

func TestContractCallUnpacksOutputs(t *testing.T) {
	target := common.HexToAddress("0x00000000000000000000000000000000000000AA")
	expected := big.NewInt(42)

	caller := &stubCaller{handler: func(msg ethereum.CallMsg) ([]byte, error) {
		require.NotNil(t, msg.To)
		assert.Equal(t, target, *msg.To)
		assert.Equal(t, counterABI.Methods["value"].ID, msg.Data[:4])
		return counterABI.Methods["value"].Outputs.Pack(expected)
	}}

	contract := NewContract(target, counterABI, caller, 0)
	out, err := contract.Call(context.Background(), "value")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Zero(t, expected.Cmp(out[0].(*big.Int)))
	assert.Equal(t, 1, caller.calls)
}

func TestContractCallWrapsCallerError(t *testing.T) {
	revert := errors.New("execution reverted")
	caller := &stubCaller{handler: func(ethereum.CallMsg) ([]byte, error) {
		return nil, revert
	}}

	contract := NewContract(common.Address{1}, counterABI, caller, 0)
	_, err := contract.Call(context.Background(), "value")
	require.Error(t, err)
	assert.ErrorIs(t, err, revert)
}

func TestContractCallEmptyReturnData(t *testing.T) {
	caller := &stubCaller{handler: func(ethereum.CallMsg) ([]byte, error) {
		return nil, nil
	}}

	contract := NewContract(common.Address{1}, counterABI, caller, 0)
	_, err := contract.Call(context.Background(), "value")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyReturnData)
}

func TestContractCallUnknownMethod(t *testing.T) {
	caller := &stubCaller{handler: func(ethereum.CallMsg) ([]byte, error) {
		t.Fatal("caller must not be reached for a pack failure")
		return nil, nil
	}}

	contract := NewContract(common.Address{1}, counterABI, caller, 0)
	_, err := contract.Call(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 0, caller.calls)
}

func TestContractCallHonorsCancelledContext(t *testing.T) {
	caller := &stubCaller{handler: func(ethereum.CallMsg) ([]byte, error) {
		return counterABI.Methods["value"].Outputs.Pack(big.NewInt(1))
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	contract := NewContract(common.Address{1}, counterABI, caller, 0)
	_, err := contract.Call(ctx, "value")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
