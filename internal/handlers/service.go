package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"launchcontrol/pkg/launchpad"
)

var engine *launchpad.Engine

// Setup wires the trading engine into the HTTP handlers. Must be called
// before the router starts serving.
func Setup(e *launchpad.Engine) {
	engine = e
}

// parseWei parses a decimal wei amount from a request field.
func parseWei(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.New("amount is required")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.New("amount must be a decimal integer")
	}
	return v, nil
}

// parseAddress validates a 0x-prefixed hex address.
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.New("invalid address")
	}
	return common.HexToAddress(s), nil
}

// parseAssetID validates a 32-byte hex asset id.
func parseAssetID(s string) (common.Hash, error) {
	if !strings.HasPrefix(s, "0x") || len(s) != 66 {
		return common.Hash{}, errors.New("invalid asset id")
	}
	return common.HexToHash(s), nil
}

// ethDisplay renders a wei amount as a decimal ETH string for UI consumers.
func ethDisplay(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -18).String()
}

// statusForTradeErr maps engine sentinels onto HTTP status codes.
func statusForTradeErr(err error) int {
	switch {
	case errors.Is(err, launchpad.ErrUnknownAsset):
		return http.StatusNotFound
	case errors.Is(err, launchpad.ErrAlreadyGraduated),
		errors.Is(err, launchpad.ErrExcessCapExceeded),
		errors.Is(err, launchpad.ErrSlippageExceeded),
		errors.Is(err, launchpad.ErrDeadlineExceeded):
		return http.StatusConflict
	case errors.Is(err, launchpad.ErrInvalidAmount),
		errors.Is(err, launchpad.ErrInsufficientBalance),
		errors.Is(err, launchpad.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortTradeErr(c *gin.Context, err error) {
	c.JSON(statusForTradeErr(err), gin.H{"error": err.Error()})
}
