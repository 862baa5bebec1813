package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func isDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func isHexAddress(value string) bool {
	return common.IsHexAddress(value)
}
