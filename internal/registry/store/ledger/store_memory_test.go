package ledger

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

func TestInMemoryLedger(t *testing.T) {
	suite.Run(t, &ContractSuite{newStore: func() store { return NewInMemory() }})
}
