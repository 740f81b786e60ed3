package surface

import (
	"fmt"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/mode"
)

// Bank selects what the eight knobs do.
type Bank uint8

const (
	BankMixer Bank = iota
	BankNavigation
	BankPassthrough

	numBanks
)

// DefaultBank is active on start.
const DefaultBank = BankNavigation

func (b Bank) String() string {
	switch b {
	case BankMixer:
		return "mixer"
	case BankNavigation:
		return "navigation"
	case BankPassthrough:
		return "passthrough"
	default:
		return fmt.Sprintf("bank(%d)", uint8(b))
	}
}

// BankDirection is the argument of AdvanceBank.
type BankDirection int

const (
	BankUp   BankDirection = 1
	BankDown BankDirection = -1
)

// bankState cycles through the banks with wraparound.
type bankState struct {
	*mode.ModeManager[Bank]
}

func newBankState(initial Bank) bankState {
	return bankState{mode.NewModeManager(initial, numBanks)}
}

// advance never fails: banks are always in range and transition callbacks only render feedback.
func (b bankState) advance(dir BankDirection) Bank {
	next, _ := b.Cycle(int(dir))
	return next
}
