// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

var (
	ErrInvalidPool         = New("invalid pool id")
	ErrAmountZero          = New("amount is zero")
	ErrInvalidAmount       = New("amount must be a non-negative integer")
	ErrBelowMinimum        = New("amount below minimum")
	ErrInsufficientStake   = New("insufficient staked amount")
	ErrStillLocked         = New("still locked")
	ErrInvalidRequestIndex = New("invalid request index")
	ErrNoReward            = New("no reward to claim")
	ErrUnauthorized        = New("caller is not admin")
	ErrPaused              = New("operation is paused")
	ErrTransferFailed      = New("asset transfer failed")
	ErrOverflow            = New("arithmetic overflow")
	ErrEmissionTooHigh     = New("emission rate too high")
)
