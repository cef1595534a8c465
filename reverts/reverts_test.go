// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))
	assert.False(t, IsRevertErr(errors.New("plain")))

	assert.True(t, IsRevertErr(New("reverted")))
	assert.True(t, IsRevertErr(ErrStillLocked))
	assert.True(t, IsRevertErr(pkgerrors.Wrap(ErrNoReward, "claim")))
}

func TestSentinelsMatchThroughWrapping(t *testing.T) {
	err := pkgerrors.WithMessage(ErrTransferFailed, "insufficient balance")

	assert.True(t, errors.Is(err, ErrTransferFailed))
	assert.False(t, errors.Is(err, ErrPaused))
	assert.Equal(t, "insufficient balance: asset transfer failed", err.Error())
}
