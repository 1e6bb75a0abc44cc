package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/logging"
)

// fakeForeignStore is an in-memory ForeignStore with switchable failures.
type fakeForeignStore struct {
	value   []byte
	present bool

	failGet   bool
	failSet   bool
	failClear bool

	// failSetAfter lets the install succeed n times before SetActive starts
	// failing, so the restore write can be made to fail independently.
	failSetAfter int
	setCalls     int
}

func (f *fakeForeignStore) GetActive() ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("get failed")
	}
	if !f.present {
		return nil, false, nil
	}
	out := make([]byte, len(f.value))
	copy(out, f.value)
	return out, true, nil
}

func (f *fakeForeignStore) SetActive(payload []byte) error {
	f.setCalls++
	if f.failSet || (f.failSetAfter > 0 && f.setCalls > f.failSetAfter) {
		return errors.New("set failed")
	}
	f.value = append([]byte(nil), payload...)
	f.present = true
	return nil
}

func (f *fakeForeignStore) ClearActive() error {
	if f.failClear {
		return errors.New("clear failed")
	}
	f.value = nil
	f.present = false
	return nil
}

func newController(store ForeignStore) *Controller {
	return NewController(store, logging.New(false, true))
}

func TestRunRestoresPriorValueOnSuccess(t *testing.T) {
	store := &fakeForeignStore{value: []byte("original"), present: true}
	c := newController(store)

	var seen []byte
	code, err := c.Run([]byte("injected"), func() (int, error) {
		seen = append([]byte(nil), store.value...)
		return 0, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []byte("injected"), seen, "child must observe the installed credential")
	assert.True(t, store.present)
	assert.Equal(t, []byte("original"), store.value, "prior value must be restored")
}

func TestRunRestoresAbsenceWhenNoPriorEntry(t *testing.T) {
	store := &fakeForeignStore{}
	c := newController(store)

	code, err := c.Run([]byte("injected"), func() (int, error) {
		assert.True(t, store.present)
		return 0, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.False(t, store.present, "absent prior entry must be cleared back out")
}

func TestRunForwardsNonZeroExitAndStillRestores(t *testing.T) {
	store := &fakeForeignStore{value: []byte("original"), present: true}
	c := newController(store)

	code, err := c.Run([]byte("injected"), func() (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, code)
	assert.Equal(t, []byte("original"), store.value)
}

func TestRunRestoresWhenExecuteFails(t *testing.T) {
	store := &fakeForeignStore{value: []byte("original"), present: true}
	c := newController(store)

	execErr := errors.New("child killed by signal")
	code, err := c.Run([]byte("injected"), func() (int, error) {
		return 130, execErr
	})

	assert.Equal(t, 130, code)
	assert.ErrorIs(t, err, execErr)
	assert.Equal(t, []byte("original"), store.value)
}

func TestRunBackupFailureAbortsBeforeMutation(t *testing.T) {
	store := &fakeForeignStore{failGet: true}
	c := newController(store)

	ran := false
	_, err := c.Run([]byte("injected"), func() (int, error) {
		ran = true
		return 0, nil
	})

	var switchErr cverrors.SwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, cverrors.PhaseBackup, switchErr.Phase)
	assert.False(t, ran, "execute must not run without a verified backup")
	assert.Zero(t, store.setCalls, "nothing may be written without a backup")
}

func TestRunInstallFailureSkipsExecuteAndRestore(t *testing.T) {
	store := &fakeForeignStore{value: []byte("original"), present: true, failSet: true}
	c := newController(store)

	ran := false
	_, err := c.Run([]byte("injected"), func() (int, error) {
		ran = true
		return 0, nil
	})

	var switchErr cverrors.SwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, cverrors.PhaseInstall, switchErr.Phase)
	assert.False(t, ran)
	// Only the failed install attempted a write; no restore write followed.
	assert.Equal(t, 1, store.setCalls)
}

func TestRunRestoreFailureIsReportedAlongsideOutcome(t *testing.T) {
	// First SetActive (install) succeeds, second (restore) fails.
	store := &fakeForeignStore{value: []byte("original"), present: true, failSetAfter: 1}
	c := newController(store)

	execErr := errors.New("child crashed")
	code, err := c.Run([]byte("injected"), func() (int, error) {
		return 1, execErr
	})

	assert.Equal(t, 1, code)
	var switchErr cverrors.SwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, cverrors.PhaseRestore, switchErr.Phase)
	// The execute failure is not swallowed by the restore failure.
	assert.ErrorIs(t, err, execErr)
}

func TestRunRestoreFailureAfterSuccessfulRunIsAnError(t *testing.T) {
	store := &fakeForeignStore{value: []byte("original"), present: true, failSetAfter: 1}
	c := newController(store)

	code, err := c.Run([]byte("injected"), func() (int, error) {
		return 0, nil
	})

	assert.Equal(t, 0, code)
	var switchErr cverrors.SwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, cverrors.PhaseRestore, switchErr.Phase)
}

func TestRunRestoreRunsOnPanicInExecute(t *testing.T) {
	store := &fakeForeignStore{value: []byte("original"), present: true}
	c := newController(store)

	assert.Panics(t, func() {
		_, _ = c.Run([]byte("injected"), func() (int, error) {
			panic("boom")
		})
	})
	assert.Equal(t, []byte("original"), store.value, "restore must run even when execute panics")
}

func TestRunIdentityOverManyOutcomes(t *testing.T) {
	outcomes := []struct {
		name string
		fn   func() (int, error)
	}{
		{"exit zero", func() (int, error) { return 0, nil }},
		{"exit nonzero", func() (int, error) { return 7, nil }},
		{"signal-style failure", func() (int, error) { return 143, errors.New("terminated") }},
	}

	for _, tc := range outcomes {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeForeignStore{value: []byte("before"), present: true}
			c := newController(store)

			_, _ = c.Run([]byte("during"), tc.fn)

			assert.True(t, store.present)
			assert.Equal(t, []byte("before"), store.value)
		})
	}
}
