package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport counts calls and returns configurable errors.
type fakeTransport struct {
	mu           sync.Mutex
	restoreCalls int
	syncCalls    int
	restoreErr   error
	syncErr      error
	onSync       func()
}

func (f *fakeTransport) Restore(ctx context.Context, req Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restoreCalls++
	return f.restoreErr
}

func (f *fakeTransport) Sync(ctx context.Context, req Request) error {
	f.mu.Lock()
	f.syncCalls++
	cb := f.onSync
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
	return f.syncErr
}

func (f *fakeTransport) counts() (restore, sync int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restoreCalls, f.syncCalls
}

func newAgent(tr Transport, ckptDir string) *Agent {
	return &Agent{
		Transport:      tr,
		Req:            Request{RepoID: "alice/nanorun-ckpts", RepoType: "model", Private: true, LocalDir: "/data/nanorun"},
		CheckpointDir:  ckptDir,
		RestoreEnabled: true,
	}
}

func TestRestoreIfNeededRunsOnEmptyLocal(t *testing.T) {
	tr := &fakeTransport{}
	a := newAgent(tr, filepath.Join(t.TempDir(), "base_checkpoints", "d20"))

	restored, err := a.RestoreIfNeeded(context.Background())
	require.NoError(t, err)
	assert.True(t, restored)

	restores, _ := tr.counts()
	assert.Equal(t, 1, restores)
}

func TestRestoreIfNeededSkipIfLocal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "base_checkpoints", "d20")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_000500.pt"), nil, 0644))

	tr := &fakeTransport{}
	a := newAgent(tr, dir)

	restored, err := a.RestoreIfNeeded(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)

	restores, _ := tr.counts()
	assert.Zero(t, restores, "restore must not be invoked when local checkpoints exist")
}

func TestRestoreIfNeededDisabled(t *testing.T) {
	tr := &fakeTransport{}
	a := newAgent(tr, t.TempDir())
	a.RestoreEnabled = false

	restored, err := a.RestoreIfNeeded(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)

	restores, _ := tr.counts()
	assert.Zero(t, restores)
}

func TestRestoreIfNeededNoRemote(t *testing.T) {
	tr := &fakeTransport{}
	a := newAgent(tr, t.TempDir())
	a.Req.RepoID = ""

	restored, err := a.RestoreIfNeeded(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestRestoreIfNeededPropagatesError(t *testing.T) {
	tr := &fakeTransport{restoreErr: errors.New("401 unauthorized")}
	a := newAgent(tr, t.TempDir())

	_, err := a.RestoreIfNeeded(context.Background())
	assert.ErrorContains(t, err, "restore from alice/nanorun-ckpts")
}

func TestSyncOnceNoRemoteIsNoop(t *testing.T) {
	tr := &fakeTransport{syncErr: errors.New("should not be called")}
	a := newAgent(tr, t.TempDir())
	a.Req.RepoID = ""

	assert.NoError(t, a.SyncOnce(context.Background()))
	_, syncs := tr.counts()
	assert.Zero(t, syncs)
}

func TestSyncLoopStopsOnCancel(t *testing.T) {
	old := minSyncInterval
	minSyncInterval = 5 * time.Millisecond
	defer func() { minSyncInterval = old }()

	ctx, cancel := context.WithCancel(context.Background())
	tr := &fakeTransport{}
	tr.onSync = func() { cancel() }
	a := newAgent(tr, t.TempDir())

	done := make(chan struct{})
	go func() {
		a.SyncLoop(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync loop did not stop after cancellation")
	}

	_, syncs := tr.counts()
	assert.Equal(t, 1, syncs)
}

func TestSyncLoopSurvivesFailedPasses(t *testing.T) {
	old := minSyncInterval
	minSyncInterval = time.Millisecond
	defer func() { minSyncInterval = old }()

	ctx, cancel := context.WithCancel(context.Background())
	tr := &fakeTransport{syncErr: errors.New("503 service unavailable")}

	var third sync.Once
	passed := make(chan struct{})
	tr.onSync = func() {
		_, syncs := tr.counts()
		if syncs >= 3 {
			third.Do(func() { close(passed) })
		}
	}
	a := newAgent(tr, t.TempDir())

	done := make(chan struct{})
	go func() {
		a.SyncLoop(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-passed:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not continue past failed passes")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync loop did not stop after cancellation")
	}
}

// blockingTransport holds an in-flight sync pass open until released and
// records whether that pass's context was cancelled underneath it.
type blockingTransport struct {
	mu      sync.Mutex
	started sync.Once
	startCh chan struct{}
	release chan struct{}
	aborted bool
	syncs   int
}

func (b *blockingTransport) Restore(ctx context.Context, req Request) error { return nil }

func (b *blockingTransport) Sync(ctx context.Context, req Request) error {
	b.started.Do(func() { close(b.startCh) })
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncs++
	if ctx.Err() != nil {
		b.aborted = true
	}
	return nil
}

func (b *blockingTransport) wasAborted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.aborted
}

func (b *blockingTransport) passes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syncs
}

func TestSyncLoopFinishesInFlightPassOnCancel(t *testing.T) {
	old := minSyncInterval
	minSyncInterval = time.Millisecond
	defer func() { minSyncInterval = old }()

	tr := &blockingTransport{startCh: make(chan struct{}), release: make(chan struct{})}
	a := newAgent(tr, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.SyncLoop(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-tr.startCh:
	case <-time.After(2 * time.Second):
		t.Fatal("first sync pass never started")
	}

	// Cancel while the pass is in flight, then let it finish.
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(tr.release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync loop did not stop after the in-flight pass finished")
	}

	assert.False(t, tr.wasAborted(), "an in-flight pass must run to completion")
	assert.Equal(t, 1, tr.passes(), "no new pass may start after cancellation")
}

func TestSyncLoopNoRemoteReturnsImmediately(t *testing.T) {
	a := newAgent(&fakeTransport{}, t.TempDir())
	a.Req.RepoID = ""

	done := make(chan struct{})
	go func() {
		a.SyncLoop(context.Background(), time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unconfigured loop should return immediately")
	}
}
