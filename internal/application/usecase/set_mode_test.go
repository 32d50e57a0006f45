package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
)

type stubStore struct {
	snap     *port.StoreSnapshot
	readErr  error
	doc      map[string]any
	buildErr error
	desc     *entity.LinkDescription
	descErr  error

	builtWith entity.LinkDescription
}

func (s *stubStore) Read(context.Context) (*port.StoreSnapshot, error) {
	return s.snap, s.readErr
}

func (s *stubStore) ReadLinkDescription(context.Context, entity.DisplayRef) (*entity.LinkDescription, error) {
	return s.desc, s.descErr
}

func (s *stubStore) BuildModified(_ *port.StoreSnapshot, _ entity.DisplayRef, desc entity.LinkDescription) (map[string]any, error) {
	s.builtWith = desc
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	return s.doc, nil
}

type stubWriter struct {
	err    error
	writes int
	sum    port.StoreChecksum
}

func (w *stubWriter) Write(_ context.Context, _ map[string]any, expected port.StoreChecksum) error {
	w.writes++
	w.sum = expected
	return w.err
}

type stubLink struct {
	directErr    map[bool]error // keyed by the alternate flag
	txnErr       error
	directCalls  []bool
	txnCalls     int
	lastDisplay  uint32
	lastDescSeen entity.LinkDescription
}

func (l *stubLink) ApplyDirect(_ context.Context, id uint32, desc entity.LinkDescription, alternate bool) error {
	l.directCalls = append(l.directCalls, alternate)
	l.lastDisplay = id
	l.lastDescSeen = desc
	return l.directErr[alternate]
}

func (l *stubLink) ApplyTransactional(_ context.Context, id uint32, desc entity.LinkDescription) error {
	l.txnCalls++
	l.lastDisplay = id
	l.lastDescSeen = desc
	return l.txnErr
}

type stubPower struct {
	sleepErr   error
	wakeErr    error
	sleeps     int
	wakes      int
	wakeBefore bool // set when WakeDisplays ran before SleepDisplays
}

func (p *stubPower) SleepDisplays(context.Context) error {
	p.sleeps++
	return p.sleepErr
}

func (p *stubPower) WakeDisplays(context.Context) error {
	if p.sleeps == 0 {
		p.wakeBefore = true
	}
	p.wakes++
	return p.wakeErr
}

type stubJournal struct {
	records []port.ApplyRecord
	err     error
}

func (j *stubJournal) Record(_ context.Context, rec port.ApplyRecord) error {
	j.records = append(j.records, rec)
	return j.err
}

func (j *stubJournal) Recent(context.Context, int) ([]port.ApplyRecord, error) {
	return j.records, nil
}

func testInput() SetModeInput {
	return SetModeInput{
		Ref: entity.DisplayRef{ID: 2, UUID: "37D8832A-2D66-02CA-B9F7-8F30A301B230"},
		Mode: entity.ColorMode{
			Encoding: entity.EncodingYCbCr444,
			Depth:    entity.Depth10,
			Range:    entity.RangeLimited,
			Dynamic:  entity.DynamicRangeHDR10,
		},
	}
}

type fixture struct {
	store   *stubStore
	writer  *stubWriter
	link    *stubLink
	power   *stubPower
	journal *stubJournal
	slept   []time.Duration
	uc      *SetModeUseCase
}

func newFixture() *fixture {
	f := &fixture{
		store: &stubStore{
			snap: &port.StoreSnapshot{
				Document: map[string]any{"DisplaySets": map[string]any{}},
				Checksum: port.StoreChecksum{1, 2, 3},
			},
			doc: map[string]any{"DisplaySets": map[string]any{}},
		},
		writer:  &stubWriter{},
		link:    &stubLink{directErr: map[bool]error{}},
		power:   &stubPower{},
		journal: &stubJournal{},
	}
	f.uc = NewSetModeUseCase(f.store, f.writer, f.link, f.power, f.journal)
	f.uc.sleep = func(d time.Duration) { f.slept = append(f.slept, d) }
	return f
}

func TestSetMode_DirectApplySucceeds(t *testing.T) {
	f := newFixture()

	out, err := f.uc.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.True(t, out.Instant)

	assert.Equal(t, 1, f.writer.writes, "persistence happens exactly once")
	assert.Equal(t, f.store.snap.Checksum, f.writer.sum)
	assert.Equal(t, []bool{false}, f.link.directCalls)
	assert.Zero(t, f.link.txnCalls)
	assert.Zero(t, f.power.sleeps, "no reconnect when an instant tier succeeded")
	assert.Equal(t, entity.EncodeLinkDescription(testInput().Mode), f.link.lastDescSeen)
	assert.Equal(t, entity.EncodeLinkDescription(testInput().Mode), f.store.builtWith)
}

func TestSetMode_AlternateOrderRetried(t *testing.T) {
	f := newFixture()
	f.link.directErr[false] = errors.New("invalid parameter order")

	out, err := f.uc.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.True(t, out.Instant)
	assert.Equal(t, []bool{false, true}, f.link.directCalls)
	assert.Zero(t, f.link.txnCalls)
}

func TestSetMode_TransactionalAfterBothOrderings(t *testing.T) {
	f := newFixture()
	f.link.directErr[false] = errors.New("nope")
	f.link.directErr[true] = errors.New("nope")

	out, err := f.uc.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.True(t, out.Instant)
	assert.Equal(t, []bool{false, true}, f.link.directCalls)
	assert.Equal(t, 1, f.link.txnCalls)
	assert.Zero(t, f.power.sleeps)
}

func TestSetMode_ForcedReconnectAsLastResort(t *testing.T) {
	f := newFixture()
	f.link.directErr[false] = errors.New("nope")
	f.link.directErr[true] = errors.New("nope")
	f.link.txnErr = errors.New("nope")

	out, err := f.uc.Execute(context.Background(), testInput())
	require.NoError(t, err, "instant-apply failures never escape once persisted")
	assert.False(t, out.Instant)

	assert.Equal(t, 1, f.power.sleeps)
	assert.Equal(t, 1, f.power.wakes)
	assert.False(t, f.power.wakeBefore, "sleep precedes wake")
	assert.Equal(t, []time.Duration{sleepSettle, wakeSettle}, f.slept)
}

func TestSetMode_StoreReadErrorPropagatesUnchanged(t *testing.T) {
	f := newFixture()
	cause := &port.StoreReadError{Path: "/x", Err: errors.New("decode failed")}
	f.store.snap = nil
	f.store.readErr = cause

	_, err := f.uc.Execute(context.Background(), testInput())
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, f.writer.writes)
	assert.Empty(t, f.link.directCalls)
	assert.Zero(t, f.power.sleeps)
}

func TestSetMode_BuildErrorWrappedAndNothingTouched(t *testing.T) {
	f := newFixture()
	f.store.buildErr = port.ErrEntryNotFound

	_, err := f.uc.Execute(context.Background(), testInput())
	var buildErr *port.StoreBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.ErrorIs(t, err, port.ErrEntryNotFound)

	assert.Zero(t, f.writer.writes, "nothing written when the entry cannot be located")
	assert.Empty(t, f.link.directCalls)
	assert.Zero(t, f.power.sleeps)
}

func TestSetMode_WriteErrorStopsBeforeLiveApply(t *testing.T) {
	f := newFixture()
	f.writer.err = port.ErrAuthCancelled

	_, err := f.uc.Execute(context.Background(), testInput())
	assert.ErrorIs(t, err, port.ErrAuthCancelled)
	assert.Empty(t, f.link.directCalls, "hardware untouched when persistence failed")
	assert.Zero(t, f.power.sleeps)
}

func TestSetMode_ReconnectStepFailures(t *testing.T) {
	t.Run("sleep fails", func(t *testing.T) {
		f := newFixture()
		f.link.directErr[false] = errors.New("nope")
		f.link.directErr[true] = errors.New("nope")
		f.link.txnErr = errors.New("nope")
		f.power.sleepErr = errors.New("pmset: not permitted")

		_, err := f.uc.Execute(context.Background(), testInput())
		var recErr *port.ReconnectError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, "sleep", recErr.Step)
		assert.Zero(t, f.power.wakes)
	})

	t.Run("wake fails", func(t *testing.T) {
		f := newFixture()
		f.link.directErr[false] = errors.New("nope")
		f.link.directErr[true] = errors.New("nope")
		f.link.txnErr = errors.New("nope")
		f.power.wakeErr = errors.New("no wake path worked")

		_, err := f.uc.Execute(context.Background(), testInput())
		var recErr *port.ReconnectError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, "wake", recErr.Step)
	})
}

func TestSetMode_JournalRecordsOutcome(t *testing.T) {
	f := newFixture()
	in := testInput()

	_, err := f.uc.Execute(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, f.journal.records, 1)
	rec := f.journal.records[0]
	assert.Equal(t, in.Ref.UUID, rec.DisplayUUID)
	assert.Equal(t, in.Ref.ID, rec.DisplayID)
	assert.Equal(t, in.Mode, rec.Mode)
	assert.True(t, rec.Instant)
	assert.WithinDuration(t, time.Now(), rec.AppliedAt, time.Minute)
}

func TestSetMode_JournalFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.journal.err = errors.New("disk full")

	out, err := f.uc.Execute(context.Background(), testInput())
	assert.NoError(t, err)
	assert.True(t, out.Instant)
}

func TestSetMode_NilJournalIsNoOp(t *testing.T) {
	f := newFixture()
	f.uc = NewSetModeUseCase(f.store, f.writer, f.link, f.power, nil)
	f.uc.sleep = func(time.Duration) {}

	out, err := f.uc.Execute(context.Background(), testInput())
	assert.NoError(t, err)
	assert.True(t, out.Instant)
}
