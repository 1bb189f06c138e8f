package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"percity/internal/app"
	"percity/internal/app/certificate"
	"percity/internal/config"
	"percity/internal/domain"
	"percity/internal/ports"
	"percity/internal/tutor"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastOpCode     int64
	lastData       []byte
	lastLabel      string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

// mockProgress records watt awards for assertions.
type mockProgress struct {
	awards []ports.WattAward
}

func (mp *mockProgress) GetWatts(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (mp *mockProgress) AwardWatts(ctx context.Context, awards []ports.WattAward) error {
	mp.awards = append(mp.awards, awards...)
	return nil
}

func newTestMatchState() *MatchState {
	svc := app.NewService()
	variant := config.GetVariant("")
	return &MatchState{
		StudentID:    "student-1",
		VariantID:    variant.ID,
		Presences:    make(map[string]runtime.Presence),
		App:          svc,
		Game:         svc.NewGame(variant.Rules(), variant.DomainWeights()),
		Progress:     &mockProgress{},
		Certificates: certificate.NewService("test-secret", "percity-test", 0),
	}
}

func TestBuildLabelOpenUntilSeated(t *testing.T) {
	state := newTestMatchState()
	state.StudentID = ""

	var label wireLabel
	if err := json.Unmarshal([]byte(buildLabel(state)), &label); err != nil {
		t.Fatalf("unmarshal label error: %v", err)
	}
	if !label.Open {
		t.Fatal("label should be open before a student is seated")
	}
	if label.Game != "percity" {
		t.Fatalf("label game = %s, want percity", label.Game)
	}
	if label.Phase != string(domain.PhaseIntro) {
		t.Fatalf("label phase = %s, want intro", label.Phase)
	}

	state.StudentID = "student-1"
	if err := json.Unmarshal([]byte(buildLabel(state)), &label); err != nil {
		t.Fatalf("unmarshal label error: %v", err)
	}
	if label.Open {
		t.Fatal("label should close once the student is seated")
	}
}

func TestSnapshotReflectsGameState(t *testing.T) {
	state := newTestMatchState()
	if _, err := state.App.StartGame(state.Game); err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if _, err := state.App.MoveToGrid(state.Game, "hydro-1"); err != nil {
		t.Fatalf("move error: %v", err)
	}

	snap := snapshotFromGame(state.VariantID, state.Game)
	if snap.Phase != string(domain.PhasePlaying) {
		t.Fatalf("phase = %s, want playing", snap.Phase)
	}
	if len(snap.Placed) != 1 || snap.Placed[0].ID != "hydro-1" {
		t.Fatalf("placed = %+v, want single hydro-1", snap.Placed)
	}
	if len(snap.Available) != 14 {
		t.Fatalf("available = %d, want 14", len(snap.Available))
	}
	if snap.Total != 12 {
		t.Fatalf("total = %v, want 12", snap.Total)
	}
	if snap.Verdict != "" {
		t.Fatal("verdict should be hidden before a commit")
	}
	if snap.Weights["wind"] != 6 {
		t.Fatalf("wind weight = %v, want 6", snap.Weights["wind"])
	}

	if _, err := state.App.Commit(state.Game); err != nil {
		t.Fatalf("commit error: %v", err)
	}
	snap = snapshotFromGame(state.VariantID, state.Game)
	if snap.Verdict != string(domain.VerdictBelow) {
		t.Fatalf("verdict = %s, want below after commit", snap.Verdict)
	}
	if snap.AttemptsLeft != 2 {
		t.Fatalf("attempts = %d, want 2", snap.AttemptsLeft)
	}
}

func TestBroadcastCommitResolved(t *testing.T) {
	mh := &matchHandler{}
	state := newTestMatchState()
	dispatcher := &mockDispatcher{}

	mh.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, app.Event{
		Kind: app.EventCommitResolved,
		Payload: app.CommitResolvedPayload{
			Total:        16,
			Verdict:      domain.VerdictBelow,
			AttemptsLeft: 2,
			Phase:        domain.PhasePlaying,
		},
	})

	if dispatcher.lastOpCode != OpCommitResolved {
		t.Fatalf("opcode = %d, want %d", dispatcher.lastOpCode, OpCommitResolved)
	}

	var wire wireCommitResolved
	if err := json.Unmarshal(dispatcher.lastData, &wire); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if wire.Total != 16 || wire.Verdict != string(domain.VerdictBelow) || wire.AttemptsLeft != 2 {
		t.Fatalf("wire = %+v, want total 16 / below / 2 attempts", wire)
	}
}

func TestBroadcastGameEndedWinSettles(t *testing.T) {
	mh := &matchHandler{}
	state := newTestMatchState()
	progress := &mockProgress{}
	state.Progress = progress
	dispatcher := &mockDispatcher{}

	mh.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, app.Event{
		Kind: app.EventGameEnded,
		Payload: app.GameEndedPayload{
			Outcome:      domain.PhaseWon,
			Total:        84,
			AttemptsUsed: 1,
		},
	})

	if dispatcher.lastOpCode != OpGameEnded {
		t.Fatalf("opcode = %d, want %d", dispatcher.lastOpCode, OpGameEnded)
	}
	if dispatcher.labelUpdates != 1 {
		t.Fatalf("label updates = %d, want 1", dispatcher.labelUpdates)
	}

	if len(progress.awards) != 1 {
		t.Fatalf("awards = %d, want 1", len(progress.awards))
	}
	if progress.awards[0].UserID != "student-1" {
		t.Fatalf("award user = %s, want student-1", progress.awards[0].UserID)
	}
	if progress.awards[0].Amount != config.GetWinAwardWatts() {
		t.Fatalf("award amount = %d, want %d", progress.awards[0].Amount, config.GetWinAwardWatts())
	}

	var wire wireGameEnded
	if err := json.Unmarshal(dispatcher.lastData, &wire); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if wire.Certificate == "" {
		t.Fatal("won game should carry a completion certificate")
	}

	completion, err := state.Certificates.Verify(wire.Certificate)
	if err != nil {
		t.Fatalf("certificate verify error: %v", err)
	}
	if completion.StudentID != "student-1" || completion.Total != 84 {
		t.Fatalf("completion = %+v, want student-1 with total 84", completion)
	}
}

func TestBroadcastGameEndedLossAwardsNothing(t *testing.T) {
	mh := &matchHandler{}
	state := newTestMatchState()
	progress := &mockProgress{}
	state.Progress = progress
	dispatcher := &mockDispatcher{}

	mh.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, app.Event{
		Kind: app.EventGameEnded,
		Payload: app.GameEndedPayload{
			Outcome:      domain.PhaseLost,
			Total:        16,
			AttemptsUsed: 3,
		},
	})

	if len(progress.awards) != 0 {
		t.Fatalf("awards = %d, want 0 on loss", len(progress.awards))
	}

	var wire wireGameEnded
	if err := json.Unmarshal(dispatcher.lastData, &wire); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if wire.Certificate != "" {
		t.Fatal("lost game must not carry a certificate")
	}
	if wire.AwardWatts != 0 {
		t.Fatalf("award watts = %d, want 0", wire.AwardWatts)
	}
}

func TestHintWireUnreachable(t *testing.T) {
	state := newTestMatchState()
	state.Game.Rules.TargetMin = 101
	state.Game.Rules.TargetMax = 110

	suggestion, ok := tutor.Suggest(state.Game.Rules, state.Game.Weights)
	hint := hintToWire(suggestion, ok)
	if hint.Reachable {
		t.Fatal("target above the max total must be unreachable")
	}
	if len(hint.Counts) != 0 {
		t.Fatalf("counts = %+v, want empty", hint.Counts)
	}
}

func TestCanSeatStudentSoloPolicy(t *testing.T) {
	state := newTestMatchState()
	state.StudentID = ""

	if ok, reason := canSeatStudent(state, "student-1"); !ok || reason != "" {
		t.Fatalf("empty seat rejected: ok=%v reason=%q", ok, reason)
	}

	state.StudentID = "student-1"
	if ok, _ := canSeatStudent(state, "student-1"); !ok {
		t.Fatal("seated student must be allowed to rejoin")
	}
	if ok, reason := canSeatStudent(state, "student-2"); ok || reason != "match_full" {
		t.Fatalf("second student: ok=%v reason=%q, want rejected with match_full", ok, reason)
	}
}

func TestFailedCommitSchedulesHintNudge(t *testing.T) {
	mh := &matchHandler{}
	state := newTestMatchState()
	state.HintsEnabled = true
	state.HintDelay = 8
	state.Tick = 3
	dispatcher := &mockDispatcher{}

	if _, err := state.App.StartGame(state.Game); err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if _, err := state.App.MoveToGrid(state.Game, "solar-1"); err != nil {
		t.Fatalf("move error: %v", err)
	}

	// Total 2 is below [80,88]: the commit fails and schedules the nudge.
	mh.handleCommit(context.Background(), state, dispatcher, noopLogger{}, "student-1")
	if state.Game.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing after a failed commit", state.Game.Phase)
	}
	if state.HintAtTick != 11 {
		t.Fatalf("hint scheduled at tick %d, want 11 (3 + 8)", state.HintAtTick)
	}

	// Working again cancels the pending nudge.
	mh.handleMove(context.Background(), state, dispatcher, noopLogger{}, "student-1", []byte(`{"item_id":"wind-1"}`), app.DestinationGrid)
	if state.HintAtTick != 0 {
		t.Fatalf("hint still pending at tick %d after a move", state.HintAtTick)
	}
}

func TestMatchLoopEmitsScheduledHint(t *testing.T) {
	mh := &matchHandler{}
	state := newTestMatchState()
	state.HintsEnabled = true
	state.HintAtTick = 5
	dispatcher := &mockDispatcher{}

	if _, err := state.App.StartGame(state.Game); err != nil {
		t.Fatalf("start game error: %v", err)
	}

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 5, state, nil)

	if state.HintAtTick != 0 {
		t.Fatalf("hint still pending at tick %d after firing", state.HintAtTick)
	}
	if dispatcher.lastOpCode != OpHint {
		t.Fatalf("opcode = %d, want %d", dispatcher.lastOpCode, OpHint)
	}

	var hint wireHint
	if err := json.Unmarshal(dispatcher.lastData, &hint); err != nil {
		t.Fatalf("unmarshal hint error: %v", err)
	}
	if !hint.Reachable {
		t.Fatal("classic variant hint should be reachable")
	}
}

func TestMatchLoopSuppressesHintOutsidePlaying(t *testing.T) {
	mh := &matchHandler{}
	state := newTestMatchState()
	state.HintsEnabled = true
	state.HintAtTick = 5
	state.Game.Phase = domain.PhaseWon
	dispatcher := &mockDispatcher{}

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 9, state, nil)

	if state.HintAtTick != 0 {
		t.Fatalf("hint still pending at tick %d, want cleared", state.HintAtTick)
	}
	if dispatcher.broadcastCount != 0 {
		t.Fatalf("broadcasts = %d, want none once the game has ended", dispatcher.broadcastCount)
	}
}

func TestCertificateServiceFromEnvDefaults(t *testing.T) {
	svc := certificateServiceFromEnv(map[string]string{}, noopLogger{})

	token, err := svc.GenerateToken(certificate.Completion{
		StudentID: "s",
		VariantID: "v",
		Total:     84,
	})
	if err != nil {
		t.Fatalf("generate error with default credentials: %v", err)
	}
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("verify error with default credentials: %v", err)
	}
}
