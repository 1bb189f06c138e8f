package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"percity/internal/app"
	"percity/internal/app/certificate"
	"percity/internal/config"
	"percity/internal/domain"
	"percity/internal/ports"
	"percity/internal/tutor"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for one solo match.
type MatchState struct {
	StudentID    string                      `json:"student_id"` // user id of the seated student, "" until first join
	VariantID    string                      `json:"variant_id"`
	Tick         int64                       `json:"tick"`
	HintsEnabled bool                        `json:"hints_enabled"`
	HintDelay    int64                       `json:"hint_delay"`   // ticks between a failed commit and the nudge
	HintAtTick   int64                       `json:"hint_at_tick"` // 0 means no nudge pending
	Presences    map[string]runtime.Presence `json:"-"`
	App          *app.Service                `json:"-"`
	Game         *domain.Game                `json:"-"`
	Progress     ports.ProgressPort          `json:"-"`
	Certificates *certificate.Service        `json:"-"`
}

// HasStudent reports whether a student has ever been seated.
func (ms *MatchState) HasStudent() bool {
	return ms.StudentID != ""
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing Perceptron City match.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	configPath := defaultConfig
	if val, ok := env[EnvGameConfig]; ok && val != "" {
		configPath = val
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	variantID := ""
	if val, ok := params["variant"].(string); ok {
		variantID = val
	}
	if variantID == "" {
		variantID = env[EnvVariant]
	}
	variant := config.GetVariant(variantID)

	svc := app.NewService()
	state := &MatchState{
		VariantID:    variant.ID,
		Presences:    make(map[string]runtime.Presence),
		App:          svc,
		Game:         svc.NewGame(variant.Rules(), variant.DomainWeights()),
		Progress:     NewNakamaProgressAdapter(nk),
		Certificates: certificateServiceFromEnv(env, logger),
		HintDelay:    defaultHintDelay,
	}

	if val, ok := env[EnvHintsEnabled]; ok {
		state.HintsEnabled = val == "true"
	}
	if val, ok := env[EnvHintDelaySec]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.HintDelay = int64(i)
		}
	}

	tickRate := 1 // one tick per second drives the hint nudge
	return state, tickRate, buildLabel(state)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	allowed, reason := canSeatStudent(matchState, presence.GetUserId())
	return state, allowed, reason
}

// canSeatStudent decides the solo seat policy: one student per match, rejoin
// always allowed.
func canSeatStudent(state *MatchState, userID string) (bool, string) {
	if state.HasStudent() && state.StudentID != userID {
		return false, "match_full"
	}
	return true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if !matchState.HasStudent() {
			matchState.StudentID = p.GetUserId()
			logger.Info("MatchJoin: Student %s seated.", p.GetUserId())
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)

	// Send the full state so the widget can render (or re-render on rejoin).
	mh.sendSnapshot(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when the student disconnects.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating empty match.")
		return nil
	}

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		if msg.GetUserId() != matchState.StudentID {
			logger.Warn("MatchLoop: Ignoring message from non-seated user %s.", msg.GetUserId())
			continue
		}

		userID := msg.GetUserId()
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, userID)
		case OpMoveToGrid:
			mh.handleMove(ctx, matchState, dispatcher, logger, userID, msg.GetData(), app.DestinationGrid)
		case OpMoveToAvailable:
			mh.handleMove(ctx, matchState, dispatcher, logger, userID, msg.GetData(), app.DestinationAvailable)
		case OpCommit:
			mh.handleCommit(ctx, matchState, dispatcher, logger, userID)
		case OpReplay:
			mh.handleReplay(ctx, matchState, dispatcher, logger, userID)
		case OpSetWeather:
			mh.handleSetWeather(ctx, matchState, dispatcher, logger, userID, msg.GetData())
		case OpRequestHint:
			mh.sendHint(matchState, dispatcher, logger)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// Nudge a stuck player with a hint a few seconds after a failed commit.
	if matchState.HintsEnabled && matchState.HintAtTick > 0 && tick >= matchState.HintAtTick {
		matchState.HintAtTick = 0
		if matchState.Game.Phase == domain.PhasePlaying {
			mh.sendHint(matchState, dispatcher, logger)
		}
	}

	return matchState
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	events, err := state.App.StartGame(state.Game)
	if err != nil {
		logger.Warn("StartGame: Rejected for %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	logger.Info("StartGame: Game started on variant %s.", state.VariantID)
}

func (mh *matchHandler) handleMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, data []byte, destination string) {
	var request struct {
		ItemID string `json:"item_id"`
	}
	if err := json.Unmarshal(data, &request); err != nil {
		logger.Warn("Move: Invalid payload from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, 400, "invalid move payload")
		return
	}

	var events []app.Event
	var err error
	if destination == app.DestinationGrid {
		events, err = state.App.MoveToGrid(state.Game, request.ItemID)
	} else {
		events, err = state.App.MoveToAvailable(state.Game, request.ItemID)
	}
	if err != nil {
		logger.Warn("Move: User %s failed to move %s to %s: %v", userID, request.ItemID, destination, err)
		mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
		return
	}

	// A successful move means the player is working again.
	state.HintAtTick = 0

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleCommit(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	events, err := state.App.Commit(state.Game)
	if err != nil {
		logger.Warn("Commit: Rejected for %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}

	if state.Game.Phase == domain.PhasePlaying && state.HintsEnabled {
		// Failed commit: schedule the tutor nudge.
		state.HintAtTick = state.Tick + state.HintDelay
	}
}

func (mh *matchHandler) handleReplay(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	events, err := state.App.Replay(state.Game)
	if err != nil {
		logger.Warn("Replay: Rejected for %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
		return
	}

	state.HintAtTick = 0
	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleSetWeather(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, data []byte) {
	var request struct {
		Category  string  `json:"category"`
		Intensity float64 `json:"intensity"`
	}
	if err := json.Unmarshal(data, &request); err != nil {
		logger.Warn("SetWeather: Invalid payload from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, 400, "invalid weather payload")
		return
	}

	events, err := state.App.SetWeather(state.Game, domain.Category(request.Category), request.Intensity)
	if err != nil {
		logger.Warn("SetWeather: Rejected for %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload any

	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
		p := ev.Payload.(app.GameStartedPayload)
		payload = wireGameStarted{
			Phase:        string(p.Phase),
			AttemptsLeft: p.AttemptsLeft,
			Available:    itemsToWire(p.Available),
			Weights:      weightsToWire(p.Weights),
		}
	case app.EventItemMoved:
		opCode = OpItemMoved
		p := ev.Payload.(app.ItemMovedPayload)
		payload = wireItemMoved{
			ItemID:      p.ItemID,
			Destination: p.Destination,
			PlacedCount: p.PlacedCount,
			Total:       p.Total,
		}
	case app.EventCommitResolved:
		opCode = OpCommitResolved
		p := ev.Payload.(app.CommitResolvedPayload)
		payload = wireCommitResolved{
			Total:        p.Total,
			Verdict:      string(p.Verdict),
			AttemptsLeft: p.AttemptsLeft,
			Phase:        string(p.Phase),
		}
	case app.EventGameEnded:
		opCode = OpGameEnded
		p := ev.Payload.(app.GameEndedPayload)
		wire := gameEndedToWire(p)
		if p.Outcome == domain.PhaseWon {
			wire.AwardWatts = mh.settleWin(ctx, state, logger)
			wire.Certificate = mh.issueCertificate(state, p, logger)
		}
		payload = wire
		mh.updateLabel(state, dispatcher, logger)
	case app.EventWeatherChanged:
		opCode = OpWeatherChanged
		p := ev.Payload.(app.WeatherChangedPayload)
		payload = wireWeatherChanged{
			Category:  string(p.Category),
			Intensity: p.Intensity,
			Weights:   weightsToWire(p.Weights),
		}
	case app.EventGameReset:
		opCode = OpGameReset
		p := ev.Payload.(app.GameResetPayload)
		payload = wireGameReset{
			Phase:        string(p.Phase),
			AttemptsLeft: p.AttemptsLeft,
		}
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast).
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleWin awards the configured watts to the student's wallet.
func (mh *matchHandler) settleWin(ctx context.Context, state *MatchState, logger runtime.Logger) int64 {
	if state.Progress == nil || state.StudentID == "" {
		return 0
	}

	amount := config.GetWinAwardWatts()
	awards := []ports.WattAward{
		{
			UserID: state.StudentID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"variant":  state.VariantID,
				"reason":   "level_won",
			},
		},
	}
	if err := state.Progress.AwardWatts(ctx, awards); err != nil {
		logger.Error("Failed to award watts: %v", err)
		return 0
	}
	return amount
}

// issueCertificate signs a completion certificate for a won game.
func (mh *matchHandler) issueCertificate(state *MatchState, p app.GameEndedPayload, logger runtime.Logger) string {
	token, err := state.Certificates.GenerateToken(certificate.Completion{
		StudentID:    state.StudentID,
		VariantID:    state.VariantID,
		Total:        p.Total,
		AttemptsUsed: p.AttemptsUsed,
	})
	if err != nil {
		logger.Error("Failed to issue completion certificate: %v", err)
		return ""
	}
	return token
}

// sendSnapshot sends the full renderable state to the seated student.
func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snap := snapshotFromGame(state.VariantID, state.Game)
	bytes, err := json.Marshal(snap)
	if err != nil {
		logger.Error("Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpStateSnapshot, bytes, nil, nil, true)
}

// sendHint asks the tutor for an in-range placement and sends it to the
// match. Only the seated student is ever connected, so a broadcast reaches
// exactly them.
func (mh *matchHandler) sendHint(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	suggestion, ok := tutor.Suggest(state.Game.Rules, state.Game.Weights)
	bytes, err := json.Marshal(hintToWire(suggestion, ok))
	if err != nil {
		logger.Error("Failed to marshal hint: %v", err)
		return
	}

	dispatcher.BroadcastMessage(OpHint, bytes, nil, nil, true)
}

// sendError sends a wireError to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(wireError{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(state)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func buildLabel(state *MatchState) string {
	label := wireLabel{
		Open:    !state.HasStudent(),
		Game:    "percity",
		Phase:   string(state.Game.Phase),
		Variant: state.VariantID,
	}
	b, _ := json.Marshal(label)
	return string(b)
}

// certificateServiceFromEnv builds the certificate signer from runtime env,
// falling back to test credentials for local development.
func certificateServiceFromEnv(env map[string]string, logger runtime.Logger) *certificate.Service {
	secret := env[EnvCertSecret]
	issuer := env[EnvCertIssuer]
	if secret == "" || issuer == "" {
		secret = "test-secret"
		issuer = "percity-dev"
		logger.Warn("Certificate credentials missing from env, using test defaults.")
	}
	return certificate.NewService(secret, issuer, 0)
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
