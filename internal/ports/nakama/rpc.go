package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickPlayRequest optionally pins the level variant for a new match.
type QuickPlayRequest struct {
	Variant string `json:"variant,omitempty"`
}

// QuickPlayResponse is the payload returned to clients when requesting a solo match.
type QuickPlayResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickPlay, rpcQuickPlay); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVerifyCertificate, rpcVerifyCertificate)
}

// rpcQuickPlay finds an open (unseated) solo match or creates a new one.
func rpcQuickPlay(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req QuickPlayRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
		}
	}

	// A solo match is joinable only before its student seat is taken.
	query := "+label.open:T +label.game:percity"
	if req.Variant != "" {
		query += " +label.variant:" + req.Variant
	}

	limit := 1
	authoritative := true
	minSize := 0
	maxSize := 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("RpcQuickPlay [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickPlayResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	var params map[string]interface{}
	if req.Variant != "" {
		params = map[string]interface{}{"variant": req.Variant}
	}

	matchID, err := nk.MatchCreate(ctx, MatchNamePerceptronCity, params)
	if err != nil {
		logger.Error("RpcQuickPlay [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("RpcQuickPlay [User:%s]: Created new match %s", userID, matchID)
	resp := QuickPlayResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
