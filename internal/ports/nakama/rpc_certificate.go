package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// VerifyCertificateRequest carries the token a classroom tool wants checked.
type VerifyCertificateRequest struct {
	Token string `json:"token"`
}

// VerifyCertificateResponse reports the completion a valid token attests to.
type VerifyCertificateResponse struct {
	Valid        bool    `json:"valid"`
	StudentID    string  `json:"student_id,omitempty"`
	Variant      string  `json:"variant,omitempty"`
	Total        float64 `json:"total,omitempty"`
	AttemptsUsed int     `json:"attempts_used,omitempty"`
}

// rpcVerifyCertificate validates a completion certificate issued by the match
// handler when a game is won.
func rpcVerifyCertificate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req VerifyCertificateRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	if req.Token == "" {
		return "", runtime.NewError("Token required", 3)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	svc := certificateServiceFromEnv(env, logger)

	completion, err := svc.Verify(req.Token)
	resp := VerifyCertificateResponse{}
	if err != nil {
		logger.Debug("rpcVerifyCertificate: Rejected token: %v", err)
	} else {
		resp = VerifyCertificateResponse{
			Valid:        true,
			StudentID:    completion.StudentID,
			Variant:      completion.VariantID,
			Total:        completion.Total,
			AttemptsUsed: completion.AttemptsUsed,
		}
	}

	b, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		logger.Error("rpcVerifyCertificate: Failed to marshal response: %v", marshalErr)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}
	return string(b), nil
}
