package nakama

const (
	// RpcQuickPlay is the Nakama RPC id clients call to find or create an open solo match.
	RpcQuickPlay = "quick_play"

	// RpcVerifyCertificate is the Nakama RPC id classroom tools call to validate a completion certificate.
	RpcVerifyCertificate = "verify_certificate"

	// MatchNamePerceptronCity is the authoritative match handler name registered with Nakama.
	MatchNamePerceptronCity = "percity_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame       int64 = 1
	OpMoveToGrid      int64 = 2
	OpMoveToAvailable int64 = 3
	OpCommit          int64 = 4
	OpReplay          int64 = 5
	OpSetWeather      int64 = 6
	OpRequestHint     int64 = 7

	// Server -> Client events
	OpGameStarted    int64 = 101
	OpItemMoved      int64 = 102
	OpCommitResolved int64 = 103
	OpGameEnded      int64 = 104
	OpWeatherChanged int64 = 105
	OpGameReset      int64 = 106

	OpStateSnapshot int64 = 120
	OpHint          int64 = 121

	OpGameError int64 = 400
)

// Environment variable keys read from RUNTIME_CTX_ENV.
const (
	EnvVariant       = "percity_variant"
	EnvHintsEnabled  = "percity_hints_enabled"
	EnvHintDelaySec  = "percity_hint_delay_sec"
	EnvCertSecret    = "percity_cert_secret"
	EnvCertIssuer    = "percity_cert_issuer"
	EnvGameConfig    = "percity_game_config"
	defaultConfig    = "data/game_config.json"
	defaultHintDelay = 8
)
