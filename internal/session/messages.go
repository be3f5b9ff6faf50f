package session

// Info-message catalogue: literal, operator-facing strings for the
// backend-unreachable and authentication-failure paths. Named constants
// keep every call site in
// agreement on wording.
const (
	backendDownPingText = "Server Error (Server may be starting)\n" +
		"Minecraft Server Proxy"

	backendDownDisconnectText = "Server Error (Server is down or restarting)\n" +
		"Please contact the server administrators if the issue persists."

	authenticationFailedText = "Mojang Authentication Failed"
)
