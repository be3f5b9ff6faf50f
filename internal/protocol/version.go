package protocol

// VersionProtocol and VersionName are the protocol number and advertised
// version string the proxy presents to clients and to the backend.
const (
	VersionProtocol int32  = 762
	VersionName     string = "1.19.4"
)
