package whitelist

// Open is the always-allow policy.
type Open struct{}

// Check always allows.
func (Open) Check(Player) Decision { return Allow() }
