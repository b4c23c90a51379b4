package scanning

// Mode is one scanning technique flag accepted by the tool.
type Mode struct {
	Flag        string
	Name        string
	Description string
}

// KnownModes is the vocabulary offered by the control surfaces, in display order.
var KnownModes = []Mode{
	{Flag: "-sS", Name: "SYN", Description: "TCP SYN (half-open) scan"},
	{Flag: "-sU", Name: "UDP", Description: "UDP port scan"},
	{Flag: "-sT", Name: "Connect", Description: "full TCP connect scan"},
	{Flag: "-sN", Name: "Null", Description: "TCP null scan, no flags set"},
	{Flag: "-A", Name: "Aggressive", Description: "OS and version detection, scripts, traceroute"},
	{Flag: "-p-", Name: "All ports", Description: "scan all 65535 ports"},
	{Flag: "-T4", Name: "Fast", Description: "aggressive timing template"},
	{Flag: "-T1", Name: "Sneaky", Description: "slow timing template"},
}

// KnownModeFlags returns the flags of KnownModes in order.
func KnownModeFlags() []string {
	flags := make([]string, 0, len(KnownModes))
	for _, m := range KnownModes {
		flags = append(flags, m.Flag)
	}
	return flags
}

// IsKnownMode reports whether flag is in KnownModes.
func IsKnownMode(flag string) bool {
	for _, m := range KnownModes {
		if m.Flag == flag {
			return true
		}
	}
	return false
}
