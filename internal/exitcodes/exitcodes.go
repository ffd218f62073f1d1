package exitcodes

// Exit codes for rip.
// These codes form the contract with scripts wrapping rip.
const (
	Success         = 0 // Successful execution, including reported conflicts
	Failure         = 1 // Usage error or unclassified failure
	InvalidConfig   = 2 // Settings file or environment invalid
	SafetyViolation = 3 // Safety guard refused a path
	RuntimeError    = 4 // One or more items failed with an I/O error
)
