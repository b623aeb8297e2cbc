package parameter

// Persistence
const (
	// SaveSlot is the record key a session is stored under
	SaveSlot = "saveData"

	// SaveDir is the default directory for file-backed saves
	SaveDir = "saves"

	// SaveDatabase is the default sqlite database path for the headless host
	SaveDatabase = "runner.db"
)
