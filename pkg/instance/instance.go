package instance

import "os"

// GetID returns the worker instance identifier or a default value. Cron locks
// prefix their owner tokens with it so a held key names its worker.
func GetID() string {
	if id := os.Getenv("CELLSPHERE_WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
