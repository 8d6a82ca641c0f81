package main

import "time"

// parseDuration accepts both Go duration syntax ("5m", "24h") and a bare
// "0" to mean "clear expiration", since time.ParseDuration rejects a
// unitless zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
