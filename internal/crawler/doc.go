// Package crawler implements the batch orchestrator that coordinates
// stealth sessions, navigation, content guarding, and payload delivery.
package crawler
