// Package roster defines the read-only roster collaborator the engine
// validates player selections against. Rosters are owned by the
// surrounding league application, never by the scoring core.
package roster

import "context"

// Player identifies an eligible player.
type Player struct {
	ID          string
	DisplayName string
}

// Provider supplies the eligible players for one team in one match.
type Provider interface {
	ListEligiblePlayers(ctx context.Context, matchID, teamID string) ([]Player, error)
}

// Contains reports whether the player id appears in the list.
func Contains(players []Player, playerID string) bool {
	for _, p := range players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
