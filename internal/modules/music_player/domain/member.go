package domain

import "github.com/disgoorg/snowflake/v2"

// Member is a user present in a voice channel.
type Member struct {
	ID          snowflake.ID
	DisplayName string
	IsBot       bool
}

// CountEligibleVoters returns the number of non-bot members.
func CountEligibleVoters(members []Member) int {
	n := 0
	for _, m := range members {
		if !m.IsBot {
			n++
		}
	}
	return n
}
