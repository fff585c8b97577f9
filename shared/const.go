package shared

const (
	UserID    = "user_id"
	UserRole  = "user_role"
	SessionID = "session_id"

	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"

	GameTypeSinglePlayer = "single-player"
	GameTypeMultiplayer  = "multiplayer"

	GameStatusWaiting   = "waiting"
	GameStatusActive    = "active"
	GameStatusCompleted = "completed"

	ParticipantTypeAuthenticated = "authenticated"
	ParticipantTypeGuest         = "guest"
)

// RoleLevel returns the permission level for a role. Higher levels include
// every permission of the levels below them.
func RoleLevel(role string) int {
	switch role {
	case RoleAdmin:
		return 2
	case RoleTeacher:
		return 1
	case RoleStudent:
		return 0
	default:
		return -1
	}
}

func IsValidRole(role string) bool {
	return RoleLevel(role) >= 0
}
