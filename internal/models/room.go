package models

import "time"

// Room is a private chat channel between exactly two users. The member pair
// is stored sorted (User1ID < User2ID) so the unordered pair maps to a single
// row. Rooms are immutable after creation.
type Room struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasMember reports whether userID is one of the room's two members.
func (r Room) HasMember(userID int) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// Peer returns the other member of the room relative to userID.
func (r Room) Peer(userID int) int {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// RoomSummary provides the API-friendly view of a room for one member.
type RoomSummary struct {
	RoomID    int       `db:"id" json:"room_id"`
	PeerID    int       `json:"peer_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
