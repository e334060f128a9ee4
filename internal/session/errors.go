package session

import "errors"

var (
	ErrRoomNotFound = errors.New("room_not_found")
	ErrRoomExists   = errors.New("room_exists")
	ErrRoomFull     = errors.New("room_full")
	ErrNotAMember   = errors.New("not_a_member")
	ErrNotOwner     = errors.New("not_owner")
	ErrNotAllReady  = errors.New("not_all_ready")
	ErrRoomClosed   = errors.New("room_closed")
)
